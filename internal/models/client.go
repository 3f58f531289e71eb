package models

import "time"

// Client is a parent or guardian who pays for lessons. A client may later
// register an account, which links UserID.
type Client struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         *uint     `gorm:"uniqueIndex" json:"user_id,omitempty"`
	User           *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Forename       string    `gorm:"size:100;not null" json:"forename"`
	Surname        string    `gorm:"size:100;not null" json:"surname"`
	DateInserted   time.Time `gorm:"autoCreateTime" json:"date_inserted"`
	Active         bool      `gorm:"not null" json:"active"`
	ContractSigned bool      `gorm:"not null" json:"contract_signed"`

	Addresses []Address        `gorm:"constraint:OnDelete:CASCADE" json:"addresses,omitempty"`
	Contacts  []ContactDetails `gorm:"constraint:OnDelete:CASCADE" json:"contacts,omitempty"`
	Students  []Student        `gorm:"many2many:student_parents;" json:"students,omitempty"`
	Invoices  []Invoice        `gorm:"constraint:OnDelete:CASCADE" json:"invoices,omitempty"`
}

// AccountUserID is the login linked to this client, or 0.
func (c *Client) AccountUserID() uint {
	if c.UserID == nil {
		return 0
	}
	return *c.UserID
}

func (c *Client) FullName() string {
	return c.Forename + " " + c.Surname
}

// Address is a client's billing address, kept historically so invoices can
// show the address that was current when they were raised.
type Address struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	ClientID      uint `gorm:"index;not null" json:"client_id"`
	PostalAddress `gorm:"embedded"`
	DateInserted  time.Time `gorm:"autoCreateTime" json:"date_inserted"`
}

// ContactDetails holds a phone number and a unique email; the email is what a
// client registers with.
type ContactDetails struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ClientID      uint   `gorm:"index;not null" json:"client_id"`
	ContactNumber string `gorm:"size:15;not null" json:"contact_number"`
	EmailAddress  string `gorm:"size:100;uniqueIndex;not null" json:"email_address"`
}
