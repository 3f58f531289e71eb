package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the payment state of an invoice. Values are stored as
// integers and must not be renumbered.
type InvoiceStatus int

const (
	InvoiceStatusDraft InvoiceStatus = iota + 1
	InvoiceStatusIssued
	InvoiceStatusUnpaid
	InvoiceStatusPartPaid
	InvoiceStatusPaid
)

var invoiceStatusLabels = map[InvoiceStatus]string{
	InvoiceStatusDraft:    "Draft",
	InvoiceStatusIssued:   "Issued",
	InvoiceStatusUnpaid:   "Unpaid",
	InvoiceStatusPartPaid: "Part paid",
	InvoiceStatusPaid:     "Paid",
}

func (s InvoiceStatus) Valid() bool {
	_, ok := invoiceStatusLabels[s]
	return ok
}

func (s InvoiceStatus) String() string {
	if l, ok := invoiceStatusLabels[s]; ok {
		return l
	}
	return "Unknown"
}

// Invoice is a financial record: created once by the generator, afterwards
// only its status and paid amounts change. It is never deleted.
type Invoice struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	InvoiceNumber     string          `gorm:"size:20;uniqueIndex;not null" json:"invoice_number"`
	ClientID          uint            `gorm:"index;not null" json:"client_id"`
	Client            *Client         `json:"client,omitempty"`
	Status            InvoiceStatus   `gorm:"not null" json:"status"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"total_amount"`
	AmountPaid        decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"amount_paid"`
	AmountOutstanding decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"amount_outstanding"`
	DateCreated       time.Time       `gorm:"not null;index" json:"date_created"`

	Lessons []Lesson `gorm:"constraint:OnDelete:SET NULL" json:"lessons,omitempty"`
}

// AccountUserID is the login of the invoiced client. Client must be
// preloaded.
func (i *Invoice) AccountUserID() uint {
	if i.Client == nil {
		return 0
	}
	return i.Client.AccountUserID()
}

// IsSettled reports whether nothing remains to be paid.
func (i *Invoice) IsSettled() bool {
	return i.Status == InvoiceStatusPaid && !i.AmountOutstanding.IsPositive()
}
