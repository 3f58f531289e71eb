package models

import (
	"strconv"
	"time"
)

// MaxParents is the number of clients a student can be linked to.
const MaxParents = 2

// School years run from 1 to 11; 0 means the student has left school.
const (
	SchoolYearLeft  = 0
	SchoolYearFirst = 1
	SchoolYearLast  = 11
)

type Student struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Forename     string     `gorm:"size:100;not null" json:"forename"`
	Surname      string     `gorm:"size:100" json:"surname,omitempty"`
	DateOfBirth  *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	SchoolYear   int        `gorm:"not null" json:"school_year"`
	DateInserted time.Time  `gorm:"autoCreateTime" json:"date_inserted"`

	Parents          []Client         `gorm:"many2many:student_parents;" json:"parents,omitempty"`
	TuitionAddresses []TuitionAddress `gorm:"constraint:OnDelete:CASCADE" json:"tuition_addresses,omitempty"`
	Lessons          []Lesson         `gorm:"constraint:OnDelete:SET NULL" json:"lessons,omitempty"`
}

func (s *Student) FullName() string {
	if s.Surname == "" {
		return s.Forename
	}
	return s.Forename + " " + s.Surname
}

// SchoolYearLabel renders a school year for display.
func SchoolYearLabel(year int) string {
	if year == SchoolYearLeft {
		return "No longer in school"
	}
	return "Year " + strconv.Itoa(year)
}

// TuitionAddress is where a student is taught.
type TuitionAddress struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	StudentID     uint `gorm:"index;not null" json:"student_id"`
	PostalAddress `gorm:"embedded"`
	DateInserted  time.Time `gorm:"autoCreateTime" json:"date_inserted"`
}
