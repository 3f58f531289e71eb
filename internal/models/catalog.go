package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a billable lesson type.
type Product struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	Name              string          `gorm:"size:100;not null" json:"name"`
	Price             decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"price"`
	EffectiveFromDate time.Time       `gorm:"type:date;not null" json:"effective_from_date"`
	EffectiveToDate   *time.Time      `gorm:"type:date" json:"effective_to_date,omitempty"`
	DateInserted      time.Time       `gorm:"autoCreateTime" json:"date_inserted"`

	Lessons []Lesson `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

func (p Product) Window() (time.Time, *time.Time) {
	return p.EffectiveFromDate, p.EffectiveToDate
}

// Term is a school term; lessons are only booked inside one.
type Term struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:100;not null" json:"name"`
	TermStartDate     time.Time `gorm:"type:date;not null" json:"term_start_date"`
	TermEndDate       time.Time `gorm:"type:date;not null" json:"term_end_date"`
	HalfTermStartDate time.Time `gorm:"type:date;not null" json:"half_term_start_date"`
	HalfTermEndDate   time.Time `gorm:"type:date;not null" json:"half_term_end_date"`

	Lessons []Lesson `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}
