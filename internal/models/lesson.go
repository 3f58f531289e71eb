package models

import "time"

// Lesson is one booked session. It is billed at most once: Invoiced flips to
// true and InvoiceID is set when an invoice consumes it.
type Lesson struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   *uint     `gorm:"index" json:"student_id,omitempty"`
	Student     *Student  `json:"student,omitempty"`
	ProductID   uint      `gorm:"index;not null" json:"product_id"`
	Product     *Product  `json:"product,omitempty"`
	TermID      *uint     `gorm:"index" json:"term_id,omitempty"`
	Term        *Term     `json:"term,omitempty"`
	LessonStart time.Time `gorm:"not null" json:"lesson_start"`
	LessonEnd   time.Time `gorm:"not null" json:"lesson_end"`
	Invoiced    bool      `gorm:"not null;index" json:"invoiced"`
	InvoiceID   *uint     `gorm:"index" json:"invoice_id,omitempty"`
	Invoice     *Invoice  `json:"-"`
}

func (l *Lesson) Duration() time.Duration {
	return l.LessonEnd.Sub(l.LessonStart)
}
