package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceNumberLayout renders the generation instant as DDMMYYYYHHMMSS.
const InvoiceNumberLayout = "02012006150405"

// InvoiceNumber builds the number for an invoice raised at now: up to three
// letters of the surname, upper cased, then the local timestamp.
func InvoiceNumber(surname string, now time.Time, loc *time.Location) string {
	prefix := []rune(strings.TrimSpace(surname))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	if loc != nil {
		now = now.In(loc)
	}
	return strings.ToUpper(string(prefix)) + now.Format(InvoiceNumberLayout)
}

// Generated is the outcome of a generation run. Invoice is nil when the
// client had nothing billable.
type Generated struct {
	Invoice *models.Invoice
	Client  models.Client
	Lessons []models.Lesson
}

// NoOp reports that nothing was invoiced and nothing was written.
func (g *Generated) NoOp() bool { return g.Invoice == nil }

type InvoiceGenerator struct {
	db  *gorm.DB
	loc *time.Location
}

func NewInvoiceGenerator(db *gorm.DB, loc *time.Location) *InvoiceGenerator {
	return &InvoiceGenerator{db: db, loc: loc}
}

// uninvoicedLessons loads the client's unbilled lessons with their products.
// lock takes row locks on the lessons read.
func uninvoicedLessons(tx *gorm.DB, clientID uint, lock bool) ([]models.Lesson, error) {
	q := tx.Preload("Product").Preload("Student").
		Where("lessons.invoiced = ? AND lessons.student_id IN (?)", false, studentsOf(tx, clientID)).
		Order("lessons.lesson_start, lessons.id")
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "lessons"}})
	}
	var lessons []models.Lesson
	err := q.Find(&lessons).Error
	return lessons, err
}

func lessonTotal(lessons []models.Lesson) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lessons {
		if l.Product != nil {
			total = total.Add(PriceOf(*l.Product))
		}
	}
	return total
}

// Generate bills every uninvoiced lesson of the client's students on a new
// Draft invoice. The invoice and the lesson flags are written in one
// transaction, and the client row is locked so that two runs for the same
// client cannot bill the same lessons.
func (g *InvoiceGenerator) Generate(ctx context.Context, clientID uint, now time.Time) (*Generated, error) {
	out := &Generated{}
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&out.Client, clientID).Error; err != nil {
			return notFound(err)
		}

		lessons, err := uninvoicedLessons(tx, clientID, true)
		if err != nil {
			return err
		}
		total := lessonTotal(lessons)
		if !total.IsPositive() {
			return nil
		}

		number := InvoiceNumber(out.Client.Surname, now, g.loc)
		var clash int64
		if err := tx.Model(&models.Invoice{}).Where("invoice_number = ?", number).Count(&clash).Error; err != nil {
			return err
		}
		if clash > 0 {
			return integrity("generate invoice "+number, ErrInvoiceNumberTaken)
		}

		invoice := models.Invoice{
			InvoiceNumber:     number,
			ClientID:          out.Client.ID,
			Status:            models.InvoiceStatusDraft,
			TotalAmount:       total,
			AmountPaid:        decimal.Zero,
			AmountOutstanding: total,
			DateCreated:       now,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return integrity("generate invoice "+number, ErrInvoiceNumberTaken)
			}
			return err
		}

		ids := make([]uint, len(lessons))
		for i := range lessons {
			ids[i] = lessons[i].ID
		}
		res := tx.Model(&models.Lesson{}).
			Where("id IN ? AND invoiced = ?", ids, false).
			Updates(map[string]any{"invoiced": true, "invoice_id": invoice.ID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(ids)) {
			return integrity("generate invoice "+number, ErrLessonsAlreadyInvoiced)
		}

		for i := range lessons {
			lessons[i].Invoiced = true
			lessons[i].InvoiceID = &invoice.ID
		}
		out.Invoice = &invoice
		out.Lessons = lessons
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
