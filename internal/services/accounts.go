package services

import (
	"context"

	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UninvoicedSummary is what the next invoice for a client would contain.
type UninvoicedSummary struct {
	Client  models.Client   `json:"client"`
	Lessons []models.Lesson `json:"lessons"`
	Total   decimal.Decimal `json:"total"`
}

// ClientBalance is one row of the accounts overview.
type ClientBalance struct {
	Client          models.Client   `json:"client"`
	LessonCount     int             `json:"lesson_count"`
	UninvoicedTotal decimal.Decimal `json:"uninvoiced_total"`
}

type AccountsService struct {
	db *gorm.DB
}

func NewAccountsService(db *gorm.DB) *AccountsService {
	return &AccountsService{db: db}
}

// UninvoicedTotal previews a client's billable lessons without writing.
func (s *AccountsService) UninvoicedTotal(ctx context.Context, clientID uint) (*UninvoicedSummary, error) {
	db := s.db.WithContext(ctx)
	var out UninvoicedSummary
	if err := db.Preload("Students").First(&out.Client, clientID).Error; err != nil {
		return nil, notFound(err)
	}
	lessons, err := uninvoicedLessons(db, clientID, false)
	if err != nil {
		return nil, err
	}
	out.Lessons = lessons
	out.Total = lessonTotal(lessons)
	return &out, nil
}

// ClientsWithBalance lists every client with the total of its uninvoiced
// lessons at current prices.
func (s *AccountsService) ClientsWithBalance(ctx context.Context) ([]ClientBalance, error) {
	db := s.db.WithContext(ctx)

	var clients []models.Client
	if err := db.Order("surname, forename, id").Find(&clients).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		ClientID uint
		Price    decimal.Decimal
	}
	err := db.Table("lessons").
		Select("student_parents.client_id, products.price").
		Joins("JOIN student_parents ON student_parents.student_id = lessons.student_id").
		Joins("JOIN products ON products.id = lessons.product_id").
		Where("lessons.invoiced = ?", false).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	type acc struct {
		n     int
		total decimal.Decimal
	}
	byClient := make(map[uint]*acc, len(clients))
	for _, r := range rows {
		a, ok := byClient[r.ClientID]
		if !ok {
			a = &acc{total: decimal.Zero}
			byClient[r.ClientID] = a
		}
		a.n++
		a.total = a.total.Add(r.Price)
	}

	out := make([]ClientBalance, 0, len(clients))
	for _, c := range clients {
		b := ClientBalance{Client: c, UninvoicedTotal: decimal.Zero}
		if a, ok := byClient[c.ID]; ok {
			b.LessonCount, b.UninvoicedTotal = a.n, a.total
		}
		out = append(out, b)
	}
	return out, nil
}
