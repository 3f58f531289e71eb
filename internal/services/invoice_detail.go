package services

import (
	"context"
	"sort"
	"time"

	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LineItem is one product's share of an invoice.
type LineItem struct {
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// InvoiceDetail is an invoice as printed: the billing address in force when
// it was raised and a per-product breakdown of its lessons.
type InvoiceDetail struct {
	Invoice  models.Invoice         `json:"invoice"`
	Address  models.Address         `json:"address"`
	Contact  *models.ContactDetails `json:"contact,omitempty"`
	Students []string               `json:"students"`
	Lines    []LineItem             `json:"lines"`
}

type InvoiceDetailService struct {
	db  *gorm.DB
	loc *time.Location
}

func NewInvoiceDetailService(db *gorm.DB, loc *time.Location) *InvoiceDetailService {
	return &InvoiceDetailService{db: db, loc: loc}
}

// Get loads an invoice with its client, enough for ownership checks.
func (s *InvoiceDetailService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.WithContext(ctx).Preload("Client").First(&inv, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

// List returns invoices newest first, limited to one client when clientID is set.
func (s *InvoiceDetailService) List(ctx context.Context, clientID *uint) ([]models.Invoice, error) {
	q := s.db.WithContext(ctx).Preload("Client").Order("date_created DESC, id DESC")
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}
	var invoices []models.Invoice
	err := q.Find(&invoices).Error
	return invoices, err
}

// Detail builds the printable view of an invoice. Line items use each
// product's current price.
func (s *InvoiceDetailService) Detail(ctx context.Context, id uint) (*InvoiceDetail, error) {
	db := s.db.WithContext(ctx)

	var inv models.Invoice
	err := db.Preload("Client").
		Preload("Client.Contacts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("lesson_start, id") }).
		Preload("Lessons.Product").
		Preload("Lessons.Student").
		First(&inv, id).Error
	if err != nil {
		return nil, notFound(err)
	}

	addr, err := addressAt(db, inv.ClientID, inv.DateCreated, s.loc)
	if err != nil {
		return nil, err
	}

	out := &InvoiceDetail{Invoice: inv, Address: addr, Lines: LineItems(inv.Lessons)}
	if inv.Client != nil && len(inv.Client.Contacts) > 0 {
		out.Contact = &inv.Client.Contacts[0]
	}
	seen := map[uint]bool{}
	for _, l := range inv.Lessons {
		if l.Student != nil && !seen[l.Student.ID] {
			seen[l.Student.ID] = true
			out.Students = append(out.Students, l.Student.FullName())
		}
	}
	return out, nil
}

// LineItems groups lessons by product name and unit price, ordered by name.
func LineItems(lessons []models.Lesson) []LineItem {
	type key struct {
		name  string
		price string
	}
	index := map[key]int{}
	var lines []LineItem
	for _, l := range lessons {
		if l.Product == nil {
			continue
		}
		price := PriceOf(*l.Product)
		k := key{l.Product.Name, price.StringFixed(2)}
		i, ok := index[k]
		if !ok {
			i = len(lines)
			index[k] = i
			lines = append(lines, LineItem{Product: l.Product.Name, UnitPrice: price})
		}
		lines[i].Quantity++
	}
	for i := range lines {
		lines[i].LineTotal = lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(lines[i].Quantity)))
	}
	sort.SliceStable(lines, func(a, b int) bool {
		if lines[a].Product != lines[b].Product {
			return lines[a].Product < lines[b].Product
		}
		return lines[a].UnitPrice.LessThan(lines[b].UnitPrice)
	})
	return lines
}
