package services

import (
	"context"

	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/diewo77/bespoke-tuition/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentUpdate is a request to record a payment. TotalAmount and
// InvoiceNumber are only set when a caller echoes them back; any change to
// them is rejected.
type PaymentUpdate struct {
	Status        models.InvoiceStatus
	AmountPaid    decimal.Decimal
	TotalAmount   *decimal.Decimal
	InvoiceNumber *string
}

// ValidatePayment checks upd against inv and returns every rule it breaks.
func ValidatePayment(inv models.Invoice, upd PaymentUpdate) validation.Violations {
	var v validation.Violations
	if !upd.AmountPaid.IsPositive() {
		v.Add("amount_paid", "amount_not_positive")
	}
	if !upd.AmountPaid.Equal(upd.AmountPaid.Truncate(2)) {
		v.Add("amount_paid", "max_decimal_places", 2)
	}
	if upd.AmountPaid.GreaterThan(inv.TotalAmount) {
		v.Add("amount_paid", "overpaid")
	}

	switch {
	case !upd.Status.Valid():
		v.Add("status", "invalid_status")
	case upd.AmountPaid.IsPositive() && upd.AmountPaid.LessThan(inv.TotalAmount) &&
		upd.Status != models.InvoiceStatusPartPaid:
		v.Add("status", "should_be_part_paid")
	case upd.AmountPaid.Equal(inv.TotalAmount) && upd.Status != models.InvoiceStatusPaid:
		v.Add("status", "should_be_paid")
	}

	if upd.TotalAmount != nil && !upd.TotalAmount.Equal(inv.TotalAmount) {
		v.Add("total_amount", "immutable")
	}
	if upd.InvoiceNumber != nil && *upd.InvoiceNumber != inv.InvoiceNumber {
		v.Add("invoice_number", "immutable")
	}
	return v
}

// Ledger records payments against invoices.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// ApplyPaymentUpdate validates upd in full and, when it passes, writes status,
// amount paid and the recomputed outstanding amount in a single update.
func (l *Ledger) ApplyPaymentUpdate(ctx context.Context, invoiceID uint, upd PaymentUpdate) (*models.Invoice, error) {
	var inv models.Invoice
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, invoiceID).Error; err != nil {
			return notFound(err)
		}
		if err := invalid(ValidatePayment(inv, upd)); err != nil {
			return err
		}
		outstanding := inv.TotalAmount.Sub(upd.AmountPaid)
		err := tx.Model(&inv).Updates(map[string]any{
			"status":             upd.Status,
			"amount_paid":        upd.AmountPaid,
			"amount_outstanding": outstanding,
		}).Error
		if err != nil {
			return err
		}
		inv.Status = upd.Status
		inv.AmountPaid = upd.AmountPaid
		inv.AmountOutstanding = outstanding
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
