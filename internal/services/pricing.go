package services

import (
	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/diewo77/bespoke-tuition/validation"
	"github.com/shopspring/decimal"
)

// PriceOf is the amount a lesson of p is billed at: the product's current
// price when the invoice is generated, not when the lesson was booked.
func PriceOf(p models.Product) decimal.Decimal {
	return p.Price
}

// ValidateProduct checks a product before it is stored.
func ValidateProduct(p models.Product) validation.Violations {
	var v validation.Violations
	validation.Required("name", p.Name, &v)
	validation.MaxLength("name", p.Name, 100, &v)
	validation.Money("price", p.Price, &v)
	if p.Price.Abs().GreaterThanOrEqual(decimal.NewFromInt(1_000_000)) {
		v.Add("price", "out_of_range")
	}
	validation.DateWindow("effective_from_date", p.EffectiveFromDate, p.EffectiveToDate, &v)
	return v
}
