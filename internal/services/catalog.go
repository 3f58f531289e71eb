package services

import (
	"context"
	"time"

	"github.com/diewo77/bespoke-tuition/internal/models"
	"gorm.io/gorm"
)

// CatalogService manages products and terms.
type CatalogService struct {
	db  *gorm.DB
	loc *time.Location
}

func NewCatalogService(db *gorm.DB, loc *time.Location) *CatalogService {
	return &CatalogService{db: db, loc: loc}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).Order("name, id").Find(&products).Error
	return products, err
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// CreateProduct stores p. A missing effective from date means today.
func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product, now time.Time) error {
	if p.EffectiveFromDate.IsZero() {
		p.EffectiveFromDate = models.CivilDate(now, s.loc)
	}
	if err := invalid(ValidateProduct(*p)); err != nil {
		return err
	}
	p.ID = 0
	return s.db.WithContext(ctx).Create(p).Error
}

// UpdateProduct replaces the editable fields. A new price applies to every
// lesson not yet invoiced.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in models.Product) (*models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name, p.Price, p.EffectiveToDate = in.Name, in.Price, in.EffectiveToDate
	if !in.EffectiveFromDate.IsZero() {
		p.EffectiveFromDate = in.EffectiveFromDate
	}
	if err := invalid(ValidateProduct(*p)); err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(p).
		Select("name", "price", "effective_from_date", "effective_to_date").
		Updates(p).Error
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProduct refuses while any lesson references the product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, id).Error; err != nil {
			return notFound(err)
		}
		var n int64
		if err := tx.Model(&models.Lesson{}).Where("product_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return integrity("delete product", ErrProductInUse)
		}
		return tx.Delete(&p).Error
	})
}

func (s *CatalogService) ListTerms(ctx context.Context) ([]models.Term, error) {
	var terms []models.Term
	err := s.db.WithContext(ctx).Order("term_start_date DESC").Find(&terms).Error
	return terms, err
}

func (s *CatalogService) GetTerm(ctx context.Context, id uint) (*models.Term, error) {
	var t models.Term
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *CatalogService) CreateTerm(ctx context.Context, t *models.Term) error {
	if err := invalid(ValidateTerm(*t)); err != nil {
		return err
	}
	t.ID = 0
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *CatalogService) UpdateTerm(ctx context.Context, id uint, in models.Term) (*models.Term, error) {
	t, err := s.GetTerm(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ID = t.ID
	if err := invalid(ValidateTerm(in)); err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(t).
		Select("name", "term_start_date", "term_end_date", "half_term_start_date", "half_term_end_date").
		Updates(&in).Error
	if err != nil {
		return nil, err
	}
	return &in, nil
}
