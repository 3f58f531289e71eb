package services

import (
	"context"
	"time"

	"github.com/diewo77/bespoke-tuition/internal/models"
	"gorm.io/gorm"
)

// ResolveAt picks the record whose effective window contains the calendar
// day of at in loc. Overlapping windows resolve to the latest from date, then
// to the later row. rows should be ordered by id.
func ResolveAt[T models.Windowed](rows []T, at time.Time, loc *time.Location) (T, error) {
	day := models.CivilDate(at, loc)
	var (
		best  T
		found bool
	)
	for _, row := range rows {
		if !models.Covers(row, day) {
			continue
		}
		if found {
			bestFrom, _ := best.Window()
			from, _ := row.Window()
			if models.CivilDate(from, nil).Before(models.CivilDate(bestFrom, nil)) {
				continue
			}
		}
		best, found = row, true
	}
	if !found {
		return best, integrity("resolve address", ErrNoAddress)
	}
	return best, nil
}

type AddressService struct {
	db  *gorm.DB
	loc *time.Location
}

func NewAddressService(db *gorm.DB, loc *time.Location) *AddressService {
	return &AddressService{db: db, loc: loc}
}

// AddressAt returns the client's billing address effective at the given instant.
func (s *AddressService) AddressAt(ctx context.Context, clientID uint, at time.Time) (models.Address, error) {
	return addressAt(s.db.WithContext(ctx), clientID, at, s.loc)
}

func addressAt(tx *gorm.DB, clientID uint, at time.Time, loc *time.Location) (models.Address, error) {
	var rows []models.Address
	if err := tx.Where("client_id = ?", clientID).Order("id").Find(&rows).Error; err != nil {
		return models.Address{}, err
	}
	return ResolveAt(rows, at, loc)
}

// TuitionAddressAt returns where the student was taught at the given instant.
func (s *AddressService) TuitionAddressAt(ctx context.Context, studentID uint, at time.Time) (models.TuitionAddress, error) {
	var rows []models.TuitionAddress
	if err := s.db.WithContext(ctx).Where("student_id = ?", studentID).Order("id").Find(&rows).Error; err != nil {
		return models.TuitionAddress{}, err
	}
	return ResolveAt(rows, at, s.loc)
}
