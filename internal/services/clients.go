package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/diewo77/bespoke-tuition/validation"
	"gorm.io/gorm"
)

// ClientInput creates a client together with its first address and contact.
type ClientInput struct {
	Forename      string
	Surname       string
	Address       models.PostalAddress
	ContactNumber string
	EmailAddress  string
}

// StudentInput creates a student. SchoolYear defaults to the first year.
type StudentInput struct {
	Forename    string
	Surname     string
	DateOfBirth *time.Time
	SchoolYear  *int
	ParentIDs   []uint
}

type ClientService struct {
	db  *gorm.DB
	loc *time.Location
}

func NewClientService(db *gorm.DB, loc *time.Location) *ClientService {
	return &ClientService{db: db, loc: loc}
}

func validateName(field, value string, required bool, v *validation.Violations) {
	if required {
		validation.Required(field, value, v)
	}
	validation.LettersOnly(field, value, v)
	validation.MaxLength(field, value, 100, v)
}

func validateAddress(a models.PostalAddress) validation.Violations {
	var v validation.Violations
	validation.Required("line_one", a.LineOne, &v)
	validation.Required("town", a.Town, &v)
	validation.Required("postcode", a.Postcode, &v)
	validation.MaxLength("line_one", a.LineOne, 100, &v)
	validation.MaxLength("line_two", a.LineTwo, 100, &v)
	validation.MaxLength("line_three", a.LineThree, 100, &v)
	validation.MaxLength("town", a.Town, 100, &v)
	validation.MaxLength("postcode", a.Postcode, 10, &v)
	validation.DateWindow("effective_from_date", a.EffectiveFromDate, a.EffectiveToDate, &v)
	return v
}

func validateContact(number, email string) validation.Violations {
	var v validation.Violations
	validation.Required("contact_number", number, &v)
	validation.DigitsOnly("contact_number", number, &v)
	validation.MaxLength("contact_number", number, 15, &v)
	validation.Email("email_address", email, &v)
	validation.MaxLength("email_address", email, 100, &v)
	return v
}

// withDefaultFrom fills a missing effective from date with today.
func (s *ClientService) withDefaultFrom(a models.PostalAddress, now time.Time) models.PostalAddress {
	if a.EffectiveFromDate.IsZero() {
		a.EffectiveFromDate = models.CivilDate(now, s.loc)
	}
	return a
}

func emailInUse(tx *gorm.DB, email string) (bool, error) {
	var n int64
	err := tx.Model(&models.ContactDetails{}).Where("LOWER(email_address) = ?", strings.ToLower(email)).Count(&n).Error
	return n > 0, err
}

// CreateClient stores a new active client with its first address and contact.
func (s *ClientService) CreateClient(ctx context.Context, in ClientInput, now time.Time) (*models.Client, error) {
	in.Address = s.withDefaultFrom(in.Address, now)
	in.EmailAddress = strings.TrimSpace(in.EmailAddress)

	var v validation.Violations
	validateName("forename", in.Forename, true, &v)
	validateName("surname", in.Surname, true, &v)
	v.Merge(validateAddress(in.Address))
	v.Merge(validateContact(in.ContactNumber, in.EmailAddress))
	if err := invalid(v); err != nil {
		return nil, err
	}

	client := models.Client{
		Forename:  in.Forename,
		Surname:   in.Surname,
		Active:    true,
		Addresses: []models.Address{{PostalAddress: in.Address}},
		Contacts:  []models.ContactDetails{{ContactNumber: in.ContactNumber, EmailAddress: in.EmailAddress}},
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := emailInUse(tx, in.EmailAddress)
		if err != nil {
			return err
		}
		if taken {
			var v validation.Violations
			v.Add("email_address", "email_taken")
			return invalid(v)
		}
		return tx.Create(&client).Error
	})
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// ListClients returns clients by surname. activeOnly hides inactive ones.
func (s *ClientService) ListClients(ctx context.Context, activeOnly bool) ([]models.Client, error) {
	q := s.db.WithContext(ctx).Order("surname, forename, id")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var clients []models.Client
	err := q.Find(&clients).Error
	return clients, err
}

// GetClient loads a client with addresses, contacts and students.
func (s *ClientService) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	err := s.db.WithContext(ctx).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB { return db.Order("effective_from_date DESC, id DESC") }).
		Preload("Contacts").
		Preload("Students").
		First(&c, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// ClientForUser returns the client linked to a registered account.
func (s *ClientService) ClientForUser(ctx context.Context, userID uint) (*models.Client, error) {
	var c models.Client
	if err := s.db.WithContext(ctx).Select("id").Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return s.GetClient(ctx, c.ID)
}

// SetFlags updates the active and contract signed flags when given.
func (s *ClientService) SetFlags(ctx context.Context, id uint, active, contractSigned *bool) (*models.Client, error) {
	updates := map[string]any{}
	if active != nil {
		updates["active"] = *active
	}
	if contractSigned != nil {
		updates["contract_signed"] = *contractSigned
	}
	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.Client{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return s.GetClient(ctx, id)
}

// AddAddress records a new billing address. Earlier addresses are kept so
// older invoices still resolve to the address current when they were raised.
func (s *ClientService) AddAddress(ctx context.Context, clientID uint, a models.PostalAddress, now time.Time) (*models.Address, error) {
	a = s.withDefaultFrom(a, now)
	if err := invalid(validateAddress(a)); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := exists(db, &models.Client{}, clientID); err != nil {
		return nil, err
	}
	addr := models.Address{ClientID: clientID, PostalAddress: a}
	if err := db.Create(&addr).Error; err != nil {
		return nil, err
	}
	return &addr, nil
}

func (s *ClientService) AddContact(ctx context.Context, clientID uint, number, email string) (*models.ContactDetails, error) {
	email = strings.TrimSpace(email)
	if err := invalid(validateContact(number, email)); err != nil {
		return nil, err
	}
	contact := models.ContactDetails{ClientID: clientID, ContactNumber: number, EmailAddress: email}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Client{}, clientID); err != nil {
			return err
		}
		taken, err := emailInUse(tx, email)
		if err != nil {
			return err
		}
		if taken {
			var v validation.Violations
			v.Add("email_address", "email_taken")
			return invalid(v)
		}
		return tx.Create(&contact).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, integrity("add contact", ErrEmailTaken)
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// CreateStudent stores a student linked to at most MaxParents clients.
func (s *ClientService) CreateStudent(ctx context.Context, in StudentInput) (*models.Student, error) {
	year := models.SchoolYearFirst
	if in.SchoolYear != nil {
		year = *in.SchoolYear
	}

	var v validation.Violations
	validateName("forename", in.Forename, true, &v)
	validateName("surname", in.Surname, false, &v)
	validation.RangeInt("school_year", year, models.SchoolYearLeft, models.SchoolYearLast, &v)
	parentIDs := uniqueIDs(in.ParentIDs)
	if len(parentIDs) > models.MaxParents {
		v.Add("parents", "too_many_parents", models.MaxParents)
	}

	db := s.db.WithContext(ctx)
	var parents []models.Client
	if len(parentIDs) > 0 && len(parentIDs) <= models.MaxParents {
		if err := db.Where("id IN ?", parentIDs).Find(&parents).Error; err != nil {
			return nil, err
		}
		if len(parents) != len(parentIDs) {
			v.Add("parents", "not_found")
		}
	}
	if err := invalid(v); err != nil {
		return nil, err
	}

	student := models.Student{
		Forename:    in.Forename,
		Surname:     in.Surname,
		DateOfBirth: in.DateOfBirth,
		SchoolYear:  year,
		Parents:     parents,
	}
	if err := db.Omit("Parents.*").Create(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (s *ClientService) ListStudents(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := s.db.WithContext(ctx).Preload("Parents").Order("surname, forename, id").Find(&students).Error
	return students, err
}

// GetStudent loads a student with parents, tuition addresses and lessons.
func (s *ClientService) GetStudent(ctx context.Context, id uint) (*models.Student, error) {
	var st models.Student
	err := s.db.WithContext(ctx).
		Preload("Parents").
		Preload("TuitionAddresses", func(db *gorm.DB) *gorm.DB { return db.Order("effective_from_date DESC, id DESC") }).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("lesson_start DESC") }).
		Preload("Lessons.Product").
		First(&st, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}

// IsParent reports whether the client is one of the student's parents.
func (s *ClientService) IsParent(ctx context.Context, clientID, studentID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Table("student_parents").
		Where("client_id = ? AND student_id = ?", clientID, studentID).
		Count(&n).Error
	return n > 0, err
}

func (s *ClientService) AddTuitionAddress(ctx context.Context, studentID uint, a models.PostalAddress, now time.Time) (*models.TuitionAddress, error) {
	a = s.withDefaultFrom(a, now)
	if err := invalid(validateAddress(a)); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := exists(db, &models.Student{}, studentID); err != nil {
		return nil, err
	}
	addr := models.TuitionAddress{StudentID: studentID, PostalAddress: a}
	if err := db.Create(&addr).Error; err != nil {
		return nil, err
	}
	return &addr, nil
}
