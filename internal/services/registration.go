package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/diewo77/bespoke-tuition/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

var ErrInvalidCredentials = errors.New("invalid email or password")

// AccountService registers customers and checks their credentials.
type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// Register creates a customer login for an existing client. The email must
// be one of the client's contact addresses and must not already have an
// account.
func (s *AccountService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var v validation.Violations
	validation.Email("email", email, &v)
	if len([]rune(password)) < MinPasswordLength {
		v.Add("password", "password_too_short", MinPasswordLength)
	}
	if err := invalid(v); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contact models.ContactDetails
		err := tx.Where("LOWER(email_address) = ?", email).First(&contact).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			var v validation.Violations
			v.Add("email", "not_a_client")
			return invalid(v)
		}
		if err != nil {
			return err
		}

		var client models.Client
		if err := tx.First(&client, contact.ClientID).Error; err != nil {
			return err
		}
		var taken int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 || client.UserID != nil {
			var v validation.Violations
			v.Add("email", "already_registered")
			return invalid(v)
		}

		var profile models.Profile
		if err := tx.Where("name = ?", models.ProfileCustomer).First(&profile).Error; err != nil {
			return err
		}
		user = models.User{
			Email:     email,
			Name:      client.FullName(),
			Password:  string(hash),
			ProfileID: &profile.ID,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Model(&client).Update("user_id", user.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate returns the user when password matches.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// UserExists backs the session verifier.
func (s *AccountService) UserExists(ctx context.Context, id uint) bool {
	return exists(s.db.WithContext(ctx), &models.User{}, id) == nil
}
