package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/bespoke-tuition/validation"
	"gorm.io/gorm"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrNoAddress              = errors.New("no address effective on that date")
	ErrInvoiceNumberTaken     = errors.New("invoice number already exists")
	ErrLessonsAlreadyInvoiced = errors.New("lessons were invoiced concurrently")
	ErrLessonInvoiced         = errors.New("lesson has already been invoiced")
	ErrProductInUse           = errors.New("product is referenced by lessons")
	ErrEmailTaken             = errors.New("email address already in use")
)

// ValidationError carries every field violation found for one request.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations.Fields(), ", ")
}

func invalid(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}

// IntegrityError reports a rejected operation that would break a data
// invariant. Err is one of the sentinels above.
type IntegrityError struct {
	Op  string
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

func integrity(op string, err error) error {
	return &IntegrityError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// notFound maps gorm's missing-row error onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
