package services

import (
	"context"
	"errors"
	"time"

	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/diewo77/bespoke-tuition/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LessonInput is what a booking needs. TermID is required on create.
type LessonInput struct {
	StudentID   uint
	ProductID   uint
	TermID      uint
	LessonStart time.Time
	LessonEnd   time.Time
}

type LessonService struct {
	db  *gorm.DB
	loc *time.Location
}

func NewLessonService(db *gorm.DB, loc *time.Location) *LessonService {
	return &LessonService{db: db, loc: loc}
}

// Create books a lesson after running the full booking validator.
func (s *LessonService) Create(ctx context.Context, in LessonInput) (*models.Lesson, error) {
	db := s.db.WithContext(ctx)

	var v validation.Violations
	var term models.Term
	if in.TermID == 0 {
		v.Add("term_id", "term_required")
	} else if err := db.First(&term, in.TermID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		v.Add("term_id", "not_found")
	}
	if err := exists(db, &models.Product{}, in.ProductID); err != nil {
		if !IsNotFound(err) {
			return nil, err
		}
		v.Add("product_id", "not_found")
	}
	if err := exists(db, &models.Student{}, in.StudentID); err != nil {
		if !IsNotFound(err) {
			return nil, err
		}
		v.Add("student_id", "not_found")
	}

	if term.ID != 0 {
		v.Merge(ValidateLesson(in.LessonStart, in.LessonEnd, term, s.loc))
	} else {
		v.Merge(ValidateLessonUpdate(in.LessonStart, in.LessonEnd))
	}
	if err := invalid(v); err != nil {
		return nil, err
	}

	lesson := models.Lesson{
		StudentID:   &in.StudentID,
		ProductID:   in.ProductID,
		TermID:      &in.TermID,
		LessonStart: in.LessonStart,
		LessonEnd:   in.LessonEnd,
	}
	if err := db.Create(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Update changes a lesson's times and product. Only start <= end is checked;
// the term is not re-validated. Invoiced lessons are fixed.
func (s *LessonService) Update(ctx context.Context, id uint, productID uint, start, end time.Time) (*models.Lesson, error) {
	var lesson models.Lesson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&lesson, id).Error; err != nil {
			return notFound(err)
		}
		if lesson.Invoiced {
			return integrity("update lesson", ErrLessonInvoiced)
		}

		v := ValidateLessonUpdate(start, end)
		if productID != 0 && productID != lesson.ProductID {
			if err := exists(tx, &models.Product{}, productID); err != nil {
				if !IsNotFound(err) {
					return err
				}
				v.Add("product_id", "not_found")
			}
			lesson.ProductID = productID
		}
		if err := invalid(v); err != nil {
			return err
		}

		lesson.LessonStart, lesson.LessonEnd = start, end
		return tx.Model(&lesson).Select("product_id", "lesson_start", "lesson_end").Updates(&lesson).Error
	})
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Delete removes a lesson that has not been billed yet.
func (s *LessonService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lesson models.Lesson
		if err := tx.First(&lesson, id).Error; err != nil {
			return notFound(err)
		}
		if lesson.Invoiced {
			return integrity("delete lesson", ErrLessonInvoiced)
		}
		return tx.Delete(&lesson).Error
	})
}

// ListForStudent returns a student's lessons, newest first.
func (s *LessonService) ListForStudent(ctx context.Context, studentID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.db.WithContext(ctx).
		Preload("Product").Preload("Term").
		Where("student_id = ?", studentID).
		Order("lesson_start DESC").
		Find(&lessons).Error
	return lessons, err
}

// ListForClient returns the lessons of every student the client is a parent of.
func (s *LessonService) ListForClient(ctx context.Context, clientID uint) ([]models.Lesson, error) {
	db := s.db.WithContext(ctx)
	var lessons []models.Lesson
	err := db.Preload("Product").Preload("Student").Preload("Term").
		Where("lessons.student_id IN (?)", studentsOf(db, clientID)).
		Order("lesson_start DESC").
		Find(&lessons).Error
	return lessons, err
}

// studentsOf is a subquery selecting the ids of the client's students.
func studentsOf(db *gorm.DB, clientID uint) *gorm.DB {
	return db.Table("student_parents").Select("student_id").Where("client_id = ?", clientID)
}

func exists(db *gorm.DB, model any, id uint) error {
	if id == 0 {
		return ErrNotFound
	}
	var n int64
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
