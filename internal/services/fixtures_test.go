package services

import (
	"strings"
	"testing"
	"time"

	"github.com/diewo77/bespoke-tuition/internal/config"
	"github.com/diewo77/bespoke-tuition/internal/db"
	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.Open(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: "file:" + name + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2))
}

func seedClient(t *testing.T, conn *gorm.DB, forename, surname string) models.Client {
	t.Helper()
	c := models.Client{
		Forename: forename,
		Surname:  surname,
		Active:   true,
		Addresses: []models.Address{{PostalAddress: models.PostalAddress{
			LineOne: "1 High Street", Town: "Manchester", Postcode: "M20 1AA",
			EffectiveFromDate: day(2020, 1, 1),
		}}},
	}
	require.NoError(t, conn.Create(&c).Error)
	return c
}

func seedStudent(t *testing.T, conn *gorm.DB, forename string, parents ...models.Client) models.Student {
	t.Helper()
	s := models.Student{Forename: forename, SchoolYear: 5, Parents: parents}
	require.NoError(t, conn.Omit("Parents.*").Create(&s).Error)
	return s
}

func seedProduct(t *testing.T, conn *gorm.DB, name, price string) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: money(price), EffectiveFromDate: day(2020, 1, 1)}
	require.NoError(t, conn.Create(&p).Error)
	return p
}

func autumnTerm() models.Term {
	return models.Term{
		Name:              "Autumn 2024",
		TermStartDate:     day(2024, 9, 4),
		TermEndDate:       day(2024, 12, 20),
		HalfTermStartDate: day(2024, 10, 28),
		HalfTermEndDate:   day(2024, 11, 1),
	}
}

func seedTerm(t *testing.T, conn *gorm.DB) models.Term {
	t.Helper()
	term := autumnTerm()
	require.NoError(t, conn.Create(&term).Error)
	return term
}

func seedLesson(t *testing.T, conn *gorm.DB, s models.Student, p models.Product, start time.Time) models.Lesson {
	t.Helper()
	l := models.Lesson{
		StudentID:   &s.ID,
		ProductID:   p.ID,
		LessonStart: start,
		LessonEnd:   start.Add(time.Hour),
	}
	require.NoError(t, conn.Create(&l).Error)
	return l
}

func count(t *testing.T, conn *gorm.DB, model any, where ...any) int64 {
	t.Helper()
	var n int64
	q := conn.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
