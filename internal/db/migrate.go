package db

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/diewo77/bespoke-tuition/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		// Auth & Authorization
		&models.Permission{},
		&models.Profile{},
		&models.User{},
		// People
		&models.Client{},
		&models.Address{},
		&models.ContactDetails{},
		&models.Student{},
		&models.TuitionAddress{},
		// Reference data
		&models.Product{},
		&models.Term{},
		// Billing
		&models.Invoice{},
		&models.Lesson{},
	}
}

// Migrate runs AutoMigrate for all models in one pass so gorm can order
// foreign keys.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// RunSQLMigrations applies the versioned SQL files in dir to a Postgres
// database given in URL form.
func RunSQLMigrations(dir, databaseURL string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	m, err := migrate.New("file://"+filepath.ToSlash(abs), databaseURL)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}
	log.Printf("SQL migrations at version %d (dirty=%v)", version, dirty)
	return nil
}
