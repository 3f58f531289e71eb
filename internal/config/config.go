// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Billing  BillingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string
	ReadTimeout    int // seconds
	WriteTimeout   int // seconds
	IdleTimeout    int // seconds
	AllowedOrigins []string
}

// DatabaseConfig holds connection settings. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	Debug      bool

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // minutes
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev             bool
	Migrations      bool
	MigrationsDir   string
	Seed            bool
	SessionSecret   string
	SessionTTL      int // hours
	ProfileCacheTTL int // seconds
	// AdminEmail and AdminPassword seed the first administrator when both are set.
	AdminEmail    string
	AdminPassword string
}

// BillingConfig holds the settings of the invoicing engine.
type BillingConfig struct {
	// Timezone is the IANA zone in which calendar days, term boundaries and
	// invoice numbers are evaluated.
	Timezone string
	// BusinessName heads printed invoices.
	BusinessName string
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Location loads the billing timezone.
func (b BillingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("billing timezone %q: %w", b.Timezone, err)
	}
	return loc, nil
}

// Validate reports settings that would make the server unsafe or unusable.
func (c *Config) Validate() error {
	if !c.App.Dev && c.App.SessionSecret == defaultSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be set outside dev mode")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if _, err := c.Billing.Location(); err != nil {
		return err
	}
	return nil
}

const defaultSessionSecret = "devsessionsecret"

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			ReadTimeout:    getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:   getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:    getEnvInt("SERVER_IDLE_TIMEOUT", 60),
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "tuition"),
			Password:        getEnv("DB_PASSWORD", "tuition123"),
			DBName:          getEnv("DB_NAME", "tuition"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			SQLitePath:      getEnv("DB_SQLITE_PATH", "tuition.db"),
			Debug:           getEnvBool("DB_DEBUG", false),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 30),
		},
		App: AppConfig{
			Dev:             getEnvBool("DEV", true),
			Migrations:      getEnvBool("MIGRATIONS", false),
			MigrationsDir:   getEnv("MIGRATIONS_DIR", "migrations"),
			Seed:            getEnvBool("DB_SEED", true),
			SessionSecret:   getEnv("SESSION_SECRET", defaultSessionSecret),
			SessionTTL:      getEnvInt("SESSION_TTL_HOURS", 14*24),
			ProfileCacheTTL: getEnvInt("PROFILE_CACHE_TTL", 300),
			AdminEmail:      getEnv("ADMIN_EMAIL", ""),
			AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		},
		Billing: BillingConfig{
			Timezone:     getEnv("BILLING_TIMEZONE", "Europe/London"),
			BusinessName: getEnv("BUSINESS_NAME", "Bespoke Tuition"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvList splits a comma separated variable.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
