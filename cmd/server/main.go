package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/bespoke-tuition/auth"
	"github.com/diewo77/bespoke-tuition/internal/config"
	"github.com/diewo77/bespoke-tuition/internal/db"
	"github.com/diewo77/bespoke-tuition/internal/policy"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	loc, err := cfg.Billing.Location()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	dbConn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *migrateOnlyFlag {
		if err := migrate(dbConn, cfg); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
		return
	}

	if *seedOnlyFlag {
		if err := seed(dbConn, cfg); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Println("Seeding completed successfully")
		return
	}

	if cfg.App.Migrations {
		if err := migrate(dbConn, cfg); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed")
	}
	if cfg.App.Seed {
		if err := seed(dbConn, cfg); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}

	sessions := auth.NewSessions(cfg.App.SessionSecret, time.Duration(cfg.App.SessionTTL)*time.Hour, !cfg.App.Dev)
	routerCfg := policy.NewRouterConfig(dbConn, policy.Options{
		Location:     loc,
		Sessions:     sessions,
		BusinessName: cfg.Billing.BusinessName,
		CacheTTL:     time.Duration(cfg.App.ProfileCacheTTL) * time.Second,
	})
	sessions.SetUserVerifier(routerCfg.Accounts.UserExists)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(dbConn, routerCfg, cfg.Server.AllowedOrigins),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (dev=%v, tz=%s)", cfg.Server.Port, cfg.App.Dev, loc)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// migrate applies the versioned SQL files on Postgres and falls back to
// AutoMigrate for SQLite.
func migrate(conn *gorm.DB, cfg *config.Config) error {
	if cfg.Database.Driver == "postgres" {
		return db.RunSQLMigrations(cfg.App.MigrationsDir, cfg.Database.URL())
	}
	return db.Migrate(conn)
}

func seed(conn *gorm.DB, cfg *config.Config) error {
	if err := db.Seed(conn); err != nil {
		return err
	}
	return db.SeedAdmin(conn, cfg.App.AdminEmail, cfg.App.AdminPassword)
}
