package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/bespoke-tuition/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// permissionSeeds are the resource:action pairs known to the application.
var permissionSeeds = []struct {
	ResourceType string
	Action       string
	Description  string
}{
	// Superadmin wildcard
	{"*", "*", "Full system access"},
	// People
	{"client", "list", "List clients"},
	{"client", "view", "View client details"},
	{"client", "create", "Create clients, addresses and contacts"},
	{"client", "update", "Edit clients"},
	{"student", "list", "List students"},
	{"student", "view", "View student details"},
	{"student", "create", "Create students and tuition addresses"},
	{"lesson", "create", "Book lessons"},
	{"lesson", "update", "Edit lessons"},
	{"lesson", "delete", "Delete lessons"},
	// Reference data
	{"product", "list", "List products"},
	{"product", "create", "Create products"},
	{"product", "update", "Edit products"},
	{"product", "delete", "Delete products"},
	{"term", "list", "List terms"},
	{"term", "create", "Create terms"},
	{"term", "update", "Edit terms"},
	// Billing
	{"accounts", "list", "View uninvoiced balances"},
	{"accounts", "view", "View a client's uninvoiced lessons"},
	{"accounts", "generate", "Generate invoices"},
	{"invoice", "list", "List invoices"},
	{"invoice", "view", "View invoice details"},
	{"invoice", "pay", "Record payments"},
	// Self service
	{"me", "view", "View own client record"},
	// Administration
	{"user", "list", "List users"},
	{"user", "update", "Assign profiles"},
	{"profile", "list", "List profiles"},
}

var profileSeeds = []struct {
	Name        string
	Description string
	Permissions []string // "resource:action" format
}{
	{
		Name:        models.ProfileAdmin,
		Description: "Office staff with full access",
		Permissions: []string{"*:*"},
	},
	{
		Name:        models.ProfileCustomer,
		Description: "Registered parent: own details and invoices only",
		Permissions: []string{"me:view", "invoice:list", "invoice:view"},
	},
}

// Seed initializes permissions and the built-in profiles. It is idempotent.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := SeedPermissions(tx); err != nil {
			return err
		}
		return SeedProfiles(tx)
	})
}

// SeedPermissions creates the core permissions for the application.
func SeedPermissions(db *gorm.DB) error {
	for _, p := range permissionSeeds {
		perm := models.Permission{ResourceType: p.ResourceType, Action: p.Action, Description: p.Description}
		if err := db.Where("resource_type = ? AND action = ?", p.ResourceType, p.Action).
			FirstOrCreate(&perm).Error; err != nil {
			return fmt.Errorf("seed permission %s:%s: %w", p.ResourceType, p.Action, err)
		}
	}
	return nil
}

// SeedProfiles creates the built-in profiles and resets their permissions.
func SeedProfiles(db *gorm.DB) error {
	for _, p := range profileSeeds {
		var profile models.Profile
		err := db.Where("name = ?", p.Name).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = models.Profile{Name: p.Name, Description: p.Description, IsSystem: true}
			err = db.Create(&profile).Error
		}
		if err != nil {
			return fmt.Errorf("seed profile %s: %w", p.Name, err)
		}

		perms := make([]models.Permission, 0, len(p.Permissions))
		for _, code := range p.Permissions {
			resource, action, _ := strings.Cut(code, ":")
			var perm models.Permission
			if err := db.Where("resource_type = ? AND action = ?", resource, action).First(&perm).Error; err != nil {
				return fmt.Errorf("seed profile %s: permission %s: %w", p.Name, code, err)
			}
			perms = append(perms, perm)
		}
		if err := db.Model(&profile).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("seed profile %s permissions: %w", p.Name, err)
		}
	}
	return nil
}

// SeedAdmin creates an admin user when none exists with that email.
func SeedAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	var admin models.Profile
	if err := db.Where("name = ?", models.ProfileAdmin).First(&admin).Error; err != nil {
		return fmt.Errorf("admin profile: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Create(&models.User{Email: email, Name: "Administrator", Password: string(hash), ProfileID: &admin.ID}).Error
}
