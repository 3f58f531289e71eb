package policy

import (
	"time"

	"github.com/diewo77/bespoke-tuition/auth"
	"github.com/diewo77/bespoke-tuition/internal/handlers"
	"github.com/diewo77/bespoke-tuition/internal/pdf"
	"github.com/diewo77/bespoke-tuition/internal/services"
	"gorm.io/gorm"
)

// Options carries what NewRouterConfig needs beyond the database.
type Options struct {
	Location     *time.Location
	Sessions     *auth.Sessions
	BusinessName string
	CacheTTL     time.Duration
	// Now defaults to time.Now.
	Now handlers.Clock
}

// RouterConfig holds configured handlers and middleware for the application.
type RouterConfig struct {
	AuthGate *AuthGate
	Sessions *auth.Sessions

	// Admin handlers
	AdminProfileHandler     *handlers.AdminProfileHandler
	AdminUserProfileHandler *handlers.AdminUserProfileHandler

	AuthHandler *handlers.AuthHandler

	// Business handlers
	ClientHandler   *handlers.ClientHandler
	StudentHandler  *handlers.StudentHandler
	LessonHandler   *handlers.LessonHandler
	ProductHandler  *handlers.ProductHandler
	TermHandler     *handlers.TermHandler
	AccountsHandler *handlers.AccountsHandler
	InvoiceHandler  *handlers.InvoiceHandler
	CustomerHandler *handlers.CustomerHandler

	// Services
	Accounts  *services.AccountService
	Generator *services.InvoiceGenerator
}

// NewRouterConfig wires the authorization gate, its policies, the services
// and the handlers.
func NewRouterConfig(db *gorm.DB, opts Options) *RouterConfig {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	authGate := NewAuthGate(db, opts.CacheTTL)

	// Customers only reach their own client record and invoices.
	owned := AdminOverride(AccountPolicy{}, authGate.IsAdmin)
	authGate.RegisterPolicy("client", owned)
	authGate.RegisterPolicy("invoice", owned)
	authGate.RegisterPolicy("me", owned)

	accounts := services.NewAccountService(db)
	clients := services.NewClientService(db, loc)
	lessons := services.NewLessonService(db, loc)
	catalog := services.NewCatalogService(db, loc)
	generator := services.NewInvoiceGenerator(db, loc)
	details := services.NewInvoiceDetailService(db, loc)

	return &RouterConfig{
		AuthGate:                authGate,
		Sessions:                opts.Sessions,
		AdminProfileHandler:     handlers.NewAdminProfileHandler(db, authGate.CacheResolver),
		AdminUserProfileHandler: handlers.NewAdminUserProfileHandler(db, authGate.CacheResolver),
		AuthHandler:             handlers.NewAuthHandler(accounts, opts.Sessions),
		ClientHandler:           handlers.NewClientHandler(clients, authGate, opts.Now),
		StudentHandler:          handlers.NewStudentHandler(clients, lessons, opts.Now),
		LessonHandler:           handlers.NewLessonHandler(lessons),
		ProductHandler:          handlers.NewProductHandler(catalog, opts.Now),
		TermHandler:             handlers.NewTermHandler(catalog),
		AccountsHandler:         handlers.NewAccountsHandler(services.NewAccountsService(db), generator, authGate, opts.Now),
		InvoiceHandler:          handlers.NewInvoiceHandler(details, services.NewLedger(db), clients, pdf.NewRenderer(opts.BusinessName), authGate),
		CustomerHandler:         handlers.NewCustomerHandler(clients, lessons, authGate),
		Accounts:                accounts,
		Generator:               generator,
	}
}
