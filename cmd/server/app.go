package main

import (
	"net/http"

	"github.com/diewo77/bespoke-tuition/gate"
	"github.com/diewo77/bespoke-tuition/httpx"
	"github.com/diewo77/bespoke-tuition/internal/handlers"
	"github.com/diewo77/bespoke-tuition/internal/policy"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	db        *gorm.DB
	routerCfg *policy.RouterConfig
	handler   http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, routerCfg *policy.RouterConfig, allowedOrigins []string) *App {
	app := &App{
		mux:       http.NewServeMux(),
		db:        db,
		routerCfg: routerCfg,
	}
	app.setupRoutes()

	var h http.Handler = app.mux
	h = handlers.Language(h)
	h = routerCfg.Sessions.Middleware(h)
	h = cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type"},
		AllowCredentials: true,
	})(h)
	h = middleware.Recoverer(h)
	h = middleware.Logger(h)
	h = middleware.RealIP(h)
	h = middleware.RequestID(h)
	app.handler = h
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// Public routes
	ah := a.routerCfg.AuthHandler
	a.mux.HandleFunc("GET /healthz", a.health)
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("POST /register", ah.Register)
	a.mux.HandleFunc("POST /logout", ah.Logout)

	// Clients
	ch := a.routerCfg.ClientHandler
	a.handle("GET /clients", "client", gate.ActionList, ch.List)
	a.handle("POST /clients", "client", gate.ActionCreate, ch.Create)
	a.handle("GET /clients/{id}", "client", gate.ActionView, ch.View)
	a.handle("PATCH /clients/{id}", "client", gate.ActionUpdate, ch.Update)
	a.handle("POST /clients/{id}/addresses", "client", gate.ActionCreate, ch.AddAddress)
	a.handle("POST /clients/{id}/contacts", "client", gate.ActionCreate, ch.AddContact)

	// Students and their lessons
	sh := a.routerCfg.StudentHandler
	a.handle("GET /students", "student", gate.ActionList, sh.List)
	a.handle("POST /students", "student", gate.ActionCreate, sh.Create)
	a.handle("GET /students/{id}", "student", gate.ActionView, sh.View)
	a.handle("POST /students/{id}/tuition-addresses", "student", gate.ActionCreate, sh.AddTuitionAddress)
	a.handle("GET /students/{id}/lessons", "student", gate.ActionView, sh.Lessons)
	a.handle("POST /students/{id}/lessons", "lesson", gate.ActionCreate, sh.BookLesson)

	lh := a.routerCfg.LessonHandler
	a.handle("PUT /lessons/{id}", "lesson", gate.ActionUpdate, lh.Update)
	a.handle("DELETE /lessons/{id}", "lesson", gate.ActionDelete, lh.Delete)

	// Reference data
	ph := a.routerCfg.ProductHandler
	a.handle("GET /products", "product", gate.ActionList, ph.List)
	a.handle("POST /products", "product", gate.ActionCreate, ph.Create)
	a.handle("GET /products/{id}", "product", gate.ActionList, ph.View)
	a.handle("PUT /products/{id}", "product", gate.ActionUpdate, ph.Update)
	a.handle("DELETE /products/{id}", "product", gate.ActionDelete, ph.Delete)

	th := a.routerCfg.TermHandler
	a.handle("GET /terms", "term", gate.ActionList, th.List)
	a.handle("POST /terms", "term", gate.ActionCreate, th.Create)
	a.handle("GET /terms/{id}", "term", gate.ActionList, th.View)
	a.handle("PUT /terms/{id}", "term", gate.ActionUpdate, th.Update)

	// Billing
	bh := a.routerCfg.AccountsHandler
	a.handle("GET /accounts", "accounts", gate.ActionList, bh.List)
	a.handle("GET /accounts/{id}", "accounts", gate.ActionView, bh.View)
	a.handle("POST /accounts/{id}/invoices", "accounts", gate.ActionGenerate, bh.Generate)

	ih := a.routerCfg.InvoiceHandler
	a.handle("GET /invoices", "invoice", gate.ActionList, ih.List)
	a.handle("GET /invoices/{id}", "invoice", gate.ActionView, ih.View)
	a.handle("GET /invoices/{id}/pdf", "invoice", gate.ActionView, ih.PDF)
	a.handle("PUT /invoices/{id}/payment", "invoice", gate.ActionPay, ih.Pay)

	// Self service for registered clients
	a.handle("GET /me", "me", gate.ActionView, a.routerCfg.CustomerHandler.Me)
	a.handle("GET /me/invoices", "invoice", gate.ActionList, ih.List)
	a.handle("GET /me/invoices/{id}", "invoice", gate.ActionView, ih.View)
	a.handle("GET /me/invoices/{id}/pdf", "invoice", gate.ActionView, ih.PDF)

	// Administration
	aph := a.routerCfg.AdminProfileHandler
	auph := a.routerCfg.AdminUserProfileHandler
	a.admin("GET /admin/profiles", aph.List)
	a.admin("POST /admin/profiles", aph.Create)
	a.admin("DELETE /admin/profiles/{id}", aph.Delete)
	a.admin("PUT /admin/profiles/{id}/permissions", aph.SavePermissions)
	a.admin("GET /admin/permissions", aph.ListPermissions)
	a.admin("GET /admin/users", auph.List)
	a.admin("PUT /admin/users/{id}/profile", auph.AssignProfile)
}

// handle registers a route behind a session and a profile permission.
func (a *App) handle(pattern, resourceType string, action gate.Action, h http.HandlerFunc) {
	a.mux.Handle(pattern, a.routerCfg.Sessions.RequireAuth(
		a.routerCfg.AuthGate.RequirePermission(resourceType, action)(h)))
}

func (a *App) admin(pattern string, h http.HandlerFunc) {
	a.mux.Handle(pattern, a.routerCfg.Sessions.RequireAuth(
		a.routerCfg.AuthGate.RequireAdmin()(h)))
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		httpx.JSONError(w, http.StatusServiceUnavailable, "database_unavailable", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
