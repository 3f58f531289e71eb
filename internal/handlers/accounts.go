package handlers

import (
	"net/http"

	"github.com/diewo77/bespoke-tuition/gate"
	"github.com/diewo77/bespoke-tuition/httpx"
	"github.com/diewo77/bespoke-tuition/i18n"
	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/diewo77/bespoke-tuition/internal/services"
)

// AccountsHandler serves the billing overview and invoice generation.
type AccountsHandler struct {
	accounts  *services.AccountsService
	generator *services.InvoiceGenerator
	authz     Authorizer
	now       Clock
}

func NewAccountsHandler(accounts *services.AccountsService, generator *services.InvoiceGenerator, authz Authorizer, now Clock) *AccountsHandler {
	return &AccountsHandler{accounts: accounts, generator: generator, authz: authz, now: now}
}

func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.accounts.ClientsWithBalance(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

// View previews what the next invoice for the client would bill.
func (h *AccountsHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	summary, err := h.accounts.UninvoicedTotal(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

type generateResponse struct {
	Generated bool            `json:"generated"`
	Message   string          `json:"message,omitempty"`
	Invoice   *models.Invoice `json:"invoice,omitempty"`
	Lessons   int             `json:"lessons"`
}

// Generate raises an invoice for the client's uninvoiced lessons. When there
// is nothing to bill it answers 200 with generated=false.
func (h *AccountsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if !h.authz.HasRole(r.Context(), models.ProfileAdmin) {
		writeError(w, r, gate.ErrForbidden)
		return
	}
	if err := h.authz.Authorize(r.Context(), gate.ActionGenerate, "accounts", nil); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.generator.Generate(r.Context(), id, h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if out.NoOp() {
		httpx.JSON(w, http.StatusOK, generateResponse{
			Message: i18n.T(i18n.LangFromContext(r.Context()), "nothing_to_invoice"),
		})
		return
	}
	httpx.JSON(w, http.StatusCreated, generateResponse{
		Generated: true,
		Invoice:   out.Invoice,
		Lessons:   len(out.Lessons),
	})
}
