package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/bespoke-tuition/auth"
	"github.com/diewo77/bespoke-tuition/gate"
	"github.com/diewo77/bespoke-tuition/httpx"
	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/diewo77/bespoke-tuition/internal/pdf"
	"github.com/diewo77/bespoke-tuition/internal/services"
	"github.com/shopspring/decimal"
)

type InvoiceHandler struct {
	details  *services.InvoiceDetailService
	ledger   *services.Ledger
	clients  *services.ClientService
	renderer *pdf.Renderer
	authz    Authorizer
}

func NewInvoiceHandler(details *services.InvoiceDetailService, ledger *services.Ledger, clients *services.ClientService, renderer *pdf.Renderer, authz Authorizer) *InvoiceHandler {
	return &InvoiceHandler{details: details, ledger: ledger, clients: clients, renderer: renderer, authz: authz}
}

// List returns every invoice to admins, optionally filtered by ?client_id,
// and only their own invoices to customers.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.authz.Authorize(ctx, gate.ActionList, "invoice", nil); err != nil {
		writeError(w, r, err)
		return
	}

	var clientID *uint
	if h.authz.HasRole(ctx, models.ProfileAdmin) {
		if raw := r.URL.Query().Get("client_id"); raw != "" {
			n, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				httpx.JSONError(w, http.StatusBadRequest, "invalid_client_id", nil)
				return
			}
			id := uint(n)
			clientID = &id
		}
	} else {
		uid, _ := auth.UserIDFromContext(ctx)
		client, err := h.clients.ClientForUser(ctx, uid)
		if err != nil {
			writeError(w, r, err)
			return
		}
		clientID = &client.ID
	}

	invoices, err := h.details.List(ctx, clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

// load fetches the invoice and checks the caller may perform action on it.
func (h *InvoiceHandler) load(w http.ResponseWriter, r *http.Request, action gate.Action) (*models.Invoice, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return nil, false
	}
	inv, err := h.details.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	if err := h.authz.Authorize(r.Context(), action, "invoice", inv); err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return inv, true
}

func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r, gate.ActionView)
	if !ok {
		return
	}
	detail, err := h.details.Detail(r.Context(), inv.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r, gate.ActionView)
	if !ok {
		return
	}
	detail, err := h.details.Detail(r.Context(), inv.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := h.renderer.Invoice(detail)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+inv.InvoiceNumber+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

type paymentRequest struct {
	Status        models.InvoiceStatus `json:"status"`
	AmountPaid    decimal.Decimal      `json:"amount_paid"`
	TotalAmount   *decimal.Decimal     `json:"total_amount"`
	InvoiceNumber *string              `json:"invoice_number"`
}

// Pay records a payment. Admin only.
func (h *InvoiceHandler) Pay(w http.ResponseWriter, r *http.Request) {
	if !h.authz.HasRole(r.Context(), models.ProfileAdmin) {
		writeError(w, r, gate.ErrForbidden)
		return
	}
	inv, ok := h.load(w, r, gate.ActionPay)
	if !ok {
		return
	}
	var req paymentRequest
	if !decode(w, r, &req) {
		return
	}
	updated, err := h.ledger.ApplyPaymentUpdate(r.Context(), inv.ID, services.PaymentUpdate{
		Status:        req.Status,
		AmountPaid:    req.AmountPaid,
		TotalAmount:   req.TotalAmount,
		InvoiceNumber: req.InvoiceNumber,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}
