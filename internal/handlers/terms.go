package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/bespoke-tuition/httpx"
	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/diewo77/bespoke-tuition/internal/services"
)

type TermHandler struct {
	catalog *services.CatalogService
}

func NewTermHandler(catalog *services.CatalogService) *TermHandler {
	return &TermHandler{catalog: catalog}
}

type termRequest struct {
	Name              string `json:"name" validate:"required,max=100"`
	TermStartDate     Date   `json:"term_start_date" validate:"required"`
	TermEndDate       Date   `json:"term_end_date" validate:"required"`
	HalfTermStartDate Date   `json:"half_term_start_date" validate:"required"`
	HalfTermEndDate   Date   `json:"half_term_end_date" validate:"required"`
}

func (t termRequest) term() models.Term {
	return models.Term{
		Name:              strings.TrimSpace(t.Name),
		TermStartDate:     t.TermStartDate.Time,
		TermEndDate:       t.TermEndDate.Time,
		HalfTermStartDate: t.HalfTermStartDate.Time,
		HalfTermEndDate:   t.HalfTermEndDate.Time,
	}
}

func (h *TermHandler) List(w http.ResponseWriter, r *http.Request) {
	terms, err := h.catalog.ListTerms(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, terms)
}

func (h *TermHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req termRequest
	if !decode(w, r, &req) {
		return
	}
	term := req.term()
	if err := h.catalog.CreateTerm(r.Context(), &term); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, term)
}

func (h *TermHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	term, err := h.catalog.GetTerm(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, term)
}

func (h *TermHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req termRequest
	if !decode(w, r, &req) {
		return
	}
	term, err := h.catalog.UpdateTerm(r.Context(), id, req.term())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, term)
}
