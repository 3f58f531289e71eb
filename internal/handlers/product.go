package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/bespoke-tuition/httpx"
	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/diewo77/bespoke-tuition/internal/services"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	catalog *services.CatalogService
	now     Clock
}

func NewProductHandler(catalog *services.CatalogService, now Clock) *ProductHandler {
	return &ProductHandler{catalog: catalog, now: now}
}

type productRequest struct {
	Name              string          `json:"name" validate:"required,max=100"`
	Price             decimal.Decimal `json:"price"`
	EffectiveFromDate Date            `json:"effective_from_date"`
	EffectiveToDate   *Date           `json:"effective_to_date"`
}

func (p productRequest) product() models.Product {
	return models.Product{
		Name:              strings.TrimSpace(p.Name),
		Price:             p.Price,
		EffectiveFromDate: p.EffectiveFromDate.Time,
		EffectiveToDate:   p.EffectiveToDate.ptr(),
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decode(w, r, &req) {
		return
	}
	product := req.product()
	if err := h.catalog.CreateProduct(r.Context(), &product, h.now()); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req productRequest
	if !decode(w, r, &req) {
		return
	}
	product, err := h.catalog.UpdateProduct(r.Context(), id, req.product())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Delete fails with 409 while lessons still reference the product.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
