package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/bespoke-tuition/gate"
	"github.com/diewo77/bespoke-tuition/httpx"
	"github.com/diewo77/bespoke-tuition/internal/services"
)

type ClientHandler struct {
	clients *services.ClientService
	authz   Authorizer
	now     Clock
}

func NewClientHandler(clients *services.ClientService, authz Authorizer, now Clock) *ClientHandler {
	return &ClientHandler{clients: clients, authz: authz, now: now}
}

type createClientRequest struct {
	Forename string         `json:"forename" validate:"required,max=100"`
	Surname  string         `json:"surname" validate:"required,max=100"`
	Address  addressRequest `json:"address"`
	contactRequest
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	clients, err := h.clients.ListClients(r.Context(), activeOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if !decode(w, r, &req) {
		return
	}
	client, err := h.clients.CreateClient(r.Context(), services.ClientInput{
		Forename:      strings.TrimSpace(req.Forename),
		Surname:       strings.TrimSpace(req.Surname),
		Address:       req.Address.postal(),
		ContactNumber: strings.TrimSpace(req.ContactNumber),
		EmailAddress:  req.EmailAddress,
	}, h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	client, err := h.clients.GetClient(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.authz.Authorize(r.Context(), gate.ActionView, "client", client); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

type clientFlagsRequest struct {
	Active         *bool `json:"active"`
	ContractSigned *bool `json:"contract_signed"`
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req clientFlagsRequest
	if !decode(w, r, &req) {
		return
	}
	client, err := h.clients.SetFlags(r.Context(), id, req.Active, req.ContractSigned)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req addressRequest
	if !decode(w, r, &req) {
		return
	}
	addr, err := h.clients.AddAddress(r.Context(), id, req.postal(), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, addr)
}

func (h *ClientHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req contactRequest
	if !decode(w, r, &req) {
		return
	}
	contact, err := h.clients.AddContact(r.Context(), id, strings.TrimSpace(req.ContactNumber), req.EmailAddress)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, contact)
}
