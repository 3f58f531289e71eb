package handlers

import (
	"net/http"

	"github.com/diewo77/bespoke-tuition/auth"
	"github.com/diewo77/bespoke-tuition/gate"
	"github.com/diewo77/bespoke-tuition/httpx"
	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/diewo77/bespoke-tuition/internal/services"
)

// CustomerHandler serves a registered client's own information.
type CustomerHandler struct {
	clients *services.ClientService
	lessons *services.LessonService
	authz   Authorizer
}

func NewCustomerHandler(clients *services.ClientService, lessons *services.LessonService, authz Authorizer) *CustomerHandler {
	return &CustomerHandler{clients: clients, lessons: lessons, authz: authz}
}

type meResponse struct {
	Client  *models.Client  `json:"client"`
	Lessons []models.Lesson `json:"lessons"`
}

func (h *CustomerHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)
	client, err := h.clients.ClientForUser(ctx, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.authz.Authorize(ctx, gate.ActionView, "me", client); err != nil {
		writeError(w, r, err)
		return
	}
	lessons, err := h.lessons.ListForClient(ctx, client.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, meResponse{Client: client, Lessons: lessons})
}
