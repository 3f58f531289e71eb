package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/bespoke-tuition/auth"
	"github.com/diewo77/bespoke-tuition/httpx"
	"github.com/diewo77/bespoke-tuition/i18n"
	"github.com/diewo77/bespoke-tuition/internal/services"
)

type AuthHandler struct {
	accounts *services.AccountService
	sessions *auth.Sessions
}

func NewAuthHandler(accounts *services.AccountService, sessions *auth.Sessions) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions}
}

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decode(w, r, &req) {
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		httpx.JSONErrorMessage(w, http.StatusUnauthorized, "invalid_credentials",
			i18n.T(i18n.LangFromContext(r.Context()), "invalid_credentials"), nil)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.sessions.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

// Register lets an existing client create a login with one of their contact
// emails.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decode(w, r, &req) {
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.sessions.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}
