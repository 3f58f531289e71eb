package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/diewo77/bespoke-tuition/gate"
	"github.com/diewo77/bespoke-tuition/httpx"
	"github.com/diewo77/bespoke-tuition/i18n"
	"github.com/diewo77/bespoke-tuition/internal/services"
	"github.com/diewo77/bespoke-tuition/validation"
)

// Authorizer is the slice of the authorization gate the handlers need.
type Authorizer interface {
	Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error
	HasRole(ctx context.Context, roles ...string) bool
}

// Clock returns the current instant; tests replace it.
type Clock func() time.Time

// Language negotiates the response language from Accept-Language.
func Language(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

// violationsBody is the 422 payload: one entry per failure plus messages
// grouped by field for form redisplay.
type violationsBody struct {
	Violations validation.Violations `json:"violations"`
	Fields     map[string][]string   `json:"fields"`
}

func writeViolations(w http.ResponseWriter, r *http.Request, v validation.Violations) {
	lang := i18n.LangFromContext(r.Context())
	httpx.JSONErrorMessage(w, http.StatusUnprocessableEntity, "validation_failed",
		i18n.T(lang, "invalid"), violationsBody{Violations: v, Fields: v.Messages(lang)})
}

// writeError maps service and gate errors onto HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *services.ValidationError
	var ie *services.IntegrityError
	switch {
	case errors.As(err, &ve):
		writeViolations(w, r, ve.Violations)
	case errors.As(err, &ie):
		httpx.JSONErrorMessage(w, http.StatusConflict, "integrity_error", ie.Error(), nil)
	case services.IsNotFound(err):
		httpx.JSONErrorMessage(w, http.StatusNotFound, "not_found",
			i18n.T(i18n.LangFromContext(r.Context()), "not_found"), nil)
	case errors.Is(err, gate.ErrUnauthorized):
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, gate.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, httpx.ErrBadJSON):
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", err.Error(), nil)
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// decode reads the body into dst and runs its struct tags. It writes the
// error response itself and reports whether the handler may continue.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		writeError(w, r, err)
		return false
	}
	if v := validation.Struct(dst); !v.Empty() {
		writeViolations(w, r, v)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, ok := httpx.PathID(r, name)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
	}
	return id, ok
}
