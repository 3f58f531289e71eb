package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusConflict, "invoice_number_taken", map[string]string{"invoice_number": "SMI05032024143000"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"invoice_number_taken","details":{"invoice_number":"SMI05032024143000"}}`, rec.Body.String())
}

func TestJSONNilPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, nil)
	assert.Equal(t, "null", rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Status int `json:"status"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":5}`))
	var p payload
	require.NoError(t, DecodeJSON(r, &p))
	assert.Equal(t, 5, p.Status)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":5,"total_amount":"1"}`))
	assert.True(t, errors.Is(DecodeJSON(r, &p), ErrBadJSON), "unknown fields are rejected")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":5}{"status":1}`))
	assert.True(t, errors.Is(DecodeJSON(r, &p), ErrBadJSON), "trailing documents are rejected")
}

func TestPathID(t *testing.T) {
	mux := http.NewServeMux()
	var got uint
	var ok bool
	mux.HandleFunc("GET /invoices/{id}", func(w http.ResponseWriter, r *http.Request) {
		got, ok = PathID(r, "id")
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/invoices/42", nil))
	assert.True(t, ok)
	assert.Equal(t, uint(42), got)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/invoices/abc", nil))
	assert.False(t, ok)
}
