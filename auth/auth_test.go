package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessions(now time.Time) *Sessions {
	s := NewSessions("test-secret", time.Hour, false)
	s.now = func() time.Time { return now }
	return s
}

func sessionCookie(t *testing.T, s *Sessions, uid uint) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	s.CreateSession(rec, uid)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSessionRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	s := newTestSessions(now)
	c := sessionCookie(t, s, 7)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	uid, ok := s.ParseSession(r)
	require.True(t, ok)
	assert.Equal(t, uint(7), uid)

	s.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, ok = s.ParseSession(r)
	assert.False(t, ok, "expired session must be rejected")
}

func TestSessionRejectsTamperedCookie(t *testing.T) {
	s := newTestSessions(time.Now())
	c := sessionCookie(t, s, 7)
	c.Value = "8" + c.Value[1:]

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	_, ok := s.ParseSession(r)
	assert.False(t, ok)

	other := NewSessions("other-secret", time.Hour, false)
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(sessionCookie(t, s, 7))
	_, ok = other.ParseSession(r)
	assert.False(t, ok, "cookie signed with another secret must be rejected")
}

func TestRequireAuth(t *testing.T) {
	s := newTestSessions(time.Now())
	s.SetUserVerifier(func(_ context.Context, uid uint) bool { return uid == 7 })
	protected := s.Middleware(s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := UserIDFromContext(r.Context())
		assert.Equal(t, uint(7), uid)
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	r := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.AddCookie(sessionCookie(t, s, 7))
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	r = httptest.NewRequest(http.MethodGet, "/me", nil)
	r.AddCookie(sessionCookie(t, s, 9))
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "unknown users are rejected by the verifier")
}
