package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/apiforge/apiforge-server/internal/api/handler"
	"github.com/apiforge/apiforge-server/internal/core/domain"
)

type stubVerifier struct {
	tokens map[string]*domain.User
	seen   string
}

func (s *stubVerifier) VerifySession(_ context.Context, token string) (*domain.User, error) {
	s.seen = token
	if u, ok := s.tokens[token]; ok {
		return u, nil
	}
	return nil, domain.ErrInvalidSession
}

func newVerifier() *stubVerifier {
	return &stubVerifier{tokens: map[string]*domain.User{
		"good": {ID: "u1", Name: "alice", Email: "alice@example.com"},
	}}
}

func runAuth(t *testing.T, v SessionVerifier, req *http.Request) (*domain.User, error) {
	t.Helper()
	c := echo.New().NewContext(req, httptest.NewRecorder())

	var got *domain.User
	err := Auth(v)(func(c echo.Context) error {
		got, _ = c.Get(handler.ContextUser).(*domain.User)
		return c.NoContent(http.StatusOK)
	})(c)
	return got, err
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: handler.SessionCookie, Value: "good"})

	user, err := runAuth(t, newVerifier(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || user.ID != "u1" {
		t.Fatalf("user not injected: %+v", user)
	}
}

func TestAuthMiddleware_BearerFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer good")

	user, err := runAuth(t, newVerifier(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || user.ID != "u1" {
		t.Fatalf("user not injected: %+v", user)
	}
}

func TestAuthMiddleware_CookieWinsOverHeader(t *testing.T) {
	v := newVerifier()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: handler.SessionCookie, Value: "good"})
	req.Header.Set("Authorization", "Bearer other")

	if _, err := runAuth(t, v, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.seen != "good" {
		t.Fatalf("expected cookie token to be verified, got %q", v.seen)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token good")

	_, err := runAuth(t, newVerifier(), req)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: handler.SessionCookie, Value: "forged"})

	_, err := runAuth(t, newVerifier(), req)
	if !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}
