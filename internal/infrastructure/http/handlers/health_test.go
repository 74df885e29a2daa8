package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type fakePinger struct {
	name string
	err  error
}

func (p fakePinger) Name() string                 { return p.name }
func (p fakePinger) Ping(_ context.Context) error { return p.err }

func serve(t *testing.T, handler echo.HandlerFunc) (*httptest.ResponseRecorder, readinessResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	var body readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec, body
}

func TestLiveness(t *testing.T) {
	h := NewHealthHandler()
	rec, body := serve(t, h.Liveness)
	if rec.Code != http.StatusOK || body.Status != "ok" || body.Timestamp == "" {
		t.Fatalf("unexpected liveness response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestReadiness_AllHealthy(t *testing.T) {
	h := NewHealthHandler(fakePinger{name: "mongo"}, fakePinger{name: "redis"})
	rec, body := serve(t, h.Readiness)
	if rec.Code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("expected ready, got %d %s", rec.Code, rec.Body.String())
	}
	if body.Dependencies["mongo"].Status != "ok" || body.Dependencies["redis"].Status != "ok" {
		t.Fatalf("unexpected dependencies: %+v", body.Dependencies)
	}
}

func TestReadiness_Degraded(t *testing.T) {
	h := NewHealthHandler(fakePinger{name: "postgres"}, fakePinger{name: "redis", err: errors.New("dial tcp: refused")})
	rec, body := serve(t, h.Readiness)
	if rec.Code != http.StatusServiceUnavailable || body.Status != "degraded" {
		t.Fatalf("expected 503 degraded, got %d %s", rec.Code, rec.Body.String())
	}
	if got := body.Dependencies["redis"]; got.Status != "unhealthy" || got.Error == "" {
		t.Fatalf("unexpected redis status: %+v", got)
	}
}
