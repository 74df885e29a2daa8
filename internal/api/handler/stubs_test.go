package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/apiforge/apiforge-server/internal/core/domain"
	"github.com/apiforge/apiforge-server/internal/core/ports"
)

var testUser = &domain.User{ID: "u1", Name: "alice", Email: "alice@example.com"}

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password, email string) (string, *domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password, email string) (string, *domain.User, error) {
	return s.registerFn(ctx, username, password, email)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) VerifySession(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrInvalidSession
}

type stubCollectionService struct {
	ports.CollectionService
	createFn func(userID, name string) (*domain.Collection, error)
	listFn   func(userID string) ([]domain.Collection, error)
	getFn    func(userID, id string) (*domain.Collection, error)
	renameFn func(userID, id, name string) (*domain.Collection, error)
	deleteFn func(userID, id string) error
}

func (s *stubCollectionService) Create(_ context.Context, userID, name string) (*domain.Collection, error) {
	return s.createFn(userID, name)
}

func (s *stubCollectionService) List(_ context.Context, userID string) ([]domain.Collection, error) {
	return s.listFn(userID)
}

func (s *stubCollectionService) Get(_ context.Context, userID, id string) (*domain.Collection, error) {
	return s.getFn(userID, id)
}

func (s *stubCollectionService) Rename(_ context.Context, userID, id, name string) (*domain.Collection, error) {
	return s.renameFn(userID, id, name)
}

func (s *stubCollectionService) Delete(_ context.Context, userID, id string) error {
	return s.deleteFn(userID, id)
}

type stubRequestService struct {
	createFn func(userID, collectionID string, in ports.CreateRequestInput) (*domain.APIRequest, error)
	listFn   func(userID, collectionID string) ([]domain.APIRequest, error)
	getFn    func(userID, id string) (*domain.APIRequest, error)
	updateFn func(userID, id string, in ports.UpdateRequestInput) (*domain.APIRequest, error)
	deleteFn func(userID, id string) error
}

func (s *stubRequestService) Create(_ context.Context, userID, collectionID string, in ports.CreateRequestInput) (*domain.APIRequest, error) {
	return s.createFn(userID, collectionID, in)
}

func (s *stubRequestService) List(_ context.Context, userID, collectionID string) ([]domain.APIRequest, error) {
	return s.listFn(userID, collectionID)
}

func (s *stubRequestService) Get(_ context.Context, userID, id string) (*domain.APIRequest, error) {
	return s.getFn(userID, id)
}

func (s *stubRequestService) Update(_ context.Context, userID, id string, in ports.UpdateRequestInput) (*domain.APIRequest, error) {
	return s.updateFn(userID, id, in)
}

func (s *stubRequestService) Delete(_ context.Context, userID, id string) error {
	return s.deleteFn(userID, id)
}

type stubProxyService struct {
	executeFn func(in ports.ExecuteInput) (*domain.ProxyResult, error)
}

func (s *stubProxyService) Execute(_ context.Context, in ports.ExecuteInput) (*domain.ProxyResult, error) {
	return s.executeFn(in)
}

// newContext builds an echo context for method/path with an optional JSON body.
// user, when non-nil, is injected the way the Auth middleware does it.
func newContext(method, path, body string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(ContextUser, user)
	}
	return c, rec
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d (%s)", want, rec.Code, rec.Body.String())
	}
}
