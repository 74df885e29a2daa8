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

type stubOwnership struct {
	collections map[string]*domain.Collection
}

func (s stubOwnership) ValidateOwnership(_ context.Context, collectionID, userID string) (*domain.Collection, error) {
	col, ok := s.collections[collectionID]
	if !ok {
		return nil, domain.ErrCollectionNotFound
	}
	if col.OwnerID != userID {
		return nil, domain.ErrForbidden
	}
	return col, nil
}

func ownerContext(collectionID string, user *domain.User) echo.Context {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(collectionID)
	if user != nil {
		c.Set(handler.ContextUser, user)
	}
	return c
}

func TestCollectionOwner(t *testing.T) {
	validator := stubOwnership{collections: map[string]*domain.Collection{
		"c1": {ID: "c1", Name: "Mine", OwnerID: "u1"},
	}}
	alice := &domain.User{ID: "u1"}
	bob := &domain.User{ID: "u2"}

	tests := []struct {
		name    string
		id      string
		user    *domain.User
		wantErr error
	}{
		{"owner passes", "c1", alice, nil},
		{"other user is forbidden", "c1", bob, domain.ErrForbidden},
		{"unknown collection", "c9", alice, domain.ErrCollectionNotFound},
		{"no session", "c1", nil, domain.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ownerContext(tt.id, tt.user)
			called := false
			err := CollectionOwner(validator)(func(c echo.Context) error {
				called = true
				if col, _ := c.Get(handler.ContextCollection).(*domain.Collection); col == nil || col.ID != tt.id {
					t.Fatalf("collection not injected")
				}
				return nil
			})(c)

			if tt.wantErr == nil {
				if err != nil || !called {
					t.Fatalf("expected next to run, err=%v called=%v", err, called)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if called {
				t.Fatalf("next should not run")
			}
		})
	}
}
