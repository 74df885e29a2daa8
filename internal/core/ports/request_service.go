package ports

import (
	"context"
	"encoding/json"

	"github.com/apiforge/apiforge-server/internal/core/domain"
)

// CreateRequestInput carries the fields of a new saved request.
type CreateRequestInput struct {
	Name    string
	URL     string
	Method  string
	Headers map[string]string
	Auth    *domain.AuthSpec
	Body    json.RawMessage
}

// Patch is one field of a partial update. Set reports whether the caller sent the
// field at all; Set with a nil Value means an explicit null.
type Patch[T any] struct {
	Set   bool
	Value *T
}

// Present reports whether the field was sent with a non-null value.
func (p Patch[T]) Present() bool { return p.Set && p.Value != nil }

// Cleared reports whether the field was sent as an explicit null.
func (p Patch[T]) Cleared() bool { return p.Set && p.Value == nil }

// UpdateRequestInput is a merge-patch: unset fields keep their stored value.
// A null name, url or method is treated as unset; a null headers,
// authentication or body clears the stored value.
type UpdateRequestInput struct {
	Name    Patch[string]
	URL     Patch[string]
	Method  Patch[string]
	Headers Patch[map[string]string]
	Auth    Patch[domain.AuthSpec]
	Body    Patch[json.RawMessage]
}

// RequestService defines use-case operations for saved requests.
type RequestService interface {
	Create(ctx context.Context, userID, collectionID string, in CreateRequestInput) (*domain.APIRequest, error)
	List(ctx context.Context, userID, collectionID string) ([]domain.APIRequest, error)
	Get(ctx context.Context, userID, requestID string) (*domain.APIRequest, error)
	Update(ctx context.Context, userID, requestID string, in UpdateRequestInput) (*domain.APIRequest, error)
	Delete(ctx context.Context, userID, requestID string) error
}
