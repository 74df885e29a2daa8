package ports

import (
	"context"

	"github.com/apiforge/apiforge-server/internal/core/domain"
)

// RequestRepository defines persistence for saved API requests.
type RequestRepository interface {
	Create(ctx context.Context, r *domain.APIRequest) (*domain.APIRequest, error)
	FindByID(ctx context.Context, id string) (*domain.APIRequest, error)
	// ListByCollection returns requests newest first.
	ListByCollection(ctx context.Context, collectionID string) ([]domain.APIRequest, error)
	// Update replaces every mutable field of r.
	Update(ctx context.Context, r *domain.APIRequest) (*domain.APIRequest, error)
	Delete(ctx context.Context, id string) error
}
