package ports

import (
	"context"

	"github.com/apiforge/apiforge-server/internal/core/domain"
)

// CollectionRepository defines persistence for collections.
//
// List results are ordered newest first (created_at desc, id desc).
type CollectionRepository interface {
	Create(ctx context.Context, c *domain.Collection) (*domain.Collection, error)
	FindByID(ctx context.Context, id string) (*domain.Collection, error)
	// ListByOwner returns the owner's collections with RequestCount populated.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Collection, error)
	Rename(ctx context.Context, id, name string) (*domain.Collection, error)
	// Delete removes the collection and every request saved in it.
	Delete(ctx context.Context, id string) error
}
