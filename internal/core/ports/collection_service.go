package ports

import (
	"context"

	"github.com/apiforge/apiforge-server/internal/core/domain"
)

// OwnershipValidator confirms a collection exists and belongs to a user.
// It returns domain.ErrCollectionNotFound or domain.ErrForbidden otherwise.
type OwnershipValidator interface {
	ValidateOwnership(ctx context.Context, collectionID, userID string) (*domain.Collection, error)
}

// CollectionService defines use-case operations for collections.
// Every userID argument comes from the verified session.
type CollectionService interface {
	OwnershipValidator
	Create(ctx context.Context, userID, name string) (*domain.Collection, error)
	List(ctx context.Context, userID string) ([]domain.Collection, error)
	// Get returns the collection with its requests nested, newest first.
	Get(ctx context.Context, userID, collectionID string) (*domain.Collection, error)
	Rename(ctx context.Context, userID, collectionID, name string) (*domain.Collection, error)
	Delete(ctx context.Context, userID, collectionID string) error
}
