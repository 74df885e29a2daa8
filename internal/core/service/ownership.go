package service

import (
	"context"

	"github.com/apiforge/apiforge-server/internal/core/domain"
	"github.com/apiforge/apiforge-server/internal/core/ports"
)

// Ownership is the read-then-compare check guarding every collection-scoped operation.
type Ownership struct {
	collections ports.CollectionRepository
}

func NewOwnership(collections ports.CollectionRepository) *Ownership {
	return &Ownership{collections: collections}
}

// ValidateOwnership returns the collection when userID owns it,
// domain.ErrCollectionNotFound when it does not exist and domain.ErrForbidden otherwise.
func (o *Ownership) ValidateOwnership(ctx context.Context, collectionID, userID string) (*domain.Collection, error) {
	c, err := o.collections.FindByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !c.OwnedBy(userID) {
		return nil, domain.ErrForbidden
	}
	return c, nil
}
