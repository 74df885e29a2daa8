package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/apiforge/apiforge-server/internal/api/metrics"
	"github.com/apiforge/apiforge-server/internal/core/domain"
	"github.com/apiforge/apiforge-server/internal/core/ports"
)

// CollectionService implements ports.CollectionService.
type CollectionService struct {
	*Ownership
	collections ports.CollectionRepository
	requests    ports.RequestRepository
	log         zerolog.Logger
}

func NewCollectionService(collections ports.CollectionRepository, requests ports.RequestRepository, log zerolog.Logger) *CollectionService {
	return &CollectionService{
		Ownership:   NewOwnership(collections),
		collections: collections,
		requests:    requests,
		log:         log,
	}
}

func (s *CollectionService) Create(ctx context.Context, userID, name string) (*domain.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("Name is required")
	}

	now := time.Now().UTC()
	created, err := s.collections.Create(ctx, &domain.Collection{
		Name:      name,
		OwnerID:   userID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	metrics.CollectionsCreatedTotal.Inc()
	s.log.Info().Str("collection_id", created.ID).Str("user_id", userID).Msg("collection created")
	return created, nil
}

func (s *CollectionService) List(ctx context.Context, userID string) ([]domain.Collection, error) {
	return s.collections.ListByOwner(ctx, userID)
}

func (s *CollectionService) Get(ctx context.Context, userID, collectionID string) (*domain.Collection, error) {
	c, err := s.ValidateOwnership(ctx, collectionID, userID)
	if err != nil {
		return nil, err
	}

	reqs, err := s.requests.ListByCollection(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	detail := *c
	detail.Requests = reqs
	detail.RequestCount = int64(len(reqs))
	return &detail, nil
}

func (s *CollectionService) Rename(ctx context.Context, userID, collectionID, name string) (*domain.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("Name is required")
	}
	if _, err := s.ValidateOwnership(ctx, collectionID, userID); err != nil {
		return nil, err
	}
	return s.collections.Rename(ctx, collectionID, name)
}

func (s *CollectionService) Delete(ctx context.Context, userID, collectionID string) error {
	if _, err := s.ValidateOwnership(ctx, collectionID, userID); err != nil {
		return err
	}
	if err := s.collections.Delete(ctx, collectionID); err != nil {
		return err
	}
	s.log.Info().Str("collection_id", collectionID).Str("user_id", userID).Msg("collection deleted")
	return nil
}
