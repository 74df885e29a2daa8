package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/apiforge/apiforge-server/internal/core/domain"
	"github.com/apiforge/apiforge-server/internal/core/ports"
)

// RequestService implements ports.RequestService. Requests addressed by their own
// id are authorized through the ownership of their parent collection.
type RequestService struct {
	owner    ports.OwnershipValidator
	requests ports.RequestRepository
	log      zerolog.Logger
}

func NewRequestService(owner ports.OwnershipValidator, requests ports.RequestRepository, log zerolog.Logger) *RequestService {
	return &RequestService{owner: owner, requests: requests, log: log}
}

func (s *RequestService) Create(ctx context.Context, userID, collectionID string, in ports.CreateRequestInput) (*domain.APIRequest, error) {
	if _, err := s.owner.ValidateOwnership(ctx, collectionID, userID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	url := strings.TrimSpace(in.URL)
	if name == "" || url == "" || strings.TrimSpace(in.Method) == "" {
		return nil, domain.Invalid("Name, url and method are required")
	}
	method, err := savedMethod(in.Method)
	if err != nil {
		return nil, err
	}
	auth, err := savedAuth(in.Auth)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.requests.Create(ctx, &domain.APIRequest{
		Name:         name,
		URL:          url,
		Method:       method,
		Headers:      in.Headers,
		Auth:         auth,
		Body:         savedBody(in.Body),
		CollectionID: collectionID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("request_id", created.ID).Str("collection_id", collectionID).Msg("request saved")
	return created, nil
}

func (s *RequestService) List(ctx context.Context, userID, collectionID string) ([]domain.APIRequest, error) {
	if _, err := s.owner.ValidateOwnership(ctx, collectionID, userID); err != nil {
		return nil, err
	}
	return s.requests.ListByCollection(ctx, collectionID)
}

func (s *RequestService) Get(ctx context.Context, userID, requestID string) (*domain.APIRequest, error) {
	return s.authorized(ctx, userID, requestID)
}

// Update applies a merge-patch; see ports.UpdateRequestInput.
func (s *RequestService) Update(ctx context.Context, userID, requestID string, in ports.UpdateRequestInput) (*domain.APIRequest, error) {
	current, err := s.authorized(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}

	next := *current
	if in.Name.Present() {
		if next.Name = strings.TrimSpace(*in.Name.Value); next.Name == "" {
			return nil, domain.Invalid("Name cannot be empty")
		}
	}
	if in.URL.Present() {
		if next.URL = strings.TrimSpace(*in.URL.Value); next.URL == "" {
			return nil, domain.Invalid("URL cannot be empty")
		}
	}
	if in.Method.Present() {
		if next.Method, err = savedMethod(*in.Method.Value); err != nil {
			return nil, err
		}
	}
	switch {
	case in.Headers.Cleared():
		next.Headers = nil
	case in.Headers.Present():
		next.Headers = *in.Headers.Value
	}
	switch {
	case in.Auth.Cleared():
		next.Auth = nil
	case in.Auth.Present():
		if next.Auth, err = savedAuth(in.Auth.Value); err != nil {
			return nil, err
		}
	}
	switch {
	case in.Body.Cleared():
		next.Body = nil
	case in.Body.Present():
		next.Body = savedBody(*in.Body.Value)
	}
	next.UpdatedAt = time.Now().UTC()

	return s.requests.Update(ctx, &next)
}

func (s *RequestService) Delete(ctx context.Context, userID, requestID string) error {
	if _, err := s.authorized(ctx, userID, requestID); err != nil {
		return err
	}
	if err := s.requests.Delete(ctx, requestID); err != nil {
		return err
	}
	s.log.Info().Str("request_id", requestID).Str("user_id", userID).Msg("request deleted")
	return nil
}

// authorized loads the request and checks that userID owns its collection.
func (s *RequestService) authorized(ctx context.Context, userID, requestID string) (*domain.APIRequest, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if _, err := s.owner.ValidateOwnership(ctx, req.CollectionID, userID); err != nil {
		return nil, err
	}
	return req, nil
}

func savedMethod(m string) (string, error) {
	method, ok := domain.NormalizeMethod(m)
	if !ok {
		return "", domain.Invalid("Invalid HTTP method. Must be one of: %s", strings.Join(domain.AllowedMethods, ", "))
	}
	return method, nil
}

// savedAuth accepts incomplete credentials so drafts can be saved, but rejects unknown tags.
func savedAuth(spec *domain.AuthSpec) (*domain.AuthSpec, error) {
	if spec == nil {
		return nil, nil
	}
	variant, err := spec.Variant()
	if err != nil {
		return nil, err
	}
	canonical := domain.SpecOf(variant)
	return &canonical, nil
}

func savedBody(raw json.RawMessage) json.RawMessage {
	if !domain.HasBody(raw) {
		return nil
	}
	return raw
}
