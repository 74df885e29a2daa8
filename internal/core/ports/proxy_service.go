package ports

import (
	"context"
	"encoding/json"

	"github.com/apiforge/apiforge-server/internal/core/domain"
)

// ExecuteInput is the unvalidated, client-supplied description of an outbound call.
type ExecuteInput struct {
	URL     string
	Method  string
	Headers map[string]string
	Auth    *domain.AuthSpec
	Body    json.RawMessage
}

// ProxyService performs outbound calls on behalf of a user.
//
// Any HTTP response from the target, whatever its status, is a successful result.
// Validation failures return *domain.ValidationError; an unreachable target
// returns *domain.NetworkError.
type ProxyService interface {
	Execute(ctx context.Context, in ExecuteInput) (*domain.ProxyResult, error)
}
