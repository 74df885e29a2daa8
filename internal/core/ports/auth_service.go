package ports

import (
	"context"

	"github.com/apiforge/apiforge-server/internal/core/domain"
)

// AuthService registers users, checks credentials and verifies session tokens.
type AuthService interface {
	Register(ctx context.Context, username, password, email string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	VerifySession(ctx context.Context, token string) (*domain.User, error)
}
