package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/apiforge/apiforge-server/internal/api/handler"
	"github.com/apiforge/apiforge-server/internal/core/domain"
)

// SessionVerifier resolves a session token to its user.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (*domain.User, error)
}

// Auth reads the session token from the "token" cookie, falling back to a
// bearer Authorization header, and injects the verified user into context.
func Auth(verifier SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := sessionToken(c)
			if token == "" {
				return domain.ErrUnauthenticated
			}

			user, err := verifier.VerifySession(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(handler.ContextUser, user)
			return next(c)
		}
	}
}

func sessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(handler.SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	scheme, token, ok := strings.Cut(c.Request().Header.Get(echo.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
