package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/apiforge/apiforge-server/internal/core/domain"
)

// Context keys set by the middleware package.
const (
	ContextUser       = "user"
	ContextCollection = "collection"
)

// currentUser returns the user injected by the Auth middleware. A missing user
// means the route was wired without it, which is reported as unauthenticated.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(ContextUser).(*domain.User)
	if !ok || user == nil || user.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}
