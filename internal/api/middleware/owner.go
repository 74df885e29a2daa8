package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/apiforge/apiforge-server/internal/api/handler"
	"github.com/apiforge/apiforge-server/internal/core/domain"
	"github.com/apiforge/apiforge-server/internal/core/ports"
)

// CollectionOwner rejects the request unless the collection named by the :id
// path parameter belongs to the signed-in user. It must run after Auth.
func CollectionOwner(validator ports.OwnershipValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := c.Get(handler.ContextUser).(*domain.User)
			if !ok || user == nil {
				return domain.ErrUnauthenticated
			}

			col, err := validator.ValidateOwnership(c.Request().Context(), c.Param("id"), user.ID)
			if err != nil {
				return err
			}

			c.Set(handler.ContextCollection, col)
			return next(c)
		}
	}
}
