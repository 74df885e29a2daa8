package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/apiforge/apiforge-server/internal/core/domain"
	"github.com/apiforge/apiforge-server/internal/core/ports"
)

// ExecuteHandler proxies an arbitrary HTTP call for the signed-in user.
// Unlike the other handlers it renders its own failure envelopes.
type ExecuteHandler struct {
	service ports.ProxyService
	log     zerolog.Logger
}

func NewExecuteHandler(service ports.ProxyService, log zerolog.Logger) *ExecuteHandler {
	return &ExecuteHandler{service: service, log: log}
}

// Execute handles POST /execute.
//
// Every answer from the target, 4xx and 5xx included, is returned with 200 and
// success=true; the target's status is carried in statusCode.
//
// @Summary      Execute an HTTP request through the server
// @Tags         execute
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      executeRequest  true  "Outbound request"
// @Success      200   {object}  executeResponse
// @Failure      400   {object}  executeFailure
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  executeFailure
// @Failure      503   {object}  executeFailure
// @Router       /execute [post]
func (h *ExecuteHandler) Execute(c echo.Context) error {
	if _, err := currentUser(c); err != nil {
		return err
	}

	var req executeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, executeFailure{Message: "Invalid request body"})
	}

	res, err := h.service.Execute(c.Request().Context(), toExecuteInput(req))
	if err != nil {
		return h.failure(c, err)
	}
	return c.JSON(http.StatusOK, toExecuteResponse(res))
}

func (h *ExecuteHandler) failure(c echo.Context, err error) error {
	var (
		verr *domain.ValidationError
		nerr *domain.NetworkError
	)
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, executeFailure{Message: verr.Message})
	case errors.As(err, &nerr):
		out := executeFailure{Message: "Network error: Unable to reach the server", Code: nerr.Code}
		if nerr.Err != nil {
			out.Error = nerr.Err.Error()
		}
		return c.JSON(http.StatusServiceUnavailable, out)
	}

	h.log.Error().
		Err(err).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("execute failed")
	return c.JSON(http.StatusInternalServerError, executeFailure{Message: "Internal server error while executing request"})
}
