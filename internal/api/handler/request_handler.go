package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/apiforge/apiforge-server/internal/core/domain"
	"github.com/apiforge/apiforge-server/internal/core/ports"
)

// RequestHandler handles HTTP requests for saved API requests.
type RequestHandler struct {
	service ports.RequestService
}

func NewRequestHandler(service ports.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// Create handles POST /collections/:id/requests.
//
// @Summary      Save a request in a collection
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string             true  "Collection ID"
// @Param        body  body      createRequestBody  true  "Request definition"
// @Success      201   {object}  apiResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /collections/{id}/requests [post]
func (h *RequestHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var body createRequestBody
	if err := c.Bind(&body); err != nil {
		return domain.Invalid("Invalid request body")
	}

	saved, err := h.service.Create(c.Request().Context(), user.ID, c.Param("id"), toCreateRequestInput(body))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, apiResponse{Message: "Request created successfully", API: saved})
}

// List handles GET /collections/:id/requests.
//
// @Summary      List the requests saved in a collection
// @Tags         requests
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Collection ID"
// @Success      200  {object}  apiListResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /collections/{id}/requests [get]
func (h *RequestHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.service.List(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	if list == nil {
		list = []domain.APIRequest{}
	}
	return c.JSON(http.StatusOK, apiListResponse{Message: "Requests retrieved successfully", API: list, Count: len(list)})
}

// Get handles GET /requests/:requestId.
//
// @Summary      Get a saved request
// @Tags         requests
// @Produce      json
// @Security     CookieAuth
// @Param        requestId  path      string  true  "Request ID"
// @Success      200        {object}  apiResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /requests/{requestId} [get]
func (h *RequestHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	saved, err := h.service.Get(c.Request().Context(), user.ID, c.Param("requestId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apiResponse{Message: "Request retrieved successfully", API: saved})
}

// Update handles PUT /requests/:requestId as a merge-patch: only the fields
// present in the body change, and a null headers, authentication or body clears it.
//
// @Summary      Update a saved request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        requestId  path      string             true  "Request ID"
// @Param        body       body      updateRequestBody  true  "Fields to change"
// @Success      200        {object}  apiUpdatedResponse
// @Failure      400        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /requests/{requestId} [put]
func (h *RequestHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return domain.Invalid("Invalid request body")
	}
	in, err := toUpdateRequestInput(raw)
	if err != nil {
		return err
	}

	updated, err := h.service.Update(c.Request().Context(), user.ID, c.Param("requestId"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apiUpdatedResponse{Message: "Request updated successfully", UpdatedAPI: updated})
}

// Delete handles DELETE /requests/:requestId.
//
// @Summary      Delete a saved request
// @Tags         requests
// @Produce      json
// @Security     CookieAuth
// @Param        requestId  path      string  true  "Request ID"
// @Success      200        {object}  messageResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /requests/{requestId} [delete]
func (h *RequestHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), user.ID, c.Param("requestId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Request deleted successfully"})
}
