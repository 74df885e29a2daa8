package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/apiforge/apiforge-server/internal/core/domain"
	"github.com/apiforge/apiforge-server/internal/core/ports"
)

// CollectionHandler handles HTTP requests for collections.
type CollectionHandler struct {
	service ports.CollectionService
}

func NewCollectionHandler(service ports.CollectionService) *CollectionHandler {
	return &CollectionHandler{service: service}
}

// Create handles POST /collections.
//
// @Summary      Create a collection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      collectionRequest  true  "Collection name"
// @Success      201   {object}  collectionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /collections [post]
func (h *CollectionHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	req, err := bindCollection(c)
	if err != nil {
		return err
	}

	col, err := h.service.Create(c.Request().Context(), user.ID, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, collectionResponse{Message: "Collection created successfully", Collection: col})
}

// List handles GET /collections.
//
// @Summary      List the caller's collections
// @Tags         collections
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  collectionListResponse
// @Failure      401  {object}  errorResponse
// @Router       /collections [get]
func (h *CollectionHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	cols, err := h.service.List(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	if cols == nil {
		cols = []domain.Collection{}
	}
	return c.JSON(http.StatusOK, collectionListResponse{
		Message:     "Collections retrieved successfully",
		Collections: cols,
		Count:       len(cols),
	})
}

// Get handles GET /collections/:id.
//
// @Summary      Get a collection with its saved requests
// @Tags         collections
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Collection ID"
// @Success      200  {object}  collectionDetailResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /collections/{id} [get]
func (h *CollectionHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	col, err := h.service.Get(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, collectionDetailResponse{
		Message:    "Collection retrieved successfully",
		Collection: toCollectionDetail(col),
	})
}

// Update handles PUT /collections/:id. Only the name can change.
//
// @Summary      Rename a collection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string             true  "Collection ID"
// @Param        body  body      collectionRequest  true  "New name"
// @Success      200   {object}  collectionResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /collections/{id} [put]
func (h *CollectionHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	req, err := bindCollection(c)
	if err != nil {
		return err
	}

	col, err := h.service.Rename(c.Request().Context(), user.ID, c.Param("id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, collectionResponse{Message: "Collection updated successfully", Collection: col})
}

// Delete handles DELETE /collections/:id. Saved requests in the collection go with it.
//
// @Summary      Delete a collection
// @Tags         collections
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Collection ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /collections/{id} [delete]
func (h *CollectionHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), user.ID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Collection deleted successfully"})
}

func bindCollection(c echo.Context) (collectionRequest, error) {
	var req collectionRequest
	if err := c.Bind(&req); err != nil {
		return req, domain.Invalid("Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return req, err
	}
	return req, nil
}
