package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rankhwa/internal/auth"
	"rankhwa/internal/service"
)

// ListHandler handles reading list endpoints. Every route needs a principal.
type ListHandler struct {
	listService service.ListService
}

// NewListHandler creates a new list handler.
func NewListHandler(listService service.ListService) *ListHandler {
	return &ListHandler{listService: listService}
}

// ListNameRequest names a new or renamed list.
type ListNameRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// AddItemRequest adds a title to a list.
type AddItemRequest struct {
	ManhwaID uint `json:"manhwaId" validate:"required"`
}

// ListAll godoc
// @Summary My lists
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.ListSummary
// @Failure 401 {object} errors.ErrorResponse
// @Router /lists [get]
func (h *ListHandler) ListAll(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return mapError(err)
	}
	lists, err := h.listService.ListAll(c.Request().Context(), userID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, lists)
}

// Get godoc
// @Summary List detail
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Param listId path int true "List ID"
// @Success 200 {object} ListDetailResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /lists/{listId} [get]
func (h *ListHandler) Get(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return mapError(err)
	}
	listID, err := pathID(c, "listId")
	if err != nil {
		return err
	}
	list, err := h.listService.GetOwned(c.Request().Context(), userID, listID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toListDetail(list))
}

// Create godoc
// @Summary Create a list
// @Tags lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ListNameRequest true "List name"
// @Success 200 {object} ListDetailResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /lists [post]
func (h *ListHandler) Create(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return mapError(err)
	}
	var req ListNameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	list, err := h.listService.Create(c.Request().Context(), userID, req.Name)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toListDetail(list))
}

// Rename godoc
// @Summary Rename a list
// @Tags lists
// @Accept json
// @Security BearerAuth
// @Param listId path int true "List ID"
// @Param request body ListNameRequest true "New name"
// @Success 200
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /lists/{listId} [patch]
func (h *ListHandler) Rename(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return mapError(err)
	}
	listID, err := pathID(c, "listId")
	if err != nil {
		return err
	}
	var req ListNameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.listService.Rename(c.Request().Context(), userID, listID, req.Name); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusOK)
}

// Delete godoc
// @Summary Delete a list
// @Tags lists
// @Security BearerAuth
// @Param listId path int true "List ID"
// @Success 200
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /lists/{listId} [delete]
func (h *ListHandler) Delete(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return mapError(err)
	}
	listID, err := pathID(c, "listId")
	if err != nil {
		return err
	}
	if err := h.listService.Delete(c.Request().Context(), userID, listID); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusOK)
}

// AddItem godoc
// @Summary Add a title to a list
// @Tags lists
// @Accept json
// @Security BearerAuth
// @Param listId path int true "List ID"
// @Param request body AddItemRequest true "Title to add"
// @Success 200
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /lists/{listId}/items [post]
func (h *ListHandler) AddItem(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return mapError(err)
	}
	listID, err := pathID(c, "listId")
	if err != nil {
		return err
	}
	var req AddItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.listService.AddItem(c.Request().Context(), userID, listID, req.ManhwaID); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusOK)
}

// RemoveItem godoc
// @Summary Remove a title from a list
// @Tags lists
// @Security BearerAuth
// @Param listId path int true "List ID"
// @Param manhwaId path int true "Manhwa ID"
// @Success 200
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /lists/{listId}/items/{manhwaId} [delete]
func (h *ListHandler) RemoveItem(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return mapError(err)
	}
	listID, err := pathID(c, "listId")
	if err != nil {
		return err
	}
	manhwaID, err := pathID(c, "manhwaId")
	if err != nil {
		return err
	}
	if err := h.listService.RemoveItem(c.Request().Context(), userID, listID, manhwaID); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusOK)
}
