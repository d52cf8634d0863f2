package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/courierpwa/courier-ops/internal/core/ports"
)

// DestinationHandler exposes the fee table.
type DestinationHandler struct {
	service ports.DestinationService
}

func NewDestinationHandler(service ports.DestinationService) *DestinationHandler {
	return &DestinationHandler{service: service}
}

// List handles GET /v1/destinations.
//
// @Summary      List destinations and their base fees
// @Tags         destinations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   destinationResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/destinations [get]
func (h *DestinationHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]destinationResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toDestinationResponse(d))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/destinations.
//
// @Summary      Add a destination
// @Tags         destinations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      destinationRequest  true  "Destination"
// @Success      201   {object}  destinationResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/destinations [post]
func (h *DestinationHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req destinationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	d, err := h.service.Create(c.Request().Context(), actor, toDestinationInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toDestinationResponse(d))
}

// Update handles PUT /v1/destinations/:id.
//
// @Summary      Update a destination
// @Tags         destinations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Destination id"
// @Param        body  body      destinationRequest  true  "Destination"
// @Success      200   {object}  destinationResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/destinations/{id} [put]
func (h *DestinationHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req destinationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	d, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), toDestinationInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDestinationResponse(d))
}

// Delete handles DELETE /v1/destinations/:id.
//
// @Summary      Remove a destination
// @Tags         destinations
// @Security     BearerAuth
// @Param        id  path  string  true  "Destination id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/destinations/{id} [delete]
func (h *DestinationHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
