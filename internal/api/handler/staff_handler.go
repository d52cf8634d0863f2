package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/courierpwa/courier-ops/internal/core/ports"
)

// StaffHandler serves the caller's profile and the admin staff directory.
type StaffHandler struct {
	service ports.StaffService
}

func NewStaffHandler(service ports.StaffService) *StaffHandler {
	return &StaffHandler{service: service}
}

// Me handles GET /v1/me.
//
// @Summary      Current staff profile
// @Tags         staff
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  staffResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/me [get]
func (h *StaffHandler) Me(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	staff, err := h.service.Get(c.Request().Context(), actor.StaffID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStaffResponse(staff))
}

// List handles GET /v1/staff.
//
// @Summary      List staff
// @Tags         staff
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   staffResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/staff [get]
func (h *StaffHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	list, err := h.service.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	out := make([]staffResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toStaffResponse(s))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/staff.
//
// @Summary      Provision a staff account
// @Tags         staff
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      staffRequest  true  "Staff details"
// @Success      201   {object}  staffResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/staff [post]
func (h *StaffHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req staffRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	staff, err := h.service.Create(c.Request().Context(), actor, toStaffInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toStaffResponse(staff))
}

// Update handles PUT /v1/staff/:id.
//
// @Summary      Update a staff account
// @Tags         staff
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Staff id"
// @Param        body  body      staffRequest  true  "Staff details"
// @Success      200   {object}  staffResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/staff/{id} [put]
func (h *StaffHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req staffRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	staff, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), toStaffInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStaffResponse(staff))
}

// Delete handles DELETE /v1/staff/:id.
//
// @Summary      Remove a staff account
// @Tags         staff
// @Security     BearerAuth
// @Param        id  path  string  true  "Staff id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/staff/{id} [delete]
func (h *StaffHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
