package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/courierpwa/courier-ops/internal/api/middleware"
	"github.com/courierpwa/courier-ops/internal/core/domain"
)

// ctxActor extracts the caller injected by the Auth middleware. Both the staff
// id and the role must be present; their absence means the middleware did not run.
func ctxActor(c echo.Context) (domain.Actor, error) {
	staffID, _ := c.Get(middleware.CtxStaffID).(string)
	role, _ := c.Get(middleware.CtxRole).(string)
	if staffID == "" || role == "" {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return domain.Actor{StaffID: staffID, Role: role}, nil
}
