package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

// RBAC admits requests whose session role is one of roles (domain.RoleAdmin,
// domain.RoleStaff) and answers 403 otherwise. It reads the role Auth stored,
// so it must be mounted after Auth.
func RBAC(roles ...string) echo.MiddlewareFunc {
	permitted := make(map[string]bool, len(roles))
	for _, r := range roles {
		permitted[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if role, ok := c.Get(CtxRole).(string); ok && permitted[role] {
				return next(c)
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": domain.ErrForbidden.Error()})
		}
	}
}
