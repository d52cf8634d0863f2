package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

// Context keys set by Auth.
const (
	CtxStaffID = "staff_id"
	CtxRole    = "role"
)

// StaffLookup resolves the staff account behind a session.
type StaffLookup interface {
	Get(ctx context.Context, id string) (*domain.Staff, error)
}

// Auth validates the session JWT and injects the staff id and role into context.
// When staff is non-nil the account is re-read on every request, so a deleted
// account is rejected and the stored role wins over the one in the token.
func Auth(jwtSecret string, staff StaffLookup) echo.MiddlewareFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := parser.ParseWithClaims(parts[1], claims, func(*jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			staffID, _ := claims["staff_id"].(string)
			role, _ := claims["role"].(string)
			if staffID == "" || role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing staff identity")
			}

			if staff != nil {
				current, err := staff.Get(c.Request().Context(), staffID)
				switch {
				case errors.Is(err, domain.ErrNotFound):
					return echo.NewHTTPError(http.StatusUnauthorized, "staff account no longer exists")
				case err != nil:
					return err
				}
				role = current.Role
			}

			c.Set(CtxStaffID, staffID)
			c.Set(CtxRole, role)

			return next(c)
		}
	}
}
