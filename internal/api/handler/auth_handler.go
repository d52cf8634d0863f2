package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/courierpwa/courier-ops/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Session handles POST /auth/session.
//
// @Summary      Exchange an identity-provider token for a session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      sessionRequest  true  "Identity token from the phone OTP provider"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/session [post]
func (h *AuthHandler) Session(c echo.Context) error {
	var req sessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, staff, err := h.authService.Login(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sessionResponse{
		Token: token,
		Staff: toStaffResponse(staff),
	})
}
