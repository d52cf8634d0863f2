package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "fields": {...}}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: ve.Fields}
	}

	var df *domain.DispatchFailure
	if errors.As(err, &df) {
		log.Warn().Err(err).Str("path", c.Path()).Msg("sms dispatch failed")
		return http.StatusBadGateway, errorResponse{Error: "sms gateway rejected the message"}
	}

	switch {
	case errors.Is(err, domain.ErrParcelNotFound):
		return http.StatusNotFound, errorResponse{Error: "parcel not found"}
	case errors.Is(err, domain.ErrDestinationNotFound):
		return http.StatusNotFound, errorResponse{Error: "destination not found"}
	case errors.Is(err, domain.ErrStaffNotFound):
		return http.StatusNotFound, errorResponse{Error: "staff not found"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "not found"}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, errorResponse{Error: "unauthorized"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrDestinationInUse):
		return http.StatusConflict, errorResponse{Error: "destination is referenced by parcels"}
	case errors.Is(err, domain.ErrDuplicate):
		return http.StatusConflict, errorResponse{Error: "already exists"}
	}

	// Storage failures and anything unexpected: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
