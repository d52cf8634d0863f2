package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
)

// ParcelHandler handles HTTP requests for parcel operations.
type ParcelHandler struct {
	parcels       ports.ParcelService
	notifications ports.NotificationService
}

func NewParcelHandler(parcels ports.ParcelService, notifications ports.NotificationService) *ParcelHandler {
	return &ParcelHandler{parcels: parcels, notifications: notifications}
}

// Create handles POST /v1/parcels.
//
// A replayed Idempotency-Key returns the original parcel with 200 instead of 201.
//
// @Summary      Register a parcel
// @Tags         parcels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string               false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createParcelRequest  true   "Parcel details"
// @Success      201              {object}  createParcelResponse
// @Success      200              {object}  createParcelResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /v1/parcels [post]
func (h *ParcelHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createParcelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	idempotencyKey := c.Request().Header.Get("Idempotency-Key")
	result, err := h.parcels.Create(c.Request().Context(), actor, toCreateParcelInput(req, idempotencyKey))
	if err != nil {
		return err
	}

	resp := createParcelResponse{
		Parcel:  toParcelResponse(result.Parcel),
		Warning: warningText(result.Warning),
	}
	if result.Fee != nil {
		fee := toEntryResponse(*result.Fee)
		resp.Fee = &fee
	}

	code := http.StatusCreated
	if result.AlreadyExisted {
		code = http.StatusOK
	}
	return c.JSON(code, resp)
}

// List handles GET /v1/parcels.
//
// @Summary      List parcels
// @Tags         parcels
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending, in_transit, delivered or all"
// @Param        search  query     string  false  "Matches tracking code, names and description"
// @Param        page    query     int     false  "Page number (1-based)"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  listParcelsResponse
// @Failure      400     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /v1/parcels [get]
func (h *ParcelHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var in ports.ListParcelsInput
	if err := echo.QueryParamsBinder(c).
		String("status", &in.Status).
		String("search", &in.Search).
		Int("page", &in.Page).
		Int("limit", &in.Limit).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.parcels.List(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listParcelsResponse{
		Items:      toParcelResponses(result.Items),
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// Get handles GET /v1/parcels/:id.
//
// @Summary      Get a parcel
// @Tags         parcels
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Parcel id"
// @Success      200  {object}  parcelResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/parcels/{id} [get]
func (h *ParcelHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	parcel, err := h.parcels.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toParcelResponse(parcel))
}

// UpdateStatus handles PATCH /v1/parcels/:id/status.
//
// @Summary      Move a parcel forward in its lifecycle
// @Tags         parcels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Parcel id"
// @Param        body  body      statusRequest  true  "Target status"
// @Success      200   {object}  transitionResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/parcels/{id}/status [patch]
func (h *ParcelHandler) UpdateStatus(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.parcels.Transition(c.Request().Context(), actor, c.Param("id"), domain.ParcelStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transitionResponse{
		Parcel:  toParcelResponse(result.Parcel),
		Changed: result.Changed,
		Warning: warningText(result.Warning),
	})
}

// SendSMS handles POST /v1/parcels/:id/sms.
//
// @Summary      Send a custom SMS to the parcel recipient
// @Tags         parcels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string      true  "Parcel id"
// @Param        body  body      smsRequest  true  "Message (max 160 characters)"
// @Success      200   {object}  smsResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/parcels/{id}/sms [post]
func (h *ParcelHandler) SendSMS(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req smsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	receipt, err := h.notifications.SendCustom(c.Request().Context(), actor, c.Param("id"), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, smsResponse{Success: receipt.Success, Provider: receipt.Provider})
}

// Track handles GET /v1/track/:tracking_code. It is public and reveals the status only.
//
// @Summary      Public parcel tracking
// @Tags         parcels
// @Produce      json
// @Param        tracking_code  path      string  true  "Tracking code"
// @Success      200            {object}  trackResponse
// @Failure      404            {object}  errorResponse
// @Router       /v1/track/{tracking_code} [get]
func (h *ParcelHandler) Track(c echo.Context) error {
	parcel, err := h.parcels.Track(c.Request().Context(), c.Param("tracking_code"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trackResponse{
		TrackingCode: parcel.TrackingCode,
		Status:       parcel.Status,
		UpdatedAt:    parcel.UpdatedAt.UTC(),
	})
}

// Dashboard handles GET /v1/dashboard.
//
// @Summary      Parcel counts and wallet balance for the caller
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/dashboard [get]
func (h *ParcelHandler) Dashboard(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	stats, err := h.parcels.Stats(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{
		TotalParcels:     stats.TotalParcels,
		PendingParcels:   stats.PendingParcels,
		InTransitParcels: stats.InTransitParcels,
		DeliveredParcels: stats.DeliveredParcels,
		WalletBalance:    stats.WalletBalance,
	})
}
