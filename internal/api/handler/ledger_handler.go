package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/courierpwa/courier-ops/internal/core/ports"
)

// LedgerHandler serves wallets and the ledger.
type LedgerHandler struct {
	service ports.LedgerService
}

func NewLedgerHandler(service ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// MyWallet handles GET /v1/wallet.
//
// @Summary      Caller's wallet
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  walletResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/wallet [get]
func (h *LedgerHandler) MyWallet(c echo.Context) error {
	return h.wallet(c, "")
}

// StaffWallet handles GET /v1/wallets/:staff_id.
//
// @Summary      A staff member's wallet
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Param        staff_id  path      string  true  "Staff id"
// @Success      200       {object}  walletResponse
// @Failure      403       {object}  errorResponse
// @Router       /v1/wallets/{staff_id} [get]
func (h *LedgerHandler) StaffWallet(c echo.Context) error {
	return h.wallet(c, c.Param("staff_id"))
}

func (h *LedgerHandler) wallet(c echo.Context, staffID string) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	view, err := h.service.Wallet(c.Request().Context(), actor, staffID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toWalletResponse(view))
}

// List handles GET /v1/ledger.
//
// @Summary      List ledger entries with totals
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Param        staff_id  query     string  false  "Staff id (admin only; staff always see their own)"
// @Param        type      query     string  false  "delivery_fee, withdrawal, bonus, penalty or all"
// @Param        window    query     string  false  "today, week, month or all"
// @Param        limit     query     int     false  "Maximum entries returned (max 500)"
// @Success      200       {object}  ledgerResponse
// @Failure      400       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Router       /v1/ledger [get]
func (h *LedgerHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var q ports.LedgerQuery
	if err := echo.QueryParamsBinder(c).
		String("staff_id", &q.StaffID).
		String("type", &q.Type).
		String("window", &q.Window).
		Int("limit", &q.Limit).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	page, err := h.service.ListEntries(c.Request().Context(), actor, q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ledgerResponse{
		Entries: toEntryResponses(page.Entries),
		Totals:  toTotalsResponse(page.Totals),
	})
}

// Append handles POST /v1/ledger.
//
// @Summary      Post a manual ledger entry
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      appendEntryRequest  true  "Entry"
// @Success      201   {object}  entryResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/ledger [post]
func (h *LedgerHandler) Append(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req appendEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	entry, err := h.service.AppendEntry(c.Request().Context(), actor, toAppendEntryInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toEntryResponse(*entry))
}
