package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/courierpwa/courier-ops/internal/api/middleware"
	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
)

type stubAuthService struct {
	loginFn func(ctx context.Context, idToken string) (string, *domain.Staff, error)
}

func (s *stubAuthService) Login(ctx context.Context, idToken string) (string, *domain.Staff, error) {
	return s.loginFn(ctx, idToken)
}

type stubParcelService struct {
	createFn     func(ctx context.Context, actor domain.Actor, in ports.CreateParcelInput) (*ports.CreateParcelResult, error)
	transitionFn func(ctx context.Context, actor domain.Actor, id string, target domain.ParcelStatus) (*ports.TransitionResult, error)
	getFn        func(ctx context.Context, actor domain.Actor, id string) (*domain.Parcel, error)
	trackFn      func(ctx context.Context, code string) (*domain.Parcel, error)
	listFn       func(ctx context.Context, actor domain.Actor, in ports.ListParcelsInput) (*ports.ListParcelsResult, error)
	statsFn      func(ctx context.Context, actor domain.Actor) (*ports.DashboardStats, error)
}

func (s *stubParcelService) Create(ctx context.Context, actor domain.Actor, in ports.CreateParcelInput) (*ports.CreateParcelResult, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubParcelService) Transition(ctx context.Context, actor domain.Actor, id string, target domain.ParcelStatus) (*ports.TransitionResult, error) {
	return s.transitionFn(ctx, actor, id, target)
}

func (s *stubParcelService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Parcel, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubParcelService) Track(ctx context.Context, code string) (*domain.Parcel, error) {
	return s.trackFn(ctx, code)
}

func (s *stubParcelService) List(ctx context.Context, actor domain.Actor, in ports.ListParcelsInput) (*ports.ListParcelsResult, error) {
	return s.listFn(ctx, actor, in)
}

func (s *stubParcelService) Stats(ctx context.Context, actor domain.Actor) (*ports.DashboardStats, error) {
	return s.statsFn(ctx, actor)
}

type stubNotificationService struct {
	sendCustomFn func(ctx context.Context, actor domain.Actor, parcelID, message string) (*domain.SMSReceipt, error)
}

func (s *stubNotificationService) Handle(context.Context, domain.LifecycleEvent) error { return nil }

func (s *stubNotificationService) SendCustom(ctx context.Context, actor domain.Actor, parcelID, message string) (*domain.SMSReceipt, error) {
	return s.sendCustomFn(ctx, actor, parcelID, message)
}

type stubLedgerService struct {
	appendFn func(ctx context.Context, actor domain.Actor, in ports.AppendEntryInput) (*domain.LedgerEntry, error)
	walletFn func(ctx context.Context, actor domain.Actor, staffID string) (*ports.WalletView, error)
	listFn   func(ctx context.Context, actor domain.Actor, q ports.LedgerQuery) (*ports.LedgerPage, error)
}

func (s *stubLedgerService) AppendEntry(ctx context.Context, actor domain.Actor, in ports.AppendEntryInput) (*domain.LedgerEntry, error) {
	return s.appendFn(ctx, actor, in)
}

func (s *stubLedgerService) PostDeliveryFee(context.Context, *domain.Parcel, decimal.Decimal) (*domain.LedgerEntry, error) {
	return nil, nil
}

func (s *stubLedgerService) BalanceOf(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *stubLedgerService) Wallet(ctx context.Context, actor domain.Actor, staffID string) (*ports.WalletView, error) {
	return s.walletFn(ctx, actor, staffID)
}

func (s *stubLedgerService) ListEntries(ctx context.Context, actor domain.Actor, q ports.LedgerQuery) (*ports.LedgerPage, error) {
	return s.listFn(ctx, actor, q)
}

func (s *stubLedgerService) VerifyWallets(context.Context) ([]ports.WalletCheck, error) {
	return nil, nil
}

type stubStaffService struct {
	getFn    func(ctx context.Context, id string) (*domain.Staff, error)
	createFn func(ctx context.Context, actor domain.Actor, in ports.StaffInput) (*domain.Staff, error)
	deleteFn func(ctx context.Context, actor domain.Actor, id string) error
}

func (s *stubStaffService) EnsureForIdentity(context.Context, domain.Identity) (*domain.Staff, error) {
	return nil, nil
}

func (s *stubStaffService) Get(ctx context.Context, id string) (*domain.Staff, error) {
	return s.getFn(ctx, id)
}

func (s *stubStaffService) Create(ctx context.Context, actor domain.Actor, in ports.StaffInput) (*domain.Staff, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubStaffService) Update(context.Context, domain.Actor, string, ports.StaffInput) (*domain.Staff, error) {
	return nil, nil
}

func (s *stubStaffService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	return s.deleteFn(ctx, actor, id)
}

func (s *stubStaffService) List(context.Context, domain.Actor) ([]*domain.Staff, error) {
	return nil, nil
}

// newTestContext builds an echo context with the validator installed and, when
// actor is non-zero, the claims the Auth middleware would have set.
func newTestContext(method, target, body string, actor domain.Actor) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actor.StaffID != "" {
		c.Set(middleware.CtxStaffID, actor.StaffID)
		c.Set(middleware.CtxRole, actor.Role)
	}
	return c, rec
}

var (
	staffActor = domain.Actor{StaffID: "staff-1", Role: domain.RoleStaff}
	adminActor = domain.Actor{StaffID: "admin-1", Role: domain.RoleAdmin}
)
