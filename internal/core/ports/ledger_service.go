package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

// AppendEntryInput carries a manual ledger posting.
type AppendEntryInput struct {
	Type     string
	Amount   decimal.Decimal
	StaffID  string
	ParcelID string
	Currency string
}

// LedgerQuery carries the ledger listing parameters.
type LedgerQuery struct {
	StaffID string
	Type    string
	// Window is one of "today", "week", "month" or "all".
	Window string
	Limit  int
}

// LedgerPage is a filtered ledger listing with its totals.
type LedgerPage struct {
	Entries []domain.LedgerEntry
	Totals  domain.Totals
}

// WalletView is what a staff member sees on their wallet screen.
type WalletView struct {
	StaffID     string
	Balance     decimal.Decimal
	LastUpdated time.Time
	Totals      domain.Totals
	Recent      []domain.LedgerEntry
}

// WalletCheck reports the outcome of comparing one cached wallet to the ledger.
type WalletCheck struct {
	StaffID  string
	Cached   decimal.Decimal
	Ledger   decimal.Decimal
	Repaired bool
}

// LedgerService defines the ledger and wallet use cases.
type LedgerService interface {
	AppendEntry(ctx context.Context, actor domain.Actor, input AppendEntryInput) (*domain.LedgerEntry, error)
	PostDeliveryFee(ctx context.Context, parcel *domain.Parcel, fee decimal.Decimal) (*domain.LedgerEntry, error)
	BalanceOf(ctx context.Context, staffID string) (decimal.Decimal, error)
	Wallet(ctx context.Context, actor domain.Actor, staffID string) (*WalletView, error)
	ListEntries(ctx context.Context, actor domain.Actor, query LedgerQuery) (*LedgerPage, error)
	VerifyWallets(ctx context.Context) ([]WalletCheck, error)
}
