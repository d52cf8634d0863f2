package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

// LedgerFilter narrows a ledger listing. Zero values mean "no filter".
type LedgerFilter struct {
	StaffID string
	Type    domain.EntryType
	Since   time.Time
	Limit   int
}

// LedgerRepository is append-only: there is no update or delete.
type LedgerRepository interface {
	// Append assigns the entry its ID and inserts it. A second delivery_fee for the
	// same parcel fails with domain.ErrDuplicate.
	Append(ctx context.Context, e *domain.LedgerEntry) error
	FindDeliveryFee(ctx context.Context, parcelID string) (*domain.LedgerEntry, error)
	List(ctx context.Context, filter LedgerFilter) ([]domain.LedgerEntry, error)
	// SumByType totals the entries matching filter per type. Limit is ignored.
	SumByType(ctx context.Context, filter LedgerFilter) (map[domain.EntryType]decimal.Decimal, error)
	StaffIDs(ctx context.Context) ([]string, error)
}

// WalletRepository stores the cached per-staff balance.
type WalletRepository interface {
	Get(ctx context.Context, staffID string) (*domain.Wallet, error)
	Put(ctx context.Context, w *domain.Wallet) error
	List(ctx context.Context) ([]*domain.Wallet, error)
}
