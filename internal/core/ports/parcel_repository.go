package ports

import (
	"context"
	"time"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

// ParcelFilter carries all query parameters for listing parcels.
// CreatedBy is always enforced by the service layer for non-admin actors.
type ParcelFilter struct {
	CreatedBy string              // empty = no filter (admin)
	Status    domain.ParcelStatus // optional
	Search    string              // optional: case-insensitive match on code, names, description
	Page      int                 // 1-based
	Limit     int
}

// ParcelRepository defines persistence operations for parcels.
type ParcelRepository interface {
	// Create assigns the parcel its ID and inserts it.
	Create(ctx context.Context, p *domain.Parcel) error
	FindByID(ctx context.Context, id string) (*domain.Parcel, error)
	FindByTrackingCode(ctx context.Context, code string) (*domain.Parcel, error)
	FindByIdempotencyKey(ctx context.Context, createdBy, key string) (*domain.Parcel, error)

	// UpdateStatus moves the parcel from one status to another only if it is still
	// in from; otherwise it returns domain.ErrStatusConflict.
	UpdateStatus(ctx context.Context, id string, from, to domain.ParcelStatus, at time.Time) error
	MarkLedgerPosted(ctx context.Context, id string) error

	// ListUnposted returns parcels still missing their delivery fee entry that were
	// created before the cutoff, oldest first.
	ListUnposted(ctx context.Context, createdBefore time.Time, limit int) ([]*domain.Parcel, error)
	List(ctx context.Context, filter ParcelFilter) ([]*domain.Parcel, int64, error)
	CountByStatus(ctx context.Context, createdBy string) (map[domain.ParcelStatus]int64, error)
	ExistsForDestination(ctx context.Context, destinationID string) (bool, error)
}
