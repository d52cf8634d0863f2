package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

// CreateParcelInput carries all data needed to create a new parcel.
type CreateParcelInput struct {
	SenderName       string
	SenderPhone      string
	RecipientName    string
	RecipientPhone   string
	DestinationID    string
	ShortDescription string
	IdempotencyKey   string
}

// CreateParcelResult is returned by the service after creating a parcel.
type CreateParcelResult struct {
	Parcel *domain.Parcel
	Fee    *domain.LedgerEntry
	// AlreadyExisted is true when the Idempotency-Key matched an existing parcel.
	AlreadyExisted bool
	// Warning is a non-fatal notification failure; the parcel is committed.
	Warning error
}

// TransitionResult is returned by Transition.
type TransitionResult struct {
	Parcel  *domain.Parcel
	Changed bool
	Warning error
}

// ListParcelsInput carries all parameters for the list endpoint.
type ListParcelsInput struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// ListParcelsResult is returned by ListParcels.
type ListParcelsResult struct {
	Items      []*domain.Parcel
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// DashboardStats summarises an actor's parcels and wallet.
type DashboardStats struct {
	TotalParcels     int64
	PendingParcels   int64
	InTransitParcels int64
	DeliveredParcels int64
	WalletBalance    decimal.Decimal
}

// ParcelService defines the parcel lifecycle use cases.
type ParcelService interface {
	Create(ctx context.Context, actor domain.Actor, input CreateParcelInput) (*CreateParcelResult, error)
	Transition(ctx context.Context, actor domain.Actor, parcelID string, target domain.ParcelStatus) (*TransitionResult, error)
	Get(ctx context.Context, actor domain.Actor, parcelID string) (*domain.Parcel, error)
	Track(ctx context.Context, trackingCode string) (*domain.Parcel, error)
	List(ctx context.Context, actor domain.Actor, input ListParcelsInput) (*ListParcelsResult, error)
	Stats(ctx context.Context, actor domain.Actor) (*DashboardStats, error)
}
