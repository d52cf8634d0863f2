package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

// DestinationInput carries the editable destination fields.
type DestinationInput struct {
	Name    string
	Region  string
	BaseFee decimal.Decimal
}

type DestinationService interface {
	Get(ctx context.Context, id string) (*domain.Destination, error)
	List(ctx context.Context) ([]*domain.Destination, error)
	Create(ctx context.Context, actor domain.Actor, input DestinationInput) (*domain.Destination, error)
	Update(ctx context.Context, actor domain.Actor, id string, input DestinationInput) (*domain.Destination, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}
