package ports

import (
	"context"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

// DestinationRepository defines persistence operations for destinations.
type DestinationRepository interface {
	Create(ctx context.Context, d *domain.Destination) error
	FindByID(ctx context.Context, id string) (*domain.Destination, error)
	Update(ctx context.Context, d *domain.Destination) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Destination, error)
	Count(ctx context.Context) (int64, error)
}
