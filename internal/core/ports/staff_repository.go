package ports

import (
	"context"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

// StaffRepository defines the interface for staff persistence.
type StaffRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Staff, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Staff, error)
	Create(ctx context.Context, s *domain.Staff) (*domain.Staff, error)
	Update(ctx context.Context, s *domain.Staff) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Staff, error)
}
