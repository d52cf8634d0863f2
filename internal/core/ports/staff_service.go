package ports

import (
	"context"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

// StaffInput carries the editable staff fields.
type StaffInput struct {
	UID   string
	Name  string
	Phone string
	Role  string
}

type StaffService interface {
	EnsureForIdentity(ctx context.Context, identity domain.Identity) (*domain.Staff, error)
	Get(ctx context.Context, id string) (*domain.Staff, error)
	Create(ctx context.Context, actor domain.Actor, input StaffInput) (*domain.Staff, error)
	Update(ctx context.Context, actor domain.Actor, id string, input StaffInput) (*domain.Staff, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	List(ctx context.Context, actor domain.Actor) ([]*domain.Staff, error)
}
