package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
	"github.com/courierpwa/courier-ops/pkg/phone"
)

// StaffService manages staff accounts.
type StaffService struct {
	repo   ports.StaffRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewStaffService(repo ports.StaffRepository, logger zerolog.Logger) *StaffService {
	return &StaffService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type staffFields struct {
	Name  string `field:"name"  validate:"required"`
	Phone string `field:"phone" validate:"required,phone"`
	Role  string `field:"role"  validate:"required,oneof=admin staff"`
}

// EnsureForIdentity returns the staff record matching the verified phone
// number, creating a plain staff account on first sign-in.
func (s *StaffService) EnsureForIdentity(ctx context.Context, identity domain.Identity) (*domain.Staff, error) {
	number := phone.Format(identity.Phone)
	if !phone.Validate(number) {
		return nil, domain.ErrUnauthorized
	}

	existing, err := s.repo.FindByPhone(ctx, number)
	switch {
	case err == nil:
		if existing.UID == "" && identity.UID != "" {
			existing.UID = identity.UID
			existing.UpdatedAt = s.now()
			if err := s.repo.Update(ctx, existing); err != nil {
				s.logger.Warn().Err(err).Str("staff_id", existing.ID).Msg("failed to link identity uid")
			}
		}
		return existing, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, domain.Storage("find staff", err)
	}

	now := s.now()
	created, err := s.repo.Create(ctx, &domain.Staff{
		UID:       identity.UID,
		Phone:     number,
		Role:      domain.RoleStaff,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, domain.ErrDuplicate) {
		// Lost a race with a concurrent first sign-in.
		created, err = s.repo.FindByPhone(ctx, number)
	}
	if err != nil {
		return nil, domain.Storage("create staff", err)
	}
	s.logger.Info().Str("staff_id", created.ID).Msg("staff account created on first sign-in")
	return created, nil
}

func (s *StaffService) Get(ctx context.Context, id string) (*domain.Staff, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("get staff", err)
	}
	return st, nil
}

func (s *StaffService) Create(ctx context.Context, actor domain.Actor, input ports.StaffInput) (*domain.Staff, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	fields, err := staffInputFields(input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	created, err := s.repo.Create(ctx, &domain.Staff{
		UID:       strings.TrimSpace(input.UID),
		Name:      fields.Name,
		Phone:     phone.Format(fields.Phone),
		Role:      fields.Role,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, domain.Storage("create staff", err)
	}
	s.logger.Info().Str("staff_id", created.ID).Str("role", created.Role).Str("actor_id", actor.StaffID).Msg("staff created")
	return created, nil
}

func (s *StaffService) Update(ctx context.Context, actor domain.Actor, id string, input ports.StaffInput) (*domain.Staff, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	fields, err := staffInputFields(input)
	if err != nil {
		return nil, err
	}

	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("update staff", err)
	}
	st.Name = fields.Name
	st.Phone = phone.Format(fields.Phone)
	st.Role = fields.Role
	if uid := strings.TrimSpace(input.UID); uid != "" {
		st.UID = uid
	}
	st.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, st); err != nil {
		return nil, domain.Storage("update staff", err)
	}
	return st, nil
}

// Delete removes a staff account. Admins cannot delete themselves.
func (s *StaffService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if id == actor.StaffID {
		ve := domain.NewValidationError()
		ve.Add("id", "cannot delete your own account")
		return ve
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return domain.Storage("delete staff", err)
	}
	s.logger.Info().Str("staff_id", id).Str("actor_id", actor.StaffID).Msg("staff deleted")
	return nil
}

func (s *StaffService) List(ctx context.Context, actor domain.Actor) ([]*domain.Staff, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.Storage("list staff", err)
	}
	return list, nil
}

func staffInputFields(input ports.StaffInput) (staffFields, error) {
	fields := staffFields{
		Name:  strings.TrimSpace(input.Name),
		Phone: strings.TrimSpace(input.Phone),
		Role:  strings.TrimSpace(input.Role),
	}
	if fields.Role == "" {
		fields.Role = domain.RoleStaff
	}
	return fields, validateInput(fields)
}
