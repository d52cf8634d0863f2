package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
)

// DestinationService manages the destination fee table.
type DestinationService struct {
	repo    ports.DestinationRepository
	parcels ports.ParcelRepository
	logger  zerolog.Logger
}

func NewDestinationService(repo ports.DestinationRepository, parcels ports.ParcelRepository, logger zerolog.Logger) *DestinationService {
	return &DestinationService{repo: repo, parcels: parcels, logger: logger}
}

type destinationFields struct {
	Name   string `field:"name"   validate:"required"`
	Region string `field:"region" validate:"required"`
}

func (s *DestinationService) Get(ctx context.Context, id string) (*domain.Destination, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("get destination", err)
	}
	return d, nil
}

func (s *DestinationService) List(ctx context.Context) ([]*domain.Destination, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.Storage("list destinations", err)
	}
	return list, nil
}

func (s *DestinationService) Create(ctx context.Context, actor domain.Actor, input ports.DestinationInput) (*domain.Destination, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	fields, err := destinationInputFields(input)
	if err != nil {
		return nil, err
	}

	d := &domain.Destination{
		Name:      fields.Name,
		Region:    fields.Region,
		BaseFee:   input.BaseFee,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, domain.Storage("create destination", err)
	}
	s.logger.Info().Str("destination_id", d.ID).Str("name", d.Name).Str("base_fee", d.BaseFee.String()).Msg("destination created")
	return d, nil
}

// Update changes a destination. Parcels already created keep the fee they were
// posted with.
func (s *DestinationService) Update(ctx context.Context, actor domain.Actor, id string, input ports.DestinationInput) (*domain.Destination, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	fields, err := destinationInputFields(input)
	if err != nil {
		return nil, err
	}

	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("update destination", err)
	}
	d.Name = fields.Name
	d.Region = fields.Region
	d.BaseFee = input.BaseFee
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, domain.Storage("update destination", err)
	}
	return d, nil
}

// Delete refuses to remove a destination that parcels still reference.
func (s *DestinationService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	inUse, err := s.parcels.ExistsForDestination(ctx, id)
	if err != nil {
		return domain.Storage("delete destination", err)
	}
	if inUse {
		return domain.ErrDestinationInUse
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return domain.Storage("delete destination", err)
	}
	s.logger.Info().Str("destination_id", id).Str("actor_id", actor.StaffID).Msg("destination deleted")
	return nil
}

func destinationInputFields(input ports.DestinationInput) (destinationFields, error) {
	fields := destinationFields{
		Name:   strings.TrimSpace(input.Name),
		Region: strings.TrimSpace(input.Region),
	}
	ve := domain.NewValidationError()
	collectInput(ve, fields)
	if input.BaseFee.IsNegative() {
		ve.Add("base_fee", "must not be negative")
	}
	return fields, ve.OrNil()
}
