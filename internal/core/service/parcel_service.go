package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
	"github.com/courierpwa/courier-ops/internal/pkg/metrics"
	"github.com/courierpwa/courier-ops/pkg/phone"
	"github.com/courierpwa/courier-ops/pkg/tracking"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ParcelServiceDeps are the collaborators of the parcel lifecycle engine.
type ParcelServiceDeps struct {
	Parcels      ports.ParcelRepository
	Destinations ports.DestinationRepository
	Ledger       ports.LedgerService
	Events       ports.EventPublisher
	Logger       zerolog.Logger
	// Now defaults to time.Now in UTC.
	Now func() time.Time
}

// ParcelService owns the parcel state machine and its ledger side effect.
type ParcelService struct {
	parcels      ports.ParcelRepository
	destinations ports.DestinationRepository
	ledger       ports.LedgerService
	events       ports.EventPublisher
	logger       zerolog.Logger
	now          func() time.Time
}

func NewParcelService(deps ParcelServiceDeps) *ParcelService {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ParcelService{
		parcels:      deps.Parcels,
		destinations: deps.Destinations,
		ledger:       deps.Ledger,
		events:       deps.Events,
		logger:       deps.Logger,
		now:          now,
	}
}

type parcelFields struct {
	SenderName       string `field:"sender_name"       validate:"required"`
	SenderPhone      string `field:"sender_phone"      validate:"required,phone"`
	RecipientName    string `field:"recipient_name"    validate:"required"`
	RecipientPhone   string `field:"recipient_phone"   validate:"required,phone"`
	DestinationID    string `field:"destination_id"    validate:"required"`
	ShortDescription string `field:"short_description" validate:"required,max=140"`
}

// Create validates the input, persists a pending parcel, posts its delivery fee
// and emits a "received" event. Validation and missing-destination failures
// happen before any write.
func (s *ParcelService) Create(ctx context.Context, actor domain.Actor, input ports.CreateParcelInput) (*ports.CreateParcelResult, error) {
	if actor.StaffID == "" {
		return nil, domain.ErrUnauthorized
	}

	fields := parcelFields{
		SenderName:       strings.TrimSpace(input.SenderName),
		SenderPhone:      strings.TrimSpace(input.SenderPhone),
		RecipientName:    strings.TrimSpace(input.RecipientName),
		RecipientPhone:   strings.TrimSpace(input.RecipientPhone),
		DestinationID:    strings.TrimSpace(input.DestinationID),
		ShortDescription: strings.TrimSpace(input.ShortDescription),
	}
	if err := validateInput(fields); err != nil {
		return nil, err
	}

	if input.IdempotencyKey != "" {
		existing, err := s.parcels.FindByIdempotencyKey(ctx, actor.StaffID, input.IdempotencyKey)
		switch {
		case err == nil:
			s.logger.Info().Str("idempotency_key", input.IdempotencyKey).Str("parcel_id", existing.ID).Msg("idempotent replay")
			return &ports.CreateParcelResult{Parcel: existing, AlreadyExisted: true}, nil
		case !errors.Is(err, domain.ErrNotFound):
			return nil, domain.Storage("create parcel: idempotency lookup", err)
		}
	}

	dest, err := s.destinations.FindByID(ctx, fields.DestinationID)
	if err != nil {
		return nil, domain.Storage("create parcel: find destination", err)
	}

	now := s.now()
	parcel := &domain.Parcel{
		TrackingCode:     tracking.Generate(),
		CreatedBy:        actor.StaffID,
		SenderName:       fields.SenderName,
		SenderPhone:      phone.Format(fields.SenderPhone),
		RecipientName:    fields.RecipientName,
		RecipientPhone:   phone.Format(fields.RecipientPhone),
		DestinationID:    dest.ID,
		ShortDescription: fields.ShortDescription,
		Status:           domain.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
		IdempotencyKey:   input.IdempotencyKey,
	}

	if err := s.parcels.Create(ctx, parcel); err != nil {
		s.logger.Error().Err(err).Msg("failed to create parcel")
		return nil, domain.Storage("create parcel", err)
	}

	fee, err := s.ledger.PostDeliveryFee(ctx, parcel, dest.BaseFee)
	if err != nil {
		// The parcel stays with ledger_posted=false; the reconciler posts the fee later.
		s.logger.Error().Err(err).
			Str("parcel_id", parcel.ID).
			Str("tracking_code", parcel.TrackingCode).
			Msg("parcel persisted without delivery fee")
		return nil, domain.Storage("create parcel: post delivery fee", err)
	}

	if err := s.parcels.MarkLedgerPosted(ctx, parcel.ID); err != nil {
		s.logger.Warn().Err(err).Str("parcel_id", parcel.ID).Msg("failed to flag parcel as posted")
	} else {
		parcel.LedgerPosted = true
	}

	metrics.ParcelsCreatedTotal.Inc()
	s.logger.Info().
		Str("parcel_id", parcel.ID).
		Str("tracking_code", parcel.TrackingCode).
		Str("staff_id", actor.StaffID).
		Str("fee", fee.Amount.String()).
		Msg("parcel created")

	return &ports.CreateParcelResult{
		Parcel:  parcel,
		Fee:     fee,
		Warning: s.publish(ctx, parcel, actor),
	}, nil
}

// Transition moves a parcel forward. Re-setting the current status is a no-op
// that writes nothing and notifies nobody.
func (s *ParcelService) Transition(ctx context.Context, actor domain.Actor, parcelID string, target domain.ParcelStatus) (*ports.TransitionResult, error) {
	if !target.Valid() {
		ve := domain.NewValidationError()
		ve.Add("status", "must be one of: pending, in_transit, delivered")
		return nil, ve
	}

	parcel, err := s.parcels.FindByID(ctx, parcelID)
	if err != nil {
		return nil, domain.Storage("transition parcel", err)
	}
	if !canAccessParcel(actor, parcel) {
		return nil, domain.ErrForbidden
	}

	if parcel.Status == target {
		return &ports.TransitionResult{Parcel: parcel, Changed: false}, nil
	}
	if !parcel.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("transition parcel: %w (from %s to %s)", domain.ErrInvalidTransition, parcel.Status, target)
	}

	now := s.now()
	if now.Before(parcel.CreatedAt) {
		now = parcel.CreatedAt
	}
	if err := s.parcels.UpdateStatus(ctx, parcel.ID, parcel.Status, target, now); err != nil {
		return nil, domain.Storage("transition parcel", err)
	}

	from := parcel.Status
	parcel.Status = target
	parcel.UpdatedAt = now

	metrics.ParcelTransitionsTotal.WithLabelValues(string(target)).Inc()
	s.logger.Info().
		Str("parcel_id", parcel.ID).
		Str("from", string(from)).
		Str("to", string(target)).
		Str("staff_id", actor.StaffID).
		Msg("parcel status updated")

	return &ports.TransitionResult{
		Parcel:  parcel,
		Changed: true,
		Warning: s.publish(ctx, parcel, actor),
	}, nil
}

// Get returns a parcel visible to the actor.
func (s *ParcelService) Get(ctx context.Context, actor domain.Actor, parcelID string) (*domain.Parcel, error) {
	parcel, err := s.parcels.FindByID(ctx, parcelID)
	if err != nil {
		return nil, domain.Storage("get parcel", err)
	}
	if !canAccessParcel(actor, parcel) {
		return nil, domain.ErrForbidden
	}
	return parcel, nil
}

// Track looks a parcel up by its public tracking code.
func (s *ParcelService) Track(ctx context.Context, trackingCode string) (*domain.Parcel, error) {
	code := strings.ToUpper(strings.TrimSpace(trackingCode))
	if code == "" {
		return nil, domain.ErrParcelNotFound
	}
	parcel, err := s.parcels.FindByTrackingCode(ctx, code)
	if err != nil {
		return nil, domain.Storage("track parcel", err)
	}
	return parcel, nil
}

// List returns a page of parcels. Staff only see parcels they created.
func (s *ParcelService) List(ctx context.Context, actor domain.Actor, input ports.ListParcelsInput) (*ports.ListParcelsResult, error) {
	status := domain.ParcelStatus(input.Status)
	if input.Status == "all" {
		status = ""
	}
	if status != "" && !status.Valid() {
		ve := domain.NewValidationError()
		ve.Add("status", "must be one of: all, pending, in_transit, delivered")
		return nil, ve
	}

	page, limit := normalisePage(input.Page, input.Limit)
	filter := ports.ParcelFilter{
		Status: status,
		Search: strings.TrimSpace(input.Search),
		Page:   page,
		Limit:  limit,
	}
	if !actor.IsAdmin() {
		filter.CreatedBy = actor.StaffID
	}

	items, total, err := s.parcels.List(ctx, filter)
	if err != nil {
		return nil, domain.Storage("list parcels", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListParcelsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Stats returns the dashboard counters for the actor.
func (s *ParcelService) Stats(ctx context.Context, actor domain.Actor) (*ports.DashboardStats, error) {
	createdBy := actor.StaffID
	if actor.IsAdmin() {
		createdBy = ""
	}
	counts, err := s.parcels.CountByStatus(ctx, createdBy)
	if err != nil {
		return nil, domain.Storage("parcel stats", err)
	}
	balance, err := s.ledger.BalanceOf(ctx, actor.StaffID)
	if err != nil {
		return nil, err
	}

	stats := &ports.DashboardStats{
		PendingParcels:   counts[domain.StatusPending],
		InTransitParcels: counts[domain.StatusInTransit],
		DeliveredParcels: counts[domain.StatusDelivered],
		WalletBalance:    balance,
	}
	stats.TotalParcels = stats.PendingParcels + stats.InTransitParcels + stats.DeliveredParcels
	return stats, nil
}

// publish emits the lifecycle event for the parcel's current status. The
// returned error is a warning for the caller; the write has already committed.
func (s *ParcelService) publish(ctx context.Context, parcel *domain.Parcel, actor domain.Actor) error {
	if s.events == nil {
		return nil
	}
	event := domain.LifecycleEvent{
		ID:             newEventID(),
		ParcelID:       parcel.ID,
		TrackingCode:   parcel.TrackingCode,
		Status:         parcel.Status,
		RecipientName:  parcel.RecipientName,
		RecipientPhone: parcel.RecipientPhone,
		ActorID:        actor.StaffID,
		OccurredAt:     parcel.UpdatedAt,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).
			Str("parcel_id", parcel.ID).
			Str("status", string(parcel.Status)).
			Msg("lifecycle notification failed")
		return err
	}
	return nil
}

func canAccessParcel(actor domain.Actor, parcel *domain.Parcel) bool {
	return actor.IsAdmin() || (actor.StaffID != "" && parcel.CreatedBy == actor.StaffID)
}

func normalisePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
