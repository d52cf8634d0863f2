package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
	"github.com/courierpwa/courier-ops/internal/core/templates"
	"github.com/courierpwa/courier-ops/internal/pkg/metrics"
)

// NotificationServiceDeps are the collaborators of NotificationService.
// Dedup and Logs are optional.
type NotificationServiceDeps struct {
	Gateway     ports.SMSGateway
	Dedup       ports.NotificationDedup
	Logs        ports.SMSLogRepository
	Parcels     ports.ParcelRepository
	CompanyName string
	Logger      zerolog.Logger
	Now         func() time.Time
}

// NotificationService turns lifecycle events into SMS messages for the recipient.
type NotificationService struct {
	gateway ports.SMSGateway
	dedup   ports.NotificationDedup
	logs    ports.SMSLogRepository
	parcels ports.ParcelRepository
	company string
	logger  zerolog.Logger
	now     func() time.Time
}

func NewNotificationService(deps NotificationServiceDeps) *NotificationService {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &NotificationService{
		gateway: deps.Gateway,
		dedup:   deps.Dedup,
		logs:    deps.Logs,
		parcels: deps.Parcels,
		company: deps.CompanyName,
		logger:  deps.Logger,
		now:     now,
	}
}

// Handle sends the template for the event's status, at most once per
// (parcel, status). A failed send is returned as *domain.DispatchFailure and is
// not retried.
func (s *NotificationService) Handle(ctx context.Context, event domain.LifecycleEvent) error {
	start := time.Now()

	text, ok := templates.ForEvent(event, s.company)
	if !ok {
		s.logger.Warn().Str("parcel_id", event.ParcelID).Str("status", string(event.Status)).Msg("no template for status")
		return nil
	}

	if s.dedup != nil {
		claimed, err := s.dedup.Claim(ctx, event.ParcelID, event.Status)
		switch {
		case err != nil:
			// Without the dedup store we would rather send twice than never.
			s.logger.Warn().Err(err).Str("parcel_id", event.ParcelID).Msg("notification dedup unavailable")
		case !claimed:
			metrics.NotificationsDedupTotal.WithLabelValues("hit").Inc()
			s.logger.Info().
				Str("parcel_id", event.ParcelID).
				Str("status", string(event.Status)).
				Msg("duplicate lifecycle event skipped")
			return nil
		default:
			metrics.NotificationsDedupTotal.WithLabelValues("miss").Inc()
		}
	}

	_, err := s.send(ctx, event.ParcelID, event.RecipientPhone, text, "")
	label := string(event.Status)
	if err != nil {
		label = "error"
	}
	metrics.EventHandlingDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	return err
}

type customMessageFields struct {
	Message string `field:"message" validate:"required"`
}

// SendCustom sends an operator-composed message to a parcel's recipient.
func (s *NotificationService) SendCustom(ctx context.Context, actor domain.Actor, parcelID, message string) (*domain.SMSReceipt, error) {
	fields := customMessageFields{Message: strings.TrimSpace(message)}
	ve := domain.NewValidationError()
	collectInput(ve, fields)
	if utf8.RuneCountInString(fields.Message) > templates.MaxCustomMessageLength {
		ve.Add("message", fmt.Sprintf("must be at most %d characters", templates.MaxCustomMessageLength))
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	parcel, err := s.parcels.FindByID(ctx, parcelID)
	if err != nil {
		return nil, domain.Storage("send sms", err)
	}
	if !canAccessParcel(actor, parcel) {
		return nil, domain.ErrForbidden
	}

	return s.send(ctx, parcel.ID, parcel.RecipientPhone, fields.Message, actor.StaffID)
}

func (s *NotificationService) send(ctx context.Context, parcelID, to, text, sentBy string) (*domain.SMSReceipt, error) {
	provider := s.gateway.Provider()
	receipt, err := s.gateway.Send(ctx, domain.SMSMessage{To: to, Message: text})
	if err == nil && (receipt == nil || !receipt.Success) {
		err = errors.New("gateway rejected the message")
	}
	if err != nil {
		var df *domain.DispatchFailure
		if !errors.As(err, &df) {
			err = &domain.DispatchFailure{Provider: provider, Err: err}
		}
	}

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.SMSDispatchTotal.WithLabelValues(provider, result).Inc()

	s.record(ctx, &domain.SMSLog{
		ParcelID:       parcelID,
		RecipientPhone: to,
		Message:        text,
		SentBy:         sentBy,
		Provider:       provider,
		Success:        err == nil,
		SentAt:         s.now(),
	})

	if err != nil {
		s.logger.Error().Err(err).Str("parcel_id", parcelID).Str("provider", provider).Msg("sms dispatch failed")
		return nil, err
	}
	s.logger.Info().Str("parcel_id", parcelID).Str("provider", provider).Msg("sms sent")
	return receipt, nil
}

func (s *NotificationService) record(ctx context.Context, entry *domain.SMSLog) {
	if s.logs == nil {
		return
	}
	if err := s.logs.Insert(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("parcel_id", entry.ParcelID).Msg("failed to record sms log")
	}
}
