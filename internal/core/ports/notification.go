package ports

import (
	"context"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

// SMSGateway sends a single message through the configured provider.
type SMSGateway interface {
	Send(ctx context.Context, msg domain.SMSMessage) (*domain.SMSReceipt, error)
	Provider() string
}

// EventPublisher hands a committed lifecycle event to the notification side.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.LifecycleEvent) error
}

// LifecycleHandler consumes lifecycle events.
type LifecycleHandler interface {
	Handle(ctx context.Context, event domain.LifecycleEvent) error
}

// NotificationDedup remembers which (parcel, status) pairs were already notified.
type NotificationDedup interface {
	// Claim returns true the first time it is called for a pair.
	Claim(ctx context.Context, parcelID string, status domain.ParcelStatus) (bool, error)
}

// SMSLogRepository keeps an audit trail of sent messages.
type SMSLogRepository interface {
	Insert(ctx context.Context, log *domain.SMSLog) error
}

// NotificationService is the consumer side of lifecycle events plus ad-hoc messages.
type NotificationService interface {
	LifecycleHandler
	SendCustom(ctx context.Context, actor domain.Actor, parcelID, message string) (*domain.SMSReceipt, error)
}
