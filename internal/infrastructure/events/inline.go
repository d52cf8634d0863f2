// Package events holds the publishers that carry committed parcel lifecycle
// events to the notification side.
package events

import (
	"context"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
)

// InlinePublisher handles each event synchronously in the caller's goroutine.
// The handler's error is returned so the caller can surface it as a warning.
type InlinePublisher struct {
	handler ports.LifecycleHandler
}

func NewInlinePublisher(handler ports.LifecycleHandler) *InlinePublisher {
	return &InlinePublisher{handler: handler}
}

// Publish detaches from the caller's cancellation: the parcel write has already
// committed, so a client hanging up must not abort the SMS.
func (p *InlinePublisher) Publish(ctx context.Context, event domain.LifecycleEvent) error {
	return p.handler.Handle(context.WithoutCancel(ctx), event)
}
