package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
)

const (
	// SubjectPrefix is followed by the status the parcel entered.
	SubjectPrefix = "parcels.lifecycle"
	queueGroup    = "notifications"
)

// SubjectFor returns the subject a lifecycle event is published on.
func SubjectFor(status domain.ParcelStatus) string {
	return SubjectPrefix + "." + string(status)
}

// Connect opens a NATS connection that reconnects indefinitely and logs
// connection state changes.
func Connect(url string, log zerolog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("courier-ops"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return nc, nil
}

// NATSPublisher publishes lifecycle events as JSON. Delivery to the handler is
// asynchronous, so Publish only reports transport errors.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

func (p *NATSPublisher) Publish(_ context.Context, event domain.LifecycleEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode lifecycle event: %w", err)
	}
	if err := p.conn.Publish(SubjectFor(event.Status), data); err != nil {
		return fmt.Errorf("publish lifecycle event: %w", err)
	}
	return nil
}

// Subscriber feeds lifecycle events from NATS into a handler. Instances share
// the "notifications" queue group so each event is handled by one of them.
type Subscriber struct {
	handler ports.LifecycleHandler
	log     zerolog.Logger
	ctx     context.Context
}

func NewSubscriber(ctx context.Context, handler ports.LifecycleHandler, log zerolog.Logger) *Subscriber {
	return &Subscriber{handler: handler, log: log, ctx: ctx}
}

// Subscribe starts consuming every lifecycle subject.
func (s *Subscriber) Subscribe(conn *nats.Conn) (*nats.Subscription, error) {
	sub, err := conn.QueueSubscribe(SubjectPrefix+".>", queueGroup, s.handle)
	if err != nil {
		return nil, fmt.Errorf("nats subscribe: %w", err)
	}
	return sub, nil
}

func (s *Subscriber) handle(msg *nats.Msg) {
	var event domain.LifecycleEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		s.log.Error().Err(err).Str("subject", msg.Subject).Msg("malformed lifecycle event")
		return
	}
	if err := s.handler.Handle(s.ctx, event); err != nil {
		s.log.Error().Err(err).
			Str("parcel_id", event.ParcelID).
			Str("status", string(event.Status)).
			Msg("lifecycle event handling failed")
	}
}
