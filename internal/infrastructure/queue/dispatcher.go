package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
	"github.com/courierpwa/courier-ops/internal/pkg/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes lifecycle events to a fixed set of workers using consistent
// hashing on the parcel id, guaranteeing per-parcel event ordering.
type Dispatcher struct {
	workers []chan domain.LifecycleEvent
	handler ports.LifecycleHandler
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, handler ports.LifecycleHandler, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.LifecycleEvent, numWorkers),
		handler: handler,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.LifecycleEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Publish hands the event to the worker responsible for its parcel. It blocks
// while that worker's buffer is full, until ctx is done. Dispatch errors are
// logged by the worker; the caller only learns about enqueue failures.
func (d *Dispatcher) Publish(ctx context.Context, event domain.LifecycleEvent) error {
	idx := d.shardIndex(event.ParcelID)
	select {
	case d.workers[idx] <- event:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a parcel id deterministically to a worker index.
func (d *Dispatcher) shardIndex(parcelID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(parcelID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.LifecycleEvent) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.EventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.handler.Handle(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("parcel_id", event.ParcelID).
					Str("status", string(event.Status)).
					Int("worker_id", id).
					Msg("lifecycle event handling failed")
			}
		}
	}
}
