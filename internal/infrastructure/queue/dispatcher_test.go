package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []domain.LifecycleEvent
	done   chan struct{}
	want   int
}

func (h *recordingHandler) Handle(_ context.Context, ev domain.LifecycleEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	if len(h.events) == h.want {
		close(h.done)
	}
	return nil
}

func TestDispatcher_PreservesPerParcelOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	statuses := []domain.ParcelStatus{domain.StatusPending, domain.StatusInTransit, domain.StatusDelivered}
	const parcels = 20
	h := &recordingHandler{done: make(chan struct{}), want: parcels * len(statuses)}
	d := NewDispatcher(4, h, zerolog.Nop())
	d.Start(ctx)

	for _, s := range statuses {
		for i := 0; i < parcels; i++ {
			ev := domain.LifecycleEvent{ParcelID: fmt.Sprintf("p-%d", i), Status: s}
			if err := d.Publish(ctx, ev); err != nil {
				t.Fatalf("Publish: %v", err)
			}
		}
	}

	select {
	case <-h.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for events")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	seen := make(map[string]int)
	for _, ev := range h.events {
		idx := seen[ev.ParcelID]
		if statuses[idx] != ev.Status {
			t.Fatalf("parcel %s: event %d has status %s, want %s", ev.ParcelID, idx, ev.Status, statuses[idx])
		}
		seen[ev.ParcelID] = idx + 1
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, &recordingHandler{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	a := d.shardIndex("parcel-42")
	for i := 0; i < 10; i++ {
		if d.shardIndex("parcel-42") != a {
			t.Fatal("shard index must be deterministic")
		}
	}
	if a < 0 || a >= defaultWorkers {
		t.Fatalf("shard index out of range: %d", a)
	}
}

func TestDispatcher_PublishHonoursCancellation(t *testing.T) {
	d := NewDispatcher(1, &recordingHandler{}, zerolog.Nop())
	// No workers started: fill the buffer so the next publish blocks.
	for i := 0; i < channelBuffer; i++ {
		if err := d.Publish(context.Background(), domain.LifecycleEvent{ParcelID: "p"}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := d.Publish(ctx, domain.LifecycleEvent{ParcelID: "p"}); err == nil {
		t.Fatal("expected a context error once the buffer is full")
	}
}
