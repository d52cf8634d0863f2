package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

func testEvent(status domain.ParcelStatus) domain.LifecycleEvent {
	return domain.LifecycleEvent{
		ID:             "ev-1",
		ParcelID:       "p-1",
		TrackingCode:   "M7Q2K1ZX-AB3",
		Status:         status,
		RecipientName:  "John Doe",
		RecipientPhone: "+254722000111",
		OccurredAt:     time.Now(),
	}
}

func TestNotificationService_Handle_DeduplicatesRedelivery(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ev := testEvent(domain.StatusInTransit)

	if err := f.notifications.Handle(ctx, ev); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := f.notifications.Handle(ctx, ev); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if got := len(f.gateway.messages()); got != 1 {
		t.Fatalf("expected exactly one sms, got %d", got)
	}
}

func TestNotificationService_Handle_SendsWhenDedupUnavailable(t *testing.T) {
	f := newFixture()
	f.dedup.err = errors.New("redis: connection refused")

	if err := f.notifications.Handle(context.Background(), testEvent(domain.StatusDelivered)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	sent := f.gateway.messages()
	if len(sent) != 1 || !strings.Contains(sent[0].Message, "delivered successfully") {
		t.Fatalf("unexpected messages: %+v", sent)
	}
}

func TestNotificationService_Handle_DispatchFailure(t *testing.T) {
	f := newFixture()
	f.gateway.err = errors.New("503 from provider")

	err := f.notifications.Handle(context.Background(), testEvent(domain.StatusPending))
	var df *domain.DispatchFailure
	if !errors.As(err, &df) {
		t.Fatalf("expected DispatchFailure, got %v", err)
	}
	if len(f.smsLogs.logs) != 1 || f.smsLogs.logs[0].Success {
		t.Fatalf("failed send must be logged as unsuccessful: %+v", f.smsLogs.logs)
	}
}

func TestNotificationService_Handle_UnknownStatusIgnored(t *testing.T) {
	f := newFixture()
	if err := f.notifications.Handle(context.Background(), testEvent("lost")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(f.gateway.messages()) != 0 {
		t.Fatal("no template means no sms")
	}
}

func TestNotificationService_SendCustom(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	res, _ := f.parcelSvc.Create(ctx, staffActor, validParcelInput())

	receipt, err := f.notifications.SendCustom(ctx, staffActor, res.Parcel.ID, "  Driver arriving at 3pm  ")
	if err != nil {
		t.Fatalf("SendCustom: %v", err)
	}
	if !receipt.Success {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	sent := f.gateway.messages()
	last := sent[len(sent)-1]
	if last.Message != "Driver arriving at 3pm" || last.To != res.Parcel.RecipientPhone {
		t.Fatalf("unexpected sms: %+v", last)
	}
	logged := f.smsLogs.logs[len(f.smsLogs.logs)-1]
	if logged.SentBy != staffActor.StaffID {
		t.Errorf("expected sent_by %s, got %s", staffActor.StaffID, logged.SentBy)
	}

	if _, err := f.notifications.SendCustom(ctx, otherStaff, res.Parcel.ID, "hi"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.notifications.SendCustom(ctx, staffActor, res.Parcel.ID, strings.Repeat("a", 161)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for long message, got %v", err)
	}
	if _, err := f.notifications.SendCustom(ctx, staffActor, res.Parcel.ID, "   "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for blank message, got %v", err)
	}
}
