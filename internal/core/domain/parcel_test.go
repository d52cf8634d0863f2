package domain

import "testing"

func TestParcelStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to ParcelStatus
		want     bool
	}{
		{StatusPending, StatusPending, true},
		{StatusPending, StatusInTransit, true},
		{StatusPending, StatusDelivered, true},
		{StatusInTransit, StatusDelivered, true},
		{StatusInTransit, StatusPending, false},
		{StatusDelivered, StatusPending, false},
		{StatusDelivered, StatusInTransit, false},
		{StatusDelivered, StatusDelivered, true},
		{StatusPending, ParcelStatus("lost"), false},
		{ParcelStatus("lost"), StatusDelivered, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestParcelStatus_Valid(t *testing.T) {
	for _, s := range Statuses() {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if ParcelStatus("cancelled").Valid() {
		t.Error("cancelled is not a parcel status")
	}
	if !StatusDelivered.Terminal() || StatusInTransit.Terminal() {
		t.Error("only delivered is terminal")
	}
}
