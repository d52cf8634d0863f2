package domain

import "time"

// ParcelStatus represents the lifecycle state of a parcel.
type ParcelStatus string

const (
	StatusPending   ParcelStatus = "pending"
	StatusInTransit ParcelStatus = "in_transit"
	StatusDelivered ParcelStatus = "delivered"
)

// MaxDescriptionLength is the upper bound for a parcel's short description, in characters.
const MaxDescriptionLength = 140

// statusRank fixes the forward-only order of the parcel lifecycle.
var statusRank = map[ParcelStatus]int{
	StatusPending:   0,
	StatusInTransit: 1,
	StatusDelivered: 2,
}

// Statuses returns every known status in lifecycle order.
func Statuses() []ParcelStatus {
	return []ParcelStatus{StatusPending, StatusInTransit, StatusDelivered}
}

// Valid reports whether s is a known lifecycle state.
func (s ParcelStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transition is possible from s.
func (s ParcelStatus) Terminal() bool {
	return s == StatusDelivered
}

// CanTransitionTo reports whether moving from s to next respects the forward-only
// ordering. Staying on the same status is allowed (it is a no-op for callers) and
// skipping ahead (pending → delivered) is allowed; moving backward is not.
func (s ParcelStatus) CanTransitionTo(next ParcelStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to >= from
}

// Parcel is the core aggregate root.
type Parcel struct {
	ID               string       `json:"id"`
	TrackingCode     string       `json:"tracking_code"`
	CreatedBy        string       `json:"created_by"`
	SenderName       string       `json:"sender_name"`
	SenderPhone      string       `json:"sender_phone"`
	RecipientName    string       `json:"recipient_name"`
	RecipientPhone   string       `json:"recipient_phone"`
	DestinationID    string       `json:"destination_id"`
	ShortDescription string       `json:"short_description"`
	Status           ParcelStatus `json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`

	// LedgerPosted is false between the parcel write and its delivery_fee entry.
	// A parcel that stays false past the reconciliation grace period is an orphan.
	LedgerPosted   bool   `json:"ledger_posted"`
	IdempotencyKey string `json:"-"`
}
