package domain

import "time"

// LifecycleEvent is emitted after a parcel write commits. Status is the status the
// parcel entered; a freshly created parcel emits StatusPending.
type LifecycleEvent struct {
	ID             string       `json:"id"`
	ParcelID       string       `json:"parcel_id"`
	TrackingCode   string       `json:"tracking_code"`
	Status         ParcelStatus `json:"status"`
	RecipientName  string       `json:"recipient_name"`
	RecipientPhone string       `json:"recipient_phone"`
	ActorID        string       `json:"actor_id"`
	OccurredAt     time.Time    `json:"occurred_at"`
}

// SMSMessage is a single outbound text message.
type SMSMessage struct {
	To      string
	Message string
}

// SMSReceipt is the gateway's acknowledgment of a send.
type SMSReceipt struct {
	Success  bool   `json:"success"`
	Provider string `json:"provider"`
	Payload  string `json:"payload,omitempty"`
}

// SMSLog records an SMS that was handed to the gateway.
type SMSLog struct {
	ParcelID       string    `json:"parcel_id"`
	RecipientPhone string    `json:"recipient_phone"`
	Message        string    `json:"message"`
	SentBy         string    `json:"sent_by,omitempty"`
	Provider       string    `json:"provider"`
	Success        bool      `json:"success"`
	SentAt         time.Time `json:"sent_at"`
}
