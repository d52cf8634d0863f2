package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// --- Auth ---

type sessionRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type sessionResponse struct {
	Token string        `json:"token"`
	Staff staffResponse `json:"staff"`
}

// --- Staff ---

type staffRequest struct {
	Name  string `json:"name"  validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Role  string `json:"role"  validate:"omitempty,oneof=admin staff"`
}

type staffResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// --- Destinations ---

type destinationRequest struct {
	Name    string           `json:"name"     validate:"required"`
	Region  string           `json:"region"   validate:"required"`
	BaseFee *decimal.Decimal `json:"base_fee" validate:"required" swaggertype:"number"`
}

type destinationResponse struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Region  string          `json:"region"`
	BaseFee decimal.Decimal `json:"base_fee" swaggertype:"number"`
}

// --- Parcels ---

type createParcelRequest struct {
	SenderName       string `json:"sender_name"       validate:"required"`
	SenderPhone      string `json:"sender_phone"      validate:"required"`
	RecipientName    string `json:"recipient_name"    validate:"required"`
	RecipientPhone   string `json:"recipient_phone"   validate:"required"`
	DestinationID    string `json:"destination_id"    validate:"required"`
	ShortDescription string `json:"short_description" validate:"required,max=140"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_transit delivered"`
}

type smsRequest struct {
	Message string `json:"message" validate:"required,max=160"`
}

type parcelResponse struct {
	ID               string              `json:"id"`
	TrackingCode     string              `json:"tracking_code"`
	CreatedBy        string              `json:"created_by"`
	SenderName       string              `json:"sender_name"`
	SenderPhone      string              `json:"sender_phone"`
	RecipientName    string              `json:"recipient_name"`
	RecipientPhone   string              `json:"recipient_phone"`
	DestinationID    string              `json:"destination_id"`
	ShortDescription string              `json:"short_description"`
	Status           domain.ParcelStatus `json:"status"`
	LedgerPosted     bool                `json:"ledger_posted"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type createParcelResponse struct {
	Parcel  parcelResponse `json:"parcel"`
	Fee     *entryResponse `json:"fee,omitempty"`
	Warning string         `json:"warning,omitempty"`
}

type transitionResponse struct {
	Parcel  parcelResponse `json:"parcel"`
	Changed bool           `json:"changed"`
	Warning string         `json:"warning,omitempty"`
}

type listParcelsResponse struct {
	Items      []parcelResponse `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

// trackResponse is the public view of a parcel: status only.
type trackResponse struct {
	TrackingCode string              `json:"tracking_code"`
	Status       domain.ParcelStatus `json:"status"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

type smsResponse struct {
	Success  bool   `json:"success"`
	Provider string `json:"provider"`
}

type dashboardResponse struct {
	TotalParcels     int64           `json:"total_parcels"`
	PendingParcels   int64           `json:"pending_parcels"`
	InTransitParcels int64           `json:"in_transit_parcels"`
	DeliveredParcels int64           `json:"delivered_parcels"`
	WalletBalance    decimal.Decimal `json:"wallet_balance" swaggertype:"number"`
}

// --- Ledger / wallet ---

type appendEntryRequest struct {
	Type     string           `json:"type"      validate:"required,oneof=delivery_fee withdrawal bonus penalty"`
	Amount   *decimal.Decimal `json:"amount"    validate:"required" swaggertype:"number"`
	StaffID  string           `json:"staff_id"  validate:"required"`
	ParcelID string           `json:"parcel_id"`
	Currency string           `json:"currency"`
}

type entryResponse struct {
	ID        string           `json:"id"`
	Type      domain.EntryType `json:"type"`
	Amount    decimal.Decimal  `json:"amount" swaggertype:"number"`
	Currency  string           `json:"currency"`
	StaffID   string           `json:"staff_id"`
	ParcelID  string           `json:"parcel_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type totalsResponse struct {
	Income   decimal.Decimal `json:"income"   swaggertype:"number"`
	Expenses decimal.Decimal `json:"expenses" swaggertype:"number"`
	Net      decimal.Decimal `json:"net"      swaggertype:"number"`
}

type ledgerResponse struct {
	Entries []entryResponse `json:"entries"`
	Totals  totalsResponse  `json:"totals"`
}

type walletResponse struct {
	StaffID     string          `json:"staff_id"`
	Balance     decimal.Decimal `json:"balance" swaggertype:"number"`
	LastUpdated *time.Time      `json:"last_updated,omitempty"`
	Totals      totalsResponse  `json:"totals"`
	Recent      []entryResponse `json:"recent"`
}
