package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Destination is a named delivery location with its base delivery fee.
type Destination struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Region    string          `json:"region"`
	BaseFee   decimal.Decimal `json:"base_fee"`
	CreatedAt time.Time       `json:"created_at"`
}
