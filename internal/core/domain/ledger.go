package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies a ledger entry.
type EntryType string

const (
	EntryDeliveryFee EntryType = "delivery_fee"
	EntryWithdrawal  EntryType = "withdrawal"
	EntryBonus       EntryType = "bonus"
	EntryPenalty     EntryType = "penalty"
)

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	switch t {
	case EntryDeliveryFee, EntryWithdrawal, EntryBonus, EntryPenalty:
		return true
	}
	return false
}

// Credit reports whether entries of this type add to a wallet balance.
func (t EntryType) Credit() bool {
	return t == EntryDeliveryFee || t == EntryBonus
}

// Signed returns amount with the sign this entry type contributes to a balance.
func (t EntryType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t.Credit() {
		return amount
	}
	return amount.Neg()
}

// LedgerEntry is an immutable financial record attributable to a staff member.
type LedgerEntry struct {
	ID        string          `json:"id"`
	Type      EntryType       `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	StaffID   string          `json:"staff_id"`
	ParcelID  string          `json:"parcel_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Wallet is the cached balance of a staff member. The ledger is the source of
// truth; a Wallet that disagrees with it is stale.
type Wallet struct {
	StaffID   string          `json:"staff_id"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Totals aggregates a set of entries into income, expenses and their difference.
type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// SumEntries folds entries into Totals.
func SumEntries(entries []LedgerEntry) Totals {
	byType := make(map[EntryType]decimal.Decimal, 4)
	for _, e := range entries {
		byType[e.Type] = byType[e.Type].Add(e.Amount)
	}
	return TotalsByType(byType)
}

// TotalsByType folds per-type sums into Totals. Unknown types are ignored.
func TotalsByType(sums map[EntryType]decimal.Decimal) Totals {
	t := Totals{Income: decimal.Zero, Expenses: decimal.Zero}
	for typ, amount := range sums {
		if !typ.Valid() {
			continue
		}
		if typ.Credit() {
			t.Income = t.Income.Add(amount)
		} else {
			t.Expenses = t.Expenses.Add(amount)
		}
	}
	t.Net = t.Income.Sub(t.Expenses)
	return t
}

// Balance is the signed sum (delivery_fee + bonus) - (withdrawal + penalty).
func Balance(sums map[EntryType]decimal.Decimal) decimal.Decimal {
	return TotalsByType(sums).Net
}
