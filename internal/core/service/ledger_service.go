package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
	"github.com/courierpwa/courier-ops/internal/pkg/metrics"
)

const (
	defaultLedgerLimit = 50
	maxLedgerLimit     = 500
	recentEntries      = 10
)

// LedgerServiceDeps are the collaborators of LedgerService.
type LedgerServiceDeps struct {
	Entries  ports.LedgerRepository
	Wallets  ports.WalletRepository
	Parcels  ports.ParcelRepository
	Currency string
	Logger   zerolog.Logger
	Now      func() time.Time
}

// LedgerService appends entries and keeps the cached wallets in line with them.
type LedgerService struct {
	entries  ports.LedgerRepository
	wallets  ports.WalletRepository
	parcels  ports.ParcelRepository
	currency string
	logger   zerolog.Logger
	now      func() time.Time
}

func NewLedgerService(deps LedgerServiceDeps) *LedgerService {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	currency := deps.Currency
	if currency == "" {
		currency = "KES"
	}
	return &LedgerService{
		entries:  deps.Entries,
		wallets:  deps.Wallets,
		parcels:  deps.Parcels,
		currency: currency,
		logger:   deps.Logger,
		now:      now,
	}
}

type entryFields struct {
	Type    string `field:"type"     validate:"required,oneof=delivery_fee withdrawal bonus penalty"`
	StaffID string `field:"staff_id" validate:"required"`
}

// AppendEntry records a manual posting. Only admins may post; a delivery_fee
// needs an existing parcel owned by the staff member and is accepted once.
func (s *LedgerService) AppendEntry(ctx context.Context, actor domain.Actor, input ports.AppendEntryInput) (*domain.LedgerEntry, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	fields := entryFields{
		Type:    strings.TrimSpace(input.Type),
		StaffID: strings.TrimSpace(input.StaffID),
	}
	ve := domain.NewValidationError()
	collectInput(ve, fields)
	if input.Amount.IsNegative() {
		ve.Add("amount", "must not be negative")
	}
	typ := domain.EntryType(fields.Type)
	parcelID := strings.TrimSpace(input.ParcelID)
	switch {
	case typ == domain.EntryDeliveryFee && parcelID == "":
		ve.Add("parcel_id", "is required for delivery_fee entries")
	case typ != domain.EntryDeliveryFee && parcelID != "":
		ve.Add("parcel_id", "is only allowed on delivery_fee entries")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	var parcel *domain.Parcel
	if typ == domain.EntryDeliveryFee {
		p, err := s.parcels.FindByID(ctx, parcelID)
		if err != nil {
			return nil, domain.Storage("append entry: find parcel", err)
		}
		if p.CreatedBy != fields.StaffID {
			ve.Add("staff_id", "must be the staff member who created the parcel")
			return nil, ve
		}
		parcel = p
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = s.currency
	}
	entry := &domain.LedgerEntry{
		Type:      typ,
		Amount:    input.Amount,
		Currency:  currency,
		StaffID:   fields.StaffID,
		ParcelID:  parcelID,
		CreatedAt: s.now(),
	}
	if err := s.entries.Append(ctx, entry); err != nil {
		return nil, domain.Storage("append entry", err)
	}
	metrics.LedgerEntriesTotal.WithLabelValues(string(typ)).Inc()

	if parcel != nil && !parcel.LedgerPosted {
		if err := s.parcels.MarkLedgerPosted(ctx, parcel.ID); err != nil {
			s.logger.Warn().Err(err).Str("parcel_id", parcel.ID).Msg("failed to flag parcel as posted")
		}
	}

	s.logger.Info().
		Str("entry_id", entry.ID).
		Str("type", string(typ)).
		Str("staff_id", entry.StaffID).
		Str("amount", entry.Amount.String()).
		Str("actor_id", actor.StaffID).
		Msg("ledger entry appended")

	s.refreshWallet(ctx, entry.StaffID)
	return entry, nil
}

// PostDeliveryFee credits the parcel's creator with fee. Posting twice for one
// parcel returns the entry already on file.
func (s *LedgerService) PostDeliveryFee(ctx context.Context, parcel *domain.Parcel, fee decimal.Decimal) (*domain.LedgerEntry, error) {
	entry := &domain.LedgerEntry{
		Type:      domain.EntryDeliveryFee,
		Amount:    fee,
		Currency:  s.currency,
		StaffID:   parcel.CreatedBy,
		ParcelID:  parcel.ID,
		CreatedAt: s.now(),
	}
	err := s.entries.Append(ctx, entry)
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		existing, findErr := s.entries.FindDeliveryFee(ctx, parcel.ID)
		if findErr != nil {
			return nil, domain.Storage("post delivery fee", findErr)
		}
		return existing, nil
	case err != nil:
		return nil, domain.Storage("post delivery fee", err)
	}

	metrics.LedgerEntriesTotal.WithLabelValues(string(domain.EntryDeliveryFee)).Inc()
	s.refreshWallet(ctx, entry.StaffID)
	return entry, nil
}

// BalanceOf returns the ledger balance of staffID and repairs the cached wallet
// when it disagrees.
func (s *LedgerService) BalanceOf(ctx context.Context, staffID string) (decimal.Decimal, error) {
	balance, _, err := s.ledgerBalance(ctx, staffID)
	if err != nil {
		return decimal.Zero, err
	}
	s.compareAndRepair(ctx, staffID, balance)
	return balance, nil
}

// Wallet returns the balance, totals and most recent entries of a staff member.
// Staff may only read their own wallet.
func (s *LedgerService) Wallet(ctx context.Context, actor domain.Actor, staffID string) (*ports.WalletView, error) {
	if staffID == "" {
		staffID = actor.StaffID
	}
	if !actor.IsAdmin() && staffID != actor.StaffID {
		return nil, domain.ErrForbidden
	}

	balance, totals, err := s.ledgerBalance(ctx, staffID)
	if err != nil {
		return nil, err
	}
	cached := s.compareAndRepair(ctx, staffID, balance)

	recent, err := s.entries.List(ctx, ports.LedgerFilter{StaffID: staffID, Limit: recentEntries})
	if err != nil {
		return nil, domain.Storage("wallet: recent entries", err)
	}

	return &ports.WalletView{
		StaffID:     staffID,
		Balance:     balance,
		LastUpdated: cached.UpdatedAt,
		Totals:      totals,
		Recent:      recent,
	}, nil
}

// ListEntries returns ledger entries newest first with totals over the whole
// filtered set. Staff are always restricted to their own entries.
func (s *LedgerService) ListEntries(ctx context.Context, actor domain.Actor, query ports.LedgerQuery) (*ports.LedgerPage, error) {
	ve := domain.NewValidationError()
	typ := domain.EntryType(strings.TrimSpace(query.Type))
	if typ == "all" {
		typ = ""
	}
	if typ != "" && !typ.Valid() {
		ve.Add("type", "must be one of: all, delivery_fee, withdrawal, bonus, penalty")
	}
	since, ok := s.windowStart(query.Window)
	if !ok {
		ve.Add("window", "must be one of: today, week, month, all")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	staffID := strings.TrimSpace(query.StaffID)
	if !actor.IsAdmin() {
		staffID = actor.StaffID
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultLedgerLimit
	}
	if limit > maxLedgerLimit {
		limit = maxLedgerLimit
	}

	filter := ports.LedgerFilter{StaffID: staffID, Type: typ, Since: since, Limit: limit}
	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, domain.Storage("list ledger entries", err)
	}
	sums, err := s.entries.SumByType(ctx, filter)
	if err != nil {
		return nil, domain.Storage("sum ledger entries", err)
	}
	return &ports.LedgerPage{Entries: entries, Totals: domain.TotalsByType(sums)}, nil
}

// VerifyWallets compares every cached wallet, and every staff member with
// ledger entries, against the ledger and repairs the ones that drifted.
func (s *LedgerService) VerifyWallets(ctx context.Context) ([]ports.WalletCheck, error) {
	cached, err := s.wallets.List(ctx)
	if err != nil {
		return nil, domain.Storage("verify wallets: list wallets", err)
	}
	staffIDs, err := s.entries.StaffIDs(ctx)
	if err != nil {
		return nil, domain.Storage("verify wallets: list staff", err)
	}

	byStaff := make(map[string]decimal.Decimal, len(cached))
	for _, w := range cached {
		byStaff[w.StaffID] = w.Balance
	}
	for _, id := range staffIDs {
		if _, ok := byStaff[id]; !ok {
			byStaff[id] = decimal.Zero
		}
	}
	ids := make([]string, 0, len(byStaff))
	for id := range byStaff {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	checks := make([]ports.WalletCheck, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return checks, err
		}
		balance, _, err := s.ledgerBalance(ctx, id)
		if err != nil {
			return checks, err
		}
		check := ports.WalletCheck{StaffID: id, Cached: byStaff[id], Ledger: balance}
		if !check.Cached.Equal(balance) {
			metrics.WalletDivergenceTotal.Inc()
			s.logger.Warn().
				Str("staff_id", id).
				Str("cached", check.Cached.String()).
				Str("ledger", balance.String()).
				Msg("wallet cache diverged from ledger")
			if err := s.putWallet(ctx, id, balance); err != nil {
				return checks, err
			}
			check.Repaired = true
		}
		checks = append(checks, check)
	}
	return checks, nil
}

func (s *LedgerService) ledgerBalance(ctx context.Context, staffID string) (decimal.Decimal, domain.Totals, error) {
	sums, err := s.entries.SumByType(ctx, ports.LedgerFilter{StaffID: staffID})
	if err != nil {
		return decimal.Zero, domain.Totals{}, domain.Storage("sum ledger", err)
	}
	totals := domain.TotalsByType(sums)
	return totals.Net, totals, nil
}

// compareAndRepair brings the cached wallet in line with balance and returns
// the wallet as stored afterwards. Cache failures are logged, never returned.
func (s *LedgerService) compareAndRepair(ctx context.Context, staffID string, balance decimal.Decimal) domain.Wallet {
	cached, err := s.wallets.Get(ctx, staffID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		s.logger.Warn().Err(err).Str("staff_id", staffID).Msg("failed to read cached wallet")
		return domain.Wallet{StaffID: staffID, Balance: balance}
	case cached.Balance.Equal(balance):
		return *cached
	default:
		metrics.WalletDivergenceTotal.Inc()
		s.logger.Warn().
			Str("staff_id", staffID).
			Str("cached", cached.Balance.String()).
			Str("ledger", balance.String()).
			Msg("wallet cache diverged from ledger")
	}

	w := domain.Wallet{StaffID: staffID, Balance: balance, UpdatedAt: s.now()}
	if err := s.wallets.Put(ctx, &w); err != nil {
		s.logger.Warn().Err(err).Str("staff_id", staffID).Msg("failed to repair cached wallet")
	}
	return w
}

// refreshWallet recomputes the cached wallet after an append.
func (s *LedgerService) refreshWallet(ctx context.Context, staffID string) {
	balance, _, err := s.ledgerBalance(ctx, staffID)
	if err == nil {
		err = s.putWallet(ctx, staffID, balance)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("staff_id", staffID).Msg("failed to refresh cached wallet")
	}
}

func (s *LedgerService) putWallet(ctx context.Context, staffID string, balance decimal.Decimal) error {
	w := &domain.Wallet{StaffID: staffID, Balance: balance, UpdatedAt: s.now()}
	return domain.Storage("put wallet", s.wallets.Put(ctx, w))
}

// windowStart maps a listing window to its lower bound. A zero time means no bound.
func (s *LedgerService) windowStart(window string) (time.Time, bool) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch strings.TrimSpace(window) {
	case "", "all":
		return time.Time{}, true
	case "today":
		return today, true
	case "week":
		return today.AddDate(0, 0, -6), true
	case "month":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}
