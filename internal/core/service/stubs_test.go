package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubParcelRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Parcel
	seq       int
	createErr error // if set, Create returns this error
	updates   int   // successful UpdateStatus calls
}

func newStubParcelRepo() *stubParcelRepo {
	return &stubParcelRepo{byID: make(map[string]*domain.Parcel)}
}

func (r *stubParcelRepo) Create(_ context.Context, p *domain.Parcel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	p.ID = fmt.Sprintf("p-%d", r.seq)
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubParcelRepo) find(match func(*domain.Parcel) bool) (*domain.Parcel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if match(p) {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrParcelNotFound
}

func (r *stubParcelRepo) FindByID(_ context.Context, id string) (*domain.Parcel, error) {
	return r.find(func(p *domain.Parcel) bool { return p.ID == id })
}

func (r *stubParcelRepo) FindByTrackingCode(_ context.Context, code string) (*domain.Parcel, error) {
	return r.find(func(p *domain.Parcel) bool { return p.TrackingCode == code })
}

func (r *stubParcelRepo) FindByIdempotencyKey(_ context.Context, createdBy, key string) (*domain.Parcel, error) {
	return r.find(func(p *domain.Parcel) bool { return p.CreatedBy == createdBy && p.IdempotencyKey == key })
}

func (r *stubParcelRepo) UpdateStatus(_ context.Context, id string, from, to domain.ParcelStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return domain.ErrParcelNotFound
	}
	if p.Status != from {
		return domain.ErrStatusConflict
	}
	p.Status = to
	p.UpdatedAt = at
	r.updates++
	return nil
}

func (r *stubParcelRepo) MarkLedgerPosted(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return domain.ErrParcelNotFound
	}
	p.LedgerPosted = true
	return nil
}

func (r *stubParcelRepo) ListUnposted(_ context.Context, before time.Time, limit int) ([]*domain.Parcel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Parcel
	for _, p := range r.byID {
		if !p.LedgerPosted && p.CreatedAt.Before(before) {
			clone := *p
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// List applies the same filters the real Mongo repo would use.
func (r *stubParcelRepo) List(_ context.Context, f ports.ParcelFilter) ([]*domain.Parcel, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Parcel
	search := strings.ToLower(f.Search)
	for _, p := range r.byID {
		if f.CreatedBy != "" && p.CreatedBy != f.CreatedBy {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if search != "" {
			haystack := strings.ToLower(strings.Join([]string{p.TrackingCode, p.SenderName, p.RecipientName, p.ShortDescription}, " "))
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		clone := *p
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start >= len(matched) {
		return []*domain.Parcel{}, total, nil
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *stubParcelRepo) CountByStatus(_ context.Context, createdBy string) (map[domain.ParcelStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.ParcelStatus]int64)
	for _, p := range r.byID {
		if createdBy == "" || p.CreatedBy == createdBy {
			counts[p.Status]++
		}
	}
	return counts, nil
}

func (r *stubParcelRepo) ExistsForDestination(_ context.Context, destinationID string) (bool, error) {
	_, err := r.find(func(p *domain.Parcel) bool { return p.DestinationID == destinationID })
	return err == nil, nil
}

func (r *stubParcelRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type stubDestinationRepo struct {
	byID map[string]*domain.Destination
	seq  int
}

func newStubDestinationRepo(dests ...*domain.Destination) *stubDestinationRepo {
	r := &stubDestinationRepo{byID: make(map[string]*domain.Destination)}
	for _, d := range dests {
		r.byID[d.ID] = d
	}
	return r
}

func (r *stubDestinationRepo) Create(_ context.Context, d *domain.Destination) error {
	r.seq++
	d.ID = fmt.Sprintf("d-%d", r.seq)
	clone := *d
	r.byID[d.ID] = &clone
	return nil
}

func (r *stubDestinationRepo) FindByID(_ context.Context, id string) (*domain.Destination, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrDestinationNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubDestinationRepo) Update(_ context.Context, d *domain.Destination) error {
	if _, ok := r.byID[d.ID]; !ok {
		return domain.ErrDestinationNotFound
	}
	clone := *d
	r.byID[d.ID] = &clone
	return nil
}

func (r *stubDestinationRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrDestinationNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubDestinationRepo) List(_ context.Context) ([]*domain.Destination, error) {
	out := make([]*domain.Destination, 0, len(r.byID))
	for _, d := range r.byID {
		clone := *d
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubDestinationRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

type stubLedgerRepo struct {
	mu        sync.Mutex
	entries   []domain.LedgerEntry
	seq       int
	appendErr error // if set, Append returns this error
	listed    []ports.LedgerFilter
}

type ledgerFilterMatch ports.LedgerFilter

func (f ledgerFilterMatch) match(e domain.LedgerEntry) bool {
	if f.StaffID != "" && e.StaffID != f.StaffID {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	return f.Since.IsZero() || !e.CreatedAt.Before(f.Since)
}

func (r *stubLedgerRepo) Append(_ context.Context, e *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	if e.Type == domain.EntryDeliveryFee {
		for _, existing := range r.entries {
			if existing.Type == domain.EntryDeliveryFee && existing.ParcelID == e.ParcelID {
				return domain.ErrDuplicate
			}
		}
	}
	r.seq++
	e.ID = fmt.Sprintf("e-%d", r.seq)
	r.entries = append(r.entries, *e)
	return nil
}

func (r *stubLedgerRepo) FindDeliveryFee(_ context.Context, parcelID string) (*domain.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Type == domain.EntryDeliveryFee && e.ParcelID == parcelID {
			clone := e
			return &clone, nil
		}
	}
	return nil, domain.ErrLedgerEntryNotFound
}

func (r *stubLedgerRepo) List(_ context.Context, f ports.LedgerFilter) ([]domain.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listed = append(r.listed, f)
	var out []domain.LedgerEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !ledgerFilterMatch(f).match(e) {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (r *stubLedgerRepo) SumByType(_ context.Context, f ports.LedgerFilter) (map[domain.EntryType]decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := make(map[domain.EntryType]decimal.Decimal)
	for _, e := range r.entries {
		if ledgerFilterMatch(f).match(e) {
			sums[e.Type] = sums[e.Type].Add(e.Amount)
		}
	}
	return sums, nil
}

func (r *stubLedgerRepo) StaffIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	var out []string
	for _, e := range r.entries {
		if _, ok := seen[e.StaffID]; !ok {
			seen[e.StaffID] = struct{}{}
			out = append(out, e.StaffID)
		}
	}
	return out, nil
}

func (r *stubLedgerRepo) fees(parcelID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Type == domain.EntryDeliveryFee && e.ParcelID == parcelID {
			n++
		}
	}
	return n
}

type stubWalletRepo struct {
	mu      sync.Mutex
	byStaff map[string]domain.Wallet
}

func newStubWalletRepo() *stubWalletRepo {
	return &stubWalletRepo{byStaff: make(map[string]domain.Wallet)}
}

func (r *stubWalletRepo) Get(_ context.Context, staffID string) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.byStaff[staffID]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return &w, nil
}

func (r *stubWalletRepo) Put(_ context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byStaff[w.StaffID] = *w
	return nil
}

func (r *stubWalletRepo) List(_ context.Context) ([]*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Wallet, 0, len(r.byStaff))
	for _, w := range r.byStaff {
		clone := w
		out = append(out, &clone)
	}
	return out, nil
}

type stubStaffRepo struct {
	byID map[string]*domain.Staff
	seq  int
}

func newStubStaffRepo() *stubStaffRepo {
	return &stubStaffRepo{byID: make(map[string]*domain.Staff)}
}

func (r *stubStaffRepo) FindByID(_ context.Context, id string) (*domain.Staff, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrStaffNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubStaffRepo) FindByPhone(_ context.Context, phone string) (*domain.Staff, error) {
	for _, s := range r.byID {
		if s.Phone == phone {
			clone := *s
			return &clone, nil
		}
	}
	return nil, domain.ErrStaffNotFound
}

func (r *stubStaffRepo) Create(_ context.Context, s *domain.Staff) (*domain.Staff, error) {
	for _, existing := range r.byID {
		if existing.Phone == s.Phone {
			return nil, domain.ErrDuplicate
		}
	}
	r.seq++
	clone := *s
	clone.ID = fmt.Sprintf("s-%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubStaffRepo) Update(_ context.Context, s *domain.Staff) error {
	if _, ok := r.byID[s.ID]; !ok {
		return domain.ErrStaffNotFound
	}
	clone := *s
	r.byID[s.ID] = &clone
	return nil
}

func (r *stubStaffRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrStaffNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubStaffRepo) List(_ context.Context) ([]*domain.Staff, error) {
	out := make([]*domain.Staff, 0, len(r.byID))
	for _, s := range r.byID {
		clone := *s
		out = append(out, &clone)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Notification stubs
// ---------------------------------------------------------------------------

type stubGateway struct {
	mu   sync.Mutex
	sent []domain.SMSMessage
	err  error
}

func (g *stubGateway) Send(_ context.Context, msg domain.SMSMessage) (*domain.SMSReceipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.sent = append(g.sent, msg)
	return &domain.SMSReceipt{Success: true, Provider: "stub"}, nil
}

func (g *stubGateway) Provider() string { return "stub" }

func (g *stubGateway) messages() []domain.SMSMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.SMSMessage(nil), g.sent...)
}

type stubDedup struct {
	seen map[string]bool
	err  error
}

func newStubDedup() *stubDedup { return &stubDedup{seen: make(map[string]bool)} }

func (d *stubDedup) Claim(_ context.Context, parcelID string, status domain.ParcelStatus) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	key := parcelID + ":" + string(status)
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

type stubSMSLogRepo struct {
	logs []domain.SMSLog
}

func (r *stubSMSLogRepo) Insert(_ context.Context, l *domain.SMSLog) error {
	r.logs = append(r.logs, *l)
	return nil
}

// syncPublisher hands events straight to a handler, the way inline mode does.
type syncPublisher struct {
	handler ports.LifecycleHandler
	events  []domain.LifecycleEvent
}

func (p *syncPublisher) Publish(ctx context.Context, ev domain.LifecycleEvent) error {
	p.events = append(p.events, ev)
	if p.handler == nil {
		return nil
	}
	return p.handler.Handle(ctx, ev)
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

var (
	adminActor = domain.Actor{StaffID: "admin-1", Role: domain.RoleAdmin}
	staffActor = domain.Actor{StaffID: "staff-1", Role: domain.RoleStaff}
	otherStaff = domain.Actor{StaffID: "staff-2", Role: domain.RoleStaff}
)

// tickingClock returns a clock that advances one second per call.
func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

type fixture struct {
	parcels      *stubParcelRepo
	destinations *stubDestinationRepo
	entries      *stubLedgerRepo
	wallets      *stubWalletRepo
	gateway      *stubGateway
	dedup        *stubDedup
	smsLogs      *stubSMSLogRepo
	publisher    *syncPublisher

	ledger        *LedgerService
	notifications *NotificationService
	parcelSvc     *ParcelService
}

func newFixture() *fixture {
	clock := tickingClock(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	f := &fixture{
		parcels: newStubParcelRepo(),
		destinations: newStubDestinationRepo(
			&domain.Destination{ID: "nbo-cbd", Name: "Nairobi CBD", Region: "Nairobi", BaseFee: decimal.NewFromInt(150)},
			&domain.Destination{ID: "msa", Name: "Mombasa", Region: "Coast", BaseFee: decimal.NewFromInt(250)},
		),
		entries: &stubLedgerRepo{},
		wallets: newStubWalletRepo(),
		gateway: &stubGateway{},
		dedup:   newStubDedup(),
		smsLogs: &stubSMSLogRepo{},
	}
	log := zerolog.Nop()

	f.ledger = NewLedgerService(LedgerServiceDeps{
		Entries:  f.entries,
		Wallets:  f.wallets,
		Parcels:  f.parcels,
		Currency: "KES",
		Logger:   log,
		Now:      clock,
	})
	f.notifications = NewNotificationService(NotificationServiceDeps{
		Gateway:     f.gateway,
		Dedup:       f.dedup,
		Logs:        f.smsLogs,
		Parcels:     f.parcels,
		CompanyName: "CourierPWA",
		Logger:      log,
		Now:         clock,
	})
	f.publisher = &syncPublisher{handler: f.notifications}
	f.parcelSvc = NewParcelService(ParcelServiceDeps{
		Parcels:      f.parcels,
		Destinations: f.destinations,
		Ledger:       f.ledger,
		Events:       f.publisher,
		Logger:       log,
		Now:          clock,
	})
	return f
}

func validParcelInput() ports.CreateParcelInput {
	return ports.CreateParcelInput{
		SenderName:       "Jane Sender",
		SenderPhone:      "0712345678",
		RecipientName:    "John Doe",
		RecipientPhone:   "0722000111",
		DestinationID:    "nbo-cbd",
		ShortDescription: "Box of books",
	}
}
