package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultTimeout = 10 * time.Second
	indexTimeout   = 30 * time.Second
)

// Config holds the connection settings for the courier document store.
type Config struct {
	URI      string
	Database string
	AppName  string
	Timeout  time.Duration
}

// Connect dials MongoDB and pings the primary before handing back the client
// and the courier database. Timeout bounds both the dial and server selection.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	appName := cfg.AppName
	if appName == "" {
		appName = "courier-ops"
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(timeout)

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(dialCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", cfg.Database, err)
	}
	if err := client.Ping(dialCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping primary: %w", err)
	}
	return client, client.Database(cfg.Database), nil
}

// Repositories bundles every collection-backed repository of the service.
type Repositories struct {
	Parcels      *ParcelRepository
	Destinations *DestinationRepository
	Staff        *StaffRepository
	Ledger       *LedgerRepository
	Wallets      *WalletRepository
	SMSLogs      *SMSLogRepository
}

// NewRepositories builds all repositories on db. Every call they make is bounded
// by timeout.
func NewRepositories(db *mongo.Database, timeout time.Duration) *Repositories {
	return &Repositories{
		Parcels:      NewParcelRepository(db, timeout),
		Destinations: NewDestinationRepository(db, timeout),
		Staff:        NewStaffRepository(db, timeout),
		Ledger:       NewLedgerRepository(db, timeout),
		Wallets:      NewWalletRepository(db, timeout),
		SMSLogs:      NewSMSLogRepository(db, timeout),
	}
}

// EnsureIndexes creates the indexes every collection relies on, including the
// unique ones that enforce one delivery fee per parcel and one account per phone.
func (r *Repositories) EnsureIndexes(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{collectionParcels, r.Parcels.EnsureIndexes},
		{collectionDestinations, r.Destinations.EnsureIndexes},
		{collectionStaff, r.Staff.EnsureIndexes},
		{collectionLedger, r.Ledger.EnsureIndexes},
		{collectionSMSLogs, r.SMSLogs.EnsureIndexes},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", s.name, err)
		}
	}
	return nil
}

// collection pairs a mongo collection with the per-call timeout.
type collection struct {
	col     *mongo.Collection
	timeout time.Duration
}

func newCollection(db *mongo.Database, name string, timeout time.Duration) collection {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return collection{col: db.Collection(name), timeout: timeout}
}

func (c collection) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c collection) createIndexes(ctx context.Context, models []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()
	_, err := c.col.Indexes().CreateMany(ctx, models)
	return err
}

// objectID parses a hex id. Malformed ids cannot exist, so they map to notFound.
func objectID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return oid, nil
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode decimal %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(d primitive.Decimal128) decimal.Decimal {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero
	}
	return v
}
