package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
)

const collectionLedger = "ledger"

// LedgerRepository is append-only; entries are never updated or removed.
type LedgerRepository struct {
	collection
}

func NewLedgerRepository(db *mongo.Database, timeout time.Duration) *LedgerRepository {
	return &LedgerRepository{collection: newCollection(db, collectionLedger, timeout)}
}

type mongoLedgerEntry struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Type      string               `bson:"type"`
	Amount    primitive.Decimal128 `bson:"amount"`
	Currency  string               `bson:"currency"`
	StaffID   string               `bson:"staff_id"`
	ParcelID  string               `bson:"parcel_id,omitempty"`
	CreatedAt time.Time            `bson:"created_at"`
}

func (m *mongoLedgerEntry) toDomain() domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:        m.ID.Hex(),
		Type:      domain.EntryType(m.Type),
		Amount:    fromDecimal128(m.Amount),
		Currency:  m.Currency,
		StaffID:   m.StaffID,
		ParcelID:  m.ParcelID,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

// Append inserts e and sets e.ID. The partial unique index on parcel_id turns a
// second delivery_fee for one parcel into domain.ErrDuplicate.
func (r *LedgerRepository) Append(ctx context.Context, e *domain.LedgerEntry) error {
	amount, err := toDecimal128(e.Amount)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.col.InsertOne(ctx, mongoLedgerEntry{
		Type:      string(e.Type),
		Amount:    amount,
		Currency:  e.Currency,
		StaffID:   e.StaffID,
		ParcelID:  e.ParcelID,
		CreatedAt: e.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("delivery fee for parcel %s %w", e.ParcelID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid.Hex()
	}
	return nil
}

func (r *LedgerRepository) FindDeliveryFee(ctx context.Context, parcelID string) (*domain.LedgerEntry, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc mongoLedgerEntry
	err := r.col.FindOne(ctx, bson.M{"type": string(domain.EntryDeliveryFee), "parcel_id": parcelID}).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("delivery fee for parcel %s: %w", parcelID, domain.ErrLedgerEntryNotFound)
		}
		return nil, fmt.Errorf("find delivery fee: %w", err)
	}
	e := doc.toDomain()
	return &e, nil
}

// List returns entries newest first.
func (r *LedgerRepository) List(ctx context.Context, f ports.LedgerFilter) ([]domain.LedgerEntry, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := ledgerMatch(f)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find ledger entries: %w", err)
	}
	var docs []mongoLedgerEntry
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode ledger entries: %w", err)
	}
	out := make([]domain.LedgerEntry, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// SumByType totals the matching entries per type in the database.
func (r *LedgerRepository) SumByType(ctx context.Context, f ports.LedgerFilter) (map[domain.EntryType]decimal.Decimal, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: ledgerMatch(f)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$type"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("sum ledger: %w", err)
	}
	var rows []struct {
		Type  string               `bson:"_id"`
		Total primitive.Decimal128 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode ledger sums: %w", err)
	}

	sums := make(map[domain.EntryType]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[domain.EntryType(row.Type)] = fromDecimal128(row.Total)
	}
	return sums, nil
}

func ledgerMatch(f ports.LedgerFilter) bson.M {
	filter := bson.M{}
	if f.StaffID != "" {
		filter["staff_id"] = f.StaffID
	}
	if f.Type != "" {
		filter["type"] = string(f.Type)
	}
	if !f.Since.IsZero() {
		filter["created_at"] = bson.M{"$gte": f.Since}
	}
	return filter
}

// StaffIDs returns every staff id that has at least one entry.
func (r *LedgerRepository) StaffIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	values, err := r.col.Distinct(ctx, "staff_id", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct ledger staff: %w", err)
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

func (r *LedgerRepository) EnsureIndexes(ctx context.Context) error {
	return r.createIndexes(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "type", Value: 1}, {Key: "parcel_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"type": string(domain.EntryDeliveryFee)}),
		},
		{Keys: bson.D{{Key: "staff_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
}
