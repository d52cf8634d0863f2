package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
)

const collectionParcels = "parcels"

type ParcelRepository struct {
	collection
}

func NewParcelRepository(db *mongo.Database, timeout time.Duration) *ParcelRepository {
	return &ParcelRepository{collection: newCollection(db, collectionParcels, timeout)}
}

type mongoParcel struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	TrackingCode     string             `bson:"tracking_code"`
	CreatedBy        string             `bson:"created_by"`
	SenderName       string             `bson:"sender_name"`
	SenderPhone      string             `bson:"sender_phone"`
	RecipientName    string             `bson:"recipient_name"`
	RecipientPhone   string             `bson:"recipient_phone"`
	DestinationID    string             `bson:"destination_id"`
	ShortDescription string             `bson:"short_description"`
	Status           string             `bson:"status"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
	LedgerPosted     bool               `bson:"ledger_posted"`
	IdempotencyKey   string             `bson:"idempotency_key,omitempty"`
}

func (m *mongoParcel) toDomain() *domain.Parcel {
	return &domain.Parcel{
		ID:               m.ID.Hex(),
		TrackingCode:     m.TrackingCode,
		CreatedBy:        m.CreatedBy,
		SenderName:       m.SenderName,
		SenderPhone:      m.SenderPhone,
		RecipientName:    m.RecipientName,
		RecipientPhone:   m.RecipientPhone,
		DestinationID:    m.DestinationID,
		ShortDescription: m.ShortDescription,
		Status:           domain.ParcelStatus(m.Status),
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
		LedgerPosted:     m.LedgerPosted,
		IdempotencyKey:   m.IdempotencyKey,
	}
}

// Create inserts a new parcel document and sets p.ID.
func (r *ParcelRepository) Create(ctx context.Context, p *domain.Parcel) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc := mongoParcel{
		TrackingCode:     p.TrackingCode,
		CreatedBy:        p.CreatedBy,
		SenderName:       p.SenderName,
		SenderPhone:      p.SenderPhone,
		RecipientName:    p.RecipientName,
		RecipientPhone:   p.RecipientPhone,
		DestinationID:    p.DestinationID,
		ShortDescription: p.ShortDescription,
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		LedgerPosted:     p.LedgerPosted,
		IdempotencyKey:   p.IdempotencyKey,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("parcel %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert parcel: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (r *ParcelRepository) findOne(ctx context.Context, filter bson.M) (*domain.Parcel, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc mongoParcel
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrParcelNotFound
		}
		return nil, fmt.Errorf("find parcel: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ParcelRepository) FindByID(ctx context.Context, id string) (*domain.Parcel, error) {
	oid, err := objectID(id, domain.ErrParcelNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *ParcelRepository) FindByTrackingCode(ctx context.Context, code string) (*domain.Parcel, error) {
	return r.findOne(ctx, bson.M{"tracking_code": code})
}

// FindByIdempotencyKey retrieves the parcel createdBy already submitted with key.
// Keys are scoped per staff member.
func (r *ParcelRepository) FindByIdempotencyKey(ctx context.Context, createdBy, key string) (*domain.Parcel, error) {
	return r.findOne(ctx, bson.M{"created_by": createdBy, "idempotency_key": key})
}

// UpdateStatus matches on the expected current status, so of two concurrent
// writers only the first one succeeds.
func (r *ParcelRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ParcelStatus, at time.Time) error {
	oid, err := objectID(id, domain.ErrParcelNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to), "updated_at": at}},
	)
	if err != nil {
		return fmt.Errorf("update parcel status: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return fmt.Errorf("update parcel status: %w", err)
		}
		if n == 0 {
			return domain.ErrParcelNotFound
		}
		return domain.ErrStatusConflict
	}
	return nil
}

func (r *ParcelRepository) MarkLedgerPosted(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrParcelNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"ledger_posted": true}})
	if err != nil {
		return fmt.Errorf("mark parcel posted: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrParcelNotFound
	}
	return nil
}

func (r *ParcelRepository) ListUnposted(ctx context.Context, createdBefore time.Time, limit int) ([]*domain.Parcel, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))
	filter := bson.M{"ledger_posted": false, "created_at": bson.M{"$lt": createdBefore}}
	return r.findMany(ctx, filter, opts)
}

// List returns one page of parcels matching f, newest first, and the total
// number of matches.
func (r *ParcelRepository) List(ctx context.Context, f ports.ParcelFilter) ([]*domain.Parcel, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if f.CreatedBy != "" {
		filter["created_by"] = f.CreatedBy
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"tracking_code": rx},
			bson.M{"sender_name": rx},
			bson.M{"recipient_name": rx},
			bson.M{"short_description": rx},
		}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count parcels: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))
	items, err := r.findMany(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ParcelRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Parcel, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find parcels: %w", err)
	}
	var docs []mongoParcel
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode parcels: %w", err)
	}
	out := make([]*domain.Parcel, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *ParcelRepository) CountByStatus(ctx context.Context, createdBy string) (map[domain.ParcelStatus]int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	match := bson.M{}
	if createdBy != "" {
		match["created_by"] = createdBy
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count parcels by status: %w", err)
	}
	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode parcel counts: %w", err)
	}

	counts := make(map[domain.ParcelStatus]int64, len(rows))
	for _, row := range rows {
		counts[domain.ParcelStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *ParcelRepository) ExistsForDestination(ctx context.Context, destinationID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"destination_id": destinationID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count parcels for destination: %w", err)
	}
	return n > 0, nil
}

// EnsureIndexes creates necessary indexes on the parcels collection.
func (r *ParcelRepository) EnsureIndexes(ctx context.Context) error {
	return r.createIndexes(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tracking_code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "idempotency_key", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}}),
		},
		{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "ledger_posted", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "destination_id", Value: 1}}},
	})
}
