package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

const collectionDestinations = "destinations"

type DestinationRepository struct {
	collection
}

func NewDestinationRepository(db *mongo.Database, timeout time.Duration) *DestinationRepository {
	return &DestinationRepository{collection: newCollection(db, collectionDestinations, timeout)}
}

type mongoDestination struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Name      string               `bson:"name"`
	Region    string               `bson:"region"`
	BaseFee   primitive.Decimal128 `bson:"base_fee"`
	CreatedAt time.Time            `bson:"created_at"`
}

func (m *mongoDestination) toDomain() *domain.Destination {
	return &domain.Destination{
		ID:        m.ID.Hex(),
		Name:      m.Name,
		Region:    m.Region,
		BaseFee:   fromDecimal128(m.BaseFee),
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func (r *DestinationRepository) Create(ctx context.Context, d *domain.Destination) error {
	fee, err := toDecimal128(d.BaseFee)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.col.InsertOne(ctx, mongoDestination{
		Name:      d.Name,
		Region:    d.Region,
		BaseFee:   fee,
		CreatedAt: d.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("destination %q %w", d.Name, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert destination: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		d.ID = oid.Hex()
	}
	return nil
}

func (r *DestinationRepository) FindByID(ctx context.Context, id string) (*domain.Destination, error) {
	oid, err := objectID(id, domain.ErrDestinationNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc mongoDestination
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrDestinationNotFound
		}
		return nil, fmt.Errorf("find destination: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *DestinationRepository) Update(ctx context.Context, d *domain.Destination) error {
	oid, err := objectID(d.ID, domain.ErrDestinationNotFound)
	if err != nil {
		return err
	}
	fee, err := toDecimal128(d.BaseFee)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":     d.Name,
		"region":   d.Region,
		"base_fee": fee,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("destination %q %w", d.Name, domain.ErrDuplicate)
		}
		return fmt.Errorf("update destination: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrDestinationNotFound
	}
	return nil
}

func (r *DestinationRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrDestinationNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete destination: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrDestinationNotFound
	}
	return nil
}

// List returns all destinations ordered by name.
func (r *DestinationRepository) List(ctx context.Context) ([]*domain.Destination, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find destinations: %w", err)
	}
	var docs []mongoDestination
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode destinations: %w", err)
	}
	out := make([]*domain.Destination, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *DestinationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *DestinationRepository) EnsureIndexes(ctx context.Context) error {
	return r.createIndexes(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
}
