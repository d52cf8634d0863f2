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

const collectionStaff = "staffs"

type StaffRepository struct {
	collection
}

func NewStaffRepository(db *mongo.Database, timeout time.Duration) *StaffRepository {
	return &StaffRepository{collection: newCollection(db, collectionStaff, timeout)}
}

type mongoStaff struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UID       string             `bson:"uid,omitempty"`
	Name      string             `bson:"name"`
	Phone     string             `bson:"phone"`
	Role      string             `bson:"role"`
	CreatedAt int64              `bson:"created_at"`
	UpdatedAt int64              `bson:"updated_at"`
}

func (m *mongoStaff) toDomain() *domain.Staff {
	return &domain.Staff{
		ID:        m.ID.Hex(),
		UID:       m.UID,
		Name:      m.Name,
		Phone:     m.Phone,
		Role:      m.Role,
		CreatedAt: unixToTime(m.CreatedAt),
		UpdatedAt: unixToTime(m.UpdatedAt),
	}
}

func (r *StaffRepository) Create(ctx context.Context, s *domain.Staff) (*domain.Staff, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc := mongoStaff{
		UID:       s.UID,
		Name:      s.Name,
		Phone:     s.Phone,
		Role:      s.Role,
		CreatedAt: s.CreatedAt.Unix(),
		UpdatedAt: s.UpdatedAt.Unix(),
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("staff %w", domain.ErrDuplicate)
		}
		return nil, fmt.Errorf("insert staff: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *StaffRepository) findOne(ctx context.Context, filter bson.M) (*domain.Staff, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc mongoStaff
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrStaffNotFound
		}
		return nil, fmt.Errorf("find staff: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *StaffRepository) FindByID(ctx context.Context, id string) (*domain.Staff, error) {
	oid, err := objectID(id, domain.ErrStaffNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *StaffRepository) FindByPhone(ctx context.Context, phone string) (*domain.Staff, error) {
	return r.findOne(ctx, bson.M{"phone": phone})
}

func (r *StaffRepository) Update(ctx context.Context, s *domain.Staff) error {
	oid, err := objectID(s.ID, domain.ErrStaffNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	set := bson.M{
		"name":       s.Name,
		"phone":      s.Phone,
		"role":       s.Role,
		"updated_at": s.UpdatedAt.Unix(),
	}
	if s.UID != "" {
		set["uid"] = s.UID
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("staff %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("update staff: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrStaffNotFound
	}
	return nil
}

func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrStaffNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrStaffNotFound
	}
	return nil
}

func (r *StaffRepository) List(ctx context.Context) ([]*domain.Staff, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find staff: %w", err)
	}
	var docs []mongoStaff
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode staff: %w", err)
	}
	out := make([]*domain.Staff, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *StaffRepository) EnsureIndexes(ctx context.Context) error {
	return r.createIndexes(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys:    bson.D{{Key: "uid", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"uid": bson.M{"$exists": true}}),
		},
	})
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
