package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

const collectionSMSLogs = "sms_logs"

// SMSLogRepository persists every message handed to the gateway to the
// sms_logs audit collection.
type SMSLogRepository struct {
	collection
}

func NewSMSLogRepository(db *mongo.Database, timeout time.Duration) *SMSLogRepository {
	return &SMSLogRepository{collection: newCollection(db, collectionSMSLogs, timeout)}
}

func (r *SMSLogRepository) Insert(ctx context.Context, l *domain.SMSLog) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc := bson.M{
		"parcel_id":       l.ParcelID,
		"recipient_phone": l.RecipientPhone,
		"message":         l.Message,
		"provider":        l.Provider,
		"success":         l.Success,
		"sent_at":         l.SentAt.UTC(),
	}
	if l.SentBy != "" {
		doc["sent_by"] = l.SentBy
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert sms log: %w", err)
	}
	return nil
}

func (r *SMSLogRepository) EnsureIndexes(ctx context.Context) error {
	return r.createIndexes(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "parcel_id", Value: 1}, {Key: "sent_at", Value: -1}}},
	})
}
