package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

const dedupTTL = 24 * time.Hour

// NotificationDedup remembers which lifecycle notifications were already sent.
// Key format: notify:<parcel_id>:<status>
type NotificationDedup struct {
	client *redis.Client
	ttl    time.Duration
}

// NewNotificationDedup creates a NotificationDedup wrapping the given Redis client.
func NewNotificationDedup(client *redis.Client) *NotificationDedup {
	return &NotificationDedup{client: client, ttl: dedupTTL}
}

// Claim atomically marks (parcelID, status) as notified. It returns true only
// for the first caller within the TTL.
func (d *NotificationDedup) Claim(ctx context.Context, parcelID string, status domain.ParcelStatus) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(parcelID, status), time.Now().UTC().Unix(), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return ok, nil
}

func (d *NotificationDedup) key(parcelID string, status domain.ParcelStatus) string {
	return fmt.Sprintf("notify:%s:%s", parcelID, status)
}
