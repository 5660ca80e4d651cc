package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// NotificationQueue implements ports.Notifier by pushing events onto a
// Redis list consumed by the platform's notification delivery workers.
// Delivery itself is out of scope for this service.
type NotificationQueue struct {
	client *goredis.Client
	key    string
}

// NewNotificationQueue creates a new Redis-backed notification queue.
func NewNotificationQueue(client *goredis.Client) *NotificationQueue {
	return &NotificationQueue{
		client: client,
		key:    "notifications:seller",
	}
}

// Publish enqueues a notification event as JSON.
func (q *NotificationQueue) Publish(ctx context.Context, event domain.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("redis notification push: %w", err)
	}
	return nil
}
