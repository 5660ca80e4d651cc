package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// SettlementCache implements ports.SettlementCache using Redis. It is the
// fast path in front of the ledger's unique constraint: a hit means the
// sale was already settled and the DB round-trip can be skipped. A miss
// proves nothing; the ledger remains the authority.
type SettlementCache struct {
	client *goredis.Client
	prefix string
}

// NewSettlementCache creates a new Redis-backed settlement cache.
func NewSettlementCache(client *goredis.Client) *SettlementCache {
	return &SettlementCache{
		client: client,
		prefix: "settled:",
	}
}

// IsSettled reports whether the transaction is marked as settled.
func (c *SettlementCache) IsSettled(ctx context.Context, transactionID uuid.UUID) (bool, error) {
	n, err := c.client.Exists(ctx, c.prefix+transactionID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("redis settled check: %w", err)
	}
	return n > 0, nil
}

// MarkSettled records the transaction as settled with a TTL.
func (c *SettlementCache) MarkSettled(ctx context.Context, transactionID uuid.UUID, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+transactionID.String(), 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis settled mark: %w", err)
	}
	return nil
}
