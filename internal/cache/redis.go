package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const seenKeyPrefix = "seen:"

// Redis caches recently ingested message ids so that repeated webhook
// deliveries can be answered as duplicates without a database round trip.
// The cache is advisory: it is written only after the row exists, and a
// miss always falls through to the storage constraint.
type Redis struct{ c *redis.Client }

// NewRedis creates a new Redis client
func NewRedis(addr string, db int) *Redis {
	return &Redis{c: redis.NewClient(&redis.Options{Addr: addr, DB: db})}
}

// Close closes the Redis client
func (r *Redis) Close() error { return r.c.Close() }

// MarkSeen records that messageID has been stored, for ttl.
func (r *Redis) MarkSeen(ctx context.Context, messageID string, ttl time.Duration) error {
	return r.c.Set(ctx, seenKeyPrefix+messageID, time.Now().UTC().Format(time.RFC3339Nano), ttl).Err()
}

// SeenRecently reports whether messageID was stored within the cache TTL.
func (r *Redis) SeenRecently(ctx context.Context, messageID string) (bool, error) {
	n, err := r.c.Exists(ctx, seenKeyPrefix+messageID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
