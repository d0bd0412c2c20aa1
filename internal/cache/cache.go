// Package cache provides the externally shared idempotency state for
// matching runs. Keeping it in Redis instead of process memory means the
// idempotency guarantee holds across service instances.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "jobping:match"

// Cache wraps a Redis client with TTL-keyed run markers.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New parses redisURL, verifies connectivity and returns a Cache.
func New(ctx context.Context, redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

// AcquireRun atomically marks a matching run for (email, tier). Returns true
// when this caller is the first; false when a run marker already exists, in
// which case the caller should take the idempotent path.
func (c *Cache) AcquireRun(ctx context.Context, email, tier string) (bool, error) {
	ok, err := c.client.SetNX(ctx, runKey(email, tier), time.Now().UTC().Format(time.RFC3339), c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire run marker: %w", err)
	}
	return ok, nil
}

// ReleaseRun drops the run marker so a failed run can be retried immediately.
func (c *Cache) ReleaseRun(ctx context.Context, email, tier string) error {
	return c.client.Del(ctx, runKey(email, tier)).Err()
}

// Close closes the underlying Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

func runKey(email, tier string) string {
	raw := strings.ToLower(email + ":" + tier)
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s:%s:%x", keyPrefix, strings.ToLower(tier), sum[:8])
}
