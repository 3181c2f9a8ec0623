package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDeduper marks delivery keys as seen with a TTL. First writer wins;
// a repeated key within the window reports a duplicate.
//
// Best effort: callers treat a Redis failure as "first delivery" rather than
// dropping the event.
type RedisDeduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDeduper(rdb *redis.Client, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDeduper{rdb: rdb, ttl: ttl}
}

// FirstDelivery reports whether this key has not been seen within the TTL
// window, claiming it atomically when so.
func (d *RedisDeduper) FirstDelivery(ctx context.Context, key string) (bool, error) {
	if d.rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		return false, fmt.Errorf("key is required")
	}
	return d.rdb.SetNX(ctx, key, "1", d.ttl).Result()
}

// RedisConcurrencyCap bounds in-flight calls per tenant on top of the Lua
// acquire/release scripts. Slots are held from dispatch until the end-of-call
// webhook releases them; the TTL reclaims slots leaked by a crashed process
// or a webhook that never arrives.
type RedisConcurrencyCap struct {
	rdb   *redis.Client
	limit int
	ttl   time.Duration
}

func NewRedisConcurrencyCap(rdb *redis.Client, limit int, ttl time.Duration) *RedisConcurrencyCap {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisConcurrencyCap{rdb: rdb, limit: limit, ttl: ttl}
}

func (c *RedisConcurrencyCap) key(tenantID string) string {
	return "dispatch:inflight:" + tenantID
}

func (c *RedisConcurrencyCap) Acquire(ctx context.Context, tenantID string) (bool, error) {
	return AcquireConcurrencyCap(ctx, c.rdb, c.key(tenantID), c.limit, c.ttl)
}

func (c *RedisConcurrencyCap) Release(ctx context.Context, tenantID string) error {
	return ReleaseConcurrencyCap(ctx, c.rdb, c.key(tenantID))
}
