package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "score-cache:"

// RedisCache keeps cached results in Redis. Redis expires keys on its own;
// the embedded expiry is still checked so a read never serves stale data.
type RedisCache struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedisCache creates a Redis-backed cache
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb, now: time.Now}
}

// NewRedisClient parses a redis:// URL and verifies the connection
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}
	return rdb, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (Results, bool, error) {
	raw, err := c.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to read %s: %v", ErrCache, key, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, fmt.Errorf("%w: corrupt entry %s: %v", ErrCache, key, err)
	}
	if expired(env.ExpiresAt, c.now()) {
		c.rdb.Del(ctx, redisKeyPrefix+key)
		return nil, false, nil
	}
	return env.Results, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, value Results, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(envelope{ExpiresAt: c.now().Add(ttl).UnixMilli(), Results: value})
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %v", ErrCache, key, err)
	}
	if err := c.rdb.Set(ctx, redisKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", ErrCache, key, err)
	}
	return nil
}
