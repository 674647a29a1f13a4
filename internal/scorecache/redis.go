package scorecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "fortune:expr"

// Redis is a Store shared between processes. Expiry is delegated to Redis
// key TTLs.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis creates a Redis-backed Store.
//
// Precondition: client must be non-nil; ttl > 0.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl, prefix: defaultKeyPrefix}
}

func (r *Redis) key(k Key) string {
	return r.prefix + ":" + k.String()
}

// Get fetches and decodes the set for key.
//
// Postcondition: redis.Nil is reported as (nil, false, nil).
func (r *Redis) Get(ctx context.Context, key Key) ([]string, bool, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var exprs []string
	if err := json.Unmarshal(data, &exprs); err != nil {
		return nil, false, fmt.Errorf("decoding cached expressions for %s: %w", key, err)
	}
	if len(exprs) == 0 {
		return nil, false, nil
	}
	return exprs, true, nil
}

// Put encodes exprs and stores them with the configured TTL.
func (r *Redis) Put(ctx context.Context, key Key, exprs []string) error {
	if len(exprs) == 0 {
		return ErrEmptyExpressions
	}
	data, err := json.Marshal(exprs)
	if err != nil {
		return fmt.Errorf("encoding expressions for %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.key(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
