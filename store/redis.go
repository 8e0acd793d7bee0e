package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTimeout = 2 * time.Second

// RedisKV is the backend for shared-kiosk fleets: terminals at one gate
// share a session through Redis, so a badge scanned at one terminal signs
// in the whole bank.
type RedisKV struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisKV returns a Redis-backed [KV]. Keys are stored under
// prefix+":"+key. ttl of zero means no expiry. Each operation is bounded by
// an internal timeout so a hung Redis cannot stall a kiosk read.
func NewRedisKV(client *redis.Client, prefix string, ttl time.Duration) *RedisKV {
	return &RedisKV{
		client:  client,
		prefix:  prefix,
		ttl:     ttl,
		timeout: defaultRedisTimeout,
	}
}

func (r *RedisKV) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

func (r *RedisKV) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

// Get implements [KV].
func (r *RedisKV) Get(key string) (string, error) {
	ctx, cancel := r.opContext()
	defer cancel()
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set implements [KV].
func (r *RedisKV) Set(key, value string) error {
	ctx, cancel := r.opContext()
	defer cancel()
	return r.client.Set(ctx, r.key(key), value, r.ttl).Err()
}

// Delete implements [KV].
func (r *RedisKV) Delete(key string) error {
	ctx, cancel := r.opContext()
	defer cancel()
	return r.client.Del(ctx, r.key(key)).Err()
}
