// Package cache provides a small TTL key-value cache used to serve
// repeated journey/timeline snapshot requests without refetching the
// upstream records. Entries expire quickly; a rebuild always wins over a
// stale snapshot.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// KVStore is the minimal store surface the handlers need. The Redis
// implementation backs production; tests use an in-memory fake.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// RedisStore implements KVStore on go-redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store from a redis URL (redis://host:port/db).
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Ping verifies connectivity at startup.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
