package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisIdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewIdempotencyStore keeps idempotency keys in Redis under prefix.
func NewIdempotencyStore(client *redis.Client, prefix string) IdempotencyStore {
	return &redisIdempotencyStore{client: client, prefix: prefix}
}

func (s *redisIdempotencyStore) key(k string) string {
	return "idem:" + s.prefix + ":" + k
}

// Get returns "" when the key is unknown.
func (s *redisIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *redisIdempotencyStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(key), value, ttl).Err()
}
