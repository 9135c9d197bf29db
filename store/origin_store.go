// api/store/origin_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOriginStore is the production session-origin slot: one Redis key per
// visitor session. The TTL here is belt and braces; the analytics layer
// still checks the stored capture timestamp on read.
type RedisOriginStore struct {
	client *redis.Client
}

func NewRedisOriginStore(client *redis.Client) *RedisOriginStore {
	return &RedisOriginStore{client: client}
}

func originKey(sessionKey string) string {
	return "session_origin:" + sessionKey
}

func (s *RedisOriginStore) Get(ctx context.Context, sessionKey string) (string, error) {
	value, err := s.client.Get(ctx, originKey(sessionKey)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session origin: %w", err)
	}
	return value, nil
}

func (s *RedisOriginStore) Set(ctx context.Context, sessionKey, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, originKey(sessionKey), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session origin: %w", err)
	}
	return nil
}

func (s *RedisOriginStore) Delete(ctx context.Context, sessionKey string) error {
	if err := s.client.Del(ctx, originKey(sessionKey)).Err(); err != nil {
		return fmt.Errorf("failed to delete session origin: %w", err)
	}
	return nil
}
