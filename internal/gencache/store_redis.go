package gencache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStore persists cache entries in Redis with native TTL expiry.
// Prompts are hashed to keep keys bounded and free of newlines.
type RedisStore struct {
	rdb *goredis.Client
}

func NewRedisStore(rdb *goredis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("gencache:%s", hex.EncodeToString(sum[:16]))
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	text, err := s.rdb.Get(ctx, redisKey(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get failed: %w", err)
	}
	return text, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, text string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, redisKey(key), text, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}
	return nil
}
