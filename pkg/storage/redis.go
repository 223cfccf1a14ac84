package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"event-planner/core"
)

var _ core.CacheStorage = (*RedisStorage)(nil)

type RedisStorage struct {
	client redis.Cmdable
	key    string
}

func NewRedisStorage(client redis.Cmdable, key string) *RedisStorage {
	return &RedisStorage{client: client, key: key}
}

func (s *RedisStorage) Get(ctx context.Context) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache key %s: %w", s.key, err)
	}

	return data, true, nil
}

func (s *RedisStorage) Set(ctx context.Context, blob []byte) error {
	err := s.client.Set(ctx, s.key, blob, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", s.key, err)
	}

	return nil
}
