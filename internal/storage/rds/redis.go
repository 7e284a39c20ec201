package rds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"readinglist/internal/storage"
)

var _ storage.Slot = (*RedisSlot)(nil)

// RedisSlot keeps snapshots as plain string keys under a common prefix
type RedisSlot struct {
	client *redis.Client
	prefix string
}

// NewRedisSlot connects to addr and verifies the connection with PING
func NewRedisSlot(ctx context.Context, addr, password string, db int) (*RedisSlot, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     4,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisSlot{client: client, prefix: "readinglist:"}, nil
}

func (s *RedisSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

// Set stores data without expiration
func (s *RedisSlot) Set(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisSlot) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
