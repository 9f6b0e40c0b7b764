package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is the lifetime of a cached verdict in redis
const DefaultTTL = 7 * 24 * time.Hour

// RedisStore is a Store shared between machines
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewRedisStore connects to redis from a URL such as redis://localhost:6379/0
func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	if url == "" {
		return nil, fmt.Errorf("redis url missing")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	// fail fast on startup
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	logger := slog.Default().With("component", "redis")
	logger.Info("redis cache connected", "addr", opts.Addr)

	return &RedisStore{client: client, logger: logger, ttl: ttl}, nil
}

// Get retrieves a cached value by key and unmarshals into target.
// A miss is not an error.
func (s *RedisStore) Get(ctx context.Context, key string, target interface{}) (bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		s.logger.Debug("cache miss", "key", key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed for key %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(val), target); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value for key %s: %w", key, err)
	}

	s.logger.Debug("cache hit", "key", key)
	return true, nil
}

// Set stores a value with the store TTL
func (s *RedisStore) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed for key %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis client connection
func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	return nil
}
