package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisCache is a thin JSON cache on top of Redis. Every operation is
// best-effort: the pipeline runs unchanged when Redis is down.
type RedisCache struct {
	client *redis.Client
}

// Config holds Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
}

// New connects to Redis and verifies the connection
func New(ctx context.Context, cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Str("addr", cfg.Addr).Msg("Redis cache connected")
	return &RedisCache{client: client}, nil
}

// GetJSON loads a cached value into dest, reporting whether it was found
func (c *RedisCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("cache value unmarshal failed: %w", err)
	}

	return true, nil
}

// SetJSON stores a value under key with the given TTL
func (c *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache value marshal failed: %w", err)
	}

	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}

	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() {
	if c.client != nil {
		_ = c.client.Close()
		log.Info().Msg("Redis cache closed")
	}
}
