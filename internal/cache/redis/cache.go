// Package redis is the optional distributed backend for the hash cache
// (C13), wired in only when VAULT_REDIS_ADDR is configured — useful for
// sharing hash memoization across multiple short-lived CLI invocations on
// the same host, or across hosts for a shared network-mounted unlocked
// path. Grounded in the teacher's internal/cache/redis/cache.go.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prn-tf/vault/internal/cache"
	"github.com/prn-tf/vault/internal/verrors"
)

// Client wraps a connected Redis client shared by Cache and, separately,
// internal/lock/redis.Locker.
type Client struct {
	Raw    *redis.Client
	logger zerolog.Logger
}

// NewClient dials addr and verifies the connection with a PING.
func NewClient(ctx context.Context, addr, password string, db int, logger zerolog.Logger) (*Client, error) {
	raw := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %q: %w", addr, err)
	}
	logger.Info().Str("addr", addr).Int("db", db).Msg("connected to redis")
	return &Client{Raw: raw, logger: logger}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.Raw.Close()
}

const keyPrefix = "vault:hash:"

// Cache implements cache.Cache against a shared Redis instance.
type Cache struct {
	client *Client
}

// NewCache wraps an already-connected Client as a Cache.
func NewCache(client *Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Raw.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, verrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis cache get: %w", err)
	}
	return val, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Raw.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis cache set: %w", err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Raw.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis cache delete: %w", err)
	}
	return nil
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Raw.Exists(ctx, keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis cache exists: %w", err)
	}
	return n > 0, nil
}

var _ cache.Cache = (*Cache)(nil)
