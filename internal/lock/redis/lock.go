// Package redis is the optional distributed backend for the advisory
// run-lock (C14), wired in only when VAULT_REDIS_ADDR is configured —
// extending the single-process guarantee of lock.MemoryLocker across
// multiple hosts sharing one metadata store over a network filesystem.
//
// Grounded in the teacher's internal/cache/redis/lock.go: SETNX to
// acquire, a Lua script guarding release/extend so only the token-holding
// owner can act on a key, github.com/google/uuid (a direct teacher
// dependency) minting that token.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prn-tf/vault/internal/lock"
)

const keyPrefix = "vault:lock:"

// Locker implements lock.Locker against a shared Redis instance.
type Locker struct {
	client *redis.Client
	logger zerolog.Logger
	tokens map[string]string
}

// NewLocker constructs a Locker using an already-connected Redis client.
func NewLocker(client *redis.Client, logger zerolog.Logger) *Locker {
	return &Locker{
		client: client,
		logger: logger.With().Str("component", "redis_lock").Logger(),
		tokens: make(map[string]string),
	}
}

func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis lock acquire: %w", err)
	}
	if ok {
		l.tokens[key] = token
		l.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("lock acquired")
	}
	return ok, nil
}

func (l *Locker) AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (bool, error) {
	for attempt := 0; ; attempt++ {
		acquired, err := l.Acquire(ctx, key, ttl)
		if err != nil || acquired {
			return acquired, err
		}
		if attempt >= maxRetries {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}

// releaseScript deletes the key only if its value still matches the
// caller's token, so a stale owner can never release a lock it no longer
// holds (e.g. after it expired and someone else acquired it).
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

func (l *Locker) Release(ctx context.Context, key string) (bool, error) {
	token, ok := l.tokens[key]
	if !ok {
		return false, nil
	}
	result, err := l.client.Eval(ctx, releaseScript, []string{keyPrefix + key}, token).Int64()
	if err != nil {
		return false, fmt.Errorf("redis lock release: %w", err)
	}
	delete(l.tokens, key)
	return result == 1, nil
}

const extendScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
	return 0
end
`

func (l *Locker) Extend(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token, ok := l.tokens[key]
	if !ok {
		return false, nil
	}
	result, err := l.client.Eval(ctx, extendScript, []string{keyPrefix + key}, token, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("redis lock extend: %w", err)
	}
	return result == 1, nil
}

func (l *Locker) IsHeld(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Exists(ctx, keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis lock is_held: %w", err)
	}
	return n > 0, nil
}

var _ lock.Locker = (*Locker)(nil)
