// Package memory is the default, always-on in-process backend for the
// hash cache (C13): a mutex-guarded map with lazy TTL expiry and a
// background sweeper, reconstructed from the teacher's
// internal/cache/memory/cache_test.go contract (cache.go itself was not
// retrieved).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/prn-tf/vault/internal/cache"
	"github.com/prn-tf/vault/internal/verrors"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// sweepInterval is how often the background goroutine clears expired
// entries, so a cache that is never queried again still releases memory.
const sweepInterval = 30 * time.Second

// Cache is an in-process, TTL'd implementation of cache.Cache.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	stopCh  chan struct{}
	stopped bool
}

// NewCache constructs an empty Cache and starts its background sweeper.
func NewCache() *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		stopCh:  make(chan struct{}),
	}
	go c.sweep()
	return c
}

func (c *Cache) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, e := range c.entries {
				if e.expired(now) {
					delete(c.entries, k)
				}
			}
			c.mu.Unlock()
		case <-c.stopCh:
			return
		}
	}
}

// Stop halts the background sweeper. Safe to call more than once.
func (c *Cache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.stopCh)
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || e.expired(time.Now()) {
		return nil, verrors.ErrCacheMiss
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry{value: stored, expiresAt: expiresAt}
	c.mu.Unlock()
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || e.expired(time.Now()) {
		return false, nil
	}
	return true, nil
}

var _ cache.Cache = (*Cache)(nil)
