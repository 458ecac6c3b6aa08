package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is the default, in-process Locker: a single Vault process
// only ever contends with itself, so this mainly guards against a
// re-entrant call or a runaway goroutine within one run, not against a
// second independent process (that case is covered by RedisLocker, wired
// in when VAULT_REDIS_ADDR is set).
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	expiresAt time.Time
}

// NewMemoryLocker constructs an empty MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{entries: make(map[string]memoryEntry)}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[key]; ok && time.Now().Before(e.expiresAt) {
		return false, nil
	}
	l.entries[key] = memoryEntry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

func (l *MemoryLocker) AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (bool, error) {
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

func (l *MemoryLocker) Release(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return false, nil
	}
	delete(l.entries, key)
	return true, nil
}

func (l *MemoryLocker) Extend(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return false, nil
	}
	l.entries[key] = memoryEntry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

func (l *MemoryLocker) IsHeld(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return false, nil
	}
	if time.Now().After(e.expiresAt) {
		return false, nil
	}
	return true, nil
}

var _ Locker = (*MemoryLocker)(nil)

// NoOpLocker grants every request immediately and reports nothing ever
// held — for tests and other contexts where run-lock semantics would only
// add noise.
type NoOpLocker struct{}

// NewNoOpLocker constructs a Locker that always succeeds.
func NewNoOpLocker() *NoOpLocker {
	return &NoOpLocker{}
}

func (NoOpLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (l NoOpLocker) AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (bool, error) {
	return true, nil
}

func (NoOpLocker) Release(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (NoOpLocker) Extend(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (NoOpLocker) IsHeld(ctx context.Context, key string) (bool, error) {
	return false, nil
}

var _ Locker = (*NoOpLocker)(nil)
