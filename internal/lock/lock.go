// Package lock implements the vault's advisory run-lock (C14): a
// process-scoped exclusion mechanism that guards every mutating CLI verb
// against re-entrant or concurrent writers to the same metadata store.
//
// Grounded in the teacher's internal/lock subtree, where only
// memory_test.go survived retrieval — the interface contract below is
// reconstructed from that test plus internal/cache/redis/lock.go's
// SETNX-and-token idiom, repurposed from a generic distributed lock into
// the one thing the Vault actually needs: detecting, not arbitrating,
// concurrent access (spec.md §1 Non-goals, §5 "Cancellation and timeout").
package lock

import (
	"context"
	"time"
)

// Locker is an advisory, possibly-distributed mutual-exclusion primitive
// keyed by an arbitrary string (the Vault keys it by the metadata store's
// absolute path). Acquire never blocks waiting for the lock to free up —
// per spec.md, arbitration between concurrent writers is explicitly out of
// scope; only detection is.
type Locker interface {
	// Acquire attempts to take the lock for key, held for at most ttl.
	// Returns false, nil (not an error) if the lock is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// AcquireWithRetry retries Acquire up to maxRetries times, sleeping
	// retryDelay between attempts, before giving up.
	AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (bool, error)
	// Release frees the lock for key. Returns false if the caller did not
	// hold it (already expired, or never acquired).
	Release(ctx context.Context, key string) (bool, error)
	// Extend pushes back the lock's expiry by ttl from now. Returns false
	// if the caller does not currently hold the lock.
	Extend(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// IsHeld reports whether key is currently locked by anyone.
	IsHeld(ctx context.Context, key string) (bool, error)
}
