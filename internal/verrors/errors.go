// Package verrors defines the vault's error taxonomy: one exported type per
// failure kind, wrapped with fmt.Errorf at each layer boundary and unwrapped
// with errors.As/errors.Is at call sites.
package verrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions with no useful extra context.
var (
	// ErrCacheMiss indicates a cache lookup found no entry for the key.
	ErrCacheMiss = errors.New("cache miss")

	// ErrLockNotHeld indicates a release/extend was attempted on a lock this
	// caller does not hold.
	ErrLockNotHeld = errors.New("lock not held by caller")

	// ErrNotFound indicates a store query found no matching row.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicatePath indicates an insert would violate the relative_path
	// uniqueness invariant.
	ErrDuplicatePath = errors.New("relative path already exists")
)

// IoError wraps an underlying filesystem failure, carrying the path where
// the failure occurred.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("io error: %v", e.Err)
	}
	return fmt.Sprintf("io error at %q: %v", e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// NewIoError wraps err with the path that was being accessed.
func NewIoError(path string, err error) *IoError {
	return &IoError{Path: path, Err: err}
}

// CipherPhase identifies which AEAD streaming step failed.
type CipherPhase string

const (
	PhaseEncryptNext CipherPhase = "encrypt_next"
	PhaseEncryptLast CipherPhase = "encrypt_last"
	PhaseDecryptNext CipherPhase = "decrypt_next"
	PhaseDecryptLast CipherPhase = "decrypt_last"
)

// CipherOperationError reports a failed AEAD step, naming the phase and the
// source/destination paths of the unit that failed.
type CipherOperationError struct {
	Phase       CipherPhase
	Source      string
	Destination string
	Err         error
}

func (e *CipherOperationError) Error() string {
	return fmt.Sprintf("cipher operation %s failed (%s -> %s): %v", e.Phase, e.Source, e.Destination, e.Err)
}

func (e *CipherOperationError) Unwrap() error { return e.Err }

// IsDecryptPhase reports whether the failure occurred on a decryption step,
// which always implies an authentication failure (possible tampering).
func (e *CipherOperationError) IsDecryptPhase() bool {
	return e.Phase == PhaseDecryptNext || e.Phase == PhaseDecryptLast
}

// HashReadFailure reports that content hashing could not read a file.
type HashReadFailure struct {
	Path string
	Err  error
}

func (e *HashReadFailure) Error() string {
	return fmt.Sprintf("hash read failure at %q: %v", e.Path, e.Err)
}

func (e *HashReadFailure) Unwrap() error { return e.Err }

// StoreError wraps a failure reported by the metadata store. Atomicity
// guarantees hold regardless: a StoreError always means nothing committed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// WalkFailure reports that the path walker could not enumerate an entry.
type WalkFailure struct {
	Path string
	Err  error
}

func (e *WalkFailure) Error() string {
	return fmt.Sprintf("walk failure at %q: %v", e.Path, e.Err)
}

func (e *WalkFailure) Unwrap() error { return e.Err }

// ConfigMissing reports that a required configuration entry was absent.
type ConfigMissing struct {
	Field string
}

func (e *ConfigMissing) Error() string {
	return fmt.Sprintf("missing required configuration field: %s", e.Field)
}

// LockHeld reports that a mutating operation could not acquire the advisory
// run-lock for the named metadata store.
type LockHeld struct {
	StorePath string
}

func (e *LockHeld) Error() string {
	return fmt.Sprintf("vault is locked by another process (store %q)", e.StorePath)
}
