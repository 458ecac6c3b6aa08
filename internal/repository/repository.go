// Package repository defines the metadata store boundary (C6): the set of
// operations the sync reconciler and CLI need from durable storage, kept
// independent of any concrete database driver.
package repository

import (
	"context"

	"github.com/prn-tf/vault/internal/domain"
)

// FileBatch is an atomic batch of File rows to insert or update.
type FileBatch []*domain.File

// FileDeviceBatch is an atomic batch of FileDevice rows to insert or update.
type FileDeviceBatch []*domain.FileDevice

// FileRepository persists File records (§3, §4.6).
type FileRepository interface {
	// AllPaths returns every known relative_path.
	AllPaths(ctx context.Context) (map[string]struct{}, error)
	// AllRandomHashes returns every known random_hash, for the check
	// operation's symmetric-difference comparison against locked_path.
	AllRandomHashes(ctx context.Context) (map[string]struct{}, error)
	// InsertBatch atomically inserts every row in batch.
	InsertBatch(ctx context.Context, batch FileBatch) error
	// FindByPaths returns the File rows whose relative_path is in paths,
	// keyed by relative_path. Paths with no matching row are absent from
	// the result, not an error.
	FindByPaths(ctx context.Context, paths []string) (map[string]*domain.File, error)
	// UpdateBatch atomically updates contents_hash and updated_at for every
	// row in batch, matched by ID.
	UpdateBatch(ctx context.Context, batch FileBatch) error
	// All returns every known File row, for the unlock verb, which must
	// materialize the full logical tree rather than only what one device's
	// FileDevice rows mention.
	All(ctx context.Context) ([]*domain.File, error)
}

// DeviceRepository persists Device records.
type DeviceRepository interface {
	// FindOrCreateCurrent returns the Device row for the current host's
	// platform ID, creating it on first use.
	FindOrCreateCurrent(ctx context.Context) (*domain.Device, error)
}

// DeviceConfigRepository persists DeviceConfig records.
type DeviceConfigRepository interface {
	// Get returns the DeviceConfig for deviceID, or verrors.ErrNotFound if
	// none has ever been set.
	Get(ctx context.Context, deviceID int64) (*domain.DeviceConfig, error)
	// SetLockedPath upserts the locked_path for deviceID.
	SetLockedPath(ctx context.Context, deviceID int64, lockedPath string) error
	// SetUnlockedPath upserts the unlocked_path for deviceID.
	SetUnlockedPath(ctx context.Context, deviceID int64, unlockedPath string) error
}

// FileDeviceRepository persists FileDevice records.
type FileDeviceRepository interface {
	// PathsWithMtime returns relative_path -> last_modified (POSIX epoch
	// seconds) for every FileDevice row belonging to deviceID, joined
	// through File.
	PathsWithMtime(ctx context.Context, deviceID int64) (map[string]float64, error)
	// InsertBatch atomically inserts every row in batch.
	InsertBatch(ctx context.Context, batch FileDeviceBatch) error
	// UpdateBatch atomically updates is_unlocked, is_encrypted, and
	// last_modified for every row in batch, matched by (file_id, device_id).
	UpdateBatch(ctx context.Context, batch FileDeviceBatch) error
	// FilesNeedingEncryption returns every File row that has a FileDevice
	// row for deviceID with is_encrypted = false. Files with no FileDevice
	// row for deviceID are not returned.
	FilesNeedingEncryption(ctx context.Context, deviceID int64) ([]*domain.File, error)
	// MarkEncrypted sets is_encrypted = true for the (fileID, deviceID) pair.
	MarkEncrypted(ctx context.Context, fileID, deviceID int64) error
	// Upsert inserts or updates the FileDevice row for (fileID, deviceID),
	// used by the unlock verb (§4.7 "explicit unlock/lock operation not
	// covered by sync"), which may observe a (file, device)
	// pair for the first time outside the normal Phase A/B insert path.
	Upsert(ctx context.Context, fd *domain.FileDevice) error
}

// KeyRepository persists the legacy singleton Key record (§3).
type KeyRepository interface {
	// GetOrCreate returns the archive-wide legacy key, generating and
	// persisting one on first access.
	GetOrCreate(ctx context.Context) (*domain.Key, error)
}
