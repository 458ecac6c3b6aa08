package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/prn-tf/vault/internal/domain"
	"github.com/prn-tf/vault/internal/repository"
	"github.com/prn-tf/vault/internal/verrors"
)

// deviceConfigRepository implements repository.DeviceConfigRepository.
type deviceConfigRepository struct {
	db *DB
}

// NewDeviceConfigRepository creates a new SQLite-backed device config repository.
func NewDeviceConfigRepository(db *DB) repository.DeviceConfigRepository {
	return &deviceConfigRepository{db: db}
}

func (r *deviceConfigRepository) Get(ctx context.Context, deviceID int64) (*domain.DeviceConfig, error) {
	var c domain.DeviceConfig
	row := r.db.Conn.QueryRowContext(ctx,
		`SELECT id, device_id, locked_path, unlocked_path FROM device_configs WHERE device_id = ?`, deviceID)
	err := row.Scan(&c.ID, &c.DeviceID, &c.LockedPath, &c.UnlockedPath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, verrors.ErrNotFound
	}
	if err != nil {
		return nil, &verrors.StoreError{Op: "device_configs.get", Err: err}
	}
	return &c, nil
}

func (r *deviceConfigRepository) SetLockedPath(ctx context.Context, deviceID int64, lockedPath string) error {
	return r.upsert(ctx, deviceID, &lockedPath, nil)
}

func (r *deviceConfigRepository) SetUnlockedPath(ctx context.Context, deviceID int64, unlockedPath string) error {
	return r.upsert(ctx, deviceID, nil, &unlockedPath)
}

// upsert inserts a device_configs row if absent, otherwise updates only the
// non-nil field, preserving whatever the other field already holds.
func (r *deviceConfigRepository) upsert(ctx context.Context, deviceID int64, lockedPath, unlockedPath *string) error {
	existing, err := r.Get(ctx, deviceID)
	if err != nil && !errors.Is(err, verrors.ErrNotFound) {
		return err
	}

	if errors.Is(err, verrors.ErrNotFound) {
		_, execErr := r.db.Conn.ExecContext(ctx,
			`INSERT INTO device_configs (device_id, locked_path, unlocked_path) VALUES (?, ?, ?)`,
			deviceID, lockedPath, unlockedPath)
		if execErr != nil {
			return &verrors.StoreError{Op: "device_configs.insert", Err: execErr}
		}
		return nil
	}

	if lockedPath == nil {
		lockedPath = existing.LockedPath
	}
	if unlockedPath == nil {
		unlockedPath = existing.UnlockedPath
	}

	_, execErr := r.db.Conn.ExecContext(ctx,
		`UPDATE device_configs SET locked_path = ?, unlocked_path = ? WHERE device_id = ?`,
		lockedPath, unlockedPath, deviceID)
	if execErr != nil {
		return &verrors.StoreError{Op: "device_configs.update", Err: execErr}
	}
	return nil
}

var _ repository.DeviceConfigRepository = (*deviceConfigRepository)(nil)
