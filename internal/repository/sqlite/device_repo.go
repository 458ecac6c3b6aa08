package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/prn-tf/vault/internal/domain"
	"github.com/prn-tf/vault/internal/repository"
	"github.com/prn-tf/vault/internal/verrors"
)

// deviceRepository implements repository.DeviceRepository.
type deviceRepository struct {
	db *DB
}

// NewDeviceRepository creates a new SQLite-backed device repository.
func NewDeviceRepository(db *DB) repository.DeviceRepository {
	return &deviceRepository{db: db}
}

func (r *deviceRepository) FindOrCreateCurrent(ctx context.Context) (*domain.Device, error) {
	platformID, err := domain.CurrentPlatformID()
	if err != nil {
		return nil, &verrors.StoreError{Op: "devices.current_platform_id", Err: err}
	}

	var d domain.Device
	row := r.db.Conn.QueryRowContext(ctx,
		`SELECT id, platform_id, name FROM devices WHERE platform_id = ?`, platformID)
	err = row.Scan(&d.ID, &d.PlatformID, &d.Name)
	if err == nil {
		return &d, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, &verrors.StoreError{Op: "devices.find_current", Err: err}
	}

	name := platformID
	res, err := r.db.Conn.ExecContext(ctx,
		`INSERT INTO devices (platform_id, name) VALUES (?, ?)`, platformID, name)
	if err != nil {
		return nil, &verrors.StoreError{Op: "devices.create_current", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, &verrors.StoreError{Op: "devices.create_current", Err: err}
	}
	return &domain.Device{ID: id, PlatformID: platformID, Name: name}, nil
}

var _ repository.DeviceRepository = (*deviceRepository)(nil)
