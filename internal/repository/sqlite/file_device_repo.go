package sqlite

import (
	"context"
	"database/sql"

	"github.com/prn-tf/vault/internal/domain"
	"github.com/prn-tf/vault/internal/repository"
	"github.com/prn-tf/vault/internal/verrors"
)

// fileDeviceRepository implements repository.FileDeviceRepository.
type fileDeviceRepository struct {
	db *DB
}

// NewFileDeviceRepository creates a new SQLite-backed file-device repository.
func NewFileDeviceRepository(db *DB) repository.FileDeviceRepository {
	return &fileDeviceRepository{db: db}
}

func (r *fileDeviceRepository) PathsWithMtime(ctx context.Context, deviceID int64) (map[string]float64, error) {
	rows, err := r.db.Conn.QueryContext(ctx, `
		SELECT f.relative_path, fd.last_modified
		FROM file_devices fd
		JOIN files f ON f.id = fd.file_id
		WHERE fd.device_id = ?
	`, deviceID)
	if err != nil {
		return nil, &verrors.StoreError{Op: "file_devices.paths_with_mtime", Err: err}
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var path string
		var mtime float64
		if err := rows.Scan(&path, &mtime); err != nil {
			return nil, &verrors.StoreError{Op: "file_devices.paths_with_mtime", Err: err}
		}
		out[path] = mtime
	}
	if err := rows.Err(); err != nil {
		return nil, &verrors.StoreError{Op: "file_devices.paths_with_mtime", Err: err}
	}
	return out, nil
}

func (r *fileDeviceRepository) InsertBatch(ctx context.Context, batch repository.FileDeviceBatch) error {
	if len(batch) == 0 {
		return nil
	}
	err := withTx(ctx, r.db.Conn, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO file_devices (file_id, device_id, is_unlocked, is_encrypted, last_modified)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, fd := range batch {
			if _, err := stmt.ExecContext(ctx, fd.FileID, fd.DeviceID, fd.IsUnlocked, fd.IsEncrypted, fd.LastModified); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &verrors.StoreError{Op: "file_devices.insert_batch", Err: err}
	}
	return nil
}

func (r *fileDeviceRepository) UpdateBatch(ctx context.Context, batch repository.FileDeviceBatch) error {
	if len(batch) == 0 {
		return nil
	}
	err := withTx(ctx, r.db.Conn, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			UPDATE file_devices SET is_unlocked = ?, is_encrypted = ?, last_modified = ?
			WHERE file_id = ? AND device_id = ?
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, fd := range batch {
			if _, err := stmt.ExecContext(ctx, fd.IsUnlocked, fd.IsEncrypted, fd.LastModified, fd.FileID, fd.DeviceID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &verrors.StoreError{Op: "file_devices.update_batch", Err: err}
	}
	return nil
}

func (r *fileDeviceRepository) FilesNeedingEncryption(ctx context.Context, deviceID int64) ([]*domain.File, error) {
	rows, err := r.db.Conn.QueryContext(ctx, `
		SELECT f.id, f.title, f.relative_path, f.random_hash, f.contents_hash, f.hash_kind, f.size, f.created_at, f.updated_at, f.key, f.nonce
		FROM files f
		JOIN file_devices fd ON fd.file_id = f.id
		WHERE fd.device_id = ? AND fd.is_encrypted = 0
	`, deviceID)
	if err != nil {
		return nil, &verrors.StoreError{Op: "file_devices.needs_encryption", Err: err}
	}
	defer rows.Close()

	var out []*domain.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, &verrors.StoreError{Op: "file_devices.needs_encryption", Err: err}
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, &verrors.StoreError{Op: "file_devices.needs_encryption", Err: err}
	}
	return out, nil
}

func (r *fileDeviceRepository) MarkEncrypted(ctx context.Context, fileID, deviceID int64) error {
	res, err := r.db.Conn.ExecContext(ctx,
		`UPDATE file_devices SET is_encrypted = 1 WHERE file_id = ? AND device_id = ?`, fileID, deviceID)
	if err != nil {
		return &verrors.StoreError{Op: "file_devices.mark_encrypted", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &verrors.StoreError{Op: "file_devices.mark_encrypted", Err: err}
	}
	if n == 0 {
		return &verrors.StoreError{Op: "file_devices.mark_encrypted", Err: verrors.ErrNotFound}
	}
	return nil
}

func (r *fileDeviceRepository) Upsert(ctx context.Context, fd *domain.FileDevice) error {
	_, err := r.db.Conn.ExecContext(ctx, `
		INSERT INTO file_devices (file_id, device_id, is_unlocked, is_encrypted, last_modified)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (file_id, device_id) DO UPDATE SET
			is_unlocked = excluded.is_unlocked,
			is_encrypted = excluded.is_encrypted,
			last_modified = excluded.last_modified
	`, fd.FileID, fd.DeviceID, fd.IsUnlocked, fd.IsEncrypted, fd.LastModified)
	if err != nil {
		return &verrors.StoreError{Op: "file_devices.upsert", Err: err}
	}
	return nil
}

var _ repository.FileDeviceRepository = (*fileDeviceRepository)(nil)
