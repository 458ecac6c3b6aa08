package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/prn-tf/vault/internal/domain"
	"github.com/prn-tf/vault/internal/repository"
	"github.com/prn-tf/vault/internal/verrors"
)

// fileRepository implements repository.FileRepository.
type fileRepository struct {
	db *DB
}

// NewFileRepository creates a new SQLite-backed file repository.
func NewFileRepository(db *DB) repository.FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) AllPaths(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Conn.QueryContext(ctx, `SELECT relative_path FROM files`)
	if err != nil {
		return nil, &verrors.StoreError{Op: "files.all_paths", Err: err}
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, &verrors.StoreError{Op: "files.all_paths", Err: err}
		}
		out[p] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, &verrors.StoreError{Op: "files.all_paths", Err: err}
	}
	return out, nil
}

func (r *fileRepository) AllRandomHashes(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Conn.QueryContext(ctx, `SELECT random_hash FROM files`)
	if err != nil {
		return nil, &verrors.StoreError{Op: "files.all_random_hashes", Err: err}
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, &verrors.StoreError{Op: "files.all_random_hashes", Err: err}
		}
		out[h] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, &verrors.StoreError{Op: "files.all_random_hashes", Err: err}
	}
	return out, nil
}

func (r *fileRepository) InsertBatch(ctx context.Context, batch repository.FileBatch) error {
	if len(batch) == 0 {
		return nil
	}
	err := withTx(ctx, r.db.Conn, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO files (title, relative_path, random_hash, contents_hash, hash_kind, size, created_at, updated_at, key, nonce)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, f := range batch {
			res, err := stmt.ExecContext(ctx,
				f.Title, f.RelativePath, f.RandomHash, f.ContentsHash, string(f.HashKind),
				f.Size, f.CreatedAt.UnixNano(), f.UpdatedAt.UnixNano(), f.Key[:], f.Nonce[:],
			)
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: %s", verrors.ErrDuplicatePath, f.RelativePath)
				}
				return err
			}
			f.ID, err = res.LastInsertId()
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &verrors.StoreError{Op: "files.insert_batch", Err: err}
	}
	return nil
}

func (r *fileRepository) FindByPaths(ctx context.Context, paths []string) (map[string]*domain.File, error) {
	out := make(map[string]*domain.File, len(paths))
	if len(paths) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(paths))
	args := make([]any, len(paths))
	for i, p := range paths {
		placeholders[i] = "?"
		args[i] = p
	}
	query := fmt.Sprintf(`
		SELECT id, title, relative_path, random_hash, contents_hash, hash_kind, size, created_at, updated_at, key, nonce
		FROM files WHERE relative_path IN (%s)
	`, strings.Join(placeholders, ","))

	rows, err := r.db.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &verrors.StoreError{Op: "files.find_by_paths", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, &verrors.StoreError{Op: "files.find_by_paths", Err: err}
		}
		out[f.RelativePath] = f
	}
	if err := rows.Err(); err != nil {
		return nil, &verrors.StoreError{Op: "files.find_by_paths", Err: err}
	}
	return out, nil
}

func (r *fileRepository) UpdateBatch(ctx context.Context, batch repository.FileBatch) error {
	if len(batch) == 0 {
		return nil
	}
	err := withTx(ctx, r.db.Conn, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			UPDATE files SET contents_hash = ?, updated_at = ? WHERE id = ?
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, f := range batch {
			f.UpdatedAt = time.Now().UTC()
			res, err := stmt.ExecContext(ctx, f.ContentsHash, f.UpdatedAt.UnixNano(), f.ID)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: file id %d", verrors.ErrNotFound, f.ID)
			}
		}
		return nil
	})
	if err != nil {
		return &verrors.StoreError{Op: "files.update_batch", Err: err}
	}
	return nil
}

func (r *fileRepository) All(ctx context.Context) ([]*domain.File, error) {
	rows, err := r.db.Conn.QueryContext(ctx, `
		SELECT id, title, relative_path, random_hash, contents_hash, hash_kind, size, created_at, updated_at, key, nonce
		FROM files
	`)
	if err != nil {
		return nil, &verrors.StoreError{Op: "files.all", Err: err}
	}
	defer rows.Close()

	var out []*domain.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, &verrors.StoreError{Op: "files.all", Err: err}
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, &verrors.StoreError{Op: "files.all", Err: err}
	}
	return out, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*domain.File, error) {
	var f domain.File
	var hashKind string
	var createdAt, updatedAt int64
	var key, nonce []byte

	if err := row.Scan(&f.ID, &f.Title, &f.RelativePath, &f.RandomHash, &f.ContentsHash,
		&hashKind, &f.Size, &createdAt, &updatedAt, &key, &nonce); err != nil {
		return nil, err
	}
	f.HashKind = domain.HashKind(hashKind)
	f.CreatedAt = time.Unix(0, createdAt).UTC()
	f.UpdatedAt = time.Unix(0, updatedAt).UTC()
	copy(f.Key[:], key)
	copy(f.Nonce[:], nonce)
	return &f, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. modernc.org/sqlite surfaces this as a plain error whose message
// contains "UNIQUE constraint failed" rather than a typed sentinel.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ repository.FileRepository = (*fileRepository)(nil)
