package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"

	"github.com/prn-tf/vault/internal/domain"
	"github.com/prn-tf/vault/internal/repository"
	"github.com/prn-tf/vault/internal/verrors"
)

// keyRepository implements repository.KeyRepository.
type keyRepository struct {
	db *DB
}

// NewKeyRepository creates a new SQLite-backed legacy key repository.
func NewKeyRepository(db *DB) repository.KeyRepository {
	return &keyRepository{db: db}
}

func (r *keyRepository) GetOrCreate(ctx context.Context) (*domain.Key, error) {
	var k domain.Key
	var raw []byte
	row := r.db.Conn.QueryRowContext(ctx, `SELECT id, key FROM keys LIMIT 1`)
	err := row.Scan(&k.ID, &raw)
	if err == nil {
		copy(k.Key[:], raw)
		return &k, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, &verrors.StoreError{Op: "keys.get_or_create", Err: err}
	}

	var fresh [domain.KeySize]byte
	if _, err := rand.Read(fresh[:]); err != nil {
		return nil, &verrors.StoreError{Op: "keys.generate", Err: err}
	}
	res, err := r.db.Conn.ExecContext(ctx, `INSERT INTO keys (key) VALUES (?)`, fresh[:])
	if err != nil {
		return nil, &verrors.StoreError{Op: "keys.create", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, &verrors.StoreError{Op: "keys.create", Err: err}
	}
	return &domain.Key{ID: id, Key: fresh}, nil
}

var _ repository.KeyRepository = (*keyRepository)(nil)
