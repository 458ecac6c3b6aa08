// Package sqlite is the concrete C6 metadata store: five repositories
// backed by modernc.org/sqlite, the teacher's repository-pattern shape
// (internal/repository/postgres/user_repo.go) ported from pgx call syntax
// to database/sql, since a personal single-user archive has no use for a
// network database server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/rs/zerolog"
)

// schema creates the five tables backing §3's data model if they do not
// already exist. relative_path and random_hash are UNIQUE on files,
// platform_id is UNIQUE on devices, and (file_id, device_id) is a composite
// unique index on file_devices, directly encoding the invariants spec.md
// states in prose.
const schema = `
CREATE TABLE IF NOT EXISTS files (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	title         TEXT NOT NULL,
	relative_path TEXT NOT NULL UNIQUE,
	random_hash   TEXT NOT NULL UNIQUE,
	contents_hash TEXT NOT NULL,
	hash_kind     TEXT NOT NULL,
	size          INTEGER NOT NULL,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL,
	key           BLOB NOT NULL,
	nonce         BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS devices (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	platform_id TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS device_configs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	device_id     INTEGER NOT NULL UNIQUE REFERENCES devices(id),
	locked_path   TEXT,
	unlocked_path TEXT
);

CREATE TABLE IF NOT EXISTS file_devices (
	file_id       INTEGER NOT NULL REFERENCES files(id),
	device_id     INTEGER NOT NULL REFERENCES devices(id),
	is_unlocked   INTEGER NOT NULL,
	is_encrypted  INTEGER NOT NULL,
	last_modified REAL NOT NULL,
	UNIQUE (file_id, device_id)
);

CREATE TABLE IF NOT EXISTS keys (
	id  INTEGER PRIMARY KEY AUTOINCREMENT,
	key BLOB NOT NULL
);
`

// DB wraps the metadata store's connection and the path it was opened from
// (the run-lock, §11.6, keys off this path).
type DB struct {
	Conn   *sql.DB
	Path   string
	logger zerolog.Logger
}

// Open opens (creating if absent) the SQLite database at path and ensures
// its schema exists.
func Open(path string, logger zerolog.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open metadata store %q: %w", path, err)
	}
	conn.SetMaxOpenConns(1) // modernc.org/sqlite has no native connection pool locking story

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply metadata store schema: %w", err)
	}

	db := &DB{
		Conn:   conn,
		Path:   path,
		logger: logger.With().Str("component", "sqlite").Str("path", path).Logger(),
	}
	db.logger.Debug().Msg("metadata store opened")
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.Conn.Close()
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error — the atomic-batch contract every C6 operation needs.
func withTx(ctx context.Context, conn *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
