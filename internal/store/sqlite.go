package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS learning_state (
	id   INTEGER PRIMARY KEY CHECK (id = 1),
	blob BLOB NOT NULL
);`

// SQLiteStore keeps the snapshot blob in a single-row sqlite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database at dsn.
func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite %s: %w", dsn, err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate sqlite: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]byte, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM learning_state WHERE id = 1`).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: load sqlite: %w", err)
	}
	return blob, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO learning_state (id, blob) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET blob = excluded.blob`, blob)
	if err != nil {
		return fmt.Errorf("store: save sqlite: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
