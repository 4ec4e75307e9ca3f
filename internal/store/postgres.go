package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS learning_state (
	id   integer PRIMARY KEY CHECK (id = 1),
	blob bytea NOT NULL
);`

// PostgresStore keeps the snapshot blob in a single-row table, for hosts
// that already run the product's postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects with the given DSN and ensures the table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: migrate postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Load(ctx context.Context) ([]byte, bool, error) {
	var blob []byte
	err := p.pool.QueryRow(ctx, `SELECT blob FROM learning_state WHERE id = 1`).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: load postgres: %w", err)
	}
	return blob, true, nil
}

func (p *PostgresStore) Save(ctx context.Context, blob []byte) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO learning_state (id, blob) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET blob = excluded.blob`, blob)
	if err != nil {
		return fmt.Errorf("store: save postgres: %w", err)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
