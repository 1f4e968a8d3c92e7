package kv

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore keeps entries in the kv_entries table created by the
// database migrations. The pool is owned by database.Database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Get reads one row, mapping pgx.ErrNoRows to ErrNotFound.
func (p *PostgresStore) Get(ctx context.Context, key Key) ([]byte, error) {
	var value []byte
	err := p.pool.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key.String()).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set upserts the row and bumps updated_at.
func (p *PostgresStore) Set(ctx context.Context, key Key, value []byte) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key.String(), value)
	return err
}

// Delete removes the row if present.
func (p *PostgresStore) Delete(ctx context.Context, key Key) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key.String())
	return err
}

// List orders with the "C" collation so results match byte order
// regardless of the database locale.
func (p *PostgresStore) List(ctx context.Context, prefix Key) ([]Entry, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT key, value FROM kv_entries
		WHERE starts_with(key, $1)
		ORDER BY key COLLATE "C"`, prefix.Prefix())
	if err != nil {
		return nil, err
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.Key, &e.Value)
		return e, err
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = make([]Entry, 0)
	}
	return entries, nil
}

// Ping checks a pooled connection.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close is a no-op; database.Database closes the pool.
func (p *PostgresStore) Close() error {
	return nil
}
