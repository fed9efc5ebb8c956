package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// queryTimeout is the deadline applied to every kv query.
const queryTimeout = 5 * time.Second

// pgStore is the pgx-backed Store implementation.
type pgStore struct {
	pool *pgxpool.Pool
}

// NewPostgres ensures the kv table exists and returns a Store backed by
// the given connection pool.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (Store, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const schema = `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key    TEXT PRIMARY KEY,
			value  TEXT NOT NULL,
			set_ts TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`

	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("kv: postgres: create schema: %w", err)
	}
	return &pgStore{pool: pool}, nil
}

func (s *pgStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const q = `SELECT value FROM kv_entries WHERE key = $1`

	var value string
	err := s.pool.QueryRow(ctx, q, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv: postgres: get: %w", err)
	}
	return value, true, nil
}

// Set upserts the entry. Last write wins; each write is a self-contained
// snapshot, so concurrent writers need no locking.
func (s *pgStore) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const q = `
		INSERT INTO kv_entries (key, value, set_ts)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET
			value  = EXCLUDED.value,
			set_ts = EXCLUDED.set_ts`

	if _, err := s.pool.Exec(ctx, q, key, value); err != nil {
		return fmt.Errorf("kv: postgres: set: %w", err)
	}
	return nil
}

func (s *pgStore) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("kv: postgres: remove: %w", err)
	}
	return nil
}
