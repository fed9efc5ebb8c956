// Package kv provides the generic persisted key-value contract consumed
// by the location cache and the discovery result cache, with Postgres,
// SQLite and in-memory backends.
package kv

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is a minimal string key-value store. Get reports presence
// explicitly so callers can tell an absent key from an empty value.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Open selects a backend from the DSN: postgres:// and postgresql://
// DSNs get the pgx-backed store, any other non-empty value is treated as
// a SQLite file path, and an empty DSN falls back to the in-memory
// store. The returned cleanup function releases the backend's resources.
func Open(ctx context.Context, dsn string) (Store, func(), error) {
	switch {
	case dsn == "":
		return Mem(), func() {}, nil

	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("kv: open postgres: %w", err)
		}
		store, err := NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	default:
		store, err := NewSQLite(dsn)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}

// Mem returns an in-memory Store. Used by tests and when no storage DSN
// is configured.
func Mem() Store {
	return &memStore{entries: make(map[string]string)}
}

type memStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *memStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
