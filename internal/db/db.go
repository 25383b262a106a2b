// Package db provides PostgreSQL storage for pipeline runs, their artifacts and
// the shared artifact cache.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// schema is applied by Migrate. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS pipeline_runs (
		id            UUID PRIMARY KEY,
		fingerprint   TEXT NOT NULL,
		posting_count INTEGER NOT NULL DEFAULT 0,
		status        TEXT NOT NULL DEFAULT 'running',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at  TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS pipeline_runs_fingerprint_idx ON pipeline_runs (fingerprint, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS artifacts (
		id         UUID PRIMARY KEY,
		run_id     UUID NOT NULL REFERENCES pipeline_runs(id) ON DELETE CASCADE,
		kind       TEXT NOT NULL,
		item_count INTEGER NOT NULL DEFAULT 0,
		content    JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (run_id, kind)
	)`,
	`CREATE TABLE IF NOT EXISTS artifact_cache (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the tables used by this package if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// GetCacheEntry returns a cached value and whether it exists.
func (db *DB) GetCacheEntry(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := db.pool.QueryRow(ctx, `SELECT value FROM artifact_cache WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cache entry %s: %w", key, err)
	}
	return value, true, nil
}

// PutCacheEntry stores or replaces a cached value.
func (db *DB) PutCacheEntry(ctx context.Context, key string, value []byte) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO artifact_cache (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to put cache entry %s: %w", key, err)
	}
	return nil
}
