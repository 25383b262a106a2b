package cache

import (
	"context"

	"github.com/jonathan/skill-matcher/internal/db"
)

// PostgresStore keeps entries in the artifact_cache table of the pipeline
// database, so several hosts can share one cache.
type PostgresStore struct {
	db *db.DB
}

// NewPostgresStore returns a store backed by database.
func NewPostgresStore(database *db.DB) *PostgresStore {
	return &PostgresStore{db: database}
}

// Get implements Store.
func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.db.GetCacheEntry(ctx, key)
}

// Put implements Store.
func (p *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	return p.db.PutCacheEntry(ctx, key, value)
}
