package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrRunNotFound is returned when a run id has no record.
var ErrRunNotFound = errors.New("run not found")

// CreateRun records the start of a pipeline run over the posting set identified by
// fingerprint and returns its ID.
func (db *DB) CreateRun(ctx context.Context, fingerprint string, postingCount int) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (id, fingerprint, posting_count, status)
		 VALUES ($1, $2, $3, $4)`,
		id, fingerprint, postingCount, RunStatusRunning,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a pipeline run as finished with status
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves a pipeline run by ID. A missing run is (nil, nil).
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, fingerprint, posting_count, status, created_at, completed_at
		 FROM pipeline_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Fingerprint, &run.PostingCount, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves the most recent pipeline runs
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, fingerprint, posting_count, status, created_at, completed_at
		 FROM pipeline_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Fingerprint, &run.PostingCount, &run.Status, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SaveArtifact stores items as the JSON artifact kind of a run, replacing any
// earlier artifact of the same kind.
func SaveArtifact[T any](ctx context.Context, db *DB, runID uuid.UUID, kind string, items []T) error {
	if items == nil {
		items = []T{}
	}
	content, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact %s: %w", kind, err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO artifacts (id, run_id, kind, item_count, content)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (run_id, kind) DO UPDATE SET item_count = $4, content = $5, created_at = NOW()`,
		uuid.New(), runID, kind, len(items), content,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", kind, err)
	}
	return nil
}

// GetArtifact decodes artifact kind of a run. A missing artifact is (nil, nil).
func GetArtifact[T any](ctx context.Context, db *DB, runID uuid.UUID, kind string) ([]T, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM artifacts WHERE run_id = $1 AND kind = $2`,
		runID, kind,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", kind, err)
	}
	var items []T
	if err := json.Unmarshal(content, &items); err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", kind, err)
	}
	return items, nil
}

// LatestCompletedRun returns the newest completed run over the posting set
// identified by fingerprint, or nil when there is none.
func (db *DB) LatestCompletedRun(ctx context.Context, fingerprint string) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, fingerprint, posting_count, status, created_at, completed_at
		 FROM pipeline_runs WHERE fingerprint = $1 AND status = $2
		 ORDER BY created_at DESC LIMIT 1`,
		fingerprint, RunStatusCompleted,
	).Scan(&run.ID, &run.Fingerprint, &run.PostingCount, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest run: %w", err)
	}
	return &run, nil
}

// ListArtifacts summarizes the artifacts of a run in creation order.
func (db *DB) ListArtifacts(ctx context.Context, runID uuid.UUID) ([]ArtifactSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, kind, item_count, created_at FROM artifacts
		 WHERE run_id = $1 ORDER BY created_at ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var out []ArtifactSummary
	for rows.Next() {
		var a ArtifactSummary
		if err := rows.Scan(&a.ID, &a.Kind, &a.ItemCount, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteRun deletes a pipeline run and all its artifacts (via cascade)
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM pipeline_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}
