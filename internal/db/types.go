package db

import (
	"time"

	"github.com/google/uuid"
)

// Run status values.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Artifact kinds stored per run.
const (
	ArtifactCatalog      = "catalog"
	ArtifactMentions     = "mentions"
	ArtifactProfiles     = "profiles"
	ArtifactRequirements = "requirements"
)

// Run represents a pipeline run record
type Run struct {
	ID           uuid.UUID  `json:"id"`
	Fingerprint  string     `json:"fingerprint"`
	PostingCount int        `json:"posting_count"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// ArtifactSummary is a lightweight view of an artifact for listing
type ArtifactSummary struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	ItemCount int       `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
}
