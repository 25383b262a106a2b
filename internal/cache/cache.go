// Package cache stores derived pipeline artifacts keyed by the exact set of
// posting ids they were computed from. An entry is only served when its stored
// id set equals the requested one; anything else is a miss and the caller
// regenerates the artifact in full.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Artifact kinds.
const (
	KindCatalog      = "catalog"
	KindMentions     = "mentions"
	KindProfiles     = "profiles"
	KindRequirements = "requirements"
)

// Store is a byte-level key/value backend.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
}

// Entry is the stored form of an artifact.
type Entry[T any] struct {
	PostingIDs []string  `json:"posting_ids"`
	Items      []T       `json:"items"`
	CreatedAt  time.Time `json:"created_at"`
}

// CorruptEntryError reports a cached value that could not be decoded.
type CorruptEntryError struct {
	Key   string
	Cause error
}

func (e *CorruptEntryError) Error() string {
	return fmt.Sprintf("corrupt cache entry %s: %v", e.Key, e.Cause)
}

func (e *CorruptEntryError) Unwrap() error {
	return e.Cause
}

// Fingerprint identifies a posting-id set independent of order and duplicates.
func Fingerprint(ids []string) string {
	set := uniqueSorted(ids)
	h := sha256.New()
	for _, id := range set {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Variant qualifies kind with a digest of the parameters an artifact was built
// with, so entries computed under different settings never share a key.
func Variant(kind string, params any) (string, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s parameters: %w", kind, err)
	}
	sum := sha256.Sum256(data)
	return kind + "@" + hex.EncodeToString(sum[:8]), nil
}

// Key is the store key of an artifact kind for a posting-id set.
func Key(kind string, ids []string) string {
	return kind + ":" + Fingerprint(ids)
}

// Load returns the cached items of kind for ids. The boolean is false on a miss,
// including when the entry was stored for a different id set.
func Load[T any](ctx context.Context, s Store, kind string, ids []string) ([]T, bool, error) {
	key := Key(kind, ids)
	data, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	var entry Entry[T]
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, &CorruptEntryError{Key: key, Cause: err}
	}
	if !SameSet(entry.PostingIDs, ids) {
		return nil, false, nil
	}
	if entry.Items == nil {
		entry.Items = []T{}
	}
	return entry.Items, true, nil
}

// Save stores items of kind for ids.
func Save[T any](ctx context.Context, s Store, kind string, ids []string, items []T) error {
	key := Key(kind, ids)
	data, err := json.Marshal(Entry[T]{
		PostingIDs: uniqueSorted(ids),
		Items:      items,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	if err := s.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	return nil
}

// SameSet reports whether a and b contain the same ids, ignoring order and
// repetition.
func SameSet(a, b []string) bool {
	return slices.Equal(uniqueSorted(a), uniqueSorted(b))
}

func uniqueSorted(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
