package cache

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skill-matcher/internal/types"
)

func TestFingerprint(t *testing.T) {
	t.Run("order and duplicates ignored", func(t *testing.T) {
		assert.Equal(t, Fingerprint([]string{"b", "a", "a"}), Fingerprint([]string{"a", "b"}))
	})

	t.Run("different sets differ", func(t *testing.T) {
		assert.NotEqual(t, Fingerprint([]string{"a", "b"}), Fingerprint([]string{"a", "c"}))
		assert.NotEqual(t, Fingerprint([]string{"ab"}), Fingerprint([]string{"a", "b"}))
	})

	t.Run("hex sha256", func(t *testing.T) {
		assert.Len(t, Fingerprint(nil), 64)
	})
}

func TestVariant(t *testing.T) {
	type params struct {
		TopK int `json:"top_k"`
	}
	a, err := Variant(KindMentions, params{TopK: 15})
	require.NoError(t, err)
	b, err := Variant(KindMentions, params{TopK: 15})
	require.NoError(t, err)
	c, err := Variant(KindMentions, params{TopK: 5})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, KindMentions+"@"))

	_, err = Variant(KindMentions, func() {})
	assert.Error(t, err)
}

func TestSameSet(t *testing.T) {
	assert.True(t, SameSet([]string{"P2", "P1"}, []string{"P1", "P2", "P2"}))
	assert.False(t, SameSet([]string{"P1"}, []string{"P1", "P2"}))
	assert.True(t, SameSet(nil, []string{}))
}

func TestLoadSave_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	ids := []string{"P2", "P1"}
	reqs := []types.RequirementsProfile{
		{PostingID: "P1", EducationDisplay: "Bachelor's Degree", EducationSource: types.SourceInferred},
		{PostingID: "P2", EducationSource: types.SourceNotSpecified},
	}

	_, ok, err := Load[types.RequirementsProfile](ctx, store, KindRequirements, ids)
	require.NoError(t, err)
	assert.False(t, ok, "empty store misses")

	require.NoError(t, Save(ctx, store, KindRequirements, ids, reqs))

	got, ok, err := Load[types.RequirementsProfile](ctx, store, KindRequirements, []string{"P1", "P2"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, reqs, got)
}

func TestLoad_DifferentSetMisses(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, Save(ctx, store, KindProfiles, []string{"P1"}, []types.SkillProfile{{PostingID: "P1"}}))

	_, ok, err := Load[types.SkillProfile](ctx, store, KindProfiles, []string{"P1", "P2"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = Load[types.SkillProfile](ctx, store, KindMentions, []string{"P1"})
	require.NoError(t, err)
	assert.False(t, ok, "kinds do not share entries")
}

func TestLoad_VerifiesStoredIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	// An entry stored under the right key but recording a different id set.
	require.NoError(t, store.Put(ctx, Key(KindProfiles, []string{"P1"}), []byte(`{"posting_ids":["P9"],"items":[]}`)))

	_, ok, err := Load[types.SkillProfile](ctx, store, KindProfiles, []string{"P1"})

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoad_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := Key(KindMentions, []string{"P1"})
	require.NoError(t, store.Put(ctx, key, []byte("not json")))

	_, ok, err := Load[types.SkillMention](ctx, store, KindMentions, []string{"P1"})

	assert.False(t, ok)
	var corrupt *CorruptEntryError
	require.True(t, errors.As(err, &corrupt))
	assert.Equal(t, key, corrupt.Key)
}

func TestLoad_EmptyItemsAreAHit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, Save[types.SkillMention](ctx, store, KindMentions, []string{"P1"}, nil))

	got, ok, err := Load[types.SkillMention](ctx, store, KindMentions, []string{"P1"})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	value := []byte("abc")
	require.NoError(t, store.Put(ctx, "k", value))
	value[0] = 'x'

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))
	assert.Equal(t, 1, store.Len())
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache", "artifacts.db")

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "k", []byte("v1")))
	require.NoError(t, store.Put(ctx, "k", []byte("v2")))
	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2", string(got))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	ids := []string{"P1", "P2"}
	profiles := []types.SkillProfile{{PostingID: "P1", SkillText: "excel"}}
	require.NoError(t, Save(ctx, reopened, KindProfiles, ids, profiles))
	loaded, ok, err := Load[types.SkillProfile](ctx, reopened, KindProfiles, ids)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, profiles, loaded)
}
