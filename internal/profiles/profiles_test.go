package profiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skill-matcher/internal/types"
)

func TestBuild_OrdersByConfidence(t *testing.T) {
	mentions := []types.SkillMention{
		{PostingID: "P1", Skill: "excel", Confidence: 0.5},
		{PostingID: "P1", Skill: "customer service", Confidence: 0.87},
	}

	got := Build(mentions)

	require.Len(t, got, 1)
	assert.Equal(t, types.SkillProfile{PostingID: "P1", SkillText: "customer service excel"}, got[0])
}

func TestBuild_GroupsAndOrdersByPostingID(t *testing.T) {
	mentions := []types.SkillMention{
		{PostingID: "P2", Skill: "forklift", Confidence: 0.4},
		{PostingID: "P1", Skill: "excel", Confidence: 0.9},
		{PostingID: "P2", Skill: "inventory", Confidence: 0.7},
		{PostingID: "P1", Skill: "sql", Confidence: 0.3},
	}

	got := Build(mentions)

	assert.Equal(t, []types.SkillProfile{
		{PostingID: "P1", SkillText: "excel sql"},
		{PostingID: "P2", SkillText: "inventory forklift"},
	}, got)
}

func TestBuild_DropsDuplicateSkillsKeepingHighest(t *testing.T) {
	mentions := []types.SkillMention{
		{PostingID: "P1", Skill: "sql", Confidence: 0.2},
		{PostingID: "P1", Skill: "excel", Confidence: 0.5},
		{PostingID: "P1", Skill: "SQL", Confidence: 0.8},
	}

	got := Build(mentions)

	require.Len(t, got, 1)
	assert.Equal(t, "sql excel", got[0].SkillText)
}

func TestBuild_TiesKeepInputOrder(t *testing.T) {
	mentions := []types.SkillMention{
		{PostingID: "P1", Skill: "welding", Confidence: 0.5},
		{PostingID: "P1", Skill: "blueprints", Confidence: 0.5},
	}

	got := Build(mentions)

	require.Len(t, got, 1)
	assert.Equal(t, "welding blueprints", got[0].SkillText)
}

func TestBuild_Empty(t *testing.T) {
	got := Build(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBuild_OneProfilePerPosting(t *testing.T) {
	mentions := []types.SkillMention{
		{PostingID: "A", Skill: "x ray", Confidence: 0.1},
		{PostingID: "B", Skill: "excel", Confidence: 0.2},
		{PostingID: "A", Skill: "excel", Confidence: 0.3},
		{PostingID: "C", Skill: "sql", Confidence: 0.3},
		{PostingID: "B", Skill: "sql", Confidence: 0.9},
	}

	got := Build(mentions)

	ids := make(map[string]int)
	for _, p := range got {
		ids[p.PostingID]++
	}
	assert.Equal(t, map[string]int{"A": 1, "B": 1, "C": 1}, ids)
	assert.Equal(t, "sql excel", Index(got)["B"])
}

func TestIndex(t *testing.T) {
	idx := Index([]types.SkillProfile{{PostingID: "P1", SkillText: "excel"}})
	assert.Equal(t, map[string]string{"P1": "excel"}, idx)
}
