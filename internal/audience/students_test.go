package audience

import (
	"testing"

	"github.com/jonathan/skill-matcher/internal/types"
	"github.com/stretchr/testify/assert"
)

func taxonomyRows() []types.TaxonomyEntry {
	return []types.TaxonomyEntry{
		{PostingID: "P1", TaxonomySkill: "Excel"},
		{PostingID: "P1", TaxonomySkill: "Customer Service"},
		{PostingID: "P2", TaxonomySkill: "Customer Service"},
		{PostingID: "P2", TaxonomySkill: "Forklift"},
		{PostingID: "P3", TaxonomySkill: "Forklift"},
		{PostingID: "P3", TaxonomySkill: "Forklift"},
		{PostingID: "P3", TaxonomySkill: " "},
	}
}

func TestTopSkills(t *testing.T) {
	got := TopSkills(taxonomyRows(), 2)

	assert.Equal(t, []SkillCount{
		{Skill: "Forklift", Count: 3},
		{Skill: "Customer Service", Count: 2},
	}, got)
}

func TestTopSkills_DefaultLimit(t *testing.T) {
	got := TopSkills(taxonomyRows(), 0)

	assert.Len(t, got, 3)
	assert.Equal(t, "Excel", got[2].Skill)
}

func TestTopFieldSkills(t *testing.T) {
	got := TopFieldSkills(taxonomyRows(), []string{"P1", "P2"}, 0)

	assert.Equal(t, []SkillCount{
		{Skill: "Customer Service", Count: 2},
		{Skill: "Excel", Count: 1},
		{Skill: "Forklift", Count: 1},
	}, got)
}

func TestTopFieldSkills_NoPostings(t *testing.T) {
	assert.Empty(t, TopFieldSkills(taxonomyRows(), nil, 5))
	assert.Empty(t, TopSkills(nil, 5))
}

func TestFields(t *testing.T) {
	fields := Fields()

	assert.Len(t, fields, 6)
	assert.Equal(t, "Business & Management", fields[0])
	for _, f := range fields {
		assert.NotEmpty(t, FieldKeywords[f])
	}
}
