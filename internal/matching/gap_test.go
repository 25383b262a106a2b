package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/skill-matcher/internal/types"
)

func TestSkillGap_EndToEndExample(t *testing.T) {
	mentions := []types.SkillMention{
		{PostingID: "P1", Skill: "customer service", Confidence: 0.87},
		{PostingID: "P1", Skill: "excel", Confidence: 0.5},
	}

	matched, missing := SkillGap("I know excel", "P1", mentions, 10)

	assert.Equal(t, []string{"excel"}, matched)
	assert.Equal(t, []string{"customer service"}, missing)
}

func TestSkillGap_Partition(t *testing.T) {
	mentions := []types.SkillMention{
		{PostingID: "P1", Skill: "data analysis", Confidence: 0.9},
		{PostingID: "P1", Skill: "sql", Confidence: 0.8},
		{PostingID: "P1", Skill: "data analysis", Confidence: 0.4},
		{PostingID: "P2", Skill: "forklift", Confidence: 0.99},
		{PostingID: "P1", Skill: "project management", Confidence: 0.7},
		{PostingID: "P1", Skill: "reporting", Confidence: 0.6},
		{PostingID: "P1", Skill: "python", Confidence: 0.1},
	}

	matched, missing := SkillGap("Did DATA work and weekly reports; knows SQL", "P1", mentions, 4)

	assert.Equal(t, []string{"data analysis"}, matched)
	assert.Equal(t, []string{"sql", "project management", "reporting"}, missing,
		"short tokens never match and 'reporting' is not a substring of 'reports'")

	union := append(append([]string{}, matched...), missing...)
	assert.ElementsMatch(t, []string{"data analysis", "sql", "project management", "reporting"}, union)
	for _, m := range matched {
		assert.NotContains(t, missing, m)
	}
}

func TestSkillGap_SubstringMatch(t *testing.T) {
	mentions := []types.SkillMention{{PostingID: "P1", Skill: "nursing", Confidence: 0.5}}

	matched, missing := SkillGap("ten years in nursing homes", "P1", mentions, 0)

	assert.Equal(t, []string{"nursing"}, matched)
	assert.Empty(t, missing)
}

func TestSkillGap_NoMentions(t *testing.T) {
	matched, missing := SkillGap("excel", "P9", []types.SkillMention{{PostingID: "P1", Skill: "excel"}}, 10)

	assert.NotNil(t, matched)
	assert.NotNil(t, missing)
	assert.Empty(t, matched)
	assert.Empty(t, missing)
}

func TestSkillGap_EmptyQueryMissesEverything(t *testing.T) {
	mentions := []types.SkillMention{
		{PostingID: "P1", Skill: "excel", Confidence: 0.5},
		{PostingID: "P1", Skill: "welding", Confidence: 0.6},
	}

	matched, missing := SkillGap("", "P1", mentions, 10)

	assert.Empty(t, matched)
	assert.Equal(t, []string{"welding", "excel"}, missing)
}
