package catalog

import (
	"testing"

	"github.com/jonathan/skill-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeat(label string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = label
	}
	return out
}

func TestBuildFromLabels_FiltersAndOrders(t *testing.T) {
	var labels []string
	labels = append(labels, repeat("Customer Service", 4)...)
	labels = append(labels, repeat("excel", 3)...)
	labels = append(labels, repeat("SQL", 5)...)
	labels = append(labels, repeat("rare skill", 2)...)
	labels = append(labels, repeat("IT", 10)...) // too short after normalization

	got := BuildFromLabels(labels, Options{MinFrequency: 3, MaxSkills: 10})

	assert.Equal(t, []types.CatalogEntry{
		{Skill: "sql", Frequency: 5},
		{Skill: "customer service", Frequency: 4},
		{Skill: "excel", Frequency: 3},
	}, got)
}

func TestBuildFromLabels_NormalizesBeforeCounting(t *testing.T) {
	labels := []string{"Customer-Service", "customer service", " CUSTOMER  service!"}

	got := BuildFromLabels(labels, Options{MinFrequency: 3})

	require.Len(t, got, 1)
	assert.Equal(t, "customer service", got[0].Skill)
	assert.Equal(t, 3, got[0].Frequency)
}

func TestBuildFromLabels_TiesKeepEncounterOrder(t *testing.T) {
	labels := []string{"welding", "forklift", "nursing", "forklift", "welding", "nursing", "nursing"}

	got := BuildFromLabels(labels, Options{MinFrequency: 2, MaxSkills: 2})

	assert.Equal(t, []string{"nursing", "welding"}, Skills(got))
}

func TestBuildFromLabels_Properties(t *testing.T) {
	var labels []string
	for i, label := range []string{"python", "java", "excel", "payroll", "triage", "forklift"} {
		labels = append(labels, repeat(label, i+1)...)
	}

	for _, opts := range []Options{
		{MinFrequency: 1, MaxSkills: 100},
		{MinFrequency: 3, MaxSkills: 2},
		{MinFrequency: 6, MaxSkills: 6},
		{MinFrequency: 7, MaxSkills: 6},
	} {
		got := BuildFromLabels(labels, opts)
		assert.LessOrEqual(t, len(got), opts.MaxSkills)
		for _, e := range got {
			assert.GreaterOrEqual(t, e.Frequency, opts.MinFrequency)
			assert.Greater(t, len(e.Skill), 2)
		}
	}
}

func TestBuild_UsesTaxonomySkillColumn(t *testing.T) {
	entries := []types.TaxonomyEntry{
		{PostingID: "1", RawSkill: "ms excel", TaxonomySkill: "Excel"},
		{PostingID: "2", RawSkill: "spreadsheets", TaxonomySkill: "Excel"},
		{PostingID: "3", RawSkill: "excel", TaxonomySkill: "excel"},
		{PostingID: "3", RawSkill: "excel", TaxonomySkill: ""},
	}

	got := Build(entries, DefaultOptions())

	assert.Equal(t, []string{"excel"}, Skills(got))
}

func TestBuild_EmptyInput(t *testing.T) {
	got := Build(nil, Options{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestOptions_ZeroValuesUseDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, DefaultOptions(), o)
	assert.Equal(t, Options{MinFrequency: 3, MaxSkills: DefaultMaxSkills}, Options{MinFrequency: 3}.Effective())
}
