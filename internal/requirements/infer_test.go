package requirements

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skill-matcher/internal/types"
)

func TestInfer_DescriptionExample(t *testing.T) {
	p := types.Posting{ID: "P1", Description: "Requires Bachelor's degree and 3-5 years experience"}

	got := Infer(p)

	assert.Equal(t, types.RequirementsProfile{
		PostingID:         "P1",
		EducationDisplay:  "Bachelor's Degree",
		EducationSource:   types.SourceInferred,
		ExperienceDisplay: "3-5 years",
		ExperienceSource:  types.SourceInferred,
	}, got)
}

func TestInfer_StructuredFieldsWin(t *testing.T) {
	p := types.Posting{
		ID:             "P1",
		Description:    "PhD preferred, 10+ years",
		MinEducation:   "  High School  ",
		ExperienceText: "2 years",
	}

	got := Infer(p)

	assert.Equal(t, "High School", got.EducationDisplay)
	assert.Equal(t, types.SourceDataset, got.EducationSource)
	assert.Equal(t, "2 years", got.ExperienceDisplay)
	assert.Equal(t, types.SourceDataset, got.ExperienceSource)
}

func TestInfer_NullSentinelsAreIgnored(t *testing.T) {
	for _, sentinel := range []string{"", "nan", "None", "NULL", "n/a", "NA", "Not Specified", "-", "   "} {
		t.Run(fmt.Sprintf("%q", sentinel), func(t *testing.T) {
			p := types.Posting{
				ID:             "P1",
				Title:          "Entry-level cashier",
				MinEducation:   sentinel,
				ExperienceText: sentinel,
			}

			got := Infer(p)

			assert.Equal(t, types.SourceNotSpecified, got.EducationSource)
			assert.Empty(t, got.EducationDisplay)
			assert.Equal(t, types.SourceInferred, got.ExperienceSource)
			assert.Equal(t, ExperienceEntryLevel, got.ExperienceDisplay)
		})
	}
}

func TestInfer_NothingFound(t *testing.T) {
	got := Infer(types.Posting{ID: "P1", Title: "Cook", Description: "Prepare meals"})

	assert.Equal(t, types.RequirementsProfile{
		PostingID:        "P1",
		EducationSource:  types.SourceNotSpecified,
		ExperienceSource: types.SourceNotSpecified,
	}, got)
}

func TestInferEducation(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"doctorate", "Ph.D. in chemistry required", EducationDoctorate},
		{"doctorate wins over master", "Master's degree or doctorate", EducationDoctorate},
		{"master", "Master’s degree in nursing", EducationMaster},
		{"mba", "MBA preferred", EducationMaster},
		{"master wins over bachelor", "bachelor's required, master of science preferred", EducationMaster},
		{"bachelor", "BACHELORS in accounting", EducationBachelor},
		{"bs degree", "BS degree in engineering", EducationBachelor},
		{"associate", "Associate's degree in IT", EducationAssociate},
		{"associate needs degree", "Sales associate wanted", ""},
		{"high school", "High school diploma required", EducationHighSchool},
		{"ged", "Diploma or GED", EducationHighSchool},
		{"certification", "CDL certification required", EducationCertification},
		{"none", "Friendly team player", ""},
		{"managed is not ged", "Managed accounts", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferEducation(tt.text))
		})
	}
}

func TestInferExperience(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"range", "3-5 years experience", "3-5 years"},
		{"range with to", "2 to 4 yrs of experience", "2-4 years"},
		{"range months", "6-12 months in retail", "6-12 months"},
		{"plus", "2+ years of experience", "2+ years"},
		{"at least", "at least 3 years in a warehouse", "3+ years"},
		{"single year", "1 year of customer service", "1 year"},
		{"months", "6 months experience", "6 months"},
		{"plural years", "5 years experience", "5 years"},
		{"range before single", "1 year required, 3-5 years preferred", "3-5 years"},
		{"entry level", "This is an entry level role", ExperienceEntryLevel},
		{"no experience", "No experience required", ExperienceEntryLevel},
		{"number wins over entry level", "Entry-level, 1 year preferred", "1 year"},
		{"none", "Flexible schedule", ""},
		{"bare number", "Team of 12 people", ""},
		{"contract length", "12 month contract", ""},
		{"duration then unrelated cue", "6 month assignment, experience preferred", ""},
		{"of experience", "2 years of experience", "2 years"},
		{"cue after adjectives", "3 years relevant work experience", "3 years"},
		{"cue before", "Experience: 4 years", "4 years"},
		{"skips duration before requirement", "12 month contract with 2 years experience", "2 years"},
		{"minimum qualifier", "minimum of 2 yrs", "2+ years"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferExperience(tt.text))
		})
	}
}

func TestInferAll_KeepsOrder(t *testing.T) {
	postings := make([]types.Posting, 1500)
	for i := range postings {
		desc := "Flexible schedule"
		if i%3 == 0 {
			desc = "Bachelor's degree and 2+ years"
		}
		postings[i] = types.Posting{ID: fmt.Sprintf("P%04d", i), Description: desc}
	}

	got := InferAll(postings)

	require.Len(t, got, len(postings))
	for i, r := range got {
		assert.Equal(t, postings[i].ID, r.PostingID)
		assert.Equal(t, Infer(postings[i]), r)
	}
}

func TestInferAll_Empty(t *testing.T) {
	got := InferAll(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
