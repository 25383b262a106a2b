package ingestion

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skill-matcher/internal/types"
)

func TestWriteMentions_HeaderAndPrecision(t *testing.T) {
	mentions := []types.SkillMention{
		{PostingID: "P1", Skill: "customer service", Confidence: 0.8660254037844386, Source: types.MentionSourceNLP},
	}
	var buf bytes.Buffer

	require.NoError(t, WriteMentions(&buf, mentions))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "posting_id,canonical_skill,confidence,source", lines[0])

	got, err := ReadMentions(&buf)
	require.NoError(t, err)
	assert.Equal(t, mentions, got)
}

func TestReadMentions_FeedColumnNames(t *testing.T) {
	data := "Research ID,Taxonomy Skill,NLP Score\nP1,excel,0.5\n"

	got, err := ReadMentions(strings.NewReader(data))

	require.NoError(t, err)
	assert.Equal(t, []types.SkillMention{{PostingID: "P1", Skill: "excel", Confidence: 0.5}}, got)
}

func TestArtifacts_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	catalog := []types.CatalogEntry{{Skill: "excel", Frequency: 12}, {Skill: "sql, advanced", Frequency: 3}}
	catalogPath := filepath.Join(dir, "nested", "catalog.csv")
	require.NoError(t, SaveFile(catalogPath, func(w io.Writer) error { return WriteCatalog(w, catalog) }))
	gotCatalog, err := LoadCatalog(catalogPath)
	require.NoError(t, err)
	assert.Equal(t, catalog, gotCatalog)

	profiles := []types.SkillProfile{{PostingID: "P1", SkillText: "customer service excel"}}
	profilesPath := filepath.Join(dir, "profiles.csv")
	require.NoError(t, SaveFile(profilesPath, func(w io.Writer) error { return WriteProfiles(w, profiles) }))
	gotProfiles, err := LoadProfiles(profilesPath)
	require.NoError(t, err)
	assert.Equal(t, profiles, gotProfiles)

	reqs := []types.RequirementsProfile{{
		PostingID:         "P1",
		EducationDisplay:  "Bachelor's Degree",
		EducationSource:   types.SourceInferred,
		ExperienceDisplay: "",
		ExperienceSource:  types.SourceNotSpecified,
	}}
	reqPath := filepath.Join(dir, "requirements.csv")
	require.NoError(t, SaveFile(reqPath, func(w io.Writer) error { return WriteRequirements(w, reqs) }))
	gotReqs, err := LoadRequirements(reqPath)
	require.NoError(t, err)
	assert.Equal(t, reqs, gotReqs)
}

func TestWriteRequirements_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRequirements(&buf, nil))
	assert.Equal(t, "posting_id,education_display,education_source,experience_display,experience_source\n", buf.String())
}
