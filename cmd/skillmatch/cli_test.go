package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skill-matcher/internal/audience"
	"github.com/jonathan/skill-matcher/internal/cache"
	"github.com/jonathan/skill-matcher/internal/config"
	"github.com/jonathan/skill-matcher/internal/ingestion"
	"github.com/jonathan/skill-matcher/internal/matching"
	"github.com/jonathan/skill-matcher/internal/types"
)

const postingsCSV = `posting_id,title,description,moc_codes,city,salary_min,salary_max
P1,Service Rep,"Excel spreadsheets, customer service calls. Requires Bachelor's degree and 3-5 years experience",,Austin,40000,50000
P2,Clerk,Excel reporting,92A,Austin,35000,
P3,Agent,Customer service on phones,,Dallas,,
`

const taxonomyCSV = `research_id,raw_skill,taxonomy_skill,taxonomy_source,correlation_coefficient
P1,spreadsheets,Excel,lightcast,0.9
P1,calls,Customer Service,lightcast,0.8
P2,excel,Excel,lightcast,0.9
P2,reporting,Customer Service,lightcast,0.4
P3,phones,Customer Service,lightcast,0.7
P3,excel,Excel,lightcast,0.9
`

// writeInputs creates the postings and taxonomy files in a temp directory.
func writeInputs(t *testing.T) (dir, postings, taxonomy string) {
	t.Helper()
	dir = t.TempDir()
	postings = filepath.Join(dir, "postings.csv")
	taxonomy = filepath.Join(dir, "taxonomy.csv")
	require.NoError(t, os.WriteFile(postings, []byte(postingsCSV), 0644))
	require.NoError(t, os.WriteFile(taxonomy, []byte(taxonomyCSV), 0644))
	return dir, postings, taxonomy
}

// resetFlags restores every flag to its default so executions do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command in-process and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvDatabaseURL, "")
	t.Setenv(config.EnvCachePath, "")
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// prepare runs the full pipeline into a fresh output directory.
func prepare(t *testing.T) (out, postings, taxonomy string) {
	t.Helper()
	dir, postings, taxonomy := writeInputs(t)
	out = filepath.Join(dir, "processed")
	_, err := execute(t, "prepare",
		"--postings", postings,
		"--taxonomy", taxonomy,
		"--output-dir", out,
		"--cache", "memory",
		"--json")
	require.NoError(t, err)
	return out, postings, taxonomy
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, true, true).Debug("hello")
	assert.Contains(t, buf.String(), `"level":"DEBUG"`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	newLogger(&buf, false, false).Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestArtifactPath(t *testing.T) {
	cfg := config.Config{OutputDir: "data/processed"}
	assert.Equal(t, filepath.Join("data/processed", catalogFile), artifactPath(cfg, "", catalogFile))
	assert.Equal(t, "custom.csv", artifactPath(cfg, "custom.csv", catalogFile))
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()

	store, closeFn, err := openCache(ctx, "memory", nil)
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryStore{}, store)
	closeFn()

	store, closeFn, err = openCache(ctx, filepath.Join(t.TempDir(), "cache.db"), nil)
	require.NoError(t, err)
	assert.IsType(t, &cache.SQLiteStore{}, store)
	closeFn()

	store, closeFn, err = openCache(ctx, "", nil)
	require.NoError(t, err)
	assert.Nil(t, store)
	closeFn()
}

func TestExportJSON_RejectsInvalidArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")

	err := exportJSON(path, "catalog", []types.CatalogEntry{{Skill: "", Frequency: 0}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generated catalog artifact is invalid")
	assert.NoFileExists(t, path)
}

func TestPrepare_WritesArtifacts(t *testing.T) {
	out, _, _ := prepare(t)

	for _, name := range []string{catalogFile, mentionsFile, profilesFile, requirementsFile,
		"catalog.json", "mentions.json", "profiles.json", "requirements.json"} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	entries, err := ingestion.LoadCatalog(filepath.Join(out, catalogFile))
	require.NoError(t, err)
	assert.Equal(t, []types.CatalogEntry{
		{Skill: "excel", Frequency: 3},
		{Skill: "customer service", Frequency: 3},
	}, entries)

	reqs, err := ingestion.LoadRequirements(filepath.Join(out, requirementsFile))
	require.NoError(t, err)
	require.Len(t, reqs, 3)
	assert.Equal(t, "Bachelor's Degree", reqs[0].EducationDisplay)
}

func TestPrepare_MissingSources(t *testing.T) {
	_, err := execute(t, "prepare", "--output-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--postings and --taxonomy must be provided")

	_, err = execute(t, "prepare", "--postings", "/nonexistent/postings.csv", "--taxonomy", "x.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postings file not found")
}

func TestStepCommands(t *testing.T) {
	dir, postings, taxonomy := writeInputs(t)
	catalogPath := filepath.Join(dir, "catalog.csv")
	mentionsPath := filepath.Join(dir, "mentions.csv")
	profilesPath := filepath.Join(dir, "profiles.csv")
	requirementsPath := filepath.Join(dir, "requirements.csv")

	_, err := execute(t, "build-catalog", "--taxonomy", taxonomy, "-o", catalogPath)
	require.NoError(t, err)
	_, err = execute(t, "extract-mentions", "--postings", postings, "--catalog", catalogPath, "-o", mentionsPath)
	require.NoError(t, err)
	_, err = execute(t, "build-profiles", "--mentions", mentionsPath, "-o", profilesPath)
	require.NoError(t, err)
	_, err = execute(t, "infer-requirements", "--postings", postings, "-o", requirementsPath)
	require.NoError(t, err)

	mentions, err := ingestion.LoadMentions(mentionsPath)
	require.NoError(t, err)
	require.NotEmpty(t, mentions)
	for _, m := range mentions {
		assert.Equal(t, types.MentionSourceNLP, m.Source)
		assert.GreaterOrEqual(t, m.Confidence, 0.08)
	}

	profiles, err := ingestion.LoadProfiles(profilesPath)
	require.NoError(t, err)
	assert.NotEmpty(t, profiles)

	reqs, err := ingestion.LoadRequirements(requirementsPath)
	require.NoError(t, err)
	assert.Len(t, reqs, 3)
}

func TestMatch_JSON(t *testing.T) {
	out, postings, _ := prepare(t)

	stdout, err := execute(t, "match", "--postings", postings, "--output-dir", out, "-q", "I know excel", "--top-n", "2", "--json")
	require.NoError(t, err)

	var results []matching.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 2)
	assert.Greater(t, results[0].Score, 0.0)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.NotEmpty(t, results[0].Title)
}

func TestMatch_MissingProfiles(t *testing.T) {
	_, postings, _ := writeInputs(t)

	_, err := execute(t, "match", "--postings", postings, "--output-dir", t.TempDir(), "-q", "excel")

	require.Error(t, err)
	var loadErr *ingestion.LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestSkillGap_JSON(t *testing.T) {
	out, _, _ := prepare(t)

	stdout, err := execute(t, "skill-gap", "--output-dir", out, "--posting-id", "P1", "-q", "I know excel", "--json")
	require.NoError(t, err)

	var gap struct {
		PostingID string   `json:"posting_id"`
		Matched   []string `json:"matched"`
		Missing   []string `json:"missing"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &gap))
	assert.Equal(t, "P1", gap.PostingID)
	assert.Equal(t, []string{"excel"}, gap.Matched)
	assert.Equal(t, []string{"customer service"}, gap.Missing)
}

func TestSkillGap_RequiresPostingID(t *testing.T) {
	_, err := execute(t, "skill-gap", "-q", "excel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "posting-id")
}

func TestVeteranMatch(t *testing.T) {
	out, postings, _ := prepare(t)

	stdout, err := execute(t, "veteran-match", "--postings", postings, "--output-dir", out, "--moc", "92a", "--json")
	require.NoError(t, err)

	var res audience.VeteranResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.True(t, res.Known)
	assert.Equal(t, []string{"P2"}, types.PostingIDs(res.Direct))
}

func TestVeteranMatch_List(t *testing.T) {
	stdout, err := execute(t, "veteran-match", "--list", "--json")
	require.NoError(t, err)

	var mocs []audience.MOC
	require.NoError(t, json.Unmarshal([]byte(stdout), &mocs))
	assert.Len(t, mocs, len(audience.MOCs()))
}

func TestInsights(t *testing.T) {
	_, postings, taxonomy := writeInputs(t)

	stdout, err := execute(t, "insights", "quality", "--postings", postings)
	require.NoError(t, err)
	var quality []postingQuality
	require.NoError(t, json.Unmarshal([]byte(stdout), &quality))
	require.Len(t, quality, 3)
	assert.Equal(t, "$40,000 - $50,000 / year", quality[0].Salary)

	stdout, err = execute(t, "insights", "skills", "--taxonomy", taxonomy, "--limit", "1")
	require.NoError(t, err)
	var skills []audience.SkillCount
	require.NoError(t, json.Unmarshal([]byte(stdout), &skills))
	require.Len(t, skills, 1)
	assert.Equal(t, 3, skills[0].Count)
}

func TestInsights_InvalidArgs(t *testing.T) {
	_, err := execute(t, "insights", "bogus")
	assert.Error(t, err)

	_, err = execute(t, "insights", "emerging")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--taxonomy must be provided")
}
