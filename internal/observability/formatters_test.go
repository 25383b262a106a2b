package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/jonathan/skill-matcher/internal/audience"
	"github.com/jonathan/skill-matcher/internal/matching"
	"github.com/jonathan/skill-matcher/internal/pipeline"
	"github.com/jonathan/skill-matcher/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintCatalog(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	entries := make([]types.CatalogEntry, 7)
	for i := range entries {
		entries[i] = types.CatalogEntry{Skill: fmt.Sprintf("skill-%d", i), Frequency: 10 - i}
	}

	p.PrintCatalog(entries)
	output := buf.String()

	assert.Contains(t, output, "SKILL CATALOG")
	assert.Contains(t, output, "Catalog size: 7 skills")
	assert.Contains(t, output, "skill-0")
	assert.NotContains(t, output, "skill-5")
	assert.Contains(t, output, "... and 2 more skills")
}

func TestPrintCatalog_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintCatalog(nil)

	assert.Empty(t, buf.String())
}

func TestPrintMentions(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintMentions([]types.SkillMention{
		{PostingID: "P1", Skill: "customer service", Confidence: 0.866},
		{PostingID: "P1", Skill: "excel", Confidence: 0.5},
		{PostingID: "P2", Skill: "forklift", Confidence: 0.42},
	})
	output := buf.String()

	assert.Contains(t, output, "Mentions: 3 across 2 postings")
	assert.Contains(t, output, "customer service")
	assert.Contains(t, output, "0.87")
}

func TestPrintMatches(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintMatches("excel customer service", []matching.Result{
		{Posting: types.Posting{ID: "P1", Title: "Office Clerk", Company: "Acme", City: "Austin"}, Score: 0.71},
		{Posting: types.Posting{ID: "P2", Title: "Forklift Driver"}, Score: 0},
	})
	output := buf.String()

	assert.Contains(t, output, "MATCHING POSTINGS")
	assert.Contains(t, output, "#1  Office Clerk")
	assert.Contains(t, output, "Score: 0.71")
	assert.Contains(t, output, "Acme, Austin")
	assert.Contains(t, output, "#2  Forklift Driver")
}

func TestPrintMatches_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintMatches("anything", nil)

	assert.Contains(t, buf.String(), "No postings indexed.")
}

func TestPrintSkillGap(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSkillGap("P1", []string{"excel"}, []string{"customer service", "sql"})
	output := buf.String()

	assert.Contains(t, output, "You have (1):")
	assert.Contains(t, output, "✓ excel")
	assert.Contains(t, output, "To develop (2):")
	assert.Contains(t, output, "• sql")
}

func TestPrintRequirements(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRequirements([]types.RequirementsProfile{
		{EducationSource: types.SourceDataset, ExperienceSource: types.SourceInferred},
		{EducationSource: types.SourceInferred, ExperienceSource: types.SourceInferred},
		{EducationSource: types.SourceNotSpecified, ExperienceSource: types.SourceNotSpecified},
	})
	output := buf.String()

	assert.Contains(t, output, "Postings: 3")
	assert.Contains(t, output, "not_specified")
	assert.Regexp(t, `Experience\s+0\s+2\s+1`, output)
}

func TestPrintVeteranMatch(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintVeteranMatch(audience.VeteranResult{
		MOC:    audience.MOC{Code: "00X", Title: "00X"},
		Direct: []types.Posting{{Title: "Warehouse Lead"}},
	})
	output := buf.String()

	assert.Contains(t, output, "MOC:   00X (00X)")
	assert.Contains(t, output, "not in dictionary")
	assert.Contains(t, output, "• Warehouse Lead")
	assert.Contains(t, output, "Skill matches: 0")
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunSummary(nil)
	assert.Empty(t, buf.String())

	p.PrintRunSummary(&pipeline.Result{
		Fingerprint:  strings.Repeat("ab", 32),
		Mentions:     []types.SkillMention{{PostingID: "P1"}},
		UsedFallback: true,
	})
	output := buf.String()

	assert.Contains(t, output, "PIPELINE RUN")
	assert.Contains(t, output, "Mentions:     1 (taxonomy fallback)")
	assert.Contains(t, output, "Indexed:      0 postings")
	assert.Contains(t, output, "ababababababa...")
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProgress(pipeline.ProgressEvent{Step: pipeline.StepCatalog, Message: "catalog built", Count: 12})
	p.PrintProgress(pipeline.ProgressEvent{Step: pipeline.StepMentions, Message: "mentions loaded", Count: 40, Cached: true})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "→ catalog"))
	assert.True(t, strings.HasPrefix(lines[1], "↺ mentions"))
	assert.Contains(t, lines[1], "(40)")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 100))

	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), strings.Repeat("x", 60))
}
