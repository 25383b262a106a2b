// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/skill-matcher/internal/audience"
	"github.com/jonathan/skill-matcher/internal/matching"
	"github.com/jonathan/skill-matcher/internal/pipeline"
	"github.com/jonathan/skill-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func moreLine(sb *strings.Builder, total int, noun string) {
	if total > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more %s", total-maxItemsToShow, noun))
	}
}

// PrintCatalog outputs the most frequent catalog skills.
func (p *Printer) PrintCatalog(entries []types.CatalogEntry) {
	if len(entries) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Catalog size: %d skills\n\n", len(entries)))
	count := min(len(entries), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("#%d  %-36s %6d", i+1, truncate(entries[i].Skill, 36), entries[i].Frequency))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	moreLine(&sb, len(entries), "skills")

	p.printBox("SKILL CATALOG", sb.String())
}

// PrintMentions outputs mention totals and the strongest mentions.
func (p *Printer) PrintMentions(mentions []types.SkillMention) {
	if len(mentions) == 0 {
		return
	}

	postings := make(map[string]bool)
	for _, m := range mentions {
		postings[m.PostingID] = true
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Mentions: %d across %d postings\n\n", len(mentions), len(postings)))
	count := min(len(mentions), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := mentions[i]
		sb.WriteString(fmt.Sprintf("%-12s %-32s %.2f", truncate(m.PostingID, 12), truncate(m.Skill, 32), m.Confidence))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	moreLine(&sb, len(mentions), "mentions")

	p.printBox("SKILL MENTIONS", sb.String())
}

// PrintMatches outputs ranked postings for a query.
func (p *Printer) PrintMatches(query string, results []matching.Result) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Query: %s\n", truncate(query, boxWidth-11)))
	if len(results) == 0 {
		sb.WriteString("\nNo postings indexed.")
		p.printBox("MATCHING POSTINGS", sb.String())
		return
	}
	sb.WriteString("\n")

	count := min(len(results), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := results[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, r.Title))
		sb.WriteString(fmt.Sprintf("    Score: %.2f  ID: %s", r.Score, r.ID))
		if r.Company != "" {
			sb.WriteString(fmt.Sprintf("\n    %s", r.Company))
			if r.City != "" {
				sb.WriteString(", " + r.City)
			}
		}
		if i < count-1 {
			sb.WriteString("\n\n")
		}
	}
	moreLine(&sb, len(results), "postings")

	p.printBox("MATCHING POSTINGS", sb.String())
}

// PrintSkillGap outputs the skills a query covers and lacks for one posting.
func (p *Printer) PrintSkillGap(postingID string, matched, missing []string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Posting: %s\n\n", postingID))

	sb.WriteString(fmt.Sprintf("You have (%d):\n", len(matched)))
	for _, s := range matched {
		sb.WriteString(fmt.Sprintf("  ✓ %s\n", s))
	}
	sb.WriteString(fmt.Sprintf("\nTo develop (%d):\n", len(missing)))
	for _, s := range missing {
		sb.WriteString(fmt.Sprintf("  • %s\n", s))
	}

	p.printBox("SKILL GAP", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRequirements outputs how many requirements came from the dataset, from
// inference, or were not found.
func (p *Printer) PrintRequirements(reqs []types.RequirementsProfile) {
	if len(reqs) == 0 {
		return
	}

	edu := make(map[string]int)
	exp := make(map[string]int)
	for _, r := range reqs {
		edu[r.EducationSource]++
		exp[r.ExperienceSource]++
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Postings: %d\n\n", len(reqs)))
	sb.WriteString(fmt.Sprintf("%-14s %10s %10s %14s\n", "", types.SourceDataset, types.SourceInferred, types.SourceNotSpecified))
	sb.WriteString(fmt.Sprintf("%-14s %10d %10d %14d\n", "Education", edu[types.SourceDataset], edu[types.SourceInferred], edu[types.SourceNotSpecified]))
	sb.WriteString(fmt.Sprintf("%-14s %10d %10d %14d", "Experience", exp[types.SourceDataset], exp[types.SourceInferred], exp[types.SourceNotSpecified]))

	p.printBox("REQUIREMENTS", sb.String())
}

// PrintVeteranMatch outputs direct and skill-based matches for an occupation code.
func (p *Printer) PrintVeteranMatch(res audience.VeteranResult) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("MOC:   %s (%s)\n", res.MOC.Code, res.MOC.Title))
	if !res.Known {
		sb.WriteString("       not in dictionary, using general query\n")
	}
	sb.WriteString(fmt.Sprintf("\nDirect matches: %d\n", len(res.Direct)))
	count := min(len(res.Direct), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", res.Direct[i].Title))
	}
	sb.WriteString(fmt.Sprintf("\nSkill matches: %d\n", len(res.SkillMatches)))
	count = min(len(res.SkillMatches), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := res.SkillMatches[i]
		sb.WriteString(fmt.Sprintf("  • %-40s %.2f\n", truncate(r.Title, 40), r.Score))
	}

	p.printBox("VETERAN MATCH", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunSummary outputs the artifact counts of a pipeline run.
func (p *Printer) PrintRunSummary(res *pipeline.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:          %s\n", res.RunID))
	sb.WriteString(fmt.Sprintf("Fingerprint:  %s\n\n", truncate(res.Fingerprint, 16)))
	sb.WriteString(fmt.Sprintf("Catalog:      %d skills\n", len(res.Catalog)))
	sb.WriteString(fmt.Sprintf("Mentions:     %d", len(res.Mentions)))
	if res.UsedFallback {
		sb.WriteString(" (taxonomy fallback)")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Profiles:     %d\n", len(res.Profiles)))
	sb.WriteString(fmt.Sprintf("Requirements: %d\n", len(res.Requirements)))
	sb.WriteString(fmt.Sprintf("Indexed:      %d postings", res.Index.Len()))

	p.printBox("PIPELINE RUN", sb.String())
}

// PrintProgress writes a one-line progress update.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(ev pipeline.ProgressEvent) {
	mark := "→"
	if ev.Cached {
		mark = "↺"
	}
	fmt.Fprintf(p.out, "%s %-13s %s (%d)\n", mark, ev.Step, ev.Message, ev.Count)
}
