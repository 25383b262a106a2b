package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-matcher/internal/audience"
	"github.com/jonathan/skill-matcher/internal/ingestion"
	"github.com/jonathan/skill-matcher/internal/insights"
	"github.com/jonathan/skill-matcher/internal/matching"
	"github.com/jonathan/skill-matcher/internal/types"
)

// Insight reports accepted by the insights command.
const (
	insightSalary      = "salary"
	insightQuality     = "quality"
	insightCredentials = "credentials"
	insightEmerging    = "emerging"
	insightSkills      = "skills"
)

// fieldPostings is how many best-matching postings define a study field.
const fieldPostings = 50

var insightsCmd = &cobra.Command{
	Use:   "insights <salary|quality|credentials|emerging|skills>",
	Short: "Print market insights as JSON",
	Long: `Reports derived from the posting table and taxonomy feed:

  salary       salary statistics per city
  quality      a 0-100 informativeness score per posting
  credentials  postings asking for more education than their field's minimum
  emerging     raw skill phrases the taxonomy maps with low confidence
  skills       the most requested taxonomy skills, optionally for one --field`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{insightSalary, insightQuality, insightCredentials, insightEmerging, insightSkills},
	RunE:      runInsights,
}

func init() {
	insightsCmd.Flags().String("postings", "", "Path to the postings CSV")
	insightsCmd.Flags().String("taxonomy", "", "Path to the taxonomy feed CSV")
	insightsCmd.Flags().String("output-dir", "", "Directory holding prepared artifacts (skills --field)")
	insightsCmd.Flags().Float64("confidence-threshold", 0, "emerging: correlation below which a mapping is weak")
	insightsCmd.Flags().Int("min-employers", 0, "emerging: postings a phrase must appear in")
	insightsCmd.Flags().Int("limit", 0, "Maximum rows for emerging and skills")
	insightsCmd.Flags().String("field", "", "skills: study field ("+strings.Join(audience.Fields(), ", ")+")")
	rootCmd.AddCommand(insightsCmd)
}

// postingQuality is one row of the quality report.
type postingQuality struct {
	PostingID string `json:"posting_id"`
	Title     string `json:"title"`
	Salary    string `json:"salary"`
	insights.QualityScore
}

func runInsights(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	stringFlag(cmd, "postings", &cfg.Postings)
	stringFlag(cmd, "taxonomy", &cfg.Taxonomy)
	stringFlag(cmd, "output-dir", &cfg.OutputDir)
	if err := cfg.Validate(); err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	var report any
	switch args[0] {
	case insightSalary, insightQuality, insightCredentials:
		postings, err := requirePostings(cfg.Postings)
		if err != nil {
			return err
		}
		switch args[0] {
		case insightSalary:
			report = insights.SalaryByCity(postings)
		case insightQuality:
			report = qualityReport(postings)
		default:
			report = insights.DetectCredentialInflation(postings)
		}

	case insightEmerging:
		taxonomy, err := requireTaxonomy(cfg.Taxonomy)
		if err != nil {
			return err
		}
		opts := insights.EmergingOptions{TopN: limit}
		opts.ConfidenceThreshold, _ = cmd.Flags().GetFloat64("confidence-threshold")
		opts.MinEmployers, _ = cmd.Flags().GetInt("min-employers")
		report = insights.DetectEmergingSkills(taxonomy, opts)

	case insightSkills:
		taxonomy, err := requireTaxonomy(cfg.Taxonomy)
		if err != nil {
			return err
		}
		field, _ := cmd.Flags().GetString("field")
		if field == "" {
			report = audience.TopSkills(taxonomy, limit)
			break
		}
		query, ok := audience.FieldKeywords[field]
		if !ok {
			return fmt.Errorf("unknown field %q; expected one of: %s", field, strings.Join(audience.Fields(), ", "))
		}
		if cfg.Postings == "" {
			return fmt.Errorf("--postings must be provided with --field")
		}
		postings, idx, err := loadIndex(cfg)
		if err != nil {
			return err
		}
		results := matching.Join(postings, idx.Query(query, fieldPostings))
		ids := make([]string, 0, len(results))
		for _, r := range results {
			if r.Score > 0 {
				ids = append(ids, r.ID)
			}
		}
		report = audience.TopFieldSkills(taxonomy, ids, limit)
	}

	return writeJSON(cmd.OutOrStdout(), report)
}

func requirePostings(path string) ([]types.Posting, error) {
	if path == "" {
		return nil, fmt.Errorf("--postings must be provided (via flag or config)")
	}
	return ingestion.LoadPostings(path)
}

func requireTaxonomy(path string) ([]types.TaxonomyEntry, error) {
	if path == "" {
		return nil, fmt.Errorf("--taxonomy must be provided (via flag or config)")
	}
	return ingestion.LoadTaxonomy(path)
}

func qualityReport(postings []types.Posting) []postingQuality {
	out := make([]postingQuality, len(postings))
	for i, p := range postings {
		out[i] = postingQuality{
			PostingID:    p.ID,
			Title:        p.Title,
			Salary:       insights.FormatSalary(p.SalaryMin, p.SalaryMax, p.SalaryUnit),
			QualityScore: insights.ScoreDescription(p.Description, p.SalaryMin, p.MinEducation, p.ExperienceText),
		}
	}
	return out
}
