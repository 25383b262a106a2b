package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-matcher/internal/audience"
	"github.com/jonathan/skill-matcher/internal/config"
	"github.com/jonathan/skill-matcher/internal/ingestion"
	"github.com/jonathan/skill-matcher/internal/matching"
	"github.com/jonathan/skill-matcher/internal/observability"
	"github.com/jonathan/skill-matcher/internal/types"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank postings against a free-text skill description",
	RunE:  runMatch,
}

var skillGapCmd = &cobra.Command{
	Use:   "skill-gap",
	Short: "Show which of a posting's skills a description covers",
	RunE:  runSkillGap,
}

var veteranMatchCmd = &cobra.Command{
	Use:   "veteran-match",
	Short: "Match postings to a military occupation code",
	Long:  "Lists postings that name the occupation code directly and postings whose skills match the occupation. Use --list to print the known codes.",
	RunE:  runVeteranMatch,
}

func init() {
	for _, cmd := range []*cobra.Command{matchCmd, skillGapCmd, veteranMatchCmd} {
		cmd.Flags().String("postings", "", "Path to the postings CSV")
		cmd.Flags().String("output-dir", "", "Directory holding prepared artifacts")
		cmd.Flags().Bool("json", false, "Print results as JSON")
	}

	matchCmd.Flags().StringP("query", "q", "", "Skills and experience to match")
	matchCmd.Flags().Int("top-n", 0, "Number of postings to return")

	skillGapCmd.Flags().StringP("query", "q", "", "Skills and experience to compare")
	skillGapCmd.Flags().String("posting-id", "", "Posting to compare against (required)")
	skillGapCmd.Flags().Int("limit", 0, "Maximum posting skills considered")
	if err := skillGapCmd.MarkFlagRequired("posting-id"); err != nil {
		panic(fmt.Sprintf("failed to mark posting-id flag as required: %v", err))
	}

	veteranMatchCmd.Flags().String("moc", "", "Military occupation code, e.g. 11B")
	veteranMatchCmd.Flags().Int("top-n", 0, "Number of skill matches to return")
	veteranMatchCmd.Flags().Bool("list", false, "List known occupation codes")

	rootCmd.AddCommand(matchCmd, skillGapCmd, veteranMatchCmd)
}

// querySettings loads configuration with the flags shared by the query commands.
func querySettings(cmd *cobra.Command) (config.Config, error) {
	cfg, err := loadSettings()
	if err != nil {
		return cfg, err
	}
	stringFlag(cmd, "postings", &cfg.Postings)
	stringFlag(cmd, "output-dir", &cfg.OutputDir)
	if cmd.Flags().Lookup("top-n") != nil {
		intFlag(cmd, "top-n", &cfg.TopN)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Postings == "" {
		return cfg, fmt.Errorf("--postings must be provided (via flag or config)")
	}
	return cfg, nil
}

// loadIndex reads the postings and builds the index from the prepared profiles.
func loadIndex(cfg config.Config) ([]types.Posting, *matching.Index, error) {
	postings, err := ingestion.LoadPostings(cfg.Postings)
	if err != nil {
		return nil, nil, err
	}
	prof, err := ingestion.LoadProfiles(filepath.Join(cfg.OutputDir, profilesFile))
	if err != nil {
		return nil, nil, err
	}
	return postings, matching.Build(prof), nil
}

func runMatch(cmd *cobra.Command, _ []string) error {
	cfg, err := querySettings(cmd)
	if err != nil {
		return err
	}
	postings, idx, err := loadIndex(cfg)
	if err != nil {
		return err
	}

	query, _ := cmd.Flags().GetString("query")
	results := matching.Join(postings, idx.Query(query, cfg.TopN))

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), results)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintMatches(query, results)
	return nil
}

func runSkillGap(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	stringFlag(cmd, "output-dir", &cfg.OutputDir)
	intFlag(cmd, "limit", &cfg.GapLimit)
	if err := cfg.Validate(); err != nil {
		return err
	}

	mentions, err := ingestion.LoadMentions(filepath.Join(cfg.OutputDir, mentionsFile))
	if err != nil {
		return err
	}

	query, _ := cmd.Flags().GetString("query")
	postingID, _ := cmd.Flags().GetString("posting-id")
	matched, missing := matching.SkillGap(query, postingID, mentions, cfg.GapLimit)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"posting_id": postingID,
			"matched":    matched,
			"missing":    missing,
		})
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintSkillGap(postingID, matched, missing)
	return nil
}

func runVeteranMatch(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	if list, _ := cmd.Flags().GetBool("list"); list {
		mocs := audience.MOCs()
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), mocs)
		}
		for _, m := range mocs {
			fmt.Fprintf(cmd.OutOrStdout(), "%-6s %s\n", m.Code, m.Title)
		}
		return nil
	}

	code, _ := cmd.Flags().GetString("moc")
	if code == "" {
		return fmt.Errorf("--moc or --list must be provided")
	}
	cfg, err := querySettings(cmd)
	if err != nil {
		return err
	}
	postings, idx, err := loadIndex(cfg)
	if err != nil {
		return err
	}

	res := audience.VeteranMatch(code, postings, idx, cfg.TopN)
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintVeteranMatch(res)
	return nil
}
