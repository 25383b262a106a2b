package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-matcher/internal/catalog"
	"github.com/jonathan/skill-matcher/internal/extraction"
	"github.com/jonathan/skill-matcher/internal/ingestion"
	"github.com/jonathan/skill-matcher/internal/observability"
	"github.com/jonathan/skill-matcher/internal/profiles"
	"github.com/jonathan/skill-matcher/internal/requirements"
)

var buildCatalogCmd = &cobra.Command{
	Use:   "build-catalog",
	Short: "Build the skill catalog from a taxonomy feed",
	Long:  "Normalizes taxonomy skill labels, keeps those seen at least --min-frequency times and writes the most frequent --max-skills as a catalog CSV.",
	RunE:  runBuildCatalog,
}

var extractMentionsCmd = &cobra.Command{
	Use:   "extract-mentions",
	Short: "Extract per-posting skill mentions",
	Long:  "Scores every posting against every catalog skill by weighted-term similarity and keeps the best --top-k skills above --min-similarity.",
	RunE:  runExtractMentions,
}

var buildProfilesCmd = &cobra.Command{
	Use:   "build-profiles",
	Short: "Aggregate skill mentions into per-posting profiles",
	RunE:  runBuildProfiles,
}

var inferRequirementsCmd = &cobra.Command{
	Use:   "infer-requirements",
	Short: "Infer education and experience requirements for each posting",
	RunE:  runInferRequirements,
}

func init() {
	buildCatalogCmd.Flags().String("taxonomy", "", "Path to the taxonomy feed CSV")
	buildCatalogCmd.Flags().StringP("out", "o", "", "Output catalog CSV (default <output_dir>/"+catalogFile+")")
	buildCatalogCmd.Flags().Int("min-frequency", 0, "Minimum occurrences for a skill to be kept")
	buildCatalogCmd.Flags().Int("max-skills", 0, "Maximum catalog size")

	extractMentionsCmd.Flags().String("postings", "", "Path to the postings CSV")
	extractMentionsCmd.Flags().String("catalog", "", "Catalog CSV (default <output_dir>/"+catalogFile+")")
	extractMentionsCmd.Flags().StringP("out", "o", "", "Output mentions CSV (default <output_dir>/"+mentionsFile+")")
	extractMentionsCmd.Flags().Int("top-k", 0, "Maximum skills kept per posting")
	extractMentionsCmd.Flags().Float64("min-similarity", 0, "Minimum similarity for a mention")
	extractMentionsCmd.Flags().Int("batch-size", 0, "Postings scored per batch")

	buildProfilesCmd.Flags().String("mentions", "", "Mentions CSV (default <output_dir>/"+mentionsFile+")")
	buildProfilesCmd.Flags().StringP("out", "o", "", "Output profiles CSV (default <output_dir>/"+profilesFile+")")

	inferRequirementsCmd.Flags().String("postings", "", "Path to the postings CSV")
	inferRequirementsCmd.Flags().StringP("out", "o", "", "Output requirements CSV (default <output_dir>/"+requirementsFile+")")

	rootCmd.AddCommand(buildCatalogCmd, extractMentionsCmd, buildProfilesCmd, inferRequirementsCmd)
}

func runBuildCatalog(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	stringFlag(cmd, "taxonomy", &cfg.Taxonomy)
	intFlag(cmd, "min-frequency", &cfg.Catalog.MinFrequency)
	intFlag(cmd, "max-skills", &cfg.Catalog.MaxSkills)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Taxonomy == "" {
		return fmt.Errorf("--taxonomy must be provided (via flag or config)")
	}

	taxonomy, err := ingestion.LoadTaxonomy(cfg.Taxonomy)
	if err != nil {
		return err
	}
	entries := catalog.Build(taxonomy, cfg.Catalog)

	out, _ := cmd.Flags().GetString("out")
	out = artifactPath(cfg, out, catalogFile)
	if err := ingestion.SaveFile(out, func(w io.Writer) error { return ingestion.WriteCatalog(w, entries) }); err != nil {
		return err
	}
	if cfg.Verbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintCatalog(entries)
	}
	slog.Info("catalog built", slog.Int("skills", len(entries)), slog.String("out", out))
	return nil
}

func runExtractMentions(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	stringFlag(cmd, "postings", &cfg.Postings)
	intFlag(cmd, "top-k", &cfg.Extraction.TopK)
	floatFlag(cmd, "min-similarity", &cfg.Extraction.MinSimilarity)
	intFlag(cmd, "batch-size", &cfg.Extraction.BatchSize)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Postings == "" {
		return fmt.Errorf("--postings must be provided (via flag or config)")
	}

	postings, err := ingestion.LoadPostings(cfg.Postings)
	if err != nil {
		return err
	}
	catalogPath, _ := cmd.Flags().GetString("catalog")
	entries, err := ingestion.LoadCatalog(artifactPath(cfg, catalogPath, catalogFile))
	if err != nil {
		return err
	}

	mentions := extraction.Extract(postings, catalog.Skills(entries), cfg.Extraction)

	out, _ := cmd.Flags().GetString("out")
	out = artifactPath(cfg, out, mentionsFile)
	if err := ingestion.SaveFile(out, func(w io.Writer) error { return ingestion.WriteMentions(w, mentions) }); err != nil {
		return err
	}
	if cfg.Verbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintMentions(mentions)
	}
	slog.Info("mentions extracted",
		slog.Int("postings", len(postings)),
		slog.Int("mentions", len(mentions)),
		slog.String("out", out))
	return nil
}

func runBuildProfiles(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	mentionsPath, _ := cmd.Flags().GetString("mentions")
	mentions, err := ingestion.LoadMentions(artifactPath(cfg, mentionsPath, mentionsFile))
	if err != nil {
		return err
	}

	built := profiles.Build(mentions)

	out, _ := cmd.Flags().GetString("out")
	out = artifactPath(cfg, out, profilesFile)
	if err := ingestion.SaveFile(out, func(w io.Writer) error { return ingestion.WriteProfiles(w, built) }); err != nil {
		return err
	}
	slog.Info("profiles built", slog.Int("profiles", len(built)), slog.String("out", out))
	return nil
}

func runInferRequirements(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	stringFlag(cmd, "postings", &cfg.Postings)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Postings == "" {
		return fmt.Errorf("--postings must be provided (via flag or config)")
	}

	postings, err := ingestion.LoadPostings(cfg.Postings)
	if err != nil {
		return err
	}
	reqs := requirements.InferAll(postings)

	out, _ := cmd.Flags().GetString("out")
	out = artifactPath(cfg, out, requirementsFile)
	if err := ingestion.SaveFile(out, func(w io.Writer) error { return ingestion.WriteRequirements(w, reqs) }); err != nil {
		return err
	}
	if cfg.Verbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintRequirements(reqs)
	}
	slog.Info("requirements inferred", slog.Int("postings", len(reqs)), slog.String("out", out))
	return nil
}
