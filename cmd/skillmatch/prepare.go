package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-matcher/internal/config"
	"github.com/jonathan/skill-matcher/internal/db"
	"github.com/jonathan/skill-matcher/internal/ingestion"
	"github.com/jonathan/skill-matcher/internal/observability"
	"github.com/jonathan/skill-matcher/internal/pipeline"
	"github.com/jonathan/skill-matcher/internal/types"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Run the full pipeline and write every artifact",
	Long: `Builds the catalog, mentions, profiles and requirements in one pass and writes them to
the output directory. Artifacts are reused from the cache when the posting id set is
unchanged; with a database URL the run and its artifacts are also recorded.`,
	RunE: runPrepare,
}

func init() {
	addSourceFlags(prepareCmd)
	prepareCmd.Flags().String("output-dir", "", "Directory for artifact files")
	prepareCmd.Flags().Bool("json", false, "Also export schema-validated JSON artifacts")
	rootCmd.AddCommand(prepareCmd)
}

// addSourceFlags registers the inputs shared by prepare and serve.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("postings", "", "Path to the postings CSV")
	cmd.Flags().String("taxonomy", "", "Path to the taxonomy feed CSV")
	cmd.Flags().String("cache", "", `Artifact cache: a SQLite file path or "memory"`)
	cmd.Flags().String("db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
}

// sourceSettings loads configuration, applies the shared source flags and validates.
func sourceSettings(cmd *cobra.Command) (config.Config, error) {
	cfg, err := loadSettings()
	if err != nil {
		return cfg, err
	}
	stringFlag(cmd, "postings", &cfg.Postings)
	stringFlag(cmd, "taxonomy", &cfg.Taxonomy)
	stringFlag(cmd, "cache", &cfg.CachePath)
	stringFlag(cmd, "db-url", &cfg.DatabaseURL)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Postings == "" || cfg.Taxonomy == "" {
		return cfg, fmt.Errorf("--postings and --taxonomy must be provided (via flag or config)")
	}
	return cfg, nil
}

// runConfigured loads the sources named by cfg and runs the pipeline over them.
func runConfigured(ctx context.Context, cfg config.Config, database *db.DB, onProgress pipeline.ProgressCallback) (*pipeline.Result, []types.Posting, error) {
	postings, err := ingestion.LoadPostings(cfg.Postings)
	if err != nil {
		return nil, nil, err
	}
	taxonomy, err := ingestion.LoadTaxonomy(cfg.Taxonomy)
	if err != nil {
		return nil, nil, err
	}

	store, closeCache, err := openCache(ctx, cfg.CachePath, database)
	if err != nil {
		return nil, nil, err
	}
	defer closeCache()

	res, err := pipeline.Run(ctx, postings, taxonomy, pipeline.Options{
		Catalog:    cfg.Catalog,
		Extraction: cfg.Extraction,
		Cache:      store,
		DB:         database,
		Logger:     slog.Default(),
		OnProgress: onProgress,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline failed: %w", err)
	}
	return res, postings, nil
}

func runPrepare(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := sourceSettings(cmd)
	if err != nil {
		return err
	}
	stringFlag(cmd, "output-dir", &cfg.OutputDir)

	database, err := openDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	var onProgress pipeline.ProgressCallback
	if cfg.Verbose {
		onProgress = progressPrinter(printer)
	}

	res, _, err := runConfigured(ctx, cfg, database, onProgress)
	if err != nil {
		return err
	}

	if err := writeResultCSV(cfg.OutputDir, res); err != nil {
		return err
	}
	if exportJSONFlag, _ := cmd.Flags().GetBool("json"); exportJSONFlag {
		exports := []struct {
			name string
			v    any
		}{
			{"catalog", res.Catalog},
			{"mentions", res.Mentions},
			{"profiles", res.Profiles},
			{"requirements", res.Requirements},
		}
		for _, e := range exports {
			if err := exportJSON(filepath.Join(cfg.OutputDir, e.name+".json"), e.name, e.v); err != nil {
				return err
			}
		}
	}

	printer.PrintRunSummary(res)
	slog.Info("pipeline complete",
		slog.String("run_id", res.RunID.String()),
		slog.String("output_dir", cfg.OutputDir),
		slog.Bool("fallback", res.UsedFallback))
	return nil
}
