package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-matcher/internal/pipeline"
	"github.com/jonathan/skill-matcher/internal/server"
	"github.com/jonathan/skill-matcher/internal/server/ratelimit"
	"github.com/jonathan/skill-matcher/internal/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Runs the pipeline over the configured sources, then serves matches, skill gaps,
requirements and veteran matches over HTTP. POST /v1/rebuild reruns the pipeline.`,
	RunE: runServe,
}

func init() {
	addSourceFlags(serveCmd)
	serveCmd.Flags().Int("port", 0, "Port to listen on (default 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := sourceSettings(cmd)
	if err != nil {
		return err
	}
	intFlag(cmd, "port", &cfg.Port)

	database, err := openDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}

	rebuild := func(ctx context.Context, onProgress pipeline.ProgressCallback) (*pipeline.Result, []types.Posting, error) {
		return runConfigured(ctx, cfg, database, onProgress)
	}

	srv := server.New(server.Config{
		Port:      cfg.Port,
		DB:        database,
		Logger:    slog.Default(),
		RateLimit: ratelimit.LoadConfig(cfg.RateLimit, cfg.RateBurst),
		Rebuild:   rebuild,
		TopN:      cfg.TopN,
		GapLimit:  cfg.GapLimit,
	})

	res, postings, err := rebuild(ctx, nil)
	if err != nil {
		return err
	}
	srv.Load(res, postings)

	return srv.Start(ctx)
}
