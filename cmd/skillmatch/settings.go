package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-matcher/internal/cache"
	"github.com/jonathan/skill-matcher/internal/config"
	"github.com/jonathan/skill-matcher/internal/db"
	"github.com/jonathan/skill-matcher/internal/ingestion"
	"github.com/jonathan/skill-matcher/internal/observability"
	"github.com/jonathan/skill-matcher/internal/pipeline"
	"github.com/jonathan/skill-matcher/internal/schemas"
)

// Artifact file names inside the output directory.
const (
	catalogFile      = "skill_catalog.csv"
	mentionsFile     = "skill_mentions.csv"
	profilesFile     = "skill_profiles.csv"
	requirementsFile = "requirements.csv"
)

// loadSettings resolves configuration in priority order: the --config file,
// the environment, then built-in defaults. Callers apply flag overrides and
// then call Validate.
func loadSettings() (config.Config, error) {
	var cfg config.Config
	if rootConfigPath != "" {
		loaded, err := config.LoadConfig(rootConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		slog.Debug("loaded config", slog.String("path", rootConfigPath))
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if rootVerbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// stringFlag overrides *dst when the flag was set explicitly.
func stringFlag(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}

func intFlag(cmd *cobra.Command, name string, dst *int) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetInt(name)
	}
}

func floatFlag(cmd *cobra.Command, name string, dst *float64) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetFloat64(name)
	}
}

// artifactPath returns path when set, otherwise name inside the output directory.
func artifactPath(cfg config.Config, path, name string) string {
	if path != "" {
		return path
	}
	return filepath.Join(cfg.OutputDir, name)
}

// openDB connects and migrates when a database URL is configured. It returns a
// nil DB otherwise.
func openDB(ctx context.Context, url string) (*db.DB, error) {
	if url == "" {
		return nil, nil
	}
	database, err := db.Connect(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// openCache picks the artifact cache: "memory", a SQLite file, or the database
// when only that is configured. The returned close function is never nil.
func openCache(ctx context.Context, path string, database *db.DB) (cache.Store, func(), error) {
	switch {
	case path == "memory":
		return cache.NewMemoryStore(), func() {}, nil
	case path != "":
		store, err := cache.OpenSQLite(ctx, path)
		if err != nil {
			return nil, func() {}, err
		}
		return store, func() { _ = store.Close() }, nil
	case database != nil:
		return cache.NewPostgresStore(database), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}

// progressPrinter serializes pipeline progress, which may arrive from several
// goroutines, onto one printer.
func progressPrinter(p *observability.Printer) pipeline.ProgressCallback {
	var mu sync.Mutex
	return func(ev pipeline.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		p.PrintProgress(ev)
	}
}

// writeResultCSV saves every artifact of a run into dir.
func writeResultCSV(dir string, res *pipeline.Result) error {
	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{catalogFile, func(w io.Writer) error { return ingestion.WriteCatalog(w, res.Catalog) }},
		{mentionsFile, func(w io.Writer) error { return ingestion.WriteMentions(w, res.Mentions) }},
		{profilesFile, func(w io.Writer) error { return ingestion.WriteProfiles(w, res.Profiles) }},
		{requirementsFile, func(w io.Writer) error { return ingestion.WriteRequirements(w, res.Requirements) }},
	}
	for _, f := range files {
		if err := ingestion.SaveFile(filepath.Join(dir, f.name), f.write); err != nil {
			return err
		}
	}
	return nil
}

// exportJSON validates v against the named artifact schema and writes it to path.
// Schema load problems are logged and the file is still written; documents that
// fail validation are not.
func exportJSON(path, name string, v any) error {
	if err := schemas.ValidateArtifact(name, v); err != nil {
		var validationErr *schemas.ValidationError
		var schemaLoadErr *schemas.SchemaLoadError
		switch {
		case errors.As(err, &validationErr):
			return fmt.Errorf("generated %s artifact is invalid: %w", name, err)
		case errors.As(err, &schemaLoadErr):
			slog.Warn("could not validate artifact (schema loading failed)",
				slog.String("artifact", name), slog.Any("error", err))
		default:
			slog.Warn("could not validate artifact", slog.String("artifact", name), slog.Any("error", err))
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s to JSON: %w", name, err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
