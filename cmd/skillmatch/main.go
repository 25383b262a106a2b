// Package main provides the skillmatch command line: the individual pipeline steps,
// queries against prepared artifacts, market insights and the HTTP API.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	rootConfigPath string
	rootLogJSON    bool
	rootVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "skillmatch",
	Short: "Skill extraction and job matching",
	Long: `skillmatch builds a skill catalog from a taxonomy feed, extracts per-posting skill
mentions, aggregates them into profiles and ranks postings against free-text queries.

Configuration can be loaded from a JSON or YAML file using --config. Command-line
flags override config file values.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		slog.SetDefault(newLogger(cmd.ErrOrStderr(), rootLogJSON, rootVerbose))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().BoolVar(&rootLogJSON, "log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable debug logging and step summaries")
}

// newLogger writes text logs, or JSON when jsonFormat is set, to w.
func newLogger(w io.Writer, jsonFormat, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if jsonFormat {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
