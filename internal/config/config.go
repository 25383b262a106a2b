// Package config provides configuration loading and validation for the CLI and
// the HTTP server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v4"

	"github.com/jonathan/skill-matcher/internal/catalog"
	"github.com/jonathan/skill-matcher/internal/extraction"
)

// Environment variables that override file values.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvCachePath   = "SKILLMATCH_CACHE_PATH"
	EnvPort        = "SKILLMATCH_PORT"
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs and outputs
	Postings  string `json:"postings,omitempty" yaml:"postings,omitempty"`     // Posting table CSV
	Taxonomy  string `json:"taxonomy,omitempty" yaml:"taxonomy,omitempty"`     // Taxonomy feed CSV
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"` // Directory for artifact CSVs

	// Storage
	CachePath   string `json:"cache_path,omitempty" yaml:"cache_path,omitempty"`     // SQLite cache file, or "memory"
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL

	// Algorithm parameters
	Catalog    catalog.Options    `json:"catalog" yaml:"catalog"`
	Extraction extraction.Options `json:"extraction" yaml:"extraction"`
	TopN       int                `json:"top_n,omitempty" yaml:"top_n,omitempty" validate:"gte=0,lte=1000"`
	GapLimit   int                `json:"gap_limit,omitempty" yaml:"gap_limit,omitempty" validate:"gte=0,lte=200"`

	// Server
	Port      int     `json:"port,omitempty" yaml:"port,omitempty" validate:"gte=0,lte=65535"`
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty" validate:"gte=0"` // Requests per second per client
	RateBurst int     `json:"rate_burst,omitempty" yaml:"rate_burst,omitempty" validate:"gte=0"`

	// Behavior
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		OutputDir:  "data/processed",
		Catalog:    catalog.DefaultOptions(),
		Extraction: extraction.DefaultOptions(),
		TopN:       8,
		GapLimit:   12,
		Port:       8080,
		RateLimit:  10,
		RateBurst:  20,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their file names ("top_n", not "TopN").
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			field := strings.TrimPrefix(fe.Namespace(), "Config.")
			return fmt.Errorf("config error: '%s' failed '%s=%s' (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
		}
		return fmt.Errorf("config error: %w", err)
	}

	// Validate file paths exist (if specified)
	if c.Postings != "" {
		if _, err := os.Stat(c.Postings); os.IsNotExist(err) {
			return fmt.Errorf("config error: postings file not found: %s", c.Postings)
		}
	}
	if c.Taxonomy != "" {
		if _, err := os.Stat(c.Taxonomy); os.IsNotExist(err) {
			return fmt.Errorf("config error: taxonomy file not found: %s", c.Taxonomy)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Postings == "" {
		result.Postings = defaults.Postings
	}
	if result.Taxonomy == "" {
		result.Taxonomy = defaults.Taxonomy
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.CachePath == "" {
		result.CachePath = defaults.CachePath
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Numeric fields: use default if zero
	if result.Catalog.MinFrequency == 0 {
		result.Catalog.MinFrequency = defaults.Catalog.MinFrequency
	}
	if result.Catalog.MaxSkills == 0 {
		result.Catalog.MaxSkills = defaults.Catalog.MaxSkills
	}
	if result.Extraction.TopK == 0 {
		result.Extraction.TopK = defaults.Extraction.TopK
	}
	if result.Extraction.MinSimilarity == 0 {
		result.Extraction.MinSimilarity = defaults.Extraction.MinSimilarity
	}
	if result.Extraction.BatchSize == 0 {
		result.Extraction.BatchSize = defaults.Extraction.BatchSize
	}
	if result.Extraction.Concurrency == 0 {
		result.Extraction.Concurrency = defaults.Extraction.Concurrency
	}
	if result.TopN == 0 {
		result.TopN = defaults.TopN
	}
	if result.GapLimit == 0 {
		result.GapLimit = defaults.GapLimit
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RateLimit == 0 {
		result.RateLimit = defaults.RateLimit
	}
	if result.RateBurst == 0 {
		result.RateBurst = defaults.RateBurst
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv overrides storage and port settings from the environment.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv(EnvCachePath); v != "" {
		c.CachePath = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: %s must be a number: %w", EnvPort, err)
		}
		c.Port = port
	}
	return nil
}
