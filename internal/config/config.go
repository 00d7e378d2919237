// Package config loads and validates the pipeline configuration from a YAML
// file with environment-variable overrides (DEPINDEX_* prefix).
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"depindex/internal/deprivation"
)

// Config represents the complete application configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Index   IndexConfig   `yaml:"index" envconfig:"INDEX"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
}

// PathsConfig contains the input and output file locations
type PathsConfig struct {
	ZonesCSV   string `yaml:"zones_csv" envconfig:"ZONES_CSV" validate:"required"`
	TravelCSV  string `yaml:"travel_csv" envconfig:"TRAVEL_CSV" validate:"required"`
	OutputCSV  string `yaml:"output_csv" envconfig:"OUTPUT_CSV" validate:"required"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" validate:"required"`
}

// IndexConfig contains the AF methodology parameters
type IndexConfig struct {
	Thresholds       map[string]float64 `yaml:"thresholds" envconfig:"THRESHOLDS"`
	Cutoff           int                `yaml:"cutoff" envconfig:"CUTOFF"`
	Factors          int                `yaml:"factors" envconfig:"FACTORS"`
	Rotation         string             `yaml:"rotation" envconfig:"ROTATION"`
	NormalizeWeights bool               `yaml:"normalize_weights" envconfig:"NORMALIZE_WEIGHTS"`
}

// Default returns the built-in configuration: literature thresholds, k=0,
// five varimax factors, conventional data layout.
func Default() *Config {
	params := deprivation.DefaultParams()
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Paths: PathsConfig{
			ZonesCSV:   "data/clean_data/clean_database.csv",
			TravelCSV:  "data/raw_data/google_distancematrix.csv",
			OutputCSV:  "data/final_data/processed_data.csv",
			ReportsDir: "reports",
		},
		Index: IndexConfig{
			Thresholds:       params.Thresholds,
			Cutoff:           params.Cutoff,
			Factors:          params.Factors,
			Rotation:         params.Rotation,
			NormalizeWeights: params.NormalizeWeights,
		},
	}
}

// Load builds the effective configuration: defaults, overlaid by the YAML
// file (when path is non-empty), overlaid by DEPINDEX_* environment
// variables. Validation runs before anything is returned, so a bad
// configuration fails before any data is read.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// A file that defines its own indicator set fully replaces the
		// default thresholds instead of merging with them
		var probe struct {
			Index struct {
				Thresholds map[string]float64 `yaml:"thresholds"`
			} `yaml:"index"`
		}
		if err := yaml.Unmarshal(data, &probe); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if probe.Index.Thresholds != nil {
			cfg.Index.Thresholds = nil
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("DEPINDEX", cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks structural constraints and the AF parameters
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	return c.Params().Validate()
}

// Params converts the index section into pipeline parameters
func (c *Config) Params() deprivation.Params {
	return deprivation.Params{
		Thresholds:       c.Index.Thresholds,
		Cutoff:           c.Index.Cutoff,
		Factors:          c.Index.Factors,
		Rotation:         c.Index.Rotation,
		NormalizeWeights: c.Index.NormalizeWeights,
	}
}
