// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and env vars.
// - External errors are wrapped via this package's sentinel errors.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// WorkerCount sets the number of pipeline workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory document queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the duplicate-document cache.
	DedupeSize int `koanf:"dedupe_size"`

	// CountryFilter restricts city normalization to one country code.
	// Empty disables the filter.
	CountryFilter string `koanf:"country_filter"`

	// TopInterests caps the interest ranking per influencer.
	TopInterests int `koanf:"top_interests"`

	// TopCities caps the ranked city list per influencer.
	TopCities int `koanf:"top_cities"`

	// PostSampleSize caps how many recent posts feed the dispersion score.
	// Zero or negative means all available posts.
	PostSampleSize int `koanf:"post_sample_size"`

	// EducationStdDev is the fixed spread of the education model in years.
	EducationStdDev float64 `koanf:"education_std_dev"`

	// Reference table locations (CSV).
	ClassTablePath     string `koanf:"class_table_path"`
	EducationTablePath string `koanf:"education_table_path"`
	TranslationsPath   string `koanf:"translations_path"`

	// DocumentsDir is where the CLI reads *.json exports from.
	DocumentsDir string `koanf:"documents_dir"`

	// OutputPath is where the CLI writes the summary table; empty = stdout.
	OutputPath string `koanf:"output_path"`

	// Live profile-metrics enrichment. Off by default; never a hard
	// dependency of the pipeline.
	EnrichEnabled   bool   `koanf:"enrich_enabled"`
	EnrichBaseURL   string `koanf:"enrich_base_url"`
	EnrichTimeoutMS int    `koanf:"enrich_timeout_ms"`
	EnrichRetries   int    `koanf:"enrich_retries"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		WorkerCount:     runtime.NumCPU() * 2,
		QueueSize:       1024,
		DedupeSize:      10_000,
		CountryFilter:   "BR",
		TopInterests:    5,
		TopCities:       5,
		PostSampleSize:  12,
		EducationStdDev: 3,
		EnrichTimeoutMS: 2000,
		EnrichRetries:   2,
	}
}
