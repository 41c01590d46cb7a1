package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PERSONA_CONFIG is set
//  3. env (prefix PERSONA_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("PERSONA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: PERSONA_WORKER_COUNT, PERSONA_QUEUE_SIZE, ...
	// Keys map to the flat koanf tags on the struct; underscores preserved.
	envProvider := env.Provider("PERSONA_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "persona_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.TopInterests <= 0:
		return fmt.Errorf("%w: top_interests must be positive", ErrInvalidConfig)
	case c.TopCities <= 0:
		return fmt.Errorf("%w: top_cities must be positive", ErrInvalidConfig)
	case c.EducationStdDev <= 0:
		return fmt.Errorf("%w: education_std_dev must be positive", ErrInvalidConfig)
	case c.EnrichEnabled && c.EnrichBaseURL == "":
		return fmt.Errorf("%w: enrich_base_url required when enrichment is enabled", ErrInvalidConfig)
	}
	return nil
}
