package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("platform", validatePlatform)
	return v
}

// validatePlatform restricts the pipeline.platform field to the platforms
// the core knows how to harvest and fetch, the same way the teacher's
// internal/api/validation package registers a custom validator function
// for a single field.
func validatePlatform(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "linkedin", "naukri":
		return true
	default:
		return false
	}
}

type validatedConfig struct {
	Platform    string `validate:"platform"`
	TargetCount int    `validate:"min=0,max=10000"`
	DBPath      string `validate:"required"`
}

// Validate checks structural invariants of a loaded Config that the YAML/env
// loader cannot enforce by shape alone: platform enum membership, bounded
// target_count, and a non-empty store path.
func Validate(cfg *Config) error {
	vc := validatedConfig{
		Platform:    cfg.Pipeline.Platform,
		TargetCount: cfg.Pipeline.TargetCount,
		DBPath:      cfg.Store.DBPath,
	}
	if err := validate.Struct(vc); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Pipeline.MinConcurrency < 2 || cfg.Pipeline.MaxConcurrency > 10 || cfg.Pipeline.MinConcurrency > cfg.Pipeline.MaxConcurrency {
		return fmt.Errorf("invalid configuration: concurrency bounds must satisfy 2 <= min <= max <= 10")
	}
	return nil
}
