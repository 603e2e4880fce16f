// Package config loads and validates the Saturn pipeline configuration from
// YAML, applying defaults and SATURN_* environment overrides in that order.
package config

import (
	"backoffice-hq/saturn/pkg/ingest"
	"backoffice-hq/saturn/pkg/quality"
)

// Config is the root configuration document.
type Config struct {
	Logging LoggingConfig      `yaml:"logging"`
	Gate    quality.GatePolicy `yaml:"gate"`
	Rules   RulesConfig        `yaml:"rules"`
	Ingest  IngestConfig       `yaml:"ingest"`
}

// LoggingConfig controls the operational (non-audit) logger.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json", "text", "console").
	Format string `yaml:"format"`
}

// RulesConfig parameterizes the baseline eligibility rules.
type RulesConfig struct {
	// AllowedCurrencies is the CURRENCY_ALLOWED allow-list.
	AllowedCurrencies []string `yaml:"allowed_currencies"`

	// AmountMin and AmountMax are the inclusive AMOUNT_RANGE bounds.
	AmountMin float64 `yaml:"amount_min"`
	AmountMax float64 `yaml:"amount_max"`
}

// IngestConfig parameterizes ingestion.
type IngestConfig struct {
	// FixedWidthLayout overrides the default fixed-width layout when set.
	FixedWidthLayout *ingest.Layout `yaml:"fixed_width_layout"`
}
