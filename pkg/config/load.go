package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the configuration from a YAML file, applies defaults and
// SATURN_* environment overrides, and validates the result. A missing file is
// not an error: the pipeline then runs on pure defaults (still subject to env
// overrides).
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides applies SATURN_SECTION_FIELD environment variables on top
// of the file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("SATURN_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("SATURN_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val := os.Getenv("SATURN_GATE_POLICY_ID"); val != "" {
		cfg.Gate.PolicyID = val
	}
	if val := os.Getenv("SATURN_GATE_MAX_REJECTION_RATE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Gate.MaxRejectionRate = f
		}
	}
	if val := os.Getenv("SATURN_GATE_MIN_ACCEPTANCE_RATE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Gate.MinAcceptanceRate = f
		}
	}
	if val := os.Getenv("SATURN_RULES_ALLOWED_CURRENCIES"); val != "" {
		parts := strings.Split(val, ",")
		currencies := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				currencies = append(currencies, p)
			}
		}
		cfg.Rules.AllowedCurrencies = currencies
	}
	if val := os.Getenv("SATURN_RULES_AMOUNT_MIN"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Rules.AmountMin = f
		}
	}
	if val := os.Getenv("SATURN_RULES_AMOUNT_MAX"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Rules.AmountMax = f
		}
	}
}
