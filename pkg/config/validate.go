package config

import "fmt"

// Validate checks the configuration for internal consistency. Error messages
// name the offending field path.
func Validate(cfg *Config) error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "text", "console":
	default:
		return fmt.Errorf("logging.format: unknown format %q", cfg.Logging.Format)
	}

	if cfg.Gate.PolicyID == "" {
		return fmt.Errorf("gate.policy_id: must not be empty")
	}
	if cfg.Gate.MaxRejectionRate < 0 || cfg.Gate.MaxRejectionRate > 1 {
		return fmt.Errorf("gate.max_rejection_rate: %v outside [0, 1]", cfg.Gate.MaxRejectionRate)
	}
	if cfg.Gate.MinAcceptanceRate < 0 || cfg.Gate.MinAcceptanceRate > 1 {
		return fmt.Errorf("gate.min_acceptance_rate: %v outside [0, 1]", cfg.Gate.MinAcceptanceRate)
	}

	if cfg.Rules.AmountMin > cfg.Rules.AmountMax {
		return fmt.Errorf("rules.amount_min: %v exceeds rules.amount_max %v", cfg.Rules.AmountMin, cfg.Rules.AmountMax)
	}

	if layout := cfg.Ingest.FixedWidthLayout; layout != nil {
		if layout.Version == "" {
			return fmt.Errorf("ingest.fixed_width_layout.version: must not be empty")
		}
		for i, f := range layout.Fields {
			if f.Name == "" {
				return fmt.Errorf("ingest.fixed_width_layout.fields[%d].name: must not be empty", i)
			}
			if f.Start < 0 || f.End <= f.Start {
				return fmt.Errorf("ingest.fixed_width_layout.fields[%d]: invalid range [%d, %d)", i, f.Start, f.End)
			}
		}
	}

	return nil
}
