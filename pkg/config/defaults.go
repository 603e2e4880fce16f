package config

import (
	"backoffice-hq/saturn/pkg/admission"
	"backoffice-hq/saturn/pkg/quality"
)

// Default creates a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in defaults for every unset field.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	def := quality.DefaultGatePolicy()
	if cfg.Gate.PolicyID == "" {
		cfg.Gate.PolicyID = def.PolicyID
	}
	if cfg.Gate.MaxRejectionRate == 0 {
		cfg.Gate.MaxRejectionRate = def.MaxRejectionRate
	}
	if cfg.Gate.MinAcceptanceRate == 0 {
		cfg.Gate.MinAcceptanceRate = def.MinAcceptanceRate
	}

	if len(cfg.Rules.AllowedCurrencies) == 0 {
		cfg.Rules.AllowedCurrencies = append([]string(nil), admission.DefaultAllowedCurrencies...)
	}
	if cfg.Rules.AmountMin == 0 && cfg.Rules.AmountMax == 0 {
		cfg.Rules.AmountMin = admission.DefaultAmountMin
		cfg.Rules.AmountMax = admission.DefaultAmountMax
	}
}
