package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.Gate.PolicyID != "quality_gate.v2" || cfg.Gate.MaxRejectionRate != 0.40 || cfg.Gate.MinAcceptanceRate != 0.10 {
		t.Errorf("gate defaults = %+v", cfg.Gate)
	}
	if want := []string{"ARS", "USD", "EUR"}; !reflect.DeepEqual(cfg.Rules.AllowedCurrencies, want) {
		t.Errorf("AllowedCurrencies = %v, want %v", cfg.Rules.AllowedCurrencies, want)
	}
	if cfg.Rules.AmountMin != 1.0 || cfg.Rules.AmountMax != 1_000_000.0 {
		t.Errorf("amount bounds = %v..%v", cfg.Rules.AmountMin, cfg.Rules.AmountMax)
	}
	if cfg.Ingest.FixedWidthLayout != nil {
		t.Errorf("FixedWidthLayout = %+v, want nil", cfg.Ingest.FixedWidthLayout)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
gate:
  policy_id: quality_gate.custom
  max_rejection_rate: 0.25
  min_acceptance_rate: 0.5
rules:
  allowed_currencies: [GBP, CHF]
  amount_min: 10
  amount_max: 500
ingest:
  fixed_width_layout:
    version: fixed_width.custom
    fields:
      - {name: id, start: 0, end: 5}
      - {name: date, start: 5, end: 15}
      - {name: product_type, start: 15, end: 25}
      - {name: client_id, start: 25, end: 30}
      - {name: amount_or_limit, start: 30, end: 40}
      - {name: currency, start: 40, end: 43}
      - {name: country, start: 43, end: 45}
      - {name: is_vip, start: 45, end: 50}
      - {name: risk_score, start: 50, end: 53}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Gate.PolicyID != "quality_gate.custom" || cfg.Gate.MaxRejectionRate != 0.25 {
		t.Errorf("gate = %+v", cfg.Gate)
	}
	if want := []string{"GBP", "CHF"}; !reflect.DeepEqual(cfg.Rules.AllowedCurrencies, want) {
		t.Errorf("AllowedCurrencies = %v", cfg.Rules.AllowedCurrencies)
	}
	if cfg.Ingest.FixedWidthLayout == nil || cfg.Ingest.FixedWidthLayout.Version != "fixed_width.custom" {
		t.Errorf("FixedWidthLayout = %+v", cfg.Ingest.FixedWidthLayout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SATURN_LOGGING_LEVEL", "warn")
	t.Setenv("SATURN_GATE_MAX_REJECTION_RATE", "0.9")
	t.Setenv("SATURN_RULES_ALLOWED_CURRENCIES", "usd-like, JPY ,")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Gate.MaxRejectionRate != 0.9 {
		t.Errorf("MaxRejectionRate = %v, want 0.9", cfg.Gate.MaxRejectionRate)
	}
	if want := []string{"usd-like", "JPY"}; !reflect.DeepEqual(cfg.Rules.AllowedCurrencies, want) {
		t.Errorf("AllowedCurrencies = %v, want %v", cfg.Rules.AllowedCurrencies, want)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "bad level",
			content: "logging:\n  level: loud\n",
			wantErr: "logging.level",
		},
		{
			name:    "bad format",
			content: "logging:\n  format: xml\n",
			wantErr: "logging.format",
		},
		{
			name:    "rejection rate out of range",
			content: "gate:\n  max_rejection_rate: 1.5\n",
			wantErr: "gate.max_rejection_rate",
		},
		{
			name:    "amount bounds inverted",
			content: "rules:\n  amount_min: 100\n  amount_max: 10\n",
			wantErr: "rules.amount_min",
		},
		{
			name:    "layout field without name",
			content: "ingest:\n  fixed_width_layout:\n    version: v\n    fields:\n      - {start: 0, end: 3}\n",
			wantErr: "fields[0].name",
		},
		{
			name:    "layout inverted range",
			content: "ingest:\n  fixed_width_layout:\n    version: v\n    fields:\n      - {name: id, start: 5, end: 2}\n",
			wantErr: "invalid range",
		},
		{
			name:    "malformed yaml",
			content: "logging: [",
			wantErr: "parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}
