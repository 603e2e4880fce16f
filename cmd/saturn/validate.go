package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"backoffice-hq/saturn/pkg/cli"
	"backoffice-hq/saturn/pkg/config"
	"backoffice-hq/saturn/pkg/ingest"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate a Saturn configuration file without running anything.

The effective configuration is printed after defaults and environment
overrides are applied, so the output shows exactly what a run would use.

Examples:
  # Validate the default config file
  saturn validate

  # Validate a specific file
  saturn validate --config /etc/saturn/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "✓ Configuration valid")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Logging:    level=%s format=%s\n", cfg.Logging.Level, cfg.Logging.Format)
	fmt.Fprintf(out, "Gate:       policy=%s max_rejection_rate=%.2f min_acceptance_rate=%.2f\n",
		cfg.Gate.PolicyID, cfg.Gate.MaxRejectionRate, cfg.Gate.MinAcceptanceRate)
	fmt.Fprintf(out, "Rules:      currencies=%s amount=[%.2f, %.2f]\n",
		strings.Join(cfg.Rules.AllowedCurrencies, ","), cfg.Rules.AmountMin, cfg.Rules.AmountMax)

	layout := cfg.Ingest.FixedWidthLayout
	if layout == nil {
		layout = ingest.DefaultLayout()
	}
	fmt.Fprintf(out, "Ingest:     fixed_width_layout=%s (%d fields)\n", layout.Version, len(layout.Fields))

	return nil
}
