package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"backoffice-hq/saturn/pkg/pipeline"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "saturn",
	Short: "Saturn - batch admission workflow for product requests",
	Long: `Saturn is a batch admission workflow that decides which back-office
product requests are eligible for processing.

Each run ingests one request file, normalizes and validates every record,
and writes a self-contained evidence bundle:
  - Decision log (JSONL audit trail)
  - Normalized and rejected record exports (CSV)
  - Data quality report with quality gate verdict
  - Run manifest with SHA-256 chain of custody
  - Prometheus textfile metrics`,
	Version: Version,
}

// Execute runs the root command. Fatal pipeline failures (the input could not
// be ingested at all) exit with code 2; every other error exits with 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var fatal *pipeline.FatalError
		if errors.As(err, &fatal) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
