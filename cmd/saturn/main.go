// Saturn is a batch admission workflow for back-office product requests.
//
// It ingests request files in several formats, normalizes and validates each
// record against the eligibility rule set, and emits a complete evidence
// bundle per run:
//   - Decision log (JSONL audit trail)
//   - Normalized and rejected record exports (CSV)
//   - Data quality report with quality gate verdict
//   - Run manifest with SHA-256 chain of custody
//   - Prometheus textfile metrics
//
// Usage:
//
//	# Process a request file with default configuration
//	saturn run --input requests.csv
//
//	# Process a fixed-width extract into a custom artifact directory
//	saturn run --input extract.dat --format cobol --out /var/lib/saturn
//
//	# Validate a configuration file
//	saturn validate --config config.yaml
//
//	# Show version information
//	saturn version
package main

func main() {
	Execute()
}
