// Package quality computes run-level data quality artifacts: the per-rule
// failure report and the governance quality-gate verdict.
//
// The gate is a pure function over aggregate acceptance and rejection rates,
// evaluated against a versioned GatePolicy. The policy is embedded verbatim in
// every GateDecision so an auditor can replay the verdict from report data
// alone.
package quality
