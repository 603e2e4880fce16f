package quality

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"backoffice-hq/saturn/pkg/admission"
)

// ReportSchema tags the data quality report document shape.
const ReportSchema = "saturn.workflow.data_quality_report.v1"

// maxRuleExamples caps the per-rule example ids kept for audit sampling.
const maxRuleExamples = 3

// RuleDetail is the per-rule aggregate in the quality report.
type RuleDetail struct {
	RuleID      string   `json:"rule_id"`
	FailedCount int      `json:"failed_count"`
	PassRate    float64  `json:"pass_rate"`
	Examples    []string `json:"examples"`
}

// Report is the immutable quality snapshot for one run.
type Report struct {
	RunID        string
	GeneratedUTC string
	Totals       admission.WorkflowStats
	RuleDetails  []RuleDetail
	Notes        []string
}

// BuildReport aggregates per-rule failures into an audit-friendly report.
// failuresByRule maps rule id to the record ids that failed it; details come
// out sorted by rule id, each keeping at most three example ids.
func BuildReport(runID string, stats admission.WorkflowStats, failuresByRule map[string][]string) Report {
	ruleIDs := make([]string, 0, len(failuresByRule))
	for id := range failuresByRule {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Strings(ruleIDs)

	details := make([]RuleDetail, 0, len(ruleIDs))
	for _, id := range ruleIDs {
		examples := failuresByRule[id]
		failed := len(examples)
		if len(examples) > maxRuleExamples {
			examples = examples[:maxRuleExamples]
		}
		details = append(details, RuleDetail{
			RuleID:      id,
			FailedCount: failed,
			PassRate:    Round4(SafeRate(stats.Total-failed, stats.Total)),
			Examples:    examples,
		})
	}

	return Report{
		RunID:        runID,
		GeneratedUTC: time.Now().UTC().Format(time.RFC3339),
		Totals:       stats,
		RuleDetails:  details,
		Notes: []string{
			"pass_rate computed as (total - failed_count)/total per rule_id",
			"examples are record ids for quick audit sampling",
			"acceptance and rejection rates are computed from totals at write time",
			"quality_gate decision is deterministic given policy + computed rates",
		},
	}
}

// reportPayload is the serialized document shape.
type reportPayload struct {
	Schema            string             `json:"schema"`
	RunID             string             `json:"run_id"`
	GeneratedUTC      string             `json:"generated_utc"`
	Totals            reportTotals       `json:"totals"`
	RuleDetails       []RuleDetail       `json:"rule_details"`
	FailureRateByRule map[string]float64 `json:"failure_rate_by_rule"`
	QualityGate       reportGate         `json:"quality_gate"`
	Notes             []string           `json:"notes"`
}

type reportTotals struct {
	Total          int     `json:"total"`
	Valid          int     `json:"valid"`
	Invalid        int     `json:"invalid"`
	AcceptanceRate float64 `json:"acceptance_rate"`
	RejectionRate  float64 `json:"rejection_rate"`
}

type reportGate struct {
	Policy          GatePolicy         `json:"policy"`
	Decision        string             `json:"decision"`
	Rationale       string             `json:"rationale"`
	MetricsSnapshot map[string]float64 `json:"metrics_snapshot"`
}

// WriteReport serializes the report, the computed rates, and the gate verdict
// under policy to path as indented JSON. The gate decision it embeds is
// recomputed from the report totals, keeping document and verdict consistent
// by construction.
func WriteReport(path string, report Report, policy GatePolicy) (GateDecision, error) {
	acceptance := SafeRate(report.Totals.Valid, report.Totals.Total)
	rejection := SafeRate(report.Totals.Invalid, report.Totals.Total)
	gate := EvaluateGate(acceptance, rejection, policy)

	failureRates := make(map[string]float64, len(report.RuleDetails))
	for _, d := range report.RuleDetails {
		failureRates[d.RuleID] = Round4(SafeRate(d.FailedCount, report.Totals.Total))
	}

	payload := reportPayload{
		Schema:       ReportSchema,
		RunID:        report.RunID,
		GeneratedUTC: report.GeneratedUTC,
		Totals: reportTotals{
			Total:          report.Totals.Total,
			Valid:          report.Totals.Valid,
			Invalid:        report.Totals.Invalid,
			AcceptanceRate: Round4(acceptance),
			RejectionRate:  Round4(rejection),
		},
		RuleDetails:       report.RuleDetails,
		FailureRateByRule: failureRates,
		QualityGate: reportGate{
			Policy:          policy,
			Decision:        gate.Decision,
			Rationale:       gate.Rationale,
			MetricsSnapshot: gate.MetricsSnapshot,
		},
		Notes: report.Notes,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return GateDecision{}, fmt.Errorf("marshaling quality report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return GateDecision{}, fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return GateDecision{}, fmt.Errorf("writing quality report: %w", err)
	}
	return gate, nil
}
