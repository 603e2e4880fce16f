package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"backoffice-hq/saturn/pkg/admission"
)

// Artifact names, as declared in the run manifest.
const (
	ArtifactDecisionLog   = "decision_log"
	ArtifactNormalized    = "normalized_requests"
	ArtifactRejected      = "rejected_requests"
	ArtifactQualityReport = "data_quality_report"
	ArtifactManifest      = "run_manifest"
	ArtifactMetrics       = "metrics"
)

// Artifact file names relative to the run directory.
const (
	fileDecisionLog   = "decision_log.jsonl"
	fileNormalized    = "normalized_requests.csv"
	fileRejected      = "rejected_requests.csv"
	fileQualityReport = "data_quality_report.json"
	fileManifest      = "run_manifest.json"
	fileMetrics       = "metrics.prom"
)

var recordColumns = []string{
	"id", "date", "product_type", "client_id", "amount_or_limit",
	"currency", "country", "is_vip", "risk_score", "risk_bucket",
}

// rejectedRow is one line of the rejected artifact. Record is nil when
// normalization failed and only the id is known.
type rejectedRow struct {
	id      string
	record  *admission.NormalizedRequest
	ruleIDs []string
	reasons []string
}

func recordFields(r admission.NormalizedRequest) []string {
	return []string{
		r.ID,
		r.Date.Format(admission.DateLayout),
		r.ProductType,
		r.ClientID,
		strconv.FormatFloat(r.AmountOrLimit, 'f', -1, 64),
		r.Currency,
		r.Country,
		strconv.FormatBool(r.IsVIP),
		strconv.Itoa(r.RiskScore),
		string(r.RiskBucket),
	}
}

// writeNormalizedCSV writes the accepted records, in input order, with the
// derived risk bucket.
func writeNormalizedCSV(path string, records []admission.NormalizedRequest) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, recordColumns)
	for _, r := range records {
		rows = append(rows, recordFields(r))
	}
	return writeCSV(path, rows)
}

// writeRejectedCSV writes the rejected records with their failing rule ids
// (pipe-joined) and reasons.
func writeRejectedCSV(path string, rejected []rejectedRow) error {
	header := append(append([]string(nil), recordColumns...), "reject_rule_ids", "reject_reasons")
	rows := make([][]string, 0, len(rejected)+1)
	rows = append(rows, header)

	for _, rej := range rejected {
		var fields []string
		if rej.record != nil {
			fields = recordFields(*rej.record)
		} else {
			fields = make([]string, len(recordColumns))
			fields[0] = rej.id
		}
		fields = append(fields,
			strings.Join(rej.ruleIDs, "|"),
			strings.Join(rej.reasons, " | "),
		)
		rows = append(rows, fields)
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
