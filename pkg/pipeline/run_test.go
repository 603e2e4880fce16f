package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"backoffice-hq/saturn/pkg/config"
	"backoffice-hq/saturn/pkg/evidence"
	"backoffice-hq/saturn/pkg/ingest"
)

const twoRecordJSON = `[
	{"id": "REQ-5001", "date": "2026-02-10", "product_type": "cuenta", "client_id": "CLI-9001",
	 "amount_or_limit": "1000", "currency": "ARS", "country": "AR", "is_vip": "false", "risk_score": "15"},
	{"id": "REQ-5002", "date": "2026-02-11", "product_type": "tarjeta", "client_id": "CLI-9002",
	 "amount_or_limit": "0", "currency": "USD", "country": "AR", "is_vip": "true", "risk_score": "40"}
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runOnce(t *testing.T, input string, opts Options) *Result {
	t.Helper()
	opts.InputPath = input
	if opts.OutDir == "" {
		opts.OutDir = filepath.Join(t.TempDir(), "artifacts")
	}
	if opts.Format == "" {
		opts.Format = ingest.FormatAuto
	}
	if opts.Argv == nil {
		opts.Argv = []string{"saturn", "run", "--input", input}
	}

	result, err := Run(opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return result
}

func readRunManifest(t *testing.T, runDir string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(runDir, "run_manifest.json"))
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("manifest is not JSON: %v", err)
	}
	return doc
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
	return rows
}

func TestRun_TwoRecordJSONScenario(t *testing.T) {
	input := writeFile(t, t.TempDir(), "requests.json", twoRecordJSON)
	result := runOnce(t, input, Options{})

	if result.Stats.Total != 2 || result.Stats.Valid != 1 || result.Stats.Invalid != 1 {
		t.Errorf("Stats = %+v, want {2 1 1}", result.Stats)
	}
	// 50% rejection breaches the default 40% threshold.
	if result.Status != evidence.StatusWithWarnings {
		t.Errorf("Status = %q, want %q", result.Status, evidence.StatusWithWarnings)
	}

	// All artifacts exist.
	for _, name := range []string{
		"decision_log.jsonl", "normalized_requests.csv", "rejected_requests.csv",
		"data_quality_report.json", "run_manifest.json", "metrics.prom",
	} {
		if _, err := os.Stat(filepath.Join(result.RunDir, name)); err != nil {
			t.Errorf("artifact %s missing: %v", name, err)
		}
	}

	doc := readRunManifest(t, result.RunDir)
	input2 := doc["input"].(map[string]any)
	if input2["format"] != "json" {
		t.Errorf("manifest input format = %v, want json", input2["format"])
	}
	if input2["sha256"] == "" {
		t.Error("input hash missing")
	}

	// Second record rejected by AMOUNT_RANGE (0 below min 1.0).
	rejected := readCSVFile(t, filepath.Join(result.RunDir, "rejected_requests.csv"))
	if len(rejected) != 2 {
		t.Fatalf("rejected rows = %d, want header + 1", len(rejected))
	}
	row := rejected[1]
	if row[0] != "REQ-5002" {
		t.Errorf("rejected id = %q", row[0])
	}
	ruleIDs := row[len(row)-2]
	if ruleIDs != "AMOUNT_RANGE" {
		t.Errorf("reject_rule_ids = %q", ruleIDs)
	}

	normalized := readCSVFile(t, filepath.Join(result.RunDir, "normalized_requests.csv"))
	if len(normalized) != 2 || normalized[1][0] != "REQ-5001" {
		t.Errorf("normalized rows = %v", normalized)
	}
	// Derived risk bucket present: 15 -> LOW.
	if normalized[1][len(normalized[1])-1] != "LOW" {
		t.Errorf("risk_bucket = %q, want LOW", normalized[1][len(normalized[1])-1])
	}
}

func TestRun_TotalsInvariant(t *testing.T) {
	input := writeFile(t, t.TempDir(), "requests.json", twoRecordJSON)
	result := runOnce(t, input, Options{})

	if result.Stats.Valid+result.Stats.Invalid != result.Stats.Total {
		t.Errorf("valid %d + invalid %d != total %d",
			result.Stats.Valid, result.Stats.Invalid, result.Stats.Total)
	}
}

func TestRun_CurrencyRejection(t *testing.T) {
	input := writeFile(t, t.TempDir(), "requests.csv",
		"id,date,product_type,client_id,amount_or_limit,currency,country,is_vip,risk_score\n"+
			"REQ-1,2026-02-10,cuenta,CLI-1,1000,BRL,BR,false,15\n")
	result := runOnce(t, input, Options{})

	if result.Stats.Invalid != 1 {
		t.Fatalf("Stats = %+v", result.Stats)
	}
	rejected := readCSVFile(t, filepath.Join(result.RunDir, "rejected_requests.csv"))
	if got := rejected[1][len(rejected[1])-2]; got != "CURRENCY_ALLOWED" {
		t.Errorf("reject_rule_ids = %q, want CURRENCY_ALLOWED", got)
	}
}

func TestRun_NormalizationErrorContinues(t *testing.T) {
	input := writeFile(t, t.TempDir(), "requests.csv",
		"id,date,product_type,client_id,amount_or_limit,currency,country,is_vip,risk_score\n"+
			"REQ-1,2026/02/10,cuenta,CLI-1,1000,ARS,AR,false,15\n"+
			"REQ-2,2026-02-11,cuenta,CLI-2,2000,ARS,AR,false,20\n")
	result := runOnce(t, input, Options{})

	if result.Stats.Total != 2 || result.Stats.Valid != 1 || result.Stats.Invalid != 1 {
		t.Fatalf("Stats = %+v, want {2 1 1}", result.Stats)
	}

	rejected := readCSVFile(t, filepath.Join(result.RunDir, "rejected_requests.csv"))
	row := rejected[1]
	if row[0] != "REQ-1" {
		t.Errorf("rejected id = %q", row[0])
	}
	if got := row[len(row)-2]; got != "NORMALIZATION_ERROR" {
		t.Errorf("reject_rule_ids = %q, want NORMALIZATION_ERROR", got)
	}
}

func TestRun_AllAcceptedIsSuccess(t *testing.T) {
	input := writeFile(t, t.TempDir(), "requests.csv",
		"id,date,product_type,client_id,amount_or_limit,currency,country,is_vip,risk_score\n"+
			"REQ-1,2026-02-10,cuenta,CLI-1,1000,ARS,AR,false,15\n"+
			"REQ-2,2026-02-11,tarjeta,CLI-2,2000,USD,AR,true,80\n")
	result := runOnce(t, input, Options{})

	if result.Status != evidence.StatusSuccess {
		t.Errorf("Status = %q, want SUCCESS", result.Status)
	}

	doc := readRunManifest(t, result.RunDir)
	gate := doc["quality_gate"].(map[string]any)
	if gate["decision"] != "PASS" {
		t.Errorf("gate decision = %v", gate["decision"])
	}
	counts := doc["counts"].(map[string]any)
	if counts["total"].(float64) != 2 || counts["valid"].(float64) != 2 {
		t.Errorf("counts = %v", counts)
	}
}

func TestRun_IngestFailureIsFatal(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "artifacts")
	input := writeFile(t, t.TempDir(), "requests.csv", "id,date\nREQ-1,2026-02-10\n")

	result, err := Run(Options{
		InputPath: input,
		Format:    ingest.FormatAuto,
		OutDir:    outDir,
		Argv:      []string{"saturn", "run"},
	})
	if err == nil {
		t.Fatal("Run() error = nil, want fatal ingest error")
	}

	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("error type = %T, want *FatalError", err)
	}
	var ferr *ingest.InputFormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("fatal error does not wrap *InputFormatError: %v", err)
	}
	if result.Status != evidence.StatusFailed {
		t.Errorf("Status = %q, want FAILED", result.Status)
	}

	doc := readRunManifest(t, result.RunDir)
	run := doc["run"].(map[string]any)
	if run["status"] != evidence.StatusFailed {
		t.Errorf("manifest status = %v, want FAILED", run["status"])
	}
	if run["error"] == nil || run["error"] == "" {
		t.Error("manifest error message missing")
	}
	// No record artifacts were produced.
	if _, err := os.Stat(filepath.Join(result.RunDir, "normalized_requests.csv")); !os.IsNotExist(err) {
		t.Error("normalized artifact exists after ingest abort")
	}
}

func TestRun_DecisionLogOrderAndEvents(t *testing.T) {
	input := writeFile(t, t.TempDir(), "requests.json", twoRecordJSON)
	result := runOnce(t, input, Options{})

	f, err := os.Open(filepath.Join(result.RunDir, "decision_log.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var events []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("bad log line: %v", err)
		}
		if ev["run_id"] != result.RunID {
			t.Errorf("run_id = %v, want %s", ev["run_id"], result.RunID)
		}
		events = append(events, ev["event"].(string))
	}

	want := []string{
		"run_started", "input_loaded", "record_rejected", "processing_completed",
		"artifacts_written", "quality_gate_evaluated", "run_finished",
	}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestRun_ArtifactIntegrityHashes(t *testing.T) {
	input := writeFile(t, t.TempDir(), "requests.json", twoRecordJSON)
	result := runOnce(t, input, Options{})

	doc := readRunManifest(t, result.RunDir)
	integrity := doc["artifacts_integrity"].(map[string]any)

	for _, name := range []string{"decision_log", "normalized_requests", "rejected_requests", "data_quality_report", "run_manifest", "metrics"} {
		entry, ok := integrity[name].(map[string]any)
		if !ok {
			t.Fatalf("integrity entry %s missing", name)
		}
		if entry["sha256"] == "" {
			t.Errorf("%s digest empty", name)
		}
	}

	// Normalized artifact digest matches its final bytes.
	rel := integrity["normalized_requests"].(map[string]any)
	sum, err := evidence.HashFile(filepath.Join(result.RunDir, rel["path"].(string)))
	if err != nil {
		t.Fatal(err)
	}
	if rel["sha256"] != sum {
		t.Errorf("normalized digest = %v, want %s", rel["sha256"], sum)
	}
}

func TestRun_RunKeyAndLabel(t *testing.T) {
	input := writeFile(t, t.TempDir(), "requests.json", twoRecordJSON)
	result := runOnce(t, input, Options{RunLabel: "febrero batch!"})

	if !strings.Contains(result.RunKey, "__febrero_batch___") {
		t.Errorf("RunKey = %q, want sanitized label", result.RunKey)
	}
	if !strings.HasSuffix(result.RunKey, result.RunID[:8]) {
		t.Errorf("RunKey = %q does not end with run id prefix", result.RunKey)
	}
}

func TestRun_DefaultLabelIsInputStem(t *testing.T) {
	input := writeFile(t, t.TempDir(), "requests.json", twoRecordJSON)
	result := runOnce(t, input, Options{})

	if !strings.Contains(result.RunKey, "__requests__") {
		t.Errorf("RunKey = %q, want input stem label", result.RunKey)
	}
}

func TestRun_CustomGatePolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Gate.MaxRejectionRate = 0.6 // 50% rejection now tolerated

	input := writeFile(t, t.TempDir(), "requests.json", twoRecordJSON)
	result := runOnce(t, input, Options{Config: cfg})

	if result.Status != evidence.StatusSuccess {
		t.Errorf("Status = %q, want SUCCESS under relaxed policy", result.Status)
	}
}

func TestRun_EmptyInputWarns(t *testing.T) {
	// Zero records: both rates 0.0, acceptance below minimum.
	input := writeFile(t, t.TempDir(), "requests.json", `[]`)
	result := runOnce(t, input, Options{})

	if result.Stats.Total != 0 {
		t.Errorf("Total = %d, want 0", result.Stats.Total)
	}
	if result.Status != evidence.StatusWithWarnings {
		t.Errorf("Status = %q, want COMPLETED_WITH_WARNINGS", result.Status)
	}
}

func TestRun_FixedWidthLayoutRecorded(t *testing.T) {
	line := "REQ-1     2026-02-10cuenta      CLI-1     1000        EURARfalse15 "
	input := writeFile(t, t.TempDir(), "requests.dat", line+"\n")
	result := runOnce(t, input, Options{})

	doc := readRunManifest(t, result.RunDir)
	in := doc["input"].(map[string]any)
	if in["format"] != "cobol" {
		t.Errorf("format = %v, want cobol", in["format"])
	}
	if in["layout_version"] != "fixed_width.v1" {
		t.Errorf("layout_version = %v", in["layout_version"])
	}
}
