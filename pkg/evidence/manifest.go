package evidence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"backoffice-hq/saturn/pkg/admission"
	"backoffice-hq/saturn/pkg/quality"
)

// ManifestSchema tags the run manifest document shape.
const ManifestSchema = "saturn.workflow.run_manifest.v2"

// Run statuses. RUNNING is the only non-terminal one; a manifest is finalized
// exactly once with one of the other three.
const (
	StatusRunning      = "RUNNING"
	StatusSuccess      = "SUCCESS"
	StatusWithWarnings = "COMPLETED_WITH_WARNINGS"
	StatusFailed       = "FAILED"
)

// PipelineInfo identifies the producing pipeline.
type PipelineInfo struct {
	Version   string `json:"version"`
	Component string `json:"component"`
}

// RunInfo is the manifest's run identity and lifecycle block.
type RunInfo struct {
	RunID          string `json:"run_id"`
	RunKey         string `json:"run_key"`
	RunLabel       string `json:"run_label"`
	Folder         string `json:"folder"`
	Status         string `json:"status"`
	StartUTC       string `json:"start_utc"`
	EndUTC         string `json:"end_utc,omitempty"`
	ElapsedMSTotal *int64 `json:"elapsed_ms_total,omitempty"`
	Command        string `json:"command"`
	Error          string `json:"error,omitempty"`
}

// EnvironmentInfo snapshots the process environment for replay.
type EnvironmentInfo struct {
	GoVersion string   `json:"go_version"`
	Platform  string   `json:"platform"`
	Argv      []string `json:"argv"`
}

// InputInfo describes the ingested file.
type InputInfo struct {
	Path            string `json:"path"`
	Format          string `json:"format"`
	FormatRequested string `json:"format_requested"`
	FormatResolved  string `json:"format_resolved"`
	LayoutVersion   string `json:"layout_version,omitempty"`
	SHA256          string `json:"sha256,omitempty"`
}

// RuleInfo is one active rule in the manifest's rule set.
type RuleInfo struct {
	RuleID   string             `json:"rule_id"`
	Severity admission.Severity `json:"severity"`
	Scope    string             `json:"scope"`
}

// ArtifactIntegrity pairs an artifact's relative path with its content digest.
type ArtifactIntegrity struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
}

// GateInfo is the manifest's quality-gate block: policy verbatim, the
// computed verdict, and a pointer to the report evidence.
type GateInfo struct {
	Policy          *quality.GatePolicy `json:"policy,omitempty"`
	Inputs          map[string]string   `json:"inputs"`
	Decision        string              `json:"decision,omitempty"`
	Rationale       string              `json:"rationale,omitempty"`
	MetricsSnapshot map[string]float64  `json:"metrics_snapshot,omitempty"`
	Evidence        string              `json:"evidence"`
}

// Manifest is the single mutable chain-of-custody document for one run. It is
// owned by the run's orchestration, rewritten at each milestone via Write,
// and finalized once.
type Manifest struct {
	Schema             string                       `json:"schema"`
	Pipeline           PipelineInfo                 `json:"pipeline"`
	Run                RunInfo                      `json:"run"`
	Environment        EnvironmentInfo              `json:"environment"`
	Input              InputInfo                    `json:"input"`
	QualityGate        GateInfo                     `json:"quality_gate"`
	Artifacts          map[string]string            `json:"artifacts"`
	ArtifactsIntegrity map[string]ArtifactIntegrity `json:"artifacts_integrity"`
	Rules              []RuleInfo                   `json:"rules"`
	Counts             *admission.WorkflowStats     `json:"counts"`

	path    string
	started time.Time
	final   bool
}

// NewManifest creates a RUNNING manifest for the run rooted at runDir. argv
// is recorded verbatim for replay; artifacts maps artifact names to paths
// relative to runDir.
func NewManifest(path string, pipeline PipelineInfo, run RunInfo, argv []string, artifacts map[string]string, gateEvidence string) *Manifest {
	now := time.Now().UTC()
	run.Status = StatusRunning
	run.StartUTC = now.Format(time.RFC3339)
	run.Command = strings.Join(argv, " ")

	return &Manifest{
		Schema:   ManifestSchema,
		Pipeline: pipeline,
		Run:      run,
		Environment: EnvironmentInfo{
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "-" + runtime.GOARCH,
			Argv:      argv,
		},
		QualityGate: GateInfo{
			Inputs: map[string]string{
				"acceptance_rate": "counts.valid / counts.total",
				"rejection_rate":  "counts.invalid / counts.total",
			},
			Evidence: gateEvidence,
		},
		Artifacts:          artifacts,
		ArtifactsIntegrity: map[string]ArtifactIntegrity{},
		Rules:              []RuleInfo{},
		path:               path,
		started:            now,
	}
}

// SetInput records the input descriptor after format resolution and hashing.
func (m *Manifest) SetInput(in InputInfo) {
	in.Format = in.FormatResolved
	m.Input = in
}

// SetRules records the active rule set.
func (m *Manifest) SetRules(rules []admission.Rule) {
	infos := make([]RuleInfo, len(rules))
	for i, r := range rules {
		infos[i] = RuleInfo{RuleID: r.RuleID(), Severity: r.Severity(), Scope: "eligibility"}
	}
	m.Rules = infos
}

// SetCounts records the run totals.
func (m *Manifest) SetCounts(stats admission.WorkflowStats) {
	m.Counts = &stats
}

// SetGateDecision embeds the gate policy and verdict.
func (m *Manifest) SetGateDecision(gate quality.GateDecision) {
	policy := gate.Policy
	m.QualityGate.Policy = &policy
	m.QualityGate.Decision = gate.Decision
	m.QualityGate.Rationale = gate.Rationale
	m.QualityGate.MetricsSnapshot = gate.MetricsSnapshot
}

// RecordIntegrity hashes every declared artifact under runDir, including this
// manifest's own last-written state, and stores the digests.
func (m *Manifest) RecordIntegrity(runDir string) error {
	for name, rel := range m.Artifacts {
		sum, err := HashFileOrEmpty(filepath.Join(runDir, rel))
		if err != nil {
			return fmt.Errorf("hashing artifact %s: %w", name, err)
		}
		m.ArtifactsIntegrity[name] = ArtifactIntegrity{Path: rel, SHA256: sum}
	}
	return nil
}

// MarkFailed finalizes the manifest with status FAILED and the fatal error.
func (m *Manifest) MarkFailed(cause error) error {
	m.Run.Error = cause.Error()
	return m.Finalize(StatusFailed)
}

// Finalize stamps the terminal status, end time and total elapsed time, then
// writes the manifest. It is an error to finalize twice.
func (m *Manifest) Finalize(status string) error {
	if m.final {
		return fmt.Errorf("manifest already finalized with status %s", m.Run.Status)
	}
	switch status {
	case StatusSuccess, StatusWithWarnings, StatusFailed:
	default:
		return fmt.Errorf("not a terminal status: %q", status)
	}

	now := time.Now().UTC()
	elapsed := now.Sub(m.started).Milliseconds()
	m.Run.Status = status
	m.Run.EndUTC = now.Format(time.RFC3339)
	m.Run.ElapsedMSTotal = &elapsed
	m.final = true
	return m.Write()
}

// Write serializes the manifest to its path, replacing the previous
// milestone's content. Only the owning run writes it; no atomic replace is
// attempted.
func (m *Manifest) Write() error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	if err := os.WriteFile(m.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
