package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"backoffice-hq/saturn/pkg/admission"
	"backoffice-hq/saturn/pkg/config"
	"backoffice-hq/saturn/pkg/evidence"
	"backoffice-hq/saturn/pkg/ingest"
	"backoffice-hq/saturn/pkg/quality"
	"backoffice-hq/saturn/pkg/telemetry/metrics"
)

// Version identifies the pipeline implementation in the run manifest.
const Version = "1.0.0"

// Component names this pipeline in the run manifest.
const Component = "backoffice_admission_workflow"

// FatalError wraps a run-fatal failure. Ingestion is the only stage that can
// produce one; the caller maps it to exit code 2.
type FatalError struct {
	Stage string
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Options configures one run.
type Options struct {
	// InputPath is the file to ingest. Required.
	InputPath string

	// Format is the requested input format; FormatAuto resolves it from the
	// input extension.
	Format ingest.Format

	// OutDir is the artifact base directory; the run writes under
	// OutDir/runs/<run key>.
	OutDir string

	// RunLabel is the human label in the run key. Defaults to the input
	// file stem.
	RunLabel string

	// Argv is recorded verbatim in the manifest for replay. Defaults to
	// os.Args.
	Argv []string

	// Config carries the gate policy, rule parameters and ingest layout.
	// Nil means defaults.
	Config *config.Config

	// Logger is the operational logger. Nil discards operational logs.
	Logger *slog.Logger
}

// Result summarizes a completed (or aborted) run.
type Result struct {
	RunID  string                  `json:"run_id"`
	RunKey string                  `json:"run_key"`
	RunDir string                  `json:"run_dir"`
	Status string                  `json:"status"`
	Stats  admission.WorkflowStats `json:"counts"`
}

// String renders the summary the process prints on completion.
func (r *Result) String() string {
	return fmt.Sprintf("run_id=%s\nrun_key=%s\nrun_dir=%s\nstatus=%s", r.RunID, r.RunKey, r.RunDir, r.Status)
}

// Run executes one batch admission run. It always returns a Result with the
// run identity; err is non-nil only for fatal failures (a *FatalError after
// the run directory exists, or a setup error before it).
func Run(opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	argv := opts.Argv
	if argv == nil {
		argv = os.Args
	}

	runID := uuid.NewString()
	label := strings.TrimSpace(opts.RunLabel)
	if label == "" {
		label = stem(opts.InputPath)
	}
	runKey := newRunKey(runID, label)
	runDir := filepath.Join(opts.OutDir, "runs", runKey)

	result := &Result{RunID: runID, RunKey: runKey, RunDir: runDir}

	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return result, fmt.Errorf("creating run directory: %w", err)
	}

	audit, err := evidence.NewAuditLogger(filepath.Join(runDir, fileDecisionLog), runID)
	if err != nil {
		return result, fmt.Errorf("opening decision log: %w", err)
	}
	defer audit.Close()

	collector := metrics.NewCollector()
	totalTimer := evidence.NewStageTimer()

	formatResolved, formatErr := ingest.ResolveFormat(opts.InputPath, opts.Format)

	manifest := evidence.NewManifest(
		filepath.Join(runDir, fileManifest),
		evidence.PipelineInfo{Version: Version, Component: Component},
		evidence.RunInfo{RunID: runID, RunKey: runKey, RunLabel: label, Folder: runDir},
		argv,
		map[string]string{
			ArtifactDecisionLog:   fileDecisionLog,
			ArtifactNormalized:    fileNormalized,
			ArtifactRejected:      fileRejected,
			ArtifactQualityReport: fileQualityReport,
			ArtifactManifest:      fileManifest,
			ArtifactMetrics:       fileMetrics,
		},
		fileQualityReport,
	)
	if err := manifest.Write(); err != nil {
		return result, err
	}

	logger.Info("run started", "run_id", runID, "run_key", runKey, "input", opts.InputPath)
	audit.Emit(evidence.AuditEvent{
		Level:   evidence.LevelInfo,
		Stage:   "workflow",
		Event:   "run_started",
		Message: "Workflow execution started",
		Extra: map[string]any{
			"run_key":          runKey,
			"run_label":        label,
			"input_path":       opts.InputPath,
			"output_dir":       runDir,
			"format_requested": string(opts.Format),
			"format_resolved":  string(formatResolved),
		},
	})

	// Ingest. Either every record comes in or the run aborts here.
	ingestTimer := evidence.NewStageTimer()
	var raw []admission.RawRequest
	if formatErr == nil {
		reader := ingest.Reader{Layout: cfg.Ingest.FixedWidthLayout}
		raw, err = reader.ReadRequests(opts.InputPath, formatResolved)
	} else {
		err = formatErr
	}
	if err != nil {
		return result, abortIngest(result, manifest, audit, logger, opts, formatResolved, ingestTimer, err)
	}

	inputHash, err := evidence.HashFileOrEmpty(opts.InputPath)
	if err != nil {
		return result, abortIngest(result, manifest, audit, logger, opts, formatResolved, ingestTimer, err)
	}
	input := evidence.InputInfo{
		Path:            opts.InputPath,
		FormatRequested: string(opts.Format),
		FormatResolved:  string(formatResolved),
		SHA256:          inputHash,
	}
	if formatResolved == ingest.FormatCobol {
		layout := cfg.Ingest.FixedWidthLayout
		if layout == nil {
			layout = ingest.DefaultLayout()
		}
		input.LayoutVersion = layout.Version
	}
	manifest.SetInput(input)
	if err := manifest.Write(); err != nil {
		return result, err
	}

	audit.Emit(evidence.AuditEvent{
		Level:     evidence.LevelInfo,
		Stage:     "ingest",
		Event:     "input_loaded",
		Message:   "Input file loaded",
		ElapsedMS: ingestTimer.ElapsedMSPtr(),
		Extra:     map[string]any{"rows": len(raw), "input_format": string(formatResolved)},
	})
	logger.Info("input loaded", "rows", len(raw), "format", string(formatResolved))

	// Rule set selection.
	rules := []admission.Rule{
		admission.NewRequiredFieldsRule(),
		admission.NewCurrencyAllowedRule(cfg.Rules.AllowedCurrencies),
		admission.NewAmountRangeRule(cfg.Rules.AmountMin, cfg.Rules.AmountMax),
	}
	manifest.SetRules(rules)
	if err := manifest.Write(); err != nil {
		return result, err
	}

	// Process records strictly in input order.
	processTimer := evidence.NewStageTimer()
	failuresByRule := map[string][]string{}
	var accepted []admission.NormalizedRequest
	var rejected []rejectedRow
	valid, invalid := 0, 0

	for _, rawRecord := range raw {
		collector.RecordRead()
		recordID := strings.TrimSpace(rawRecord.ID)

		normalizedRecord, err := admission.Normalize(rawRecord)
		if err != nil {
			invalid++
			collector.RecordRejected()
			collector.RecordRuleFailure(admission.RuleNormalizationError)
			failuresByRule[admission.RuleNormalizationError] = append(failuresByRule[admission.RuleNormalizationError], recordID)
			rejected = append(rejected, rejectedRow{
				id:      recordID,
				ruleIDs: []string{admission.RuleNormalizationError},
				reasons: []string{err.Error()},
			})
			audit.Emit(evidence.AuditEvent{
				Level:    evidence.LevelWarn,
				Stage:    "normalize",
				Event:    "record_rejected",
				Message:  "Normalization failed",
				RecordID: recordID,
				RuleID:   admission.RuleNormalizationError,
				Reason:   err.Error(),
			})
			continue
		}

		verdict := admission.Validate(normalizedRecord, rules)
		if verdict.Decision == admission.DecisionAccept {
			valid++
			collector.RecordAccepted()
			accepted = append(accepted, normalizedRecord)
			continue
		}

		invalid++
		collector.RecordRejected()
		row := rejectedRow{id: normalizedRecord.ID, record: &normalizedRecord}
		for _, failure := range verdict.Failures {
			collector.RecordRuleFailure(failure.RuleID)
			failuresByRule[failure.RuleID] = append(failuresByRule[failure.RuleID], normalizedRecord.ID)
			row.ruleIDs = append(row.ruleIDs, failure.RuleID)
			row.reasons = append(row.reasons, failure.Reason)
		}
		rejected = append(rejected, row)
		audit.Emit(evidence.AuditEvent{
			Level:    evidence.LevelWarn,
			Stage:    "validate",
			Event:    "record_rejected",
			Message:  "Eligibility rule failed",
			RecordID: normalizedRecord.ID,
			Extra:    map[string]any{"rule_ids": row.ruleIDs},
		})
	}

	stats := admission.WorkflowStats{Total: len(raw), Valid: valid, Invalid: invalid}
	result.Stats = stats
	collector.RecordStageDuration("process", processTimer.ElapsedMS())
	audit.Emit(evidence.AuditEvent{
		Level:     evidence.LevelInfo,
		Stage:     "process",
		Event:     "processing_completed",
		Message:   "Processing completed",
		ElapsedMS: processTimer.ElapsedMSPtr(),
		Extra:     map[string]any{"total": stats.Total, "valid": valid, "invalid": invalid},
	})
	logger.Info("processing completed", "total", stats.Total, "valid", valid, "invalid", invalid)
	manifest.SetCounts(stats)
	if err := manifest.Write(); err != nil {
		return result, err
	}

	// Tabular artifacts and the quality report.
	outputTimer := evidence.NewStageTimer()
	if err := writeNormalizedCSV(filepath.Join(runDir, fileNormalized), accepted); err != nil {
		return result, err
	}
	if err := writeRejectedCSV(filepath.Join(runDir, fileRejected), rejected); err != nil {
		return result, err
	}

	report := quality.BuildReport(runID, stats, failuresByRule)
	gate, err := quality.WriteReport(filepath.Join(runDir, fileQualityReport), report, cfg.Gate)
	if err != nil {
		return result, err
	}

	audit.Emit(evidence.AuditEvent{
		Level:     evidence.LevelInfo,
		Stage:     "output",
		Event:     "artifacts_written",
		Message:   "Artifacts generated",
		ElapsedMS: outputTimer.ElapsedMSPtr(),
		Extra: map[string]any{
			ArtifactNormalized:    fileNormalized,
			ArtifactRejected:      fileRejected,
			ArtifactQualityReport: fileQualityReport,
			ArtifactDecisionLog:   fileDecisionLog,
		},
	})

	// Governance.
	manifest.SetGateDecision(gate)
	collector.RecordGateDecision(gate.Decision, cfg.Gate.PolicyID)
	audit.Emit(evidence.AuditEvent{
		Level:   evidence.LevelInfo,
		Stage:   "governance",
		Event:   "quality_gate_evaluated",
		Message: "Quality gate evaluated",
		Extra: map[string]any{
			"decision":        gate.Decision,
			"rationale":       gate.Rationale,
			"policy_id":       gate.PolicyID,
			"acceptance_rate": gate.MetricsSnapshot["acceptance_rate"],
			"rejection_rate":  gate.MetricsSnapshot["rejection_rate"],
		},
	})
	logger.Info("quality gate evaluated", "decision", gate.Decision, "rationale", gate.Rationale)

	collector.RecordStageDuration("ingest", ingestTimer.ElapsedMS())
	collector.RecordStageDuration("output", outputTimer.ElapsedMS())
	if err := collector.WriteTextfile(filepath.Join(runDir, fileMetrics)); err != nil {
		return result, err
	}

	// Chain of custody: hash every artifact, including the manifest's own
	// prior state, then finalize.
	if err := manifest.Write(); err != nil {
		return result, err
	}
	if err := manifest.RecordIntegrity(runDir); err != nil {
		return result, err
	}

	status := evidence.StatusWithWarnings
	if gate.Decision == quality.GatePass {
		status = evidence.StatusSuccess
	}
	if err := manifest.Finalize(status); err != nil {
		return result, err
	}
	result.Status = status

	audit.Emit(evidence.AuditEvent{
		Level:     evidence.LevelInfo,
		Stage:     "workflow",
		Event:     "run_finished",
		Message:   "Workflow execution finished",
		ElapsedMS: totalTimer.ElapsedMSPtr(),
		Extra:     map[string]any{"status": status},
	})
	logger.Info("run finished", "status", status, "elapsed_ms", totalTimer.ElapsedMS())

	return result, nil
}

// abortIngest finalizes a run that failed before any record was processed.
func abortIngest(result *Result, manifest *evidence.Manifest, audit *evidence.AuditLogger, logger *slog.Logger, opts Options, format ingest.Format, timer *evidence.StageTimer, cause error) error {
	var ferr *ingest.InputFormatError
	if !errors.As(cause, &ferr) {
		cause = &ingest.InputFormatError{Path: opts.InputPath, Message: "cannot ingest input", Cause: cause}
	}

	manifest.SetInput(evidence.InputInfo{
		Path:            opts.InputPath,
		FormatRequested: string(opts.Format),
		FormatResolved:  string(format),
	})
	if err := manifest.MarkFailed(cause); err != nil {
		logger.Error("finalizing failed manifest", "error", err)
	}
	result.Status = evidence.StatusFailed

	audit.Emit(evidence.AuditEvent{
		Level:     evidence.LevelError,
		Stage:     "ingest",
		Event:     "input_invalid",
		Message:   cause.Error(),
		ElapsedMS: timer.ElapsedMSPtr(),
	})
	logger.Error("ingestion failed", "error", cause)

	return &FatalError{Stage: "ingest", Err: cause}
}

// stem returns the input file name without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// newRunKey builds the run directory key: UTC stamp, sanitized label, short
// run id.
func newRunKey(runID, label string) string {
	stamp := time.Now().UTC().Format("2006-01-02_150405Z")
	return fmt.Sprintf("%s__%s__%s", stamp, safeLabel(label), runID[:8])
}

// safeLabel keeps letters, digits, dash and underscore; everything else
// becomes an underscore. An empty label becomes "run".
func safeLabel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "run"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
