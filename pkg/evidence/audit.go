package evidence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Audit event severity levels.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// AuditEvent is one self-contained occurrence in the decision log. Events
// depend on nothing but their own fields; ordering is only the monotonic
// timestamps plus append order.
type AuditEvent struct {
	TSUTC     string         `json:"ts_utc"`
	Level     string         `json:"level"`
	RunID     string         `json:"run_id"`
	Stage     string         `json:"stage"`
	Event     string         `json:"event"`
	Message   string         `json:"message"`
	ElapsedMS *int64         `json:"elapsed_ms,omitempty"`
	RecordID  string         `json:"record_id,omitempty"`
	RuleID    string         `json:"rule_id,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// AuditLogger appends events to a JSONL decision log. The underlying file is
// opened with O_APPEND, so prior lines are never overwritten. Safe for a
// single run's sequential use; Close flushes nothing further and is final.
type AuditLogger struct {
	mu    sync.Mutex
	f     *os.File
	runID string
}

// NewAuditLogger opens (creating parent directories as needed) the decision
// log at path for appending. runID is stamped on every event.
func NewAuditLogger(path, runID string) (*AuditLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &AuditLogger{f: f, runID: runID}, nil
}

// Emit appends one event. The event's RunID and timestamp are filled in if
// unset.
func (a *AuditLogger) Emit(ev AuditEvent) error {
	if ev.RunID == "" {
		ev.RunID = a.runID
	}
	if ev.TSUTC == "" {
		ev.TSUTC = time.Now().UTC().Format(time.RFC3339)
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling audit event: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending audit event: %w", err)
	}
	return nil
}

// Log emits an event built from the common fields plus optional extras.
func (a *AuditLogger) Log(level, stage, event, message string, extra map[string]any) error {
	return a.Emit(AuditEvent{
		Level:   level,
		Stage:   stage,
		Event:   event,
		Message: message,
		Extra:   extra,
	})
}

// Close closes the underlying log file.
func (a *AuditLogger) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.f.Close()
}

// StageTimer measures elapsed wall time for one pipeline stage.
type StageTimer struct {
	start time.Time
}

// NewStageTimer starts a timer.
func NewStageTimer() *StageTimer {
	return &StageTimer{start: time.Now()}
}

// ElapsedMS returns the elapsed milliseconds since the timer started.
func (t *StageTimer) ElapsedMS() int64 {
	return time.Since(t.start).Milliseconds()
}

// ElapsedMSPtr returns the elapsed milliseconds as a pointer for the optional
// AuditEvent field.
func (t *StageTimer) ElapsedMSPtr() *int64 {
	ms := t.ElapsedMS()
	return &ms
}
