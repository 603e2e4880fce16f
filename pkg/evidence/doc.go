// Package evidence implements the run's chain of custody: an append-only
// audit log, content hashing for artifact integrity, and the run manifest.
//
// # Audit Log
//
// AuditLogger writes one self-contained JSON line per significant occurrence
// (run start/end, stage boundaries, per-record rejections, the gate verdict).
// The file is opened append-only; prior lines are never rewritten.
//
// # Run Manifest
//
// Manifest is a mutable builder owned solely by the run's orchestration. It
// is serialized after every milestone (creation, ingest, rule selection,
// processing, artifact output, gate evaluation) and finalized exactly once
// with a terminal status. Every declared artifact gets a full-content SHA-256
// digest so an auditor can detect later tampering.
package evidence
