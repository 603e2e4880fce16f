// Package pipeline orchestrates one batch admission run end to end: ingest,
// per-record normalization and eligibility validation, artifact output, the
// quality-gate verdict, and the chain-of-custody finalization.
//
// A run is single-threaded and one-pass. Records are processed strictly in
// input order; record-scoped failures are captured into counts, artifacts and
// audit events and never abort the run. Only an ingestion failure is fatal,
// in which case the manifest is finalized FAILED and Run returns a
// *FatalError before any record is processed.
package pipeline
