// Package ingest reads admission requests from heterogeneous file formats
// into raw, untyped records.
//
// Supported formats:
//
//   - csv: comma-separated with a header row
//   - json: a list of objects, or an object with a "requests" list
//   - txt: delimited text with a header row; the separator (pipe, tab,
//     semicolon or comma) is auto-detected from the first non-blank line
//   - cobol: fixed-width lines sliced by a versioned byte-range layout
//
// FormatAuto resolves the format from the file extension. Every format
// guarantees the full required column set on each returned record; any
// shortfall is an *InputFormatError, which is fatal for the whole run:
// ingestion either fully succeeds or nothing downstream sees a record.
package ingest
