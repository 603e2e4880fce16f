package ingest

import "fmt"

// InputFormatError signals that the input file cannot be ingested: absent
// file, missing header, malformed JSON, missing required columns, undetected
// delimiter, or an empty fixed-width payload. It aborts the run before any
// record is processed.
type InputFormatError struct {
	Path    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *InputFormatError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause error.
func (e *InputFormatError) Unwrap() error {
	return e.Cause
}

func formatError(path, message string, cause error) *InputFormatError {
	return &InputFormatError{Path: path, Message: message, Cause: cause}
}
