package domain

import (
	"fmt"
	"strings"
)

// ValidationError reports a malformed query request. It is raised before any
// pipeline stage runs and maps to HTTP 400.
type ValidationError struct {
	Message string `json:"error"`
	// Key names the offending request key, when there is one.
	Key string `json:"key,omitempty"`
	// Supported lists the accepted alternatives, when the error is about a
	// choice (request keys, operators, field types).
	Supported []string `json:"supported,omitempty"`
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(key, format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...), Key: key}
}

// DatasetFetchError reports that the dataset could not be retrieved or was
// not an array of JSON objects. The cache stays empty so the next caller
// retries.
type DatasetFetchError struct {
	Source string
	Reason string
	Err    error
}

func (e *DatasetFetchError) Error() string {
	var b strings.Builder
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DatasetFetchError) Unwrap() error { return e.Err }

// NewFetchError wraps err as a DatasetFetchError for source.
func NewFetchError(source, reason string, err error) *DatasetFetchError {
	return &DatasetFetchError{Source: source, Reason: reason, Err: err}
}
