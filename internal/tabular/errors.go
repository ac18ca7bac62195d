package tabular

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResult marks a filter combination that matched no rows. It is
// informational: callers show a notice and skip the chart.
var ErrEmptyResult = errors.New("no rows match the selected filters")

// MissingInputError indicates that neither an upload nor a fallback file was available.
type MissingInputError struct {
	Source string
}

func (e *MissingInputError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("no input provided: %s not found", e.Source)
	}
	return "no input provided"
}

// DecodeError indicates that every candidate encoding failed for a source.
type DecodeError struct {
	Source    string
	Encodings []string
	Last      error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("no encoding succeeded for %s (tried %s)", nameOr(e.Source, "input"), strings.Join(e.Encodings, ", "))
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Last }

// SchemaError lists every logical field that could not be resolved against
// the columns actually present.
type SchemaError struct {
	Missing   []string
	Available []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required columns not found: %s (available: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Available, ", "))
}

// DateColumnError indicates that no value in a date column could be parsed.
type DateColumnError struct {
	Column string
}

func (e *DateColumnError) Error() string {
	return fmt.Sprintf("cannot parse date column %q (expected e.g. YYYYMMDD or YYYY-MM-DD)", e.Column)
}

func nameOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
