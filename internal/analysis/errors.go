package analysis

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotLoaded is returned when Aggregate runs before a table was loaded.
	ErrNotLoaded = errors.New("no table loaded")
	// ErrAlreadyAggregated guards against double counting on a second Aggregate call.
	ErrAlreadyAggregated = errors.New("census already aggregated")
	// ErrNotAggregated is returned when a report is requested before Aggregate.
	ErrNotAggregated = errors.New("census not aggregated")
	// ErrInvalidDelimiter rejects separators the csv reader cannot use.
	ErrInvalidDelimiter = errors.New("invalid field delimiter")
	// ErrEmptyAggregation indicates a percentage was requested against a zero certified total.
	ErrEmptyAggregation = errors.New("total certified count is zero")
)

// FileAccessError indicates the input could not be read or an output could not be written.
type FileAccessError struct {
	Path string
	Op   string // open|read|write
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// SchemaResolutionError indicates none of the known column conventions is fully present.
type SchemaResolutionError struct {
	Tried  []Schema
	Header []string
}

func (e *SchemaResolutionError) Error() string {
	names := make([]string, 0, len(e.Tried))
	for _, s := range e.Tried {
		names = append(names, s.String())
	}
	return fmt.Sprintf("no known column schema matched (tried %s)", strings.Join(names, "; "))
}

// MalformedTableError indicates rows or columns of inconsistent width.
type MalformedTableError struct {
	Path   string
	Line   int    // set for ragged records
	Column string // set for columns of unequal length
	Want   int
	Got    int
	Err    error // set when the record could not be parsed at all
}

func (e *MalformedTableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed table %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	if e.Column != "" {
		return fmt.Sprintf("malformed table: column %q has %d values, expected %d", e.Column, e.Got, e.Want)
	}
	if e.Path != "" {
		return fmt.Sprintf("malformed table %s: line %d has %d fields, header has %d", e.Path, e.Line, e.Got, e.Want)
	}
	return fmt.Sprintf("malformed table: line %d has %d fields, header has %d", e.Line, e.Got, e.Want)
}

func (e *MalformedTableError) Unwrap() error { return e.Err }
