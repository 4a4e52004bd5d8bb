package domain

import (
	"errors"
	"fmt"
)

// Sentinel causes carried inside the typed errors below.
var (
	// ErrNoValidRows indicates a source parsed but produced zero usable readings.
	ErrNoValidRows = errors.New("no valid rows")

	// ErrEmptyTable indicates an empty table reached the analyzer.
	ErrEmptyTable = errors.New("empty table")

	// ErrPDFToolMissing indicates the external HTML-to-PDF tool is not installed.
	ErrPDFToolMissing = errors.New("pdf conversion tool not found")
)

// LoadError reports a source that could not be read or contained no valid
// data. Per-row parse failures are not errors; they are counted in ParseStats.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// AnalysisError reports an analysis step that received unusable input,
// such as an empty table after date filtering.
type AnalysisError struct {
	Op  string
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analyze %s: %v", e.Op, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// RenderError reports a report rendering failure, such as a missing PDF
// tool. A RenderError from PDF conversion never invalidates HTML output
// that was already written.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
