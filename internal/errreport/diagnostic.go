// Package errreport renders formatting diagnostics for human consumption
// (plain text with optional ANSI color) and machine consumption (JSON),
// the two "Error output" formats spec'd for the CLI surface.
package errreport

import (
	"github.com/styler-dev/styler/pkg/pipeline"
	"github.com/styler-dev/styler/pkg/rules"
)

// Category classifies the source of a Diagnostic.
type Category int

// Diagnostic categories.
const (
	Parse Category = iota
	Config
	Format
	System
)

func (c Category) String() string {
	switch c {
	case Parse:
		return "PARSE"
	case Config:
		return "CONFIG"
	case Format:
		return "FORMAT"
	case System:
		return "SYSTEM"
	default:
		return "UNKNOWN"
	}
}

// Severity classifies how serious a Diagnostic is.
type Severity int

// Diagnostic severities.
const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Diagnostic is one reportable event: a rule violation, a stage failure,
// or a configuration problem. Human and machine renderers both operate
// over the same []Diagnostic slice.
type Diagnostic struct {
	Category     Category
	Severity     Severity
	File         string
	Line         int
	Column       int
	Message      string
	SuggestedFix string
}

// FromViolation converts a rule engine Violation (FORMAT category) into a
// Diagnostic.
func FromViolation(v rules.Violation) Diagnostic {
	d := Diagnostic{
		Category: Format,
		Severity: severityFromRules(v.Severity),
		File:     v.FilePath,
		Line:     v.Range.Start.Line,
		Column:   v.Range.Start.Column,
		Message:  v.Message,
	}

	if v.SuggestedFix != nil {
		d.SuggestedFix = v.SuggestedFix.Replacement
	}

	return d
}

// FromPipelineError converts a pipeline stage failure into a Diagnostic.
// stage determines the category: Parsing maps to Parse, everything else
// to System (configuration failures are reported separately by the
// config loader before the pipeline ever runs).
func FromPipelineError(err *pipeline.PipelineError, stage pipeline.Stage) Diagnostic {
	category := System
	if stage == pipeline.Parsing {
		category = Parse
	}

	return Diagnostic{
		Category: category,
		Severity: Error,
		File:     err.FilePath,
		Message:  err.Error(),
	}
}

func severityFromRules(s rules.Severity) Severity {
	switch s {
	case rules.Info:
		return Info
	case rules.Warning:
		return Warning
	case rules.Error:
		return Error
	default:
		return Error
	}
}
