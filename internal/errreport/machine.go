package errreport

import (
	"encoding/json"
	"fmt"
	"io"
)

// errorReportType is the machine-format "type" discriminator.
const errorReportType = "error-report"

// jsonDiagnostic is the wire shape of a single diagnostic entry.
type jsonDiagnostic struct {
	Category     string `json:"category"`
	Severity     string `json:"severity"`
	File         string `json:"file"`
	Line         int    `json:"line,omitempty"`
	Column       int    `json:"column,omitempty"`
	Message      string `json:"message"`
	SuggestedFix string `json:"suggested_fix,omitempty"`
}

// errorReport is the top-level machine-format document.
type errorReport struct {
	Type        string           `json:"type"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

// MachineRenderer writes diagnostics as a single JSON object with
// type: "error-report" and a diagnostics array.
type MachineRenderer struct{}

// Render writes the JSON error report to w.
func (MachineRenderer) Render(w io.Writer, diagnostics []Diagnostic) error {
	report := errorReport{
		Type:        errorReportType,
		Diagnostics: make([]jsonDiagnostic, 0, len(diagnostics)),
	}

	for _, d := range diagnostics {
		report.Diagnostics = append(report.Diagnostics, jsonDiagnostic{
			Category:     d.Category.String(),
			Severity:     d.Severity.String(),
			File:         d.File,
			Line:         d.Line,
			Column:       d.Column,
			Message:      d.Message,
			SuggestedFix: d.SuggestedFix,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("errreport: encode error report: %w", err)
	}

	return nil
}
