package commands

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/styler-dev/styler/internal/errreport"
	"github.com/styler-dev/styler/pkg/pipeline"
)

// diagnosticsFromOutcomes flattens a batch's FileOutcomes into the
// errreport.Diagnostic slice the human/machine renderers consume: a
// pipeline failure becomes one diagnostic, a successful run contributes
// one diagnostic per rule violation found along the way.
func diagnosticsFromOutcomes(outcomes []pipeline.FileOutcome) []errreport.Diagnostic {
	var diagnostics []errreport.Diagnostic

	for _, outcome := range outcomes {
		if outcome.Err != nil {
			diagnostics = append(diagnostics, errreport.FromPipelineError(outcome.Err, outcome.Stage))

			continue
		}

		for _, v := range outcome.Violations {
			diagnostics = append(diagnostics, errreport.FromViolation(v))
		}
	}

	return diagnostics
}

// renderDiagnostics writes diagnostics to w as JSON when machine is set,
// otherwise as colorized plain text.
func renderDiagnostics(w io.Writer, diagnostics []errreport.Diagnostic, machine bool) error {
	if machine {
		return errreport.MachineRenderer{}.Render(w, diagnostics)
	}

	return errreport.HumanRenderer{}.Render(w, diagnostics)
}

// printSummaryTable writes a per-batch summary (files processed, failed,
// violations found) as an ASCII table, mirroring how a batch-oriented CLI
// in this codebase's family reports aggregate results.
func printSummaryTable(w io.Writer, outcomes []pipeline.FileOutcome) {
	var processed, failed, violations int

	for _, outcome := range outcomes {
		processed++

		if outcome.Err != nil {
			failed++
		}

		violations += len(outcome.Violations)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Files Processed", "Failed", "Violations Found"})
	t.AppendRow(table.Row{processed, failed, violations})
	t.Render()
}

// batchExitCode maps a batch's outcomes to the process exit code: internal
// errors take priority over plain violations, which take priority over a
// clean run.
func batchExitCode(outcomes []pipeline.FileOutcome) int {
	hasFailure := false
	hasViolation := false

	for _, outcome := range outcomes {
		if outcome.Err != nil {
			hasFailure = true
		}

		if len(outcome.Violations) > 0 {
			hasViolation = true
		}
	}

	switch {
	case hasFailure:
		return ExitInternalError
	case hasViolation:
		return ExitViolationsFound
	default:
		return ExitSuccess
	}
}
