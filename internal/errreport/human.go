package errreport

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// HumanRenderer writes diagnostics as plain text, optionally colorized
// by severity (ERROR red, WARNING yellow, INFO cyan).
type HumanRenderer struct {
	// NoColor disables ANSI color codes regardless of the terminal.
	NoColor bool
}

// Render writes diagnostics to w, one per line, in the
// "file:line:column: SEVERITY [CATEGORY] message" shape. Writes nothing
// and returns nil for an empty slice.
func (h HumanRenderer) Render(w io.Writer, diagnostics []Diagnostic) error {
	prevNoColor := color.NoColor
	color.NoColor = h.NoColor //nolint:reassign // scoped override of library global for this render call

	defer func() { color.NoColor = prevNoColor }() //nolint:reassign

	for _, d := range diagnostics {
		c := colorForSeverity(d.Severity)

		location := d.File
		if d.Line > 0 {
			location = fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)
		}

		if _, err := c.Fprintf(w, "%s: %s [%s] %s\n", location, d.Severity, d.Category, d.Message); err != nil {
			return fmt.Errorf("errreport: render diagnostic: %w", err)
		}

		if d.SuggestedFix != "" {
			if _, err := fmt.Fprintf(w, "  suggested fix: %s\n", d.SuggestedFix); err != nil {
				return fmt.Errorf("errreport: render suggested fix: %w", err)
			}
		}
	}

	return nil
}

func colorForSeverity(s Severity) *color.Color {
	switch s {
	case Error:
		return color.New(color.FgRed)
	case Warning:
		return color.New(color.FgYellow)
	case Info:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgWhite)
	}
}
