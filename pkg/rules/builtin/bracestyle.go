package builtin

import (
	"github.com/styler-dev/styler/pkg/edit"
	"github.com/styler-dev/styler/pkg/position"
	"github.com/styler-dev/styler/pkg/rules"
)

// BraceStyleRule enforces SAME_LINE or NEW_LINE placement for opening
// braces that directly follow a declaration header.
type BraceStyleRule struct{}

// ID implements rules.Rule.
func (BraceStyleRule) ID() string { return "brace-style" }

// Name implements rules.Rule.
func (BraceStyleRule) Name() string { return "Brace Style" }

// Description implements rules.Rule.
func (BraceStyleRule) Description() string {
	return "enforces same-line or new-line placement of opening braces"
}

// DefaultSeverity implements rules.Rule.
func (BraceStyleRule) DefaultSeverity() rules.Severity { return rules.Warning }

// Analyze implements rules.Rule.
func (r BraceStyleRule) Analyze(ctx *rules.TransformationContext, configs []rules.Config) ([]rules.Violation, error) {
	cfg := rules.FindConfig[BraceStyleConfig](configs, DefaultBraceStyleConfig)

	var violations []rules.Violation

	for _, brace := range findOpeningBraces(ctx.Source) {
		if err := ctx.CheckDeadline(); err != nil {
			return violations, err
		}

		if violatesBraceStyle(ctx.Source, brace, cfg.Style) {
			line := ctx.GetLineNumber(brace)
			col := ctx.GetColumnNumber(brace)
			violations = append(violations, rules.Violation{
				RuleID:   r.ID(),
				Severity: r.DefaultSeverity(),
				Message:  "brace placement does not match configured style",
				FilePath: ctx.FilePath,
				Range: position.NewRange(
					position.Position{Line: line, Column: col},
					position.Position{Line: line, Column: col + 1},
				),
			})
		}
	}

	return violations, nil
}

// Format implements rules.Rule.
func (r BraceStyleRule) Format(ctx *rules.TransformationContext, configs []rules.Config) ([]edit.Edit, error) {
	cfg := rules.FindConfig[BraceStyleConfig](configs, DefaultBraceStyleConfig)

	var edits []edit.Edit

	for _, brace := range findOpeningBraces(ctx.Source) {
		if err := ctx.CheckDeadline(); err != nil {
			return edits, err
		}

		if e, ok := braceEdit(ctx, brace, cfg.Style); ok {
			edits = append(edits, e)
		}
	}

	return edits, nil
}

// findOpeningBraces returns the byte offsets of every '{' not inside a
// literal or comment.
func findOpeningBraces(source []byte) []int {
	bitmap := buildLiteralSpanBitmap(source)

	var offsets []int

	for i, b := range source {
		if b == '{' && !bitmap.at(i) {
			offsets = append(offsets, i)
		}
	}

	return offsets
}

func violatesBraceStyle(source []byte, brace int, style BraceStyle) bool {
	precededByNewlineOnly := isPrecededByNewlineAndWhitespace(source, brace)

	switch style {
	case SameLine:
		return precededByNewlineOnly
	case NewLine:
		return !precededByNewlineOnly
	default:
		return false
	}
}

func isPrecededByNewlineAndWhitespace(source []byte, brace int) bool {
	for i := brace - 1; i >= 0; i-- {
		switch source[i] {
		case ' ', '\t':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}

	return false
}

func braceEdit(ctx *rules.TransformationContext, brace int, style BraceStyle) (edit.Edit, bool) {
	if !violatesBraceStyle(ctx.Source, brace, style) {
		return edit.Edit{}, false
	}

	line := ctx.GetLineNumber(brace)
	col := ctx.GetColumnNumber(brace)

	switch style {
	case NewLine:
		// Replace the whitespace run immediately preceding '{' with a
		// newline, so the brace starts its own line.
		wsStart := brace

		for wsStart > 0 && (ctx.Source[wsStart-1] == ' ' || ctx.Source[wsStart-1] == '\t') {
			wsStart--
		}

		startCol := ctx.GetColumnNumber(wsStart)

		return edit.Edit{
			Range: position.NewRange(
				position.Position{Line: line, Column: startCol},
				position.Position{Line: line, Column: col},
			),
			Replacement: "\n",
			RuleID:      "brace-style",
			Priority:    edit.High,
		}, true
	case SameLine:
		// Collapse the preceding newline+indent into a single space.
		wsStart := brace

		for wsStart > 0 && (ctx.Source[wsStart-1] == ' ' || ctx.Source[wsStart-1] == '\t' || ctx.Source[wsStart-1] == '\n') {
			wsStart--
		}

		startLine := ctx.GetLineNumber(wsStart)
		startCol := ctx.GetColumnNumber(wsStart)

		return edit.Edit{
			Range: position.NewRange(
				position.Position{Line: startLine, Column: startCol},
				position.Position{Line: line, Column: col},
			),
			Replacement: " ",
			RuleID:      "brace-style",
			Priority:    edit.High,
		}, true
	default:
		return edit.Edit{}, false
	}
}
