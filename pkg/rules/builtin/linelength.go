package builtin

import (
	"strings"

	"github.com/styler-dev/styler/pkg/edit"
	"github.com/styler-dev/styler/pkg/position"
	"github.com/styler-dev/styler/pkg/rules"
)

// maxWrapEditsPerLine caps how many wrap insertions the rule will emit for
// a single overlong line. This cap is carried over as-configured from the
// rule's origin and is not itself semantically meaningful; do not read
// significance into the number 3 (see spec's design notes).
const maxWrapEditsPerLine = 3

// LineLengthRule wraps lines exceeding a configured column limit at the
// last safe (non-literal, non-comment) whitespace boundary before the
// limit, up to maxWrapEditsPerLine times per line.
type LineLengthRule struct{}

// ID implements rules.Rule.
func (LineLengthRule) ID() string { return "line-length" }

// Name implements rules.Rule.
func (LineLengthRule) Name() string { return "Line Length" }

// Description implements rules.Rule.
func (LineLengthRule) Description() string {
	return "wraps lines that exceed the configured maximum column width"
}

// DefaultSeverity implements rules.Rule.
func (LineLengthRule) DefaultSeverity() rules.Severity { return rules.Warning }

// Analyze implements rules.Rule.
func (r LineLengthRule) Analyze(ctx *rules.TransformationContext, configs []rules.Config) ([]rules.Violation, error) {
	cfg := rules.FindConfig[LineLengthConfig](configs, DefaultLineLengthConfig)
	bitmap := buildLiteralSpanBitmap(ctx.Source)

	var violations []rules.Violation

	lineNo := 1

	for _, line := range splitLinesKeepOffsets(ctx.Source) {
		if err := ctx.CheckDeadline(); err != nil {
			return violations, err
		}

		if visibleWidth(line.text) > cfg.MaxLineLength {
			violations = append(violations, rules.Violation{
				RuleID:   r.ID(),
				Severity: r.DefaultSeverity(),
				Message:  "line exceeds maximum length",
				FilePath: ctx.FilePath,
				Range: position.NewRange(
					position.Position{Line: lineNo, Column: cfg.MaxLineLength + 1},
					position.Position{Line: lineNo, Column: visibleWidth(line.text) + 1},
				),
			})
		}

		_ = bitmap

		lineNo++
	}

	return violations, nil
}

// Format implements rules.Rule.
func (r LineLengthRule) Format(ctx *rules.TransformationContext, configs []rules.Config) ([]edit.Edit, error) {
	cfg := rules.FindConfig[LineLengthConfig](configs, DefaultLineLengthConfig)
	bitmap := buildLiteralSpanBitmap(ctx.Source)

	var edits []edit.Edit

	lineNo := 1

	for _, line := range splitLinesKeepOffsets(ctx.Source) {
		if err := ctx.CheckDeadline(); err != nil {
			return edits, err
		}

		edits = append(edits, r.wrapLine(line, lineNo, cfg, bitmap)...)
		lineNo++
	}

	return edits, nil
}

type lineSpan struct {
	text      string
	startByte int
}

func splitLinesKeepOffsets(source []byte) []lineSpan {
	var spans []lineSpan

	start := 0

	for i, b := range source {
		if b == '\n' {
			spans = append(spans, lineSpan{text: string(source[start:i]), startByte: start})
			start = i + 1
		}
	}

	if start < len(source) {
		spans = append(spans, lineSpan{text: string(source[start:]), startByte: start})
	}

	return spans
}

func visibleWidth(line string) int {
	return len(strings.TrimRight(line, "\r"))
}

// wrapLine emits up to maxWrapEditsPerLine insertion edits that break an
// overlong line at the last safe whitespace boundary before each
// successive MaxLineLength column, indenting the continuation by
// ContinuationIndent spaces.
func (r LineLengthRule) wrapLine(line lineSpan, lineNo int, cfg LineLengthConfig, bitmap literalSpanBitmap) []edit.Edit {
	text := strings.TrimRight(line.text, "\r")
	if len(text) <= cfg.MaxLineLength {
		return nil
	}

	var edits []edit.Edit

	limit := cfg.MaxLineLength
	wraps := 0
	consumed := 0

	for len(text) > limit && wraps < maxWrapEditsPerLine {
		breakCol := lastSafeBreak(text, limit, line.startByte+consumed, bitmap)
		if breakCol <= 0 {
			break
		}

		edits = append(edits, edit.Edit{
			Range: position.NewRange(
				position.Position{Line: lineNo, Column: consumed + breakCol + 1},
				position.Position{Line: lineNo, Column: consumed + breakCol + 1},
			),
			Replacement: "\n" + strings.Repeat(" ", cfg.ContinuationIndent),
			RuleID:      r.ID(),
			Priority:    edit.Normal,
		})

		consumed += breakCol + 1
		text = text[breakCol+1:]
		wraps++
	}

	return edits
}

// lastSafeBreak returns the byte index (within text) of the last space
// character at or before limit that is not inside a literal or comment
// span, or -1 if none is found.
func lastSafeBreak(text string, limit, lineStartByte int, bitmap literalSpanBitmap) int {
	searchLimit := min(limit, len(text)-1)

	for i := searchLimit; i >= 0; i-- {
		if text[i] == ' ' && !bitmap.at(lineStartByte+i) {
			return i
		}
	}

	return -1
}
