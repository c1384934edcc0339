package builtin

import (
	"strings"

	"github.com/styler-dev/styler/pkg/edit"
	"github.com/styler-dev/styler/pkg/position"
	"github.com/styler-dev/styler/pkg/rules"
)

// IndentationRule enforces a single indentation character (tab or space)
// and quantizes leading whitespace to multiples of IndentSize.
type IndentationRule struct{}

// ID implements rules.Rule.
func (IndentationRule) ID() string { return "indentation" }

// Name implements rules.Rule.
func (IndentationRule) Name() string { return "Indentation" }

// Description implements rules.Rule.
func (IndentationRule) Description() string {
	return "normalizes leading whitespace to a single consistent indent style"
}

// DefaultSeverity implements rules.Rule.
func (IndentationRule) DefaultSeverity() rules.Severity { return rules.Warning }

// Analyze implements rules.Rule.
func (r IndentationRule) Analyze(ctx *rules.TransformationContext, configs []rules.Config) ([]rules.Violation, error) {
	cfg := rules.FindConfig[IndentationConfig](configs, DefaultIndentationConfig)

	var violations []rules.Violation

	lineNo := 1

	for _, line := range splitLinesKeepOffsets(ctx.Source) {
		if err := ctx.CheckDeadline(); err != nil {
			return violations, err
		}

		leading := leadingWhitespace(line.text)
		if leading != "" && !matchesIndentStyle(leading, cfg) {
			violations = append(violations, rules.Violation{
				RuleID:   r.ID(),
				Severity: r.DefaultSeverity(),
				Message:  "leading whitespace does not match configured indentation style",
				FilePath: ctx.FilePath,
				Range: position.NewRange(
					position.Position{Line: lineNo, Column: 1},
					position.Position{Line: lineNo, Column: len(leading) + 1},
				),
			})
		}

		lineNo++
	}

	return violations, nil
}

// Format implements rules.Rule.
func (r IndentationRule) Format(ctx *rules.TransformationContext, configs []rules.Config) ([]edit.Edit, error) {
	cfg := rules.FindConfig[IndentationConfig](configs, DefaultIndentationConfig)

	var edits []edit.Edit

	lineNo := 1

	for _, line := range splitLinesKeepOffsets(ctx.Source) {
		if err := ctx.CheckDeadline(); err != nil {
			return edits, err
		}

		leading := leadingWhitespace(line.text)
		if leading != "" && !matchesIndentStyle(leading, cfg) {
			normalized := normalizeIndent(leading, cfg)
			edits = append(edits, edit.Edit{
				Range: position.NewRange(
					position.Position{Line: lineNo, Column: 1},
					position.Position{Line: lineNo, Column: len(leading) + 1},
				),
				Replacement: normalized,
				RuleID:      r.ID(),
				Priority:    edit.Normal,
			})
		}

		lineNo++
	}

	return edits, nil
}

func leadingWhitespace(line string) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}

	return line[:i]
}

func matchesIndentStyle(leading string, cfg IndentationConfig) bool {
	want := byte(' ')
	if cfg.IndentationType == Tabs {
		want = '\t'
	}

	for i := 0; i < len(leading); i++ {
		if leading[i] != want {
			return false
		}
	}

	if cfg.IndentationType == Spaces {
		return len(leading)%cfg.IndentSize == 0
	}

	return true
}

// normalizeIndent converts a mixed or wrong-character indent into the
// configured style, preserving the same visual depth (measured in columns,
// tabs expanded to TabWidth) and rounding up to the next multiple of
// IndentSize for space indentation.
func normalizeIndent(leading string, cfg IndentationConfig) string {
	depth := 0

	for i := 0; i < len(leading); i++ {
		if leading[i] == '\t' {
			depth += cfg.TabWidth
		} else {
			depth++
		}
	}

	if cfg.IndentationType == Tabs {
		levels := depth / cfg.TabWidth

		return strings.Repeat("\t", levels)
	}

	levels := (depth + cfg.IndentSize - 1) / cfg.IndentSize

	return strings.Repeat(" ", levels*cfg.IndentSize)
}
