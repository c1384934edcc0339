package builtin

import (
	"github.com/styler-dev/styler/pkg/edit"
	"github.com/styler-dev/styler/pkg/position"
	"github.com/styler-dev/styler/pkg/rules"
)

// WhitespaceRule enforces a single space after binary operators and after
// commas, outside literals and comments. The character before an operator
// is not checked.
type WhitespaceRule struct{}

// ID implements rules.Rule.
func (WhitespaceRule) ID() string { return "whitespace" }

// Name implements rules.Rule.
func (WhitespaceRule) Name() string { return "Whitespace" }

// Description implements rules.Rule.
func (WhitespaceRule) Description() string {
	return "enforces spacing around operators and after commas"
}

// DefaultSeverity implements rules.Rule.
func (WhitespaceRule) DefaultSeverity() rules.Severity { return rules.Info }

// Analyze implements rules.Rule.
func (r WhitespaceRule) Analyze(ctx *rules.TransformationContext, configs []rules.Config) ([]rules.Violation, error) {
	cfg := rules.FindConfig[WhitespaceConfig](configs, DefaultWhitespaceConfig)
	bitmap := buildLiteralSpanBitmap(ctx.Source)

	var violations []rules.Violation

	for _, spot := range findWhitespaceSpots(ctx.Source, bitmap, cfg) {
		if err := ctx.CheckDeadline(); err != nil {
			return violations, err
		}

		line := ctx.GetLineNumber(spot.offset)
		col := ctx.GetColumnNumber(spot.offset)
		violations = append(violations, rules.Violation{
			RuleID:   r.ID(),
			Severity: r.DefaultSeverity(),
			Message:  spot.message,
			FilePath: ctx.FilePath,
			Range: position.NewRange(
				position.Position{Line: line, Column: col},
				position.Position{Line: line, Column: col + 1},
			),
		})
	}

	return violations, nil
}

// Format implements rules.Rule.
func (r WhitespaceRule) Format(ctx *rules.TransformationContext, configs []rules.Config) ([]edit.Edit, error) {
	cfg := rules.FindConfig[WhitespaceConfig](configs, DefaultWhitespaceConfig)
	bitmap := buildLiteralSpanBitmap(ctx.Source)

	var edits []edit.Edit

	for _, spot := range findWhitespaceSpots(ctx.Source, bitmap, cfg) {
		if err := ctx.CheckDeadline(); err != nil {
			return edits, err
		}

		line := ctx.GetLineNumber(spot.offset)
		col := ctx.GetColumnNumber(spot.offset)
		edits = append(edits, edit.Edit{
			Range: position.NewRange(
				position.Position{Line: line, Column: col + 1},
				position.Position{Line: line, Column: col + 1},
			),
			Replacement: " ",
			RuleID:      r.ID(),
			Priority:    edit.Low,
		})
	}

	return edits, nil
}

type whitespaceSpot struct {
	offset  int
	message string
}

var binaryOperators = []byte{'+', '-', '*', '/', '=', '<', '>'}

func findWhitespaceSpots(source []byte, bitmap literalSpanBitmap, cfg WhitespaceConfig) []whitespaceSpot {
	var spots []whitespaceSpot

	for i, b := range source {
		if bitmap.at(i) {
			continue
		}

		switch {
		case cfg.AfterComma && b == ',' && i+1 < len(source) && source[i+1] != ' ' && source[i+1] != '\n':
			spots = append(spots, whitespaceSpot{offset: i, message: "missing space after comma"})
		case cfg.AroundOperators && isBinaryOperator(b) && i+1 < len(source) && source[i+1] != ' ' && source[i+1] != '=' && source[i+1] != '\n':
			spots = append(spots, whitespaceSpot{offset: i, message: "missing space after operator"})
		}
	}

	return spots
}

func isBinaryOperator(b byte) bool {
	for _, op := range binaryOperators {
		if b == op {
			return true
		}
	}

	return false
}
