// Package rules implements the rule engine: a registry of stateless
// Rules, each consulted in deterministic order, producing violations
// (analyze) and/or edits (format) over a shared TransformationContext.
package rules

import (
	"github.com/styler-dev/styler/pkg/edit"
	"github.com/styler-dev/styler/pkg/position"
)

// Severity classifies a FormattingViolation.
type Severity int

// Severity levels.
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

// Violation is a diagnostic produced by a rule's analyze pass. It carries
// diagnostic metadata, never a mutation — edits come from format.
type Violation struct {
	RuleID       string
	Severity     Severity
	Message      string
	FilePath     string
	Range        position.Range
	SuggestedFix *edit.Edit
}

// Rule is implemented by every formatting/analysis rule. Rules are
// stateless: any state they need lives in the TransformationContext or in
// the Config passed to them. id determines the engine's deterministic
// execution order.
type Rule interface {
	ID() string
	Name() string
	Description() string
	DefaultSeverity() Severity
	Analyze(ctx *TransformationContext, configs []Config) ([]Violation, error)
	Format(ctx *TransformationContext, configs []Config) ([]edit.Edit, error)
}

// Config is implemented by every rule configuration record. Type() names
// the configuration's kind for FindConfig's heterogeneous lookup.
type Config interface {
	Type() string
}
