package rules

import (
	"fmt"
	"sort"

	"github.com/styler-dev/styler/pkg/edit"
)

// Registry holds the set of rules available to the engine, run in
// deterministic order (ascending by ID) regardless of registration order.
type Registry struct {
	rules map[string]Rule
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register adds a rule, erroring if its ID collides with an existing one.
func (r *Registry) Register(rule Rule) error {
	if _, exists := r.rules[rule.ID()]; exists {
		return fmt.Errorf("rules: duplicate rule id %q", rule.ID())
	}

	r.rules[rule.ID()] = rule

	return nil
}

// Ordered returns every registered rule, sorted by ID ascending — the
// engine-defined deterministic execution order.
func (r *Registry) Ordered() []Rule {
	ordered := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		ordered = append(ordered, rule)
	}

	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID() < ordered[j].ID() })

	return ordered
}

// Enabled returns the ordered rules whose ID is enabled in ctx.
func (r *Registry) Enabled(ctx *TransformationContext) []Rule {
	all := r.Ordered()
	enabled := make([]Rule, 0, len(all))

	for _, rule := range all {
		if ctx.IsRuleEnabled(rule.ID()) {
			enabled = append(enabled, rule)
		}
	}

	return enabled
}

// RunAnalyze runs every enabled rule's Analyze independently and
// concatenates the resulting violations, in rule-id order.
func (r *Registry) RunAnalyze(ctx *TransformationContext, configs []Config) ([]Violation, error) {
	var violations []Violation

	for _, rule := range r.Enabled(ctx) {
		if err := ctx.CheckDeadline(); err != nil {
			return violations, err
		}

		v, err := rule.Analyze(ctx, configs)
		if err != nil {
			return violations, fmt.Errorf("rule %s: analyze: %w", rule.ID(), err)
		}

		violations = append(violations, v...)
	}

	return violations, nil
}

// RunFormat runs every enabled rule's Format and feeds all resulting edit
// sets to the resolver together in a single pass — not applied
// sequentially — so that one rule's edits never see another's already
// rewritten offsets.
func (r *Registry) RunFormat(ctx *TransformationContext, configs []Config) (edit.ResolvedSet, []edit.ConflictWarning, error) {
	var all []edit.Edit

	for _, rule := range r.Enabled(ctx) {
		if err := ctx.CheckDeadline(); err != nil {
			return nil, nil, err
		}

		edits, err := rule.Format(ctx, configs)
		if err != nil {
			return nil, nil, fmt.Errorf("rule %s: format: %w", rule.ID(), err)
		}

		all = append(all, edits...)
	}

	resolved, warnings := edit.Resolve(all)

	return resolved, warnings, nil
}
