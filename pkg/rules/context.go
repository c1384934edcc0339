package rules

import (
	"context"
	"errors"
	"strings"

	"github.com/styler-dev/styler/pkg/ast"
)

// ErrDeadlineExceeded is raised by TransformationContext.CheckDeadline when
// the deadline of the context passed to NewTransformationContext has
// passed. No separate per-rule or per-file bound is applied. Rules must
// propagate it rather than swallow it.
var ErrDeadlineExceeded = errors.New("rules: deadline exceeded")

// TransformationContext is passed to every Rule invocation for one file. It
// exposes the source text, the parsed arena, line/column lookup, and
// cooperative cancellation, but no mutable rule-private state: rules must
// be stateless across files, matching the concurrency model's "workers
// share nothing but atomics" guarantee.
type TransformationContext struct {
	ctx          context.Context //nolint:containedctx // deadline propagation follows the Go std idiom for cooperative cancellation
	FilePath     string
	Source       []byte
	Arena        *ast.Arena
	Root         ast.NodeIndex
	EnabledRules map[string]bool
	lineStarts   []int
}

// NewTransformationContext builds a context for one file's rule run. ctx
// carries the batch's global deadline; CheckDeadline consults it.
func NewTransformationContext(
	ctx context.Context, filePath string, source []byte, arena *ast.Arena, root ast.NodeIndex, enabled map[string]bool,
) *TransformationContext {
	return &TransformationContext{
		ctx:          ctx,
		FilePath:     filePath,
		Source:       source,
		Arena:        arena,
		Root:         root,
		EnabledRules: enabled,
		lineStarts:   computeLineStarts(source),
	}
}

// CheckDeadline returns ErrDeadlineExceeded if the context's deadline has
// passed. Every rule's analyze/format loop must call this at least once
// per outer iteration and abort cleanly when it returns non-nil.
func (t *TransformationContext) CheckDeadline() error {
	select {
	case <-t.ctx.Done():
		return ErrDeadlineExceeded
	default:
		return nil
	}
}

// GetLineNumber returns the 1-based line number containing byte offset.
func (t *TransformationContext) GetLineNumber(offset int) int {
	line := 1

	for i := 1; i < len(t.lineStarts); i++ {
		if t.lineStarts[i] > offset {
			break
		}

		line++
	}

	return line
}

// GetColumnNumber returns the 1-based column number of byte offset within
// its line.
func (t *TransformationContext) GetColumnNumber(offset int) int {
	line := t.GetLineNumber(offset)

	return offset - t.lineStarts[line-1] + 1
}

// IsRuleEnabled reports whether ruleID is in the enabled set.
func (t *TransformationContext) IsRuleEnabled(ruleID string) bool {
	return t.EnabledRules[ruleID]
}

func computeLineStarts(source []byte) []int {
	starts := []int{0}

	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}

	return starts
}

// FindConfig returns the first configuration of the requested type in
// configs, or def if none matches. This lets rules accept a heterogeneous
// configuration list without coupling to its ordering.
func FindConfig[T Config](configs []Config, def T) T {
	want := def.Type()

	for _, c := range configs {
		if typed, ok := c.(T); ok && strings.EqualFold(typed.Type(), want) {
			return typed
		}
	}

	return def
}
