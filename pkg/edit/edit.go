// Package edit implements the text-edit model and conflict resolver: rules
// propose Edits over the same source, and Resolve merges them into a
// non-overlapping set applied in a single pass.
package edit

import "github.com/styler-dev/styler/pkg/position"

// Priority orders edits when two overlap. Higher wins.
type Priority int

// Priority levels, low to high.
const (
	Low Priority = iota
	Normal
	High
	Critical
)

func (p Priority) String() string {
	switch p {
	case Low:
		return "LOW"
	case Normal:
		return "NORMAL"
	case High:
		return "HIGH"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Edit is an immutable intent to replace a source Range with Replacement.
// An empty Replacement is a deletion; Range.Empty() is an insertion.
type Edit struct {
	Range       position.Range
	Replacement string
	RuleID      string
	Priority    Priority
}

// Compare orders edits by (Range.Start, Range.End), the total order
// required by the text-edit model.
func (e Edit) Compare(other Edit) int {
	return e.Range.Compare(other.Range)
}

// Less reports whether e sorts before other under Compare.
func (e Edit) Less(other Edit) bool {
	return e.Compare(other) < 0
}

// Overlaps reports whether e and other's ranges intersect. Symmetric.
func (e Edit) Overlaps(other Edit) bool {
	return e.Range.Overlaps(other.Range)
}

// ConflictWarning is emitted when two same-priority, non-containing edits
// cross without one being resolvable by range containment.
type ConflictWarning struct {
	Kept    Edit
	Dropped Edit
}
