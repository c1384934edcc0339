package edit

import "sort"

// ResolvedSet is a non-overlapping, start-ascending sequence of edits,
// the output of Resolve.
type ResolvedSet []Edit

// Resolve merges a rule run's unordered edit list into a non-overlapping
// set, per the conflict-resolution rule:
//
//  1. Sort by (range.start, range.end).
//  2. Scan linearly; for each pair of overlapping edits, higher priority
//     wins; on a priority tie, the strictly broader range wins; on a tie
//     with neither containing the other, the earlier-sorted edit wins and
//     a ConflictWarning is emitted naming both rule ids.
//  3. The surviving set is non-overlapping by construction.
//
// Determinism: the same input always produces the same output, since the
// sort is total (position.Range.Compare never returns "equal but
// different") and every tie-break is itself deterministic.
func Resolve(edits []Edit) (ResolvedSet, []ConflictWarning) {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	var kept []Edit

	var warnings []ConflictWarning

	for _, candidate := range sorted {
		conflictAt := -1

		for i, k := range kept {
			if candidate.Overlaps(k) {
				conflictAt = i

				break
			}
		}

		if conflictAt == -1 {
			kept = append(kept, candidate)

			continue
		}

		resolved, warning := resolvePair(kept[conflictAt], candidate)
		kept[conflictAt] = resolved

		if warning != nil {
			warnings = append(warnings, *warning)
		}
	}

	return kept, warnings
}

// resolvePair decides which of two overlapping edits survives. first is
// the edit already kept (sorts no later than second, since second is
// drawn from the sorted scan after first was kept).
func resolvePair(first, second Edit) (Edit, *ConflictWarning) {
	switch {
	case second.Priority > first.Priority:
		return second, nil
	case second.Priority < first.Priority:
		return first, nil
	case first.Range.StrictlyContains(second.Range):
		return first, nil
	case second.Range.StrictlyContains(first.Range):
		return second, nil
	default:
		return first, &ConflictWarning{Kept: first, Dropped: second}
	}
}
