package edit

import (
	"bytes"
	"sort"

	"github.com/styler-dev/styler/pkg/position"
)

// Apply renders a resolved edit set against source. Byte offsets for every
// edit's Range are computed up front from the original, unmodified source;
// edits are then spliced in descending order of Range.Start so that an
// edit further left is never applied against offsets a rightward edit has
// already shifted — the same reverse-application discipline the resolver's
// contract requires. Grounded on the wharflab fixer's applyFixesToFile,
// adapted from a line-rebuild to a direct byte-offset splice.
func Apply(source []byte, resolved ResolvedSet) []byte {
	if len(resolved) == 0 {
		return append([]byte(nil), source...)
	}

	lineStarts := lineStartOffsets(source)

	ordered := make([]Edit, len(resolved))
	copy(ordered, resolved)
	sort.Slice(ordered, func(i, j int) bool { return ordered[j].Less(ordered[i]) })

	out := append([]byte(nil), source...)

	for _, e := range ordered {
		start := clampOffset(toByteOffset(lineStarts, len(source), e.Range.Start))
		end := clampOffset(toByteOffset(lineStarts, len(source), e.Range.End))

		if end < start {
			end = start
		}

		var next bytes.Buffer
		next.Grow(len(out) - (end - start) + len(e.Replacement))
		next.Write(out[:start])
		next.WriteString(e.Replacement)
		next.Write(out[end:])
		out = next.Bytes()
	}

	return out
}

// lineStartOffsets returns the byte offset at which each 1-based source
// line begins. lineStartOffsets(src)[0] is always 0 (line 1 starts at the
// buffer's start).
func lineStartOffsets(source []byte) []int {
	starts := []int{0}

	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}

	return starts
}

// toByteOffset converts a 1-based (line, column) position into a byte
// offset, clamping a column that runs past its line's actual length
// (e.g. an edit's End sitting exactly at end-of-file with no trailing
// newline).
func toByteOffset(lineStarts []int, sourceLen int, pos position.Position) int {
	line := pos.Line - 1
	if line < 0 {
		line = 0
	}

	if line >= len(lineStarts) {
		return sourceLen
	}

	offset := lineStarts[line] + (pos.Column - 1)
	if line+1 < len(lineStarts) && offset > lineStarts[line+1] {
		offset = lineStarts[line+1]
	}

	if offset > sourceLen {
		offset = sourceLen
	}

	return offset
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}

	return offset
}
