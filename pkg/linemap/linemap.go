// Package linemap provides the bidirectional original/formatted line
// correspondence produced by the emit stage.
package linemap

// LineMapping is an immutable bidirectional map between original and
// formatted 1-based line numbers. A deleted original line has no entry in
// toFormatted; a newly inserted formatted line has no entry in toOriginal.
type LineMapping struct {
	toFormatted        map[int]int
	toOriginal         map[int]int
	originalLineCount  int
	formattedLineCount int
}

// Builder accumulates line correspondences while an emit stage walks the
// resolved edit set line by line, then produces an immutable LineMapping.
type Builder struct {
	toFormatted map[int]int
	toOriginal  map[int]int
}

// NewBuilder starts an empty line-mapping builder.
func NewBuilder() *Builder {
	return &Builder{
		toFormatted: make(map[int]int),
		toOriginal:  make(map[int]int),
	}
}

// Map records that original line origLine survives as formatted line
// fmtLine. A line that is deleted (no surviving formatted counterpart) or
// newly inserted (no original counterpart) is simply never passed here for
// that side.
func (b *Builder) Map(origLine, fmtLine int) *Builder {
	b.toFormatted[origLine] = fmtLine
	b.toOriginal[fmtLine] = origLine

	return b
}

// Build finalizes the mapping. originalLineCount and formattedLineCount are
// the total line counts of the two buffers, independent of how many lines
// actually correspond.
func (b *Builder) Build(originalLineCount, formattedLineCount int) LineMapping {
	return LineMapping{
		toFormatted:        copyMap(b.toFormatted),
		toOriginal:         copyMap(b.toOriginal),
		originalLineCount:  originalLineCount,
		formattedLineCount: formattedLineCount,
	}
}

func copyMap(m map[int]int) map[int]int {
	out := make(map[int]int, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

// Identity builds a LineMapping where every line maps to itself — the
// trivial case of a file with no line-count-changing edits.
func Identity(lineCount int) LineMapping {
	b := NewBuilder()
	for i := 1; i <= lineCount; i++ {
		b.Map(i, i)
	}

	return b.Build(lineCount, lineCount)
}

// ToFormatted returns the formatted line corresponding to origLine, or
// (0, false) if origLine was deleted.
func (m LineMapping) ToFormatted(origLine int) (int, bool) {
	line, ok := m.toFormatted[origLine]

	return line, ok
}

// ToOriginal returns the original line corresponding to fmtLine, or
// (0, false) if fmtLine was newly inserted.
func (m LineMapping) ToOriginal(fmtLine int) (int, bool) {
	line, ok := m.toOriginal[fmtLine]

	return line, ok
}

// OriginalLineCount returns the original buffer's total line count.
func (m LineMapping) OriginalLineCount() int { return m.originalLineCount }

// FormattedLineCount returns the formatted buffer's total line count.
func (m LineMapping) FormattedLineCount() int { return m.formattedLineCount }

// LineDelta is formattedLineCount - originalLineCount.
func (m LineMapping) LineDelta() int { return m.formattedLineCount - m.originalLineCount }
