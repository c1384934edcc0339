package edit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styler-dev/styler/pkg/edit"
	"github.com/styler-dev/styler/pkg/position"
)

func pos(line, col int) position.Position { return position.Position{Line: line, Column: col} }

func rng(startLine, startCol, endLine, endCol int) position.Range {
	return position.NewRange(pos(startLine, startCol), pos(endLine, endCol))
}

func TestResolveHigherPriorityWins(t *testing.T) {
	low := edit.Edit{Range: rng(1, 1, 1, 5), Replacement: "a", RuleID: "r1", Priority: edit.Low}
	high := edit.Edit{Range: rng(1, 3, 1, 8), Replacement: "b", RuleID: "r2", Priority: edit.High}

	resolved, warnings := edit.Resolve([]edit.Edit{low, high})

	require.Len(t, resolved, 1)
	assert.Equal(t, "r2", resolved[0].RuleID)
	assert.Empty(t, warnings)
}

func TestResolveBroaderRangeWinsOnTie(t *testing.T) {
	broad := edit.Edit{Range: rng(1, 1, 1, 20), Replacement: "broad", RuleID: "r1", Priority: edit.Normal}
	narrow := edit.Edit{Range: rng(1, 5, 1, 10), Replacement: "narrow", RuleID: "r2", Priority: edit.Normal}

	resolved, warnings := edit.Resolve([]edit.Edit{narrow, broad})

	require.Len(t, resolved, 1)
	assert.Equal(t, "r1", resolved[0].RuleID)
	assert.Empty(t, warnings)
}

func TestResolveCrossingTieEmitsConflictWarning(t *testing.T) {
	first := edit.Edit{Range: rng(1, 1, 1, 10), Replacement: "a", RuleID: "r1", Priority: edit.Normal}
	second := edit.Edit{Range: rng(1, 5, 1, 15), Replacement: "b", RuleID: "r2", Priority: edit.Normal}

	resolved, warnings := edit.Resolve([]edit.Edit{first, second})

	require.Len(t, resolved, 1)
	assert.Equal(t, "r1", resolved[0].RuleID)
	require.Len(t, warnings, 1)
	assert.Equal(t, "r2", warnings[0].Dropped.RuleID)
}

func TestResolveNonOverlappingEditsBothSurvive(t *testing.T) {
	first := edit.Edit{Range: rng(1, 1, 1, 5), Replacement: "a", RuleID: "r1", Priority: edit.Normal}
	second := edit.Edit{Range: rng(2, 1, 2, 5), Replacement: "b", RuleID: "r2", Priority: edit.Normal}

	resolved, warnings := edit.Resolve([]edit.Edit{second, first})

	require.Len(t, resolved, 2)
	assert.Empty(t, warnings)
}

func TestApplySingleLineReplacement(t *testing.T) {
	source := []byte("int x=1;\n")
	resolved := edit.ResolvedSet{
		{Range: rng(1, 6, 1, 7), Replacement: " = ", RuleID: "whitespace", Priority: edit.Normal},
	}

	out := edit.Apply(source, resolved)
	assert.Equal(t, "int x = 1;\n", string(out))
}

func TestApplyInsertionAtSamePosition(t *testing.T) {
	source := []byte("public void m(){}\n")
	resolved := edit.ResolvedSet{
		{Range: rng(1, 16, 1, 16), Replacement: "\n", RuleID: "brace", Priority: edit.High},
	}

	out := edit.Apply(source, resolved)
	assert.Equal(t, "public void m()\n{}\n", string(out))
}

func TestApplyMultipleEditsReverseOrderPreservesOffsets(t *testing.T) {
	source := []byte("a,b,c\n")
	resolved := edit.ResolvedSet{
		{Range: rng(1, 3, 1, 3), Replacement: " ", RuleID: "comma", Priority: edit.Normal},
		{Range: rng(1, 5, 1, 5), Replacement: " ", RuleID: "comma", Priority: edit.Normal},
	}

	out := edit.Apply(source, resolved)
	assert.Equal(t, "a, b, c\n", string(out))
}
