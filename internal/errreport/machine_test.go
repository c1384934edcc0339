package errreport_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styler-dev/styler/internal/errreport"
)

func TestMachineRendererProducesErrorReportEnvelope(t *testing.T) {
	t.Parallel()

	diagnostics := []errreport.Diagnostic{
		{Category: errreport.Format, Severity: errreport.Warning, File: "Main.java", Line: 3, Column: 2, Message: "brace on new line"},
	}

	var buf bytes.Buffer

	require.NoError(t, errreport.MachineRenderer{}.Render(&buf, diagnostics))

	var decoded map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "error-report", decoded["type"])

	entries, ok := decoded["diagnostics"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)

	entry, ok := entries[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "FORMAT", entry["category"])
	assert.Equal(t, "WARNING", entry["severity"])
	assert.Equal(t, "Main.java", entry["file"])
	assert.InDelta(t, 3, entry["line"], 0)
	assert.InDelta(t, 2, entry["column"], 0)
}

func TestMachineRendererOmitsEmptySuggestedFix(t *testing.T) {
	t.Parallel()

	diagnostics := []errreport.Diagnostic{{File: "Main.java", Message: "oops"}}

	var buf bytes.Buffer

	require.NoError(t, errreport.MachineRenderer{}.Render(&buf, diagnostics))
	assert.NotContains(t, buf.String(), "suggested_fix")
}

func TestMachineRendererEmptyDiagnosticsYieldsEmptyArray(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, errreport.MachineRenderer{}.Render(&buf, nil))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	entries, ok := decoded["diagnostics"].([]any)
	require.True(t, ok)
	assert.Empty(t, entries)
}
