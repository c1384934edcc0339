package errreport_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styler-dev/styler/internal/errreport"
)

func TestHumanRendererWritesOneLinePerDiagnostic(t *testing.T) {
	t.Parallel()

	diagnostics := []errreport.Diagnostic{
		{Category: errreport.Format, Severity: errreport.Warning, File: "Main.java", Line: 3, Column: 2, Message: "brace on new line"},
		{Category: errreport.Parse, Severity: errreport.Error, File: "Bad.java", Message: "unexpected token"},
	}

	var buf bytes.Buffer

	r := errreport.HumanRenderer{NoColor: true}
	require.NoError(t, r.Render(&buf, diagnostics))

	out := buf.String()
	assert.Contains(t, out, "Main.java:3:2: WARNING [FORMAT] brace on new line")
	assert.Contains(t, out, "Bad.java: ERROR [PARSE] unexpected token")
}

func TestHumanRendererIncludesSuggestedFix(t *testing.T) {
	t.Parallel()

	diagnostics := []errreport.Diagnostic{
		{File: "Main.java", Line: 1, Column: 1, Message: "bad indent", SuggestedFix: "    "},
	}

	var buf bytes.Buffer

	r := errreport.HumanRenderer{NoColor: true}
	require.NoError(t, r.Render(&buf, diagnostics))

	assert.Contains(t, buf.String(), "suggested fix:")
}

func TestHumanRendererEmptyProducesNoOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r := errreport.HumanRenderer{NoColor: true}
	require.NoError(t, r.Render(&buf, nil))
	assert.Empty(t, buf.String())
}
