// Package builtin implements the engine's reference rule set: line-length
// wrap, brace style, indentation, whitespace, and import organization.
package builtin

// IndentationType selects whether indentation uses tabs or spaces.
type IndentationType int

// Indentation types.
const (
	Spaces IndentationType = iota
	Tabs
)

// BraceStyle selects where an opening brace lands.
type BraceStyle int

// Brace styles.
const (
	SameLine BraceStyle = iota
	NewLine
)

// LineLengthConfig configures the line-length wrap rule.
type LineLengthConfig struct {
	MaxLineLength      int
	ContinuationIndent int
}

// Type implements rules.Config.
func (LineLengthConfig) Type() string { return "line-length" }

// DefaultLineLengthConfig is used when no configuration is supplied.
var DefaultLineLengthConfig = LineLengthConfig{MaxLineLength: 120, ContinuationIndent: 8}

// BraceStyleConfig configures the brace-style rule.
type BraceStyleConfig struct {
	Style BraceStyle
}

// Type implements rules.Config.
func (BraceStyleConfig) Type() string { return "brace-style" }

// DefaultBraceStyleConfig is used when no configuration is supplied.
var DefaultBraceStyleConfig = BraceStyleConfig{Style: SameLine}

// IndentationConfig configures the indentation rule.
type IndentationConfig struct {
	IndentationType        IndentationType
	IndentSize             int
	ContinuationMultiplier int
	TabWidth               int
}

// Type implements rules.Config.
func (IndentationConfig) Type() string { return "indentation" }

// DefaultIndentationConfig is used when no configuration is supplied.
var DefaultIndentationConfig = IndentationConfig{
	IndentationType:        Spaces,
	IndentSize:             4,
	ContinuationMultiplier: 2,
	TabWidth:               4,
}

// WhitespaceConfig configures the whitespace rule.
type WhitespaceConfig struct {
	AroundOperators bool
	AfterComma      bool
}

// Type implements rules.Config.
func (WhitespaceConfig) Type() string { return "whitespace" }

// DefaultWhitespaceConfig is used when no configuration is supplied.
var DefaultWhitespaceConfig = WhitespaceConfig{AroundOperators: true, AfterComma: true}

// ImportOrganizationConfig configures the import-organization rule.
type ImportOrganizationConfig struct {
	ExpandWildcards bool
}

// Type implements rules.Config.
func (ImportOrganizationConfig) Type() string { return "import-organization" }

// DefaultImportOrganizationConfig is used when no configuration is supplied.
var DefaultImportOrganizationConfig = ImportOrganizationConfig{ExpandWildcards: false}
