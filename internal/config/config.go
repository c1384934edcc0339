// Package config is the concrete implementation of the external
// Configuration collaborator: it loads .styler.toml/.styler.yaml, validates
// the decoded tree, and produces the typed rule configuration list the core
// rule engine consumes.
package config

import (
	"errors"
	"fmt"
)

// Config is the top-level configuration struct for styler.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Rules       RulesConfig       `mapstructure:"rules"`
	LineLength  LineLengthConfig  `mapstructure:"line_length"`
	BraceStyle  BraceStyleConfig  `mapstructure:"brace_style"`
	Indentation IndentationConfig `mapstructure:"indentation"`
	Whitespace  WhitespaceConfig  `mapstructure:"whitespace"`
	Imports     ImportsConfig     `mapstructure:"imports"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	Changed     ChangedConfig     `mapstructure:"changed"`
	Checkpoint  CheckpointConfig  `mapstructure:"checkpoint"`
}

// RulesConfig selects which rules run and at what severity.
type RulesConfig struct {
	Enabled  []string          `mapstructure:"enabled"`
	Disabled []string          `mapstructure:"disabled"`
	Severity map[string]string `mapstructure:"severity"`
}

// LineLengthConfig configures the line-length wrap rule.
type LineLengthConfig struct {
	MaxLineLength      int `mapstructure:"max_line_length"`
	ContinuationIndent int `mapstructure:"continuation_indent"`
}

// BraceStyleConfig configures the brace-style rule.
type BraceStyleConfig struct {
	Style string `mapstructure:"style"` // "same-line" or "new-line"
}

// IndentationConfig configures the indentation rule.
type IndentationConfig struct {
	Type                   string `mapstructure:"type"` // "spaces" or "tabs"
	IndentSize             int    `mapstructure:"indent_size"`
	ContinuationMultiplier int    `mapstructure:"continuation_multiplier"`
	TabWidth               int    `mapstructure:"tab_width"`
}

// WhitespaceConfig configures the whitespace rule.
type WhitespaceConfig struct {
	AroundOperators bool `mapstructure:"around_operators"`
	AfterComma      bool `mapstructure:"after_comma"`
}

// ImportsConfig configures the import-organization rule.
type ImportsConfig struct {
	ExpandWildcards bool `mapstructure:"expand_wildcards"`
}

// PipelineConfig holds batch executor resource knobs.
type PipelineConfig struct {
	Workers int `mapstructure:"workers"`
}

// ChangedConfig holds --changed flag defaults.
type ChangedConfig struct {
	Against          string `mapstructure:"against"`
	IncludeUntracked bool   `mapstructure:"include_untracked"`
}

// CheckpointConfig holds checkpoint/resume settings for a batch run.
type CheckpointConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Dir       string `mapstructure:"dir"`
	Resume    bool   `mapstructure:"resume"`
	ClearPrev bool   `mapstructure:"clear_prev"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("pipeline.workers must be non-negative")
	// ErrInvalidMaxLineLength indicates the max line length is negative.
	ErrInvalidMaxLineLength = errors.New("line_length.max_line_length must be non-negative")
	// ErrInvalidContinuationIndent indicates the continuation indent is negative.
	ErrInvalidContinuationIndent = errors.New("line_length.continuation_indent must be non-negative")
	// ErrInvalidBraceStyle indicates the brace style name is unrecognized.
	ErrInvalidBraceStyle = errors.New("brace_style.style must be \"same-line\" or \"new-line\"")
	// ErrInvalidIndentationType indicates the indentation type name is unrecognized.
	ErrInvalidIndentationType = errors.New("indentation.type must be \"spaces\" or \"tabs\"")
	// ErrInvalidIndentSize indicates the indent size is negative.
	ErrInvalidIndentSize = errors.New("indentation.indent_size must be non-negative")
	// ErrInvalidTabWidth indicates the tab width is negative.
	ErrInvalidTabWidth = errors.New("indentation.tab_width must be non-negative")
	// ErrUnknownRule indicates rules.enabled/disabled names a rule the registry doesn't know.
	ErrUnknownRule = errors.New("rules: unknown rule id")
	// ErrInvalidSeverity indicates rules.severity names a severity level that doesn't exist.
	ErrInvalidSeverity = errors.New("rules.severity: invalid severity level")
)

// knownRuleIDs lists the rule ids internal/config can validate against,
// mirroring pkg/rules/builtin's registered set.
var knownRuleIDs = map[string]bool{
	"line-length":         true,
	"brace-style":         true,
	"indentation":         true,
	"whitespace":          true,
	"import-organization": true,
}

var knownSeverities = map[string]bool{
	"info": true, "warning": true, "error": true,
}

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if err := c.validatePipeline(); err != nil {
		return err
	}

	if err := c.validateRules(); err != nil {
		return err
	}

	if err := c.validateLineLength(); err != nil {
		return err
	}

	if err := c.validateBraceStyle(); err != nil {
		return err
	}

	return c.validateIndentation()
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Workers < 0 {
		return ErrInvalidWorkers
	}

	return nil
}

func (c *Config) validateRules() error {
	for _, id := range c.Rules.Enabled {
		if !knownRuleIDs[id] {
			return fmt.Errorf("%w: %s", ErrUnknownRule, id)
		}
	}

	for _, id := range c.Rules.Disabled {
		if !knownRuleIDs[id] {
			return fmt.Errorf("%w: %s", ErrUnknownRule, id)
		}
	}

	for id, severity := range c.Rules.Severity {
		if !knownRuleIDs[id] {
			return fmt.Errorf("%w: %s", ErrUnknownRule, id)
		}

		if !knownSeverities[severity] {
			return fmt.Errorf("%w: %s", ErrInvalidSeverity, severity)
		}
	}

	return nil
}

func (c *Config) validateLineLength() error {
	if c.LineLength.MaxLineLength < 0 {
		return ErrInvalidMaxLineLength
	}

	if c.LineLength.MaxLineLength == 0 {
		return nil
	}

	if c.LineLength.ContinuationIndent < 0 {
		return ErrInvalidContinuationIndent
	}

	return nil
}

func (c *Config) validateBraceStyle() error {
	switch c.BraceStyle.Style {
	case "", "same-line", "new-line":
		return nil
	default:
		return ErrInvalidBraceStyle
	}
}

func (c *Config) validateIndentation() error {
	switch c.Indentation.Type {
	case "", "spaces", "tabs":
	default:
		return ErrInvalidIndentationType
	}

	if c.Indentation.IndentSize < 0 {
		return ErrInvalidIndentSize
	}

	if c.Indentation.TabWidth < 0 {
		return ErrInvalidTabWidth
	}

	return nil
}
