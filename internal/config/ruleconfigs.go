package config

import (
	"github.com/styler-dev/styler/pkg/rules"
	"github.com/styler-dev/styler/pkg/rules/builtin"
)

// ToRuleConfigs converts the decoded Config into the []rules.Config list the
// rule engine's FindConfig consults. Zero-valued line-length, brace-style and
// indentation sections are skipped so those rules fall back to their own
// built-in defaults, mirroring the "zero means use the default" convention the
// engine already follows for its DefaultXConfig values. The whitespace and
// import-organization configs are always appended, built directly from the
// section's boolean fields.
func (c *Config) ToRuleConfigs() []rules.Config {
	configs := make([]rules.Config, 0, 5)

	if c.LineLength.MaxLineLength > 0 {
		cfg := builtin.DefaultLineLengthConfig
		cfg.MaxLineLength = c.LineLength.MaxLineLength

		if c.LineLength.ContinuationIndent > 0 {
			cfg.ContinuationIndent = c.LineLength.ContinuationIndent
		}

		configs = append(configs, cfg)
	}

	if c.BraceStyle.Style != "" {
		cfg := builtin.DefaultBraceStyleConfig
		cfg.Style = braceStyleFromString(c.BraceStyle.Style)
		configs = append(configs, cfg)
	}

	if c.Indentation.Type != "" || c.Indentation.IndentSize > 0 {
		cfg := builtin.DefaultIndentationConfig

		if c.Indentation.Type != "" {
			cfg.IndentationType = indentationTypeFromString(c.Indentation.Type)
		}

		if c.Indentation.IndentSize > 0 {
			cfg.IndentSize = c.Indentation.IndentSize
		}

		if c.Indentation.ContinuationMultiplier > 0 {
			cfg.ContinuationMultiplier = c.Indentation.ContinuationMultiplier
		}

		if c.Indentation.TabWidth > 0 {
			cfg.TabWidth = c.Indentation.TabWidth
		}

		configs = append(configs, cfg)
	}

	configs = append(configs, builtin.WhitespaceConfig{
		AroundOperators: c.Whitespace.AroundOperators,
		AfterComma:      c.Whitespace.AfterComma,
	})

	configs = append(configs, builtin.ImportOrganizationConfig{
		ExpandWildcards: c.Imports.ExpandWildcards,
	})

	return configs
}

func braceStyleFromString(style string) builtin.BraceStyle {
	if style == "new-line" {
		return builtin.NewLine
	}

	return builtin.SameLine
}

func indentationTypeFromString(kind string) builtin.IndentationType {
	if kind == "tabs" {
		return builtin.Tabs
	}

	return builtin.Spaces
}

// EnabledRuleSet returns the map[string]bool the pipeline's Runner expects
// for enabledRules, derived from Rules.Enabled/Rules.Disabled. An empty
// Enabled list means "every known rule", matching the registry's own
// deterministic full-run default.
func (c *Config) EnabledRuleSet() map[string]bool {
	enabled := make(map[string]bool, len(knownRuleIDs))

	if len(c.Rules.Enabled) == 0 {
		for id := range knownRuleIDs {
			enabled[id] = true
		}
	} else {
		for _, id := range c.Rules.Enabled {
			enabled[id] = true
		}
	}

	for _, id := range c.Rules.Disabled {
		delete(enabled, id)
	}

	return enabled
}
