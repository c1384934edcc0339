// Package commands implements the styler CLI's subcommands: format, check,
// mcp, and report. Each subcommand builds its own rule registry and
// observability providers, then drives the shared pkg/executor batch
// executor (format/check) or internal/mcp server (mcp) over it.
package commands

import (
	"fmt"

	"github.com/styler-dev/styler/internal/config"
	"github.com/styler-dev/styler/pkg/rules"
	"github.com/styler-dev/styler/pkg/rules/builtin"
)

// Exit codes, per the CLI's documented contract: 0 success, 1 formatting
// violations present (check mode), 2 usage error, 3 configuration error,
// 4 I/O/security error, 5 internal error.
const (
	ExitSuccess         = 0
	ExitViolationsFound = 1
	ExitUsageError      = 2
	ExitConfigError     = 3
	ExitIOError         = 4
	ExitInternalError   = 5
)

// GlobalFlags carries the root command's persistent flag values down into
// each subcommand without requiring package-level globals in commands.
type GlobalFlags struct {
	ConfigPath *string
	Quiet      *bool
	Machine    *bool
}

// buildRegistry constructs the rule registry with every builtin rule
// registered, wiring ImportOrganizationRule to the given classpath probe.
func buildRegistry(importRule builtin.ImportOrganizationRule) (*rules.Registry, error) {
	registry := rules.NewRegistry()

	for _, rule := range []rules.Rule{
		builtin.LineLengthRule{},
		builtin.BraceStyleRule{},
		builtin.IndentationRule{},
		builtin.WhitespaceRule{},
		importRule,
	} {
		if err := registry.Register(rule); err != nil {
			return nil, fmt.Errorf("register rule %s: %w", rule.ID(), err)
		}
	}

	return registry, nil
}

// loadConfig loads and validates the styler configuration, wrapping any
// failure with a "load config" prefix. Choosing the exit code is left to the
// caller.
func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}
