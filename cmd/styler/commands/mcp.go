package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/styler-dev/styler/internal/mcp"
	"github.com/styler-dev/styler/internal/observability"
	"github.com/styler-dev/styler/pkg/classpath"
	"github.com/styler-dev/styler/pkg/parser"
	"github.com/styler-dev/styler/pkg/rules/builtin"
	"github.com/styler-dev/styler/pkg/version"
)

// MCPCmd builds the `styler mcp` subcommand: exposes format_file,
// check_file, and list_rules as MCP tools over stdio for AI-agent
// integration.
func MCPCmd(flags *GlobalFlags) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start an MCP server exposing the formatter as tools",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes styler's formatting engine as tools an AI agent can
discover and invoke:
  - format_file: format a source file on disk and return the result
  - check_file: report violations in a source file without modifying it
  - list_rules: list the registered formatting rules`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			providers, err := initMCPObservability(debug)
			if err != nil {
				return fmt.Errorf("init observability: %w", err)
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			red, redErr := observability.NewREDMetrics(providers.Meter)
			if redErr != nil {
				return fmt.Errorf("init metrics: %w", redErr)
			}

			cfg, err := loadConfig(*flags.ConfigPath)
			if err != nil {
				return err
			}

			probe, err := classpath.New(nil)
			if err != nil {
				return fmt.Errorf("build classpath probe: %w", err)
			}

			registry, err := buildRegistry(builtin.ImportOrganizationRule{Classpath: probe})
			if err != nil {
				return err
			}

			p, err := parser.New()
			if err != nil {
				return fmt.Errorf("init parser: %w", err)
			}

			deps := mcp.ServerDeps{
				Logger:       providers.Logger,
				Metrics:      red,
				Tracer:       providers.Tracer,
				Registry:     registry,
				Parser:       p,
				Configs:      cfg.ToRuleConfigs(),
				EnabledRules: cfg.EnabledRuleSet(),
			}

			srv := mcp.NewServer(deps)

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging to stderr")

	return cmd
}

func initMCPObservability(debug bool) (observability.Providers, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	cfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	cfg.Mode = observability.ModeMCP
	cfg.LogJSON = true

	if debug {
		cfg.LogLevel = slog.LevelDebug
		cfg.DebugTrace = true
	}

	providers, err := observability.Init(cfg)
	if err != nil {
		return providers, fmt.Errorf("init observability: %w", err)
	}

	return providers, nil
}
