package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/styler-dev/styler/internal/config"
	"github.com/styler-dev/styler/internal/observability"
	"github.com/styler-dev/styler/pkg/classpath"
	"github.com/styler-dev/styler/pkg/parser"
	"github.com/styler-dev/styler/pkg/pipeline"
	"github.com/styler-dev/styler/pkg/rules"
	"github.com/styler-dev/styler/pkg/rules/builtin"
)

// batchRuntime bundles everything a format/check run needs: the loaded
// config, a fully populated rule registry, a ready parser, and live
// observability providers. Built once per invocation and threaded through
// pkg/executor.
type batchRuntime struct {
	cfg          *config.Config
	registry     *rules.Registry
	parser       *parser.Parser
	configs      []rules.Config
	enabledRules map[string]bool
	providers    observability.Providers
}

// newBatchRuntime loads configuration, builds the classpath probe rooted
// at roots, registers every builtin rule, starts a parser, and initializes
// observability for the given application mode.
func newBatchRuntime(configPath string, roots []string, mode observability.AppMode) (*batchRuntime, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	probe, err := classpath.New(roots)
	if err != nil {
		return nil, fmt.Errorf("build classpath probe: %w", err)
	}

	registry, err := buildRegistry(builtin.ImportOrganizationRule{Classpath: probe})
	if err != nil {
		return nil, err
	}

	p, err := parser.New()
	if err != nil {
		return nil, fmt.Errorf("init parser: %w", err)
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = os.Getenv("STYLER_OTLP_ENDPOINT")

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	return &batchRuntime{
		cfg:          cfg,
		registry:     registry,
		parser:       p,
		configs:      cfg.ToRuleConfigs(),
		enabledRules: cfg.EnabledRuleSet(),
		providers:    providers,
	}, nil
}

// collaborators builds the pipeline.Collaborators this runtime's parser
// and registry feed into, with a plain os.ReadFile/os.WriteFile disk
// reader/writer — the same collaborator shape the MCP server uses, so a
// format run and an MCP format_file call of the same file agree. observer
// may be nil, in which case the pipeline falls back to its own no-op.
func (rt *batchRuntime) collaborators(observer pipeline.ProgressObserver) pipeline.Collaborators {
	return pipeline.Collaborators{
		Reader:   readFile,
		Parser:   rt.parser,
		Registry: rt.registry,
		Writer:   writeFile,
		Observer: observer,
	}
}

func readFile(_ context.Context, filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // filePath comes from discoverFiles' own filesystem walk
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}

	return data, nil
}

func writeFile(_ context.Context, filePath string, formatted []byte) error {
	if err := os.WriteFile(filePath, formatted, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", filePath, err)
	}

	return nil
}

func rootsFromFiles(files []string) []string {
	seen := make(map[string]bool)

	var roots []string

	for _, f := range files {
		dir := filepath.Dir(f)
		if !seen[dir] {
			seen[dir] = true

			roots = append(roots, dir)
		}
	}

	return roots
}
