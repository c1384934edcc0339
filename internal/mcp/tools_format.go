package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/styler-dev/styler/pkg/pipeline"
)

func diskReader(_ context.Context, filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // path is the tool's own validated input
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}

	return data, nil
}

func diskWriter(_ context.Context, filePath string, formatted []byte) error {
	if err := os.WriteFile(filePath, formatted, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", filePath, err)
	}

	return nil
}

func (s *Server) runner(writeOutput bool) *pipeline.Runner {
	writer := pipeline.Writer(func(context.Context, string, []byte) error { return nil })
	if writeOutput {
		writer = diskWriter
	}

	return pipeline.NewRunner(pipeline.Collaborators{
		Reader:   diskReader,
		Parser:   s.deps.Parser,
		Registry: s.deps.Registry,
		Writer:   writer,
	}, nil)
}

func violationStrings(outcome pipeline.FileOutcome) []string {
	out := make([]string, 0, len(outcome.Violations))

	for _, v := range outcome.Violations {
		out = append(out, fmt.Sprintf("%s:%d:%d: %s [%s] %s",
			v.FilePath, v.Range.Start.Line, v.Range.Start.Column, v.Severity, v.RuleID, v.Message))
	}

	return out
}

func (s *Server) handleFormatFile(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input FormatFileInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validatePathInput(input.Path, filepath.IsAbs); err != nil {
		return errorResult(err)
	}

	outcome := s.runner(true).Run(ctx, input.Path, s.deps.EnabledRules, s.deps.Configs, true)
	if outcome.Err != nil {
		return errorResult(fmt.Errorf("format %s: %s", input.Path, outcome.Err.Message))
	}

	return jsonResult(FormatFileOutput{
		Formatted:  string(outcome.Formatted),
		Violations: violationStrings(outcome),
	})
}

func (s *Server) handleCheckFile(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input CheckFileInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validatePathInput(input.Path, filepath.IsAbs); err != nil {
		return errorResult(err)
	}

	outcome := s.runner(false).Run(ctx, input.Path, s.deps.EnabledRules, s.deps.Configs, false)
	if outcome.Err != nil {
		return errorResult(fmt.Errorf("check %s: %s", input.Path, outcome.Err.Message))
	}

	return jsonResult(CheckFileOutput{Violations: violationStrings(outcome)})
}

func (s *Server) handleListRules(
	_ context.Context, _ *mcpsdk.CallToolRequest, _ ListRulesInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	infos := make([]RuleInfo, 0, len(s.deps.Registry.Ordered()))

	for _, rule := range s.deps.Registry.Ordered() {
		infos = append(infos, RuleInfo{
			ID:              rule.ID(),
			Name:            rule.Name(),
			Description:     rule.Description(),
			DefaultSeverity: rule.DefaultSeverity().String(),
		})
	}

	return jsonResult(ListRulesOutput{Rules: infos})
}
