package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/styler-dev/styler/internal/observability"
	"github.com/styler-dev/styler/pkg/pipeline"
	"github.com/styler-dev/styler/pkg/rules"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "styler"
	// serverVersion is the MCP server implementation version.
	serverVersion = "1.0.0"

	// toolCount is the expected number of registered tools.
	toolCount = 3
)

// ServerDeps holds injectable dependencies for the MCP server. Zero-value
// Logger/Metrics/Tracer use production defaults (slog default, metrics
// disabled, tracing disabled). Registry, Parser, and Configs wire the
// format_file/check_file/list_rules tools to the same pipeline.Runner the
// CLI's format/check commands use, so an MCP-driven format and a CLI-driven
// format of the same file produce byte-identical output.
type ServerDeps struct {
	Logger  *slog.Logger
	Metrics *observability.REDMetrics
	Tracer  trace.Tracer

	Registry     *rules.Registry
	Parser       pipeline.Parser
	Configs      []rules.Config
	EnabledRules map[string]bool
}

// Server wraps the MCP SDK server with styler's tool registrations.
type Server struct {
	inner  *mcpsdk.Server
	mu     sync.RWMutex
	tools  []string
	deps   ServerDeps
	tracer trace.Tracer
}

// NewServer creates a new MCP server with all styler tools registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: serverVersion,
		},
		opts,
	)

	srv := &Server{
		inner:  inner,
		tools:  make([]string, 0, toolCount),
		deps:   deps,
		tracer: deps.Tracer,
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	err := s.inner.Run(ctx, &mcpsdk.StdioTransport{})
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameFormatFile,
		Description: formatFileToolDescription,
	}, withMetrics(s.deps.Metrics, ToolNameFormatFile, withTracing(s.tracer, ToolNameFormatFile, s.handleFormatFile)))
	s.trackTool(ToolNameFormatFile)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameCheckFile,
		Description: checkFileToolDescription,
	}, withMetrics(s.deps.Metrics, ToolNameCheckFile, withTracing(s.tracer, ToolNameCheckFile, s.handleCheckFile)))
	s.trackTool(ToolNameCheckFile)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameListRules,
		Description: listRulesToolDescription,
	}, withMetrics(s.deps.Metrics, ToolNameListRules, withTracing(s.tracer, ToolNameListRules, s.handleListRules)))
	s.trackTool(ToolNameListRules)
}

// mcpSpanPrefix is the prefix for MCP tool span names.
const mcpSpanPrefix = "mcp."

// traceIDMetaKey is the metadata key for trace_id in MCP tool responses.
const traceIDMetaKey = "trace_id"

// withTracing wraps an MCP tool handler to create an OTel span per invocation
// and include trace_id in the response content when sampled.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			traceContent := &mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())}
			result.Content = append(result.Content, traceContent)
		}

		return result, output, err
	}
}

// withMetrics wraps an MCP tool handler to record RED metrics per invocation.
func withMetrics[Input any](
	metrics *observability.REDMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		decInflight := metrics.TrackInflight(ctx, "mcp."+toolName)
		defer decInflight()

		result, output, err := handler(ctx, req, input)

		status := "ok"
		if err != nil || (result != nil && result.IsError) {
			status = "error"
		}

		metrics.RecordRequest(ctx, "mcp."+toolName, status, time.Since(start))

		return result, output, err
	}
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

// Tool description constants.
const (
	formatFileToolDescription = "Format a source file on disk according to the configured rule set " +
		"(line length, brace style, indentation, whitespace, import organization) and return the " +
		"formatted text and any violations found along the way."

	checkFileToolDescription = "Check a source file on disk against the configured rule set without " +
		"modifying it, returning the violations found."

	listRulesToolDescription = "List the formatting rules registered in the engine, including each " +
		"rule's id, name, description, and default severity."
)
