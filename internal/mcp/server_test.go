package mcp_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styler-dev/styler/internal/mcp"
	"github.com/styler-dev/styler/pkg/rules"
)

func TestNewServer_ReturnsNonNil(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{Registry: rules.NewRegistry()})
	require.NotNil(t, srv)
}

func TestNewServer_ToolsRegistered(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{Registry: rules.NewRegistry()})

	tools := srv.ListToolNames()
	assert.Len(t, tools, 3)
	assert.Contains(t, tools, "format_file")
	assert.Contains(t, tools, "check_file")
	assert.Contains(t, tools, "list_rules")
}

func TestServer_Run_CancelledContext(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{Registry: rules.NewRegistry()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := srv.Run(ctx)
	require.Error(t, err)
}
