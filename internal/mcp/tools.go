// Package mcp implements a Model Context Protocol server exposing styler's
// formatting engine as MCP tools over stdio transport.
package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool name constants.
const (
	ToolNameFormatFile = "format_file"
	ToolNameCheckFile  = "check_file"
	ToolNameListRules  = "list_rules"
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyPath indicates the path parameter is empty.
	ErrEmptyPath = errors.New("path parameter is required and must not be empty")
	// ErrPathNotAbsolute indicates the path parameter is not an absolute path.
	ErrPathNotAbsolute = errors.New("path must be an absolute path")
)

// Input types (auto-generate JSON schemas via struct tags).

// FormatFileInput is the input schema for the format_file tool.
type FormatFileInput struct {
	Path string `json:"path" jsonschema:"absolute path to the source file to format"`
}

// CheckFileInput is the input schema for the check_file tool.
type CheckFileInput struct {
	Path string `json:"path" jsonschema:"absolute path to the source file to check"`
}

// ListRulesInput is the (empty) input schema for the list_rules tool.
type ListRulesInput struct{}

// FormatFileOutput is the structured result of format_file.
type FormatFileOutput struct {
	Formatted  string   `json:"formatted"`
	Violations []string `json:"violations"`
}

// CheckFileOutput is the structured result of check_file.
type CheckFileOutput struct {
	Violations []string `json:"violations"`
}

// RuleInfo describes one registered rule, for list_rules.
type RuleInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DefaultSeverity string `json:"default_severity"`
}

// ListRulesOutput is the structured result of list_rules.
type ListRulesOutput struct {
	Rules []RuleInfo `json:"rules"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validatePathInput checks common file-path input constraints.
func validatePathInput(path string, isAbs func(string) bool) error {
	if path == "" {
		return ErrEmptyPath
	}

	if !isAbs(path) {
		return ErrPathNotAbsolute
	}

	return nil
}
