package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	configAdapter "github.com/ernestoongaro/omnicles/internal/adapters/outbound/config"
	"github.com/ernestoongaro/omnicles/internal/adapters/outbound/history"
	"github.com/ernestoongaro/omnicles/internal/adapters/outbound/omni"
	"github.com/ernestoongaro/omnicles/internal/application"
	"github.com/ernestoongaro/omnicles/internal/domain"
)

// registerTools registers the omnicles MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	s.AddTool(
		mcplib.NewTool("omnicles_validate",
			mcplib.WithDescription("Run the Omni content validator, diff the findings against the history artifact, and return the report as JSON"),
			mcplib.WithString("branch_name",
				mcplib.Description("Branch to validate; resolved to a branch model UUID before the call"),
			),
			mcplib.WithBoolean("fail_on_new_only",
				mcplib.Description("Report failure only for issues not present in history"),
			),
		),
		handleValidate(projectPath),
	)

	s.AddTool(
		mcplib.NewTool("omnicles_history",
			mcplib.WithDescription("Return the stored issue history artifact from the previous run"),
		),
		handleHistory(projectPath),
	)
}

func handleValidate(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		opts, err := resolveOptions(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		if branch := request.GetString("branch_name", ""); branch != "" {
			opts.BranchName = branch
			opts.BranchID = ""
		}
		if request.GetBool("fail_on_new_only", false) {
			opts.FailOnNewOnly = true
		}
		if err := opts.Validate(); err != nil {
			return errorResult(err.Error()), nil
		}

		client := omni.New(opts.BaseURL, opts.APIKey, opts.AuthHeader, opts.AuthScheme, opts.Timeout)
		svc := application.NewGateService(client, history.New())

		result, err := svc.Run(ctx, opts)
		if err != nil {
			return errorResult(fmt.Sprintf("gate run failed: %v", err)), nil
		}

		// A failing gate is still a successful tool call; the report's
		// counts carry the verdict.
		return jsonResult(result.Report)
	}
}

func handleHistory(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		opts, err := resolveOptions(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		snap, err := history.New().Load(opts.HistoryIn)
		if err != nil {
			return errorResult(fmt.Sprintf("loading history: %v", err)), nil
		}
		if snap == nil {
			return textResult("no history artifact found"), nil
		}
		return jsonResult(snap)
	}
}

// resolveOptions merges the OMNI_* environment with .omnicles.yaml defaults
// and anchors relative artifact paths at the project path.
func resolveOptions(projectPath string) (domain.Options, error) {
	opts := domain.FromEnv()

	cfg, err := configAdapter.New().Load(projectPath)
	if err != nil {
		return domain.Options{}, fmt.Errorf("loading project config: %w", err)
	}
	opts.ApplyProjectConfig(cfg)
	opts.ApplyDefaults()

	opts.HistoryIn = anchor(projectPath, opts.HistoryIn)
	opts.HistoryOut = anchor(projectPath, opts.HistoryOut)
	opts.ReportOut = anchor(projectPath, opts.ReportOut)
	return opts, nil
}

func anchor(projectPath, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectPath, path)
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
