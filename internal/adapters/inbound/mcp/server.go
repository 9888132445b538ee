package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewOmniclesMCPServer creates a new MCP server with the omnicles tools
// registered. The projectPath is the directory holding .omnicles.yaml and
// the history artifact; credentials come from the OMNI_* environment.
func NewOmniclesMCPServer(projectPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"omnicles",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	registerTools(s, projectPath)

	return s
}
