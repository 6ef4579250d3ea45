package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ormasoftchile/appgen/pkg/config"
)

// NewServer creates a new MCP server with the appgen tools registered.
func NewServer(version string, cfg *config.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"appgen",
		version,
		server.WithToolCapabilities(true),
	)
	h := &Handlers{Config: cfg}

	s.AddTool(
		mcp.NewTool("appgen/validate",
			mcp.WithDescription("Validate an appgen answers file (YAML or JSON)"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the answers file")),
		),
		h.HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("appgen/plan",
			mcp.WithDescription("List the actions a run would execute for an answers file"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the answers file")),
			mcp.WithBoolean("skip_install", mcp.Description("Leave out the package installation step")),
		),
		h.HandlePlan,
	)

	s.AddTool(
		mcp.NewTool("appgen/run",
			mcp.WithDescription("Generate an Expo project from an answers file (defaults to dry-run mode for safety)"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the answers file")),
			mcp.WithString("mode", mcp.Description("Execution mode: real or dry-run")),
			mcp.WithBoolean("skip_install", mcp.Description("Leave out the package installation step")),
		),
		h.HandleRun,
	)

	s.AddTool(
		mcp.NewTool("appgen/schema",
			mcp.WithDescription("Export the answers JSON Schema"),
		),
		h.HandleSchema,
	)

	return s
}
