package mcpserver

import (
	"fmt"

	"gridbase"
	"gridbase/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server for gridbase. It exposes grid reads and
// writes plus sync job control so AI agents can work with tables.
type Server struct {
	mcp    *server.MCPServer
	client *gridbase.Client
	sync   *service.SyncService
}

// Deps holds the dependencies passed to the MCP server.
type Deps struct {
	Client *gridbase.Client
	Sync   *service.SyncService
}

// New creates and configures an MCP server with all tools registered.
func New(deps Deps) *Server {
	s := &Server{
		client: deps.Client,
		sync:   deps.Sync,
	}

	s.mcp = server.NewMCPServer(
		"gridbase-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerGridTools()
	s.registerSyncTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := marshalIndentJSON(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// tableIDArg reads the required tableId argument.
func tableIDArg(args map[string]any) (int64, error) {
	v, ok := args["tableId"].(float64)
	if !ok || v <= 0 {
		return 0, fmt.Errorf("tableId is required")
	}
	return int64(v), nil
}
