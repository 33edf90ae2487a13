// Package mcpserver exposes the preview pipeline as MCP tools over stdio,
// so agents and scripts can drive uploads and renders without the TUI.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/skisplace/epoxyview/internal/api"
	"github.com/skisplace/epoxyview/internal/logger"
)

// Server wraps the MCP stdio server and the gateway it drives.
type Server struct {
	mcpServer *server.MCPServer
	gw        *api.Client
	projectID string
	debug     bool
}

// New creates the tool server over the given gateway.
func New(gw *api.Client, projectID string, debug bool) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"epoxyview-tools",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		gw:        gw,
		projectID: projectID,
		debug:     debug,
	}
	s.registerTools()
	return s
}

// ServeStdio blocks serving MCP over stdin/stdout until the stream closes.
func (s *Server) ServeStdio() error {
	logger.Info("serving MCP tools over stdio")
	return server.ServeStdio(s.mcpServer)
}
