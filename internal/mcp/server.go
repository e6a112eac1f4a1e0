// ABOUTME: MCP server setup for the intake tracker.
// ABOUTME: Wraps the MCP server with tracker and dialogue access.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/avolkov/aquacal/internal/dialogue"
	"github.com/avolkov/aquacal/internal/tracker"
)

// Server wraps the MCP server with the tracker operations and the
// profile setup dialogue.
type Server struct {
	mcpServer *mcp.Server
	tracker   *tracker.Tracker
	flow      *dialogue.Flow
}

// NewServer creates a new MCP server over the given components.
func NewServer(t *tracker.Tracker, f *dialogue.Flow) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "aquacal",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		tracker:   t,
		flow:      f,
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
