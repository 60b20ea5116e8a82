package mcpserver

import (
	"context"
	"log/slog"

	"explorer/internal/dataset"
	"explorer/internal/domain"
	"explorer/internal/service"

	"github.com/mark3labs/mcp-go/server"
)

// Explorer is the service the tools delegate to.
// *service.ExplorerService implements it.
type Explorer interface {
	Schema(ctx context.Context) ([]domain.Field, error)
	Query(ctx context.Context, body []byte) (domain.PaginatedResult, error)
	Health() service.Health
	Sources() []dataset.SourceSpec
}

// Server is the MCP server for the dataset explorer.
// It exposes tools, resources and prompts so AI agents can inspect the
// schema and query rows.
type Server struct {
	mcp      *server.MCPServer
	explorer Explorer
	logger   *slog.Logger
}

// New creates and configures a new MCP server with all tools and resources.
func New(explorer Explorer, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		explorer: explorer,
		logger:   logger.With("component", "mcp"),
	}

	s.mcp = server.NewMCPServer(
		"explorer-mcp",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerExplorerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}
