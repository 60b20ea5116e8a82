package app

import (
	"context"

	mcpserver "explorer/internal/mcp"
)

// ServeMCP runs the explorer as an MCP server on stdin/stdout until the
// client disconnects.
func (a *App) ServeMCP(ctx context.Context) error {
	if err := a.Startup(ctx); err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	srv := mcpserver.New(a.explorer, Version, a.logger)
	return srv.ServeStdio()
}
