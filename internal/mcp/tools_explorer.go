package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"explorer/internal/domain"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerExplorerTools() {
	s.mcp.AddTool(mcp.NewTool("get_schema",
		mcp.WithDescription("Get the inferred dataset schema: one entry per field with its display name, query name, type and options"),
	), s.handleGetSchema)

	s.mcp.AddTool(mcp.NewTool("query_data",
		mcp.WithDescription(`Query dataset rows. The request is a JSON object with optional keys:
where (one field, one operator: {"bikes": {"gt": 5}}; eq works on every type, gt/lt on DATE, FLOAT, INTEGER),
orderBy ({"field": "name", "direction": "asc"|"desc"}), page (default 1) and size (default 25, max 100).
Use field names from get_schema.`),
		mcp.WithString("request", mcp.Description("Query request as a JSON object string (empty for the first page)")),
	), s.handleQueryData)

	s.mcp.AddTool(mcp.NewTool("list_sources",
		mcp.WithDescription("List the dataset source types this server can load from and their configuration keys"),
	), s.handleListSources)

	s.mcp.AddTool(mcp.NewTool("dataset_status",
		mcp.WithDescription("Report whether the dataset is loaded, without loading it"),
	), s.handleDatasetStatus)
}

func (s *Server) handleGetSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields, err := s.explorer.Schema(ctx)
	if err != nil {
		return fetchFailure(err)
	}
	return jsonResult(fields)
}

func (s *Server) handleQueryData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := req.GetString("request", "")

	res, err := s.explorer.Query(ctx, []byte(body))
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return errorResult(ve.Message), nil
		}
		return fetchFailure(err)
	}
	return jsonResult(res)
}

func (s *Server) handleListSources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.explorer.Sources())
}

func (s *Server) handleDatasetStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.explorer.Health())
}

// fetchFailure reports dataset fetch errors as tool errors; anything else
// fails the call.
func fetchFailure(err error) (*mcp.CallToolResult, error) {
	var fe *domain.DatasetFetchError
	if errors.As(err, &fe) {
		return errorResult(fe.Reason), nil
	}
	return nil, fmt.Errorf("explorer: %w", err)
}
