package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	schemaURI  = "explorer://schema"
	sourcesURI = "explorer://sources"
)

func (s *Server) registerResources() {
	// ── explorer://schema ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		schemaURI,
		"Dataset Schema",
		mcp.WithMIMEType("application/json"),
	), s.handleSchemaResource)

	// ── explorer://sources ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		sourcesURI,
		"Dataset Sources",
		mcp.WithMIMEType("application/json"),
	), s.handleSourcesResource)
}

func (s *Server) handleSchemaResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	fields, err := s.explorer.Schema(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(schemaURI, fields)
}

func (s *Server) handleSourcesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(sourcesURI, s.explorer.Sources())
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := marshalIndent(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
