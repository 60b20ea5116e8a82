package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"explorer/internal/dataset"
	"explorer/internal/domain"
	"explorer/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
)

type stubSource struct {
	err error
}

func (s *stubSource) Spec() dataset.SourceSpec { return dataset.SourceSpec{Type: "stub"} }

func (s *stubSource) Fetch(context.Context, dataset.SourceConfig) ([]domain.RawRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	keys := []string{"Name", "Bikes"}
	return []domain.RawRow{
		domain.RawRowOf(keys, []any{"Smithfield", float64(3)}),
		domain.RawRowOf(keys, []any{"Pearse", float64(10)}),
	}, nil
}

func newTestServer(src *stubSource) *Server {
	svc := service.NewExplorerService(dataset.NewStore(src, nil))
	return New(svc, "test", nil)
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("tool call failed: %v", err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

// ─────────────────────────────────────────────────────────────
// Tools
// ─────────────────────────────────────────────────────────────

func TestGetSchema(t *testing.T) {
	s := newTestServer(&stubSource{})

	res := callTool(t, s.handleGetSchema, nil)
	var fields []domain.Field
	if err := json.Unmarshal([]byte(resultText(t, res)), &fields); err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	if len(fields) != 2 || fields[1].Name != "bikes" || fields[1].Type != domain.FieldTypeInteger {
		t.Errorf("unexpected schema: %+v", fields)
	}
}

func TestQueryData(t *testing.T) {
	s := newTestServer(&stubSource{})

	res := callTool(t, s.handleQueryData, map[string]any{
		"request": `{"orderBy": {"field": "bikes", "direction": "desc"}, "size": 1}`,
	})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	var page struct {
		Data  []map[string]any `json:"data"`
		Total int              `json:"total"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 2 || len(page.Data) != 1 || page.Data[0]["name"] != "Pearse" {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestQueryData_DefaultsWithoutRequest(t *testing.T) {
	s := newTestServer(&stubSource{})

	res := callTool(t, s.handleQueryData, nil)
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), `"size": 25`) {
		t.Errorf("expected default page size, got %s", resultText(t, res))
	}
}

func TestQueryData_ValidationErrorIsToolError(t *testing.T) {
	s := newTestServer(&stubSource{})

	res := callTool(t, s.handleQueryData, map[string]any{"request": `{"where": {"name": {"lt": "b"}}}`})
	if !res.IsError {
		t.Fatal("expected an error result")
	}
	if got := resultText(t, res); got != "Operator 'lt' is only supported for DATE, FLOAT, INTEGER fields" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestQueryData_FetchErrorIsToolError(t *testing.T) {
	s := newTestServer(&stubSource{err: errors.New("dial tcp: refused")})

	res := callTool(t, s.handleQueryData, nil)
	if !res.IsError {
		t.Fatal("expected an error result")
	}
	if got := resultText(t, res); got != "Failed to fetch dataset" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestDatasetStatus(t *testing.T) {
	s := newTestServer(&stubSource{})

	res := callTool(t, s.handleDatasetStatus, nil)
	if !strings.Contains(resultText(t, res), `"datasetLoaded": false`) {
		t.Errorf("expected unloaded dataset, got %s", resultText(t, res))
	}

	callTool(t, s.handleGetSchema, nil)
	res = callTool(t, s.handleDatasetStatus, nil)
	if !strings.Contains(resultText(t, res), `"datasetLoaded": true`) {
		t.Errorf("expected loaded dataset, got %s", resultText(t, res))
	}
}

// ─────────────────────────────────────────────────────────────
// Resources and prompts
// ─────────────────────────────────────────────────────────────

func TestSchemaResource(t *testing.T) {
	s := newTestServer(&stubSource{})

	var req mcp.ReadResourceRequest
	req.Params.URI = schemaURI
	contents, err := s.handleSchemaResource(context.Background(), req)
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected text resource, got %T", contents[0])
	}
	if text.URI != schemaURI || text.MIMEType != "application/json" {
		t.Errorf("unexpected resource metadata: %s %s", text.URI, text.MIMEType)
	}
	if !strings.Contains(text.Text, `"name": "bikes"`) {
		t.Errorf("expected bikes field in %s", text.Text)
	}
}

func TestExplorePrompt(t *testing.T) {
	s := newTestServer(&stubSource{})

	var req mcp.GetPromptRequest
	req.Params.Arguments = map[string]string{"question": "Which station has most bikes?"}
	res, err := s.handleExplorePrompt(context.Background(), req)
	if err != nil {
		t.Fatalf("get prompt: %v", err)
	}
	if len(res.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(res.Messages))
	}
	text, ok := res.Messages[0].Content.(mcp.TextContent)
	if !ok || !strings.Contains(text.Text, "Which station has most bikes?") {
		t.Errorf("expected question in prompt, got %+v", res.Messages[0].Content)
	}
}
