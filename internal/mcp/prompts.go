package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("explore_dataset",
		mcp.WithPromptDescription("Answer a question about the dataset using the schema and query tools"),
		mcp.WithArgument("question",
			mcp.ArgumentDescription("What you want to find out"),
			mcp.RequiredArgument(),
		),
	), s.handleExplorePrompt)
}

func (s *Server) handleExplorePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	question := req.Params.Arguments["question"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Explore the dataset: %s", question),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Answer this question about the dataset: "%s". Follow these steps:

1. Call get_schema and pick the fields that matter. Use the "name" of each field, not its display label.
2. Call query_data with a single where condition (eq on any type, gt/lt only on DATE, FLOAT, INTEGER) and an orderBy if ranking helps.
3. Read "total" for counts; page through with "page" and "size" (max 100) only when you need more rows.

If query_data reports a validation error, fix the request as the message says and retry.`, question),
				},
			},
		},
	}, nil
}
