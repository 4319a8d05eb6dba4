package careerserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ghsmc/intro-v2-sub000/internal/engine/discover"
)

func registerOpportunityDiscover(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "opportunity_discover",
		Description: "Discover job openings and relevant people for a free-text career query. Expands the query, fans out across search providers with fallback, extracts and deduplicates typed candidates, and ranks them with an explainable match score. Optional user_id personalizes scoring from the stored profile.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input discover.Request) (*mcp.CallToolResult, *discover.Response, error) {
		if pipeline == nil {
			return nil, nil, errors.New("discovery pipeline not configured")
		}
		resp, err := pipeline.Discover(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, resp, nil
	})
}
