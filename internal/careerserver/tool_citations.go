package careerserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ghsmc/intro-v2-sub000/internal/engine/discover"
)

// CitationResolveInput is the input for citation_resolve. The discovery
// fields must repeat the original opportunity_discover call so the candidate
// list (usually cached) can be rebuilt.
type CitationResolveInput struct {
	Text       string `json:"text"`
	Query      string `json:"query"`
	Location   string `json:"location,omitempty"`
	JobType    string `json:"job_type,omitempty"`
	Experience string `json:"experience,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	UserID     string `json:"user_id,omitempty"`
}

// CitationResolveOutput is the output for citation_resolve.
type CitationResolveOutput struct {
	Spans   []discover.Span           `json:"spans"`
	Sources []discover.CitationSource `json:"sources"`
}

func registerCitationResolve(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "citation_resolve",
		Description: "Resolve [n] citation markers in a narrative text against a prior opportunity_discover result. Pass the same query parameters as the discovery call; the candidate list is rebuilt (served from cache when fresh) and each marker is bound to its source. Out-of-range markers are left as literal text.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CitationResolveInput) (*mcp.CallToolResult, *CitationResolveOutput, error) {
		if pipeline == nil {
			return nil, nil, errors.New("discovery pipeline not configured")
		}
		if input.Text == "" {
			return nil, nil, errors.New("text is required")
		}
		resp, err := pipeline.Discover(ctx, discover.Request{
			Query:      input.Query,
			Location:   input.Location,
			JobType:    input.JobType,
			Experience: input.Experience,
			Limit:      input.Limit,
			UserID:     input.UserID,
		})
		if err != nil {
			return nil, nil, err
		}
		spans, sources := discover.AnnotateNarrative(input.Text, resp)
		return nil, &CitationResolveOutput{Spans: spans, Sources: sources}, nil
	})
}
