package careerserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ghsmc/intro-v2-sub000/internal/engine/discover"
)

// OpportunitySaveInput is the input for opportunity_save. The discovery
// fields must repeat the original opportunity_discover call so the candidate
// can be located by id.
type OpportunitySaveInput struct {
	CandidateID string `json:"candidate_id"`
	Query       string `json:"query"`
	Location    string `json:"location,omitempty"`
	JobType     string `json:"job_type,omitempty"`
	Experience  string `json:"experience,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Status      string `json:"status,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// SavedListInput is the input for opportunity_saved_list.
type SavedListInput struct {
	UserID string `json:"user_id,omitempty"`
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// SavedListOutput is the output for opportunity_saved_list.
type SavedListOutput struct {
	Saved []discover.SavedOpportunity `json:"saved"`
	Total int                         `json:"total"`
}

// SavedUpdateInput is the input for opportunity_saved_update.
type SavedUpdateInput struct {
	ID     int64  `json:"id"`
	Status string `json:"status,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// SavedResult is the output for save/update operations.
type SavedResult struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

func registerOpportunitySave(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "opportunity_save",
		Description: "Save a discovered opportunity to the local list (SQLite). Pass the candidate_id from a prior opportunity_discover result together with the same query parameters. Status options: saved (default), applied, interview, offer, rejected.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input OpportunitySaveInput) (*mcp.CallToolResult, *SavedResult, error) {
		if savedStore == nil {
			return nil, nil, errors.New("saved store not configured")
		}
		if pipeline == nil {
			return nil, nil, errors.New("discovery pipeline not configured")
		}
		if input.CandidateID == "" {
			return nil, nil, errors.New("candidate_id is required")
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

		var candidate *discover.Candidate
		for i := range resp.Candidates {
			if resp.Candidates[i].ID == input.CandidateID {
				candidate = &resp.Candidates[i]
				break
			}
		}
		if candidate == nil {
			return nil, nil, fmt.Errorf("candidate %q not found in discovery results", input.CandidateID)
		}

		saved, err := savedStore.Save(ctx, input.UserID, candidate, input.Status, input.Notes)
		if err != nil {
			return nil, nil, err
		}
		return nil, &SavedResult{
			ID:      saved.ID,
			Message: fmt.Sprintf("Saved '%s' with status '%s' (id=%d)", saved.Title, saved.Status, saved.ID),
		}, nil
	})
}

func registerOpportunitySavedList(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "opportunity_saved_list",
		Description: "List saved opportunities. Optionally filter by status: saved, applied, interview, offer, rejected. Returns entries sorted by most recently updated.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SavedListInput) (*mcp.CallToolResult, *SavedListOutput, error) {
		if savedStore == nil {
			return nil, nil, errors.New("saved store not configured")
		}
		saved, total, err := savedStore.List(ctx, input.UserID, input.Status, input.Limit)
		if err != nil {
			return nil, nil, err
		}
		return nil, &SavedListOutput{Saved: saved, Total: total}, nil
	})
}

func registerOpportunitySavedUpdate(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "opportunity_saved_update",
		Description: "Update status or notes for a saved opportunity by ID. Status options: saved, applied, interview, offer, rejected. Get IDs from opportunity_saved_list.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SavedUpdateInput) (*mcp.CallToolResult, *SavedResult, error) {
		if savedStore == nil {
			return nil, nil, errors.New("saved store not configured")
		}
		if input.ID <= 0 {
			return nil, nil, errors.New("id is required")
		}
		if err := savedStore.Update(ctx, input.ID, input.Status, input.Notes); err != nil {
			return nil, nil, err
		}
		return nil, &SavedResult{
			ID:      input.ID,
			Message: fmt.Sprintf("Saved opportunity #%d updated successfully", input.ID),
		}, nil
	})
}
