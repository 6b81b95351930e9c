package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/liftlog/internal/workout"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	page, err := h.svc.GetUserWorkouts(ctx, uid, workout.ListWorkoutsOptions{
		Limit:           20,
		IncludeFinished: true,
	})
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(page)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
