package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// --- Resource definitions ---

var resLatestProgram = mcp.NewResource(
	"coachlog://latest_program",
	"Latest Program",
	mcp.WithResourceDescription("The current training week with sessions, exercises, actuals, videos and comments"),
	mcp.WithMIMEType("application/json"),
)

var resDashboard = mcp.NewResource(
	"coachlog://dashboard",
	"Dashboard",
	mcp.WithResourceDescription("Profile, latest program counts, recent coach comments and, for coaches, the athlete roster"),
	mcp.WithMIMEType("application/json"),
)

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
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

func (h *handlers) latestProgram(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	p, err := h.ds.LatestProgram(ctx, athlete(ctx))
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, p)
}

func (h *handlers) dashboard(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	d, err := h.ds.Dashboard(ctx, athlete(ctx))
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, d)
}
