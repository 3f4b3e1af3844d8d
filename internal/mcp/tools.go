package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/coachlog/internal/models"
	"github.com/meltforce/coachlog/internal/storage"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// --- Tool definitions ---

var toolGetLatestProgram = mcp.NewTool("get_latest_program",
	mcp.WithDescription("Get the most recently imported weekly program with its sessions by day, programmed exercises (sets, reps, load, target RPE, coach notes), logged actuals, videos and coach comments."),
)

var toolListPrograms = mcp.NewTool("list_programs",
	mcp.WithDescription("List imported programs, newest first, without their sessions."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of programs. Defaults to 10, at most 100.")),
)

var toolGetProgress = mcp.NewTool("get_progress",
	mcp.WithDescription("Logged load history for the four most frequently logged lifts. Each lift has week-by-week entries plus latest, first, gain, max and min load in kg."),
)

var toolGetWeeklyRecap = mcp.NewTool("get_weekly_recap",
	mcp.WithDescription("Video clips from the latest program, each with its exercise, day, planned prescription, logged result and a match colour (green when the logged load met the target, red when it fell short, grey when unknown)."),
)

var toolListImports = mcp.NewTool("list_imports",
	mcp.WithDescription("Recent program import attempts with status (running, success, partial, error), detected layout, exercise counts and any warnings."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of imports. Defaults to 10, at most 100.")),
)

// --- Tool handlers ---

func limitArg(req mcp.CallToolRequest) int {
	n := req.GetInt("limit", defaultListLimit)
	if n < 1 {
		return defaultListLimit
	}
	return min(n, maxListLimit)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getLatestProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.ds.LatestProgram(ctx, athlete(ctx))
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("no program has been imported yet"), nil
	}
	if err != nil {
		h.log.Error("mcp get_latest_program", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(p)
}

func (h *handlers) listPrograms(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	programs, err := h.ds.ListPrograms(ctx, athlete(ctx), limitArg(req))
	if err != nil {
		h.log.Error("mcp list_programs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if programs == nil {
		programs = []models.Program{}
	}
	return jsonResult(programs)
}

func (h *handlers) getProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lifts, err := h.ds.Progress(ctx, athlete(ctx))
	if err != nil {
		h.log.Error("mcp get_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if lifts == nil {
		lifts = []models.LiftProgress{}
	}
	return jsonResult(lifts)
}

func (h *handlers) getWeeklyRecap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recap, err := h.ds.WeeklyRecap(ctx, athlete(ctx))
	if err != nil {
		h.log.Error("mcp get_weekly_recap", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(recap)
}

func (h *handlers) listImports(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logs, err := h.ds.QueryImportLogs(ctx, athlete(ctx), limitArg(req))
	if err != nil {
		h.log.Error("mcp list_imports", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if logs == nil {
		logs = []models.ImportLog{}
	}
	return jsonResult(logs)
}
