package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetWorkoutStats = mcp.NewTool("get_workout_stats",
	mcp.WithDescription("Headline training summary: total workouts, total sets, total volume (kg), average workout duration, workouts this week/month, and current/longest streaks."),
)

var toolGetProgress = mcp.NewTool("get_progress",
	mcp.WithDescription("Finished-workout counts per week over the trailing window. Weeks start on Sunday and are labeled MM/DD, oldest first."),
	mcp.WithNumber("weeks", mcp.Description("Number of trailing weeks. Defaults to 12.")),
)

var toolGetMuscleGroupSplit = mcp.NewTool("get_muscle_group_split",
	mcp.WithDescription("Training volume attributed to the six canonical muscle groups (Chest, Back, Shoulders, Arms, Legs, Core). Primary muscles count at full weight, secondary at half."),
	mcp.WithNumber("months", mcp.Description("Trailing window in months. Defaults to 3.")),
)

var toolGetVolumeOverTime = mcp.NewTool("get_volume_over_time",
	mcp.WithDescription("Total set volume (reps × weight, finished workouts only) per calendar month, oldest first, with an entry for every month in the window."),
	mcp.WithNumber("months", mcp.Description("Trailing window in months. Defaults to 6.")),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Page through the user's workouts, newest first. Returns workout summaries plus the unpaged total."),
	mcp.WithNumber("limit", mcp.Description("Page size. Defaults to 20.")),
	mcp.WithNumber("offset", mcp.Description("Page offset. Defaults to 0.")),
	mcp.WithBoolean("include_finished", mcp.Description("Include finished workouts. Defaults to true.")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("One workout in full detail: sets grouped by exercise in canonical order, with catalog metadata and the source routine when materialized."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout UUID")),
)

var toolGetStreaks = mcp.NewTool("get_streaks",
	mcp.WithDescription("Current and longest consecutive-day streaks of finished workouts."),
)

// --- Tool handlers ---

func (h *handlers) getWorkoutStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	stats, err := h.engine.GetWorkoutStats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_workout_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	weeks := req.GetInt("weeks", 0)

	points, err := h.engine.GetOverallProgressAnalytics(ctx, uid, weeks)
	if err != nil {
		h.log.Error("mcp get_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(points)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getMuscleGroupSplit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	months := req.GetInt("months", 0)

	groups, err := h.engine.GetMuscleGroupAnalytics(ctx, uid, months)
	if err != nil {
		h.log.Error("mcp get_muscle_group_split", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(groups)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getVolumeOverTime(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	months := req.GetInt("months", 0)

	volumes, err := h.engine.GetVolumeOverTimeAnalytics(ctx, uid, months)
	if err != nil {
		h.log.Error("mcp get_volume_over_time", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(volumes)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	opts := workout.ListWorkoutsOptions{
		Limit:           req.GetInt("limit", 20),
		Offset:          req.GetInt("offset", 0),
		IncludeFinished: req.GetBool("include_finished", true),
	}

	page, err := h.svc.GetUserWorkouts(ctx, uid, opts)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(page)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid workout_id"), nil
	}

	uid := UserIDFromContext(ctx)
	detail, err := h.svc.GetWorkoutByID(ctx, id, uid)
	if err != nil {
		h.log.Error("mcp get_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(detail)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getStreaks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	streaks, err := h.engine.GetStreaks(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_streaks", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(streaks)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
