package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// resolveUser picks the user id in order: explicit tool parameter, transport
// context, configured default.
func (h *handlers) resolveUser(ctx context.Context, req mcp.CallToolRequest) (uuid.UUID, error) {
	if s := req.GetString("user_id", ""); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, errors.New("invalid user_id")
		}
		return id, nil
	}
	if id := UserIDFromContext(ctx); id != uuid.Nil {
		return id, nil
	}
	if h.defaultUser != uuid.Nil {
		return h.defaultUser, nil
	}
	return uuid.Nil, errors.New("no user identity; pass user_id")
}

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List workouts in a date range, newest first. Includes name, start/end times, duration, and note."),
	mcp.WithString("user_id", mcp.Description("User UUID. Defaults to the configured user.")),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout with all its sets in order."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout UUID")),
	mcp.WithString("user_id", mcp.Description("User UUID. Defaults to the configured user.")),
)

var toolWorkoutVolume = mcp.NewTool("workout_volume",
	mcp.WithDescription("Per-exercise training volume over a date range: completed sets, total reps, and tonnage (sum of weight x reps)."),
	mcp.WithString("user_id", mcp.Description("User UUID. Defaults to the configured user.")),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the user's exercise library sorted by name."),
	mcp.WithString("user_id", mcp.Description("User UUID. Defaults to the configured user.")),
)

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := h.resolveUser(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.db.QueryWorkoutsByDateRange(ctx, uid, start, end)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
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
	workoutID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid workout_id"), nil
	}
	uid, err := h.resolveUser(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	workout, sets, err := h.db.GetWorkoutWithSets(ctx, workoutID, uid)
	if err != nil {
		h.log.Error("mcp get_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"workout": workout,
		"sets":    sets,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) workoutVolume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := h.resolveUser(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	volume, err := h.db.GetVolumeByExercise(ctx, uid, start, end)
	if err != nil {
		h.log.Error("mcp workout_volume", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(volume)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := h.resolveUser(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	exercises, err := h.db.ListExercises(ctx, uid)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Resource handlers ---

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	if uid == uuid.Nil {
		uid = h.defaultUser
	}
	if uid == uuid.Nil {
		return nil, errors.New("no user identity configured")
	}

	end := time.Now()
	workouts, err := h.db.QueryWorkoutsByDateRange(ctx, uid, end.AddDate(0, 0, -14), end)
	if err != nil {
		h.log.Error("mcp recent_workouts", "error", err)
		return nil, err
	}

	data, err := json.Marshal(workouts)
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
