package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/carga/internal/history"
	"github.com/claude/carga/internal/load"
	"github.com/claude/carga/internal/models"
	"github.com/claude/carga/internal/report"
	"github.com/claude/carga/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

// logRange parses optional start/end filters. A date-only end covers the
// whole day; an absent start defaults to days before end.
func logRange(startStr, endStr string, days int, now time.Time) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			end = end.Add(24 * time.Hour)
		}
	} else {
		end = now
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -days)
	}
	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// --- Tool definitions ---

var toolCalculateSetLoad = mcp.NewTool("calculate_set_load",
	mcp.WithDescription("Calculate the load of one set in kg with a human-readable breakdown (Portuguese). "+
		"Bodyweight movements use the user's weight; bilateral doubles the weight per side; the bar weight is added once."),
	mcp.WithString("reps", mcp.Required(), mcp.Description("Rep text as logged, e.g. '10' or '8-12' (first number is used)")),
	mcp.WithNumber("weight", mcp.Description("Weight in kg (per side when bilateral). Defaults to 0.")),
	mcp.WithBoolean("bodyweight_movement", mcp.Description("Exercise is loaded by bodyweight only")),
	mcp.WithBoolean("bilateral", mcp.Description("Weight is per side and counts twice")),
	mcp.WithBoolean("barbell", mcp.Description("Exercise uses a bar whose weight is added")),
	mcp.WithNumber("bar_weight", mcp.Description("Bar weight in kg")),
	mcp.WithBoolean("time_based", mcp.Description("Set is timed; counts as one rep")),
	mcp.WithNumber("user_weight", mcp.Description("User bodyweight in kg. Defaults to the latest stored weigh-in.")),
)

var toolGetLogs = mcp.NewTool("get_logs",
	mcp.WithDescription("List workout logs (sessions) with exercises and sets."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("workout", mcp.Description("Filter by workout template ID")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise model ID (modeloId)")),
)

var toolGetLogVolume = mcp.NewTool("get_log_volume",
	mcp.WithDescription("Total volume (kg) of one session with the per-exercise and per-set breakdown over completed sets."),
	mcp.WithString("log_id", mcp.Required(), mcp.Description("Log ID")),
)

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("Volume of a session compared with up to three earlier sessions of the same workout."),
	mcp.WithString("log_id", mcp.Required(), mcp.Description("Log ID of the current session")),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("One exercise's statistic in a session compared with up to three earlier sessions containing it."),
	mcp.WithString("log_id", mcp.Required(), mcp.Description("Log ID of the current session")),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise model ID (modeloId)")),
	mcp.WithString("stat", mcp.Description("Statistic. Defaults to acumulada (volume)."),
		mcp.Enum(string(history.Accumulated), string(history.Maximum), string(history.Minimum), string(history.Mean))),
)

var toolGetWeeklyVolume = mcp.NewTool("get_weekly_volume",
	mcp.WithDescription("Volume and session count per calendar week (Monday start), oldest first."),
	mcp.WithNumber("weeks", mcp.Description("Number of weeks. Defaults to 8, max 52.")),
)

var toolGetBodyweight = mcp.NewTool("get_bodyweight",
	mcp.WithDescription("Current bodyweight used for calculations and the weigh-in history."),
)

// --- Tool handlers ---

func (h *handlers) calculateSetLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reps, err := req.RequireString("reps")
	if err != nil {
		return mcp.NewToolResultError("reps parameter is required"), nil
	}

	set := &models.Set{
		Reps:      models.RepCount(reps),
		Weight:    models.Kg(req.GetFloat("weight", 0)),
		TimeBased: req.GetBool("time_based", false),
		Completed: true,
	}
	ex := &models.Exercise{
		Model: models.ExerciseModel{Characteristics: models.Characteristics{
			Bodyweight: req.GetBool("bodyweight_movement", false),
			Bilateral:  req.GetBool("bilateral", false),
			Barbell:    req.GetBool("barbell", false),
		}},
		BarWeight: models.Kg(req.GetFloat("bar_weight", 0)),
	}

	sl, err := h.reports.SetLoad(ctx, UserIDFromContext(ctx), set, ex, req.GetFloat("user_weight", 0))
	if err != nil {
		h.log.Error("mcp calculate_set_load", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(sl)
}

func (h *handlers) getLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := logRange(req.GetString("start", ""), req.GetString("end", ""), 30, h.now())
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	logs, err := h.ds.QueryLogs(ctx, storage.LogFilter{
		Start:     start,
		End:       end,
		WorkoutID: req.GetString("workout", ""),
		ModelID:   req.GetString("exercise", ""),
	}, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if logs == nil {
		logs = []models.Log{}
	}
	return jsonResult(logs)
}

func (h *handlers) getLogVolume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logID, err := req.RequireString("log_id")
	if err != nil {
		return mcp.NewToolResultError("log_id parameter is required"), nil
	}
	v, err := h.reports.LogVolume(ctx, UserIDFromContext(ctx), logID)
	if err != nil {
		return h.queryError("get_log_volume", err), nil
	}
	return jsonResult(v)
}

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logID, err := req.RequireString("log_id")
	if err != nil {
		return mcp.NewToolResultError("log_id parameter is required"), nil
	}
	hist, err := h.reports.WorkoutHistory(ctx, UserIDFromContext(ctx), logID)
	if err != nil {
		return h.queryError("get_workout_history", err), nil
	}
	return jsonResult(hist)
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logID, err := req.RequireString("log_id")
	if err != nil {
		return mcp.NewToolResultError("log_id parameter is required"), nil
	}
	modelID, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	stat, err := history.ParseStatistic(req.GetString("stat", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	hist, err := h.reports.ExerciseHistory(ctx, UserIDFromContext(ctx), logID, modelID, stat)
	if err != nil {
		return h.queryError("get_exercise_history", err), nil
	}
	return jsonResult(hist)
}

func (h *handlers) getWeeklyVolume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weeks := req.GetInt("weeks", load.DefaultWeeks)
	if weeks <= 0 || weeks > report.MaxWeeks {
		return mcp.NewToolResultError("weeks must be between 1 and 52"), nil
	}
	vol, err := h.reports.WeeklyVolume(ctx, UserIDFromContext(ctx), weeks, h.now())
	if err != nil {
		return h.queryError("get_weekly_volume", err), nil
	}
	return jsonResult(vol)
}

func (h *handlers) getBodyweight(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bw, err := h.reports.Bodyweight(ctx, UserIDFromContext(ctx))
	if err != nil {
		return h.queryError("get_bodyweight", err), nil
	}
	return jsonResult(bw)
}

func (h *handlers) queryError(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, storage.ErrLogNotFound) {
		return mcp.NewToolResultError("log not found")
	}
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
