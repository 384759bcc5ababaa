package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/carga/internal/load"
	"github.com/claude/carga/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

var resRecentLogs = mcp.NewResource(
	"carga://recent_logs",
	"Recent Logs",
	mcp.WithResourceDescription("Workout logs from the last 14 days with their volume"),
	mcp.WithMIMEType("application/json"),
)

var resWeeklyVolume = mcp.NewResource(
	"carga://weekly_volume",
	"Weekly Volume",
	mcp.WithResourceDescription("Training volume per week for the last 8 weeks"),
	mcp.WithMIMEType("application/json"),
)

type recentLog struct {
	ID          string  `json:"id"`
	WorkoutID   string  `json:"workout_id"`
	WorkoutName string  `json:"workout_name"`
	StartedAt   string  `json:"started_at"`
	Status      string  `json:"status"`
	Volume      float64 `json:"volume"`
	Exercises   int     `json:"exercises"`
	Sets        int     `json:"sets"`
}

func (h *handlers) recentLogs(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	end := h.now()
	start := end.AddDate(0, 0, -14)

	logs, err := h.ds.QueryLogs(ctx, storage.LogFilter{Start: start, End: end}, uid)
	if err != nil {
		return nil, err
	}
	bw, err := h.reports.Bodyweight(ctx, uid)
	if err != nil {
		return nil, err
	}

	summary := make([]recentLog, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		r := recentLog{
			ID:          l.ID,
			WorkoutID:   l.Workout.ID,
			WorkoutName: l.Workout.Name,
			Status:      string(l.Status),
			Volume:      load.ResolveVolume(l, bw.Current),
			Exercises:   len(l.Exercises),
			Sets:        l.SetCount(),
		}
		if l.StartedAt != nil {
			r.StartedAt = l.StartedAt.In(h.reports.Location()).Format("2006-01-02T15:04:05Z07:00")
		}
		summary = append(summary, r)
	}
	return jsonResource(req.Params.URI, summary)
}

func (h *handlers) weeklyVolume(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	weeks, err := h.reports.WeeklyVolume(ctx, UserIDFromContext(ctx), load.DefaultWeeks, h.now())
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, weeks)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
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
