package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/claude/carga/internal/report"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Defaults carries the fallback bodyweight and the label timezone.
type Defaults = report.Defaults

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, defaults Defaults, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("carga", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("carga training log server. Calculate set loads, query workout logs, "+
			"session volume, progress over the last four sessions and weekly volume. "+
			"Weights are in kg. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, reports: report.New(ds, defaults), log: log, now: time.Now}

	s.AddTools(
		server.ServerTool{Tool: toolCalculateSetLoad, Handler: h.calculateSetLoad},
		server.ServerTool{Tool: toolGetLogs, Handler: h.getLogs},
		server.ServerTool{Tool: toolGetLogVolume, Handler: h.getLogVolume},
		server.ServerTool{Tool: toolGetWorkoutHistory, Handler: h.getWorkoutHistory},
		server.ServerTool{Tool: toolGetExerciseHistory, Handler: h.getExerciseHistory},
		server.ServerTool{Tool: toolGetWeeklyVolume, Handler: h.getWeeklyVolume},
		server.ServerTool{Tool: toolGetBodyweight, Handler: h.getBodyweight},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentLogs, Handler: h.recentLogs},
		server.ServerResource{Resource: resWeeklyVolume, Handler: h.weeklyVolume},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds      DataSource
	reports *report.Reporter
	log     *slog.Logger
	now     func() time.Time
}
