package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/carga/internal/ingest"
	"github.com/claude/carga/internal/models"
	"github.com/claude/carga/internal/report"
	"github.com/claude/carga/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Store is the persistence the HTTP handlers read from. *storage.DB
// satisfies it.
type Store interface {
	report.Source
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

var _ Store = (*storage.DB)(nil)

// Ingester accepts uploaded payloads. *ingest.Provider satisfies it.
type Ingester interface {
	Ingest(ctx context.Context, payload *models.LogPayload, userID int) (*ingest.Result, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       Store
	ingest   Ingester
	reports  *report.Reporter
	identity func(http.Handler) http.Handler
	mcp      http.Handler
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithIdentity replaces the default DevIdentity middleware.
func WithIdentity(mw func(http.Handler) http.Handler) Option {
	return func(s *Server) { s.identity = mw }
}

// WithMCP mounts an MCP handler at /mcp behind the identity middleware.
func WithMCP(h http.Handler) Option {
	return func(s *Server) { s.mcp = h }
}

// New creates a new Server with all routes configured.
func New(db Store, ingester Ingester, defaults report.Defaults, apiKey string, log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		db:       db,
		ingest:   ingester,
		reports:  report.New(db, defaults),
		identity: DevIdentity,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	// Ingest endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/logs", s.handleIngestLogs)
	})

	// Query API endpoints (no API key; tsnet handles access)
	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/logs", s.handleQueryLogs)
	s.router.Get("/api/v1/logs/{id}", s.handleGetLog)
	s.router.Get("/api/v1/logs/{id}/volume", s.handleLogVolume)
	s.router.Get("/api/v1/logs/{id}/history", s.handleWorkoutHistory)
	s.router.Get("/api/v1/logs/{id}/exercises/{modelID}/history", s.handleExerciseHistory)
	s.router.Get("/api/v1/volume/weekly", s.handleWeeklyVolume)
	s.router.Post("/api/v1/load", s.handleCalculateLoad)
	s.router.Get("/api/v1/bodyweight", s.handleBodyweight)
	s.router.Get("/api/v1/stats", s.handleStats)
	s.router.Get("/api/v1/imports", s.handleImportLogs)

	if s.mcp != nil {
		s.router.Handle("/mcp", s.mcp)
	}
}
