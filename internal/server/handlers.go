package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/carga/internal/history"
	"github.com/claude/carga/internal/ingest"
	"github.com/claude/carga/internal/load"
	"github.com/claude/carga/internal/models"
	"github.com/claude/carga/internal/report"
	"github.com/claude/carga/internal/storage"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleIngestLogs(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	start := time.Now()

	var payload models.LogPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	result, err := s.ingest.Ingest(r.Context(), &payload, uid)
	s.logImport(uid, "upload", &payload, result, err, int(time.Since(start).Milliseconds()))
	if errors.Is(err, ingest.ErrEmptyPayload) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		s.log.Error("ingest error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleQueryLogs(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	q := r.URL.Query()
	logs, err := s.db.QueryLogs(r.Context(), storage.LogFilter{
		Start:     start,
		End:       end,
		WorkoutID: q.Get("workout"),
		ModelID:   q.Get("exercise"),
	}, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []models.Log{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	l, err := s.db.GetLog(r.Context(), chi.URLParam(r, "id"), userIDFromContext(r))
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleLogVolume(w http.ResponseWriter, r *http.Request) {
	v, err := s.reports.LogVolume(r.Context(), userIDFromContext(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleWorkoutHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.reports.WorkoutHistory(r.Context(), userIDFromContext(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	stat, err := history.ParseStatistic(r.URL.Query().Get("stat"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h, err := s.reports.ExerciseHistory(r.Context(), userIDFromContext(r),
		chi.URLParam(r, "id"), chi.URLParam(r, "modelID"), stat)
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleWeeklyVolume(w http.ResponseWriter, r *http.Request) {
	weeks := load.DefaultWeeks
	if v := r.URL.Query().Get("weeks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > report.MaxWeeks {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weeks must be between 1 and 52"})
			return
		}
		weeks = n
	}

	vol, err := s.reports.WeeklyVolume(r.Context(), userIDFromContext(r), weeks, time.Now())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, vol)
}

// loadRequest is the body of POST /api/v1/load.
type loadRequest struct {
	Set        *models.Set      `json:"serie"`
	Exercise   *models.Exercise `json:"exercicio"`
	UserWeight float64          `json:"userWeight"`
}

func (s *Server) handleCalculateLoad(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Set == nil || req.Exercise == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "serie and exercicio are required"})
		return
	}

	sl, err := s.reports.SetLoad(r.Context(), userIDFromContext(r), req.Set, req.Exercise, req.UserWeight)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sl)
}

func (s *Server) handleBodyweight(w http.ResponseWriter, r *http.Request) {
	bw, err := s.reports.Bodyweight(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, bw)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetDataStats(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.db.QueryImportLogs(r.Context(), userIDFromContext(r), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []storage.ImportLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// logImport records an ingest result to the import_logs table.
func (s *Server) logImport(uid int, source string, payload *models.LogPayload, result *ingest.Result, importErr error, durationMs int) {
	status := "success"
	var errMsg *string
	if importErr != nil {
		status = "error"
		msg := importErr.Error()
		errMsg = &msg
	}

	entry := storage.ImportLog{
		UserID:       uid,
		Source:       source,
		Status:       status,
		LogsReceived: len(payload.Logs),
		DurationMs:   &durationMs,
		ErrorMessage: errMsg,
	}
	if result != nil {
		entry.LogsInserted = result.LogsInserted
		entry.BodyweightsInserted = result.BodyweightsInserted
		entry.VolumesCached = result.VolumesCached
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()

	if _, err := s.db.InsertImportLog(ctx, entry); err != nil {
		s.log.Error("failed to log import", "source", source, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout for async logging.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}

func (s *Server) writeQueryError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrLogNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "log not found"})
		return
	}
	s.log.Error("query error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseTimeRange reads optional start/end query parameters. Absent values
// leave the range open on that side.
func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr != "" {
		start, err = time.Parse(time.RFC3339, startStr)
		if err != nil {
			start, err = time.Parse("2006-01-02", startStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
		}
	}

	if endStr != "" {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
