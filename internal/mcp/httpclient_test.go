package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/carga/internal/models"
	"github.com/claude/carga/internal/storage"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestQueryLogs verifies filter parameters and decoding of the log array.
func TestQueryLogs(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/logs": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if got := q.Get("workout"); got != "treino-a" {
				t.Errorf("workout=%q, want treino-a", got)
			}
			if got := q.Get("exercise"); got != "supino" {
				t.Errorf("exercise=%q, want supino", got)
			}
			if got := q.Get("start"); got != "2026-01-01T00:00:00Z" {
				t.Errorf("start=%q", got)
			}
			if q.Has("end") {
				t.Errorf("end sent for zero time: %q", q.Get("end"))
			}
			writeTestJSON(t, w, []models.Log{{ID: "a", Workout: models.WorkoutRef{ID: "treino-a"}}})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	logs, err := client.QueryLogs(context.Background(), storage.LogFilter{
		Start:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		WorkoutID: "treino-a",
		ModelID:   "supino",
	}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].ID != "a" {
		t.Errorf("logs = %+v", logs)
	}
}

// TestGetLogNotFound verifies that a 404 maps to storage.ErrLogNotFound.
func TestGetLogNotFound(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/logs/missing": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":"log not found"}`, http.StatusNotFound)
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).GetLog(context.Background(), "missing", 1)
	if !errors.Is(err, storage.ErrLogNotFound) {
		t.Errorf("err = %v, want ErrLogNotFound", err)
	}
}

// TestGetLog verifies decoding of a single log.
func TestGetLog(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/logs/abc": func(w http.ResponseWriter, _ *http.Request) {
			writeTestJSON(t, w, models.Log{ID: "abc", Status: models.StatusCompleted})
		},
	})
	defer ts.Close()

	l, err := NewHTTPClient(ts.URL).GetLog(context.Background(), "abc", 1)
	if err != nil {
		t.Fatal(err)
	}
	if l.ID != "abc" || l.Status != models.StatusCompleted {
		t.Errorf("log = %+v", l)
	}
}

// TestQueryBodyweights verifies the history field is extracted.
func TestQueryBodyweights(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/bodyweight": func(w http.ResponseWriter, _ *http.Request) {
			writeTestJSON(t, w, map[string]any{
				"current": 82.5,
				"history": []models.BodyweightEntry{
					{Weight: 82.5, Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
				},
			})
		},
	})
	defer ts.Close()

	entries, err := NewHTTPClient(ts.URL).QueryBodyweights(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Weight != 82.5 {
		t.Errorf("entries = %+v", entries)
	}
}

// TestHTTPClientServerError verifies that non-200 responses return an error.
func TestHTTPClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/logs": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	if _, err := NewHTTPClient(ts.URL).QueryLogs(context.Background(), storage.LogFilter{}, 1); err == nil {
		t.Error("expected error for 500 response")
	}
}
