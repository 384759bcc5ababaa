package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claude/carga/internal/history"
	"github.com/claude/carga/internal/models"
	"github.com/claude/carga/internal/storage"
)

type memSource struct {
	logs        []models.Log
	bodyweights []models.BodyweightEntry
	filters     []storage.LogFilter
}

func (m *memSource) QueryLogs(_ context.Context, f storage.LogFilter, _ int) ([]models.Log, error) {
	m.filters = append(m.filters, f)
	var out []models.Log
	for _, l := range m.logs {
		if f.WorkoutID != "" && l.Workout.ID != f.WorkoutID {
			continue
		}
		if f.ModelID != "" && !l.HasExercise(f.ModelID) {
			continue
		}
		if !f.Start.IsZero() && (l.StartedAt == nil || l.StartedAt.Before(f.Start)) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *memSource) GetLog(_ context.Context, id string, _ int) (*models.Log, error) {
	for i := range m.logs {
		if m.logs[i].ID == id {
			return &m.logs[i], nil
		}
	}
	return nil, storage.ErrLogNotFound
}

func (m *memSource) QueryBodyweights(context.Context, int) ([]models.BodyweightEntry, error) {
	return m.bodyweights, nil
}

func at(day int) *time.Time {
	t := time.Date(2026, 3, day, 18, 0, 0, 0, time.UTC)
	return &t
}

func pushups(id, workout string, day int, reps models.RepCount) models.Log {
	return models.Log{
		ID:         id,
		Workout:    models.WorkoutRef{ID: workout},
		StartedAt:  at(day),
		FinishedAt: at(day),
		Status:     models.StatusCompleted,
		Exercises: []models.Exercise{{
			ModelID: "flexao",
			Model:   models.ExerciseModel{Characteristics: models.Characteristics{Bodyweight: true}},
			Sets:    []models.Set{{Reps: reps, Completed: true}},
		}},
	}
}

func newSource() *memSource {
	return &memSource{
		logs: []models.Log{
			pushups("a", "A", 2, "10"),
			pushups("b", "B", 3, "20"),
			pushups("c", "A", 9, "12"),
		},
		bodyweights: []models.BodyweightEntry{{Weight: 80, Date: *at(1)}},
	}
}

// TestBodyweightFallback verifies the configured default applies without weigh-ins.
func TestBodyweightFallback(t *testing.T) {
	r := New(&memSource{}, Defaults{BodyweightKg: 65})
	bw, err := r.Bodyweight(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if bw.Current != 65 || bw.History == nil {
		t.Errorf("bodyweight = %+v, want 65 with empty history", bw)
	}
}

// TestWorkoutHistory verifies that only sessions of the same workout are
// compared and that the user's bodyweight drives recomputation.
func TestWorkoutHistory(t *testing.T) {
	src := newSource()
	h, err := New(src, Defaults{BodyweightKg: 70}).WorkoutHistory(context.Background(), 1, "c")
	if err != nil {
		t.Fatal(err)
	}
	if h.WorkoutID != "A" || len(h.Entries) != 2 {
		t.Fatalf("history = %+v", h)
	}
	if h.Entries[0].Value != 800 || h.Entries[1].Value != 960 {
		t.Errorf("values = %v, %v, want 800, 960", h.Entries[0].Value, h.Entries[1].Value)
	}
	if src.filters[0].WorkoutID != "A" {
		t.Errorf("filter = %+v", src.filters[0])
	}
}

// TestWorkoutHistoryMissingLog verifies the not-found error passes through.
func TestWorkoutHistoryMissingLog(t *testing.T) {
	_, err := New(newSource(), Defaults{}).WorkoutHistory(context.Background(), 1, "zzz")
	if !errors.Is(err, storage.ErrLogNotFound) {
		t.Errorf("err = %v, want ErrLogNotFound", err)
	}
}

// TestExerciseHistory verifies the exercise window spans workouts.
func TestExerciseHistory(t *testing.T) {
	h, err := New(newSource(), Defaults{}).ExerciseHistory(context.Background(), 1, "c", "flexao", history.Accumulated)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Entries) != 3 || !h.Entries[2].Current {
		t.Fatalf("entries = %+v", h.Entries)
	}
	if h.Entries[1].Value != 1600 {
		t.Errorf("b = %v, want 1600", h.Entries[1].Value)
	}
}

// TestExerciseHistoryMissingLog verifies that an unknown log is reported
// like in WorkoutHistory rather than as an empty window.
func TestExerciseHistoryMissingLog(t *testing.T) {
	_, err := New(newSource(), Defaults{}).ExerciseHistory(context.Background(), 1, "zzz", "flexao", history.Accumulated)
	if !errors.Is(err, storage.ErrLogNotFound) {
		t.Errorf("err = %v, want ErrLogNotFound", err)
	}
}

// TestWeeklyVolume verifies the query start, week capping and bucketing.
func TestWeeklyVolume(t *testing.T) {
	src := newSource()
	now := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC) // Wednesday
	weeks, err := New(src, Defaults{}).WeeklyVolume(context.Background(), 1, 2, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(weeks) != 2 {
		t.Fatalf("weeks = %d, want 2", len(weeks))
	}
	wantStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if !src.filters[0].Start.Equal(wantStart) {
		t.Errorf("query start = %v, want %v", src.filters[0].Start, wantStart)
	}
	if weeks[0].Volume != 800+1600 || weeks[0].Sessions != 2 {
		t.Errorf("first week = %+v", weeks[0])
	}
	if weeks[1].Volume != 960 {
		t.Errorf("second week = %+v", weeks[1])
	}

	capped, _ := New(src, Defaults{}).WeeklyVolume(context.Background(), 1, 500, now)
	if len(capped) != MaxWeeks {
		t.Errorf("capped = %d, want %d", len(capped), MaxWeeks)
	}
}

// TestSetLoadUsesStoredBodyweight verifies substitution of a missing weight.
func TestSetLoadUsesStoredBodyweight(t *testing.T) {
	r := New(newSource(), Defaults{BodyweightKg: 70})
	ex := &models.Exercise{Model: models.ExerciseModel{Characteristics: models.Characteristics{Bodyweight: true}}}
	got, err := r.SetLoad(context.Background(), 1, &models.Set{Reps: "10"}, ex, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalLoad != 800 {
		t.Errorf("load = %v, want 800", got.TotalLoad)
	}
	got, _ = r.SetLoad(context.Background(), 1, &models.Set{Reps: "10"}, ex, 90)
	if got.TotalLoad != 900 {
		t.Errorf("explicit load = %v, want 900", got.TotalLoad)
	}
}
