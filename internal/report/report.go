// Package report fetches a user's stored logs and runs the load, volume and
// history calculations over them. It backs both the REST API and the MCP
// tools.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/carga/internal/history"
	"github.com/claude/carga/internal/load"
	"github.com/claude/carga/internal/models"
	"github.com/claude/carga/internal/storage"
)

// MaxWeeks bounds weekly volume requests.
const MaxWeeks = 52

// Source is the read side of the data layer. *storage.DB satisfies it.
type Source interface {
	QueryLogs(ctx context.Context, f storage.LogFilter, userID int) ([]models.Log, error)
	GetLog(ctx context.Context, id string, userID int) (*models.Log, error)
	QueryBodyweights(ctx context.Context, userID int) ([]models.BodyweightEntry, error)
}

// Compile-time check: *storage.DB satisfies Source.
var _ Source = (*storage.DB)(nil)

// Defaults apply when a user has no stored weigh-ins and to date labels.
type Defaults struct {
	BodyweightKg float64
	Location     *time.Location
}

// Reporter computes derived views over a Source.
type Reporter struct {
	src      Source
	defaults Defaults
}

// New creates a Reporter.
func New(src Source, defaults Defaults) *Reporter {
	if defaults.Location == nil {
		defaults.Location = time.UTC
	}
	return &Reporter{src: src, defaults: defaults}
}

// Location returns the timezone used for labels and week boundaries.
func (r *Reporter) Location() *time.Location {
	return r.defaults.Location
}

// Bodyweight is a user's current weight and the history it came from.
type Bodyweight struct {
	Current float64                  `json:"current"`
	History []models.BodyweightEntry `json:"history"`
}

// Bodyweight resolves the user's current bodyweight.
func (r *Reporter) Bodyweight(ctx context.Context, userID int) (*Bodyweight, error) {
	entries, err := r.src.QueryBodyweights(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading bodyweights: %w", err)
	}
	if entries == nil {
		entries = []models.BodyweightEntry{}
	}
	return &Bodyweight{
		Current: load.ResolveBodyweight(entries, r.defaults.BodyweightKg),
		History: entries,
	}, nil
}

func (r *Reporter) currentBodyweight(ctx context.Context, userID int) (float64, error) {
	bw, err := r.Bodyweight(ctx, userID)
	if err != nil {
		return 0, err
	}
	return bw.Current, nil
}

func (r *Reporter) selector(bodyweight float64) history.Selector {
	return history.Selector{Bodyweight: bodyweight, Location: r.defaults.Location}
}

// SetLoad calculates one set. A userWeight that is not positive is replaced
// by the user's current bodyweight.
func (r *Reporter) SetLoad(ctx context.Context, userID int, set *models.Set, ex *models.Exercise, userWeight float64) (load.SetLoad, error) {
	if userWeight <= 0 {
		bw, err := r.currentBodyweight(ctx, userID)
		if err != nil {
			return load.SetLoad{}, err
		}
		userWeight = bw
	}
	return load.CalculateSetLoad(set, ex, userWeight), nil
}

// LogVolume returns the volume breakdown of one log. Errors from GetLog,
// including storage.ErrLogNotFound, are returned wrapped.
func (r *Reporter) LogVolume(ctx context.Context, userID int, logID string) (*load.LogVolume, error) {
	l, err := r.src.GetLog(ctx, logID, userID)
	if err != nil {
		return nil, fmt.Errorf("loading log: %w", err)
	}
	bw, err := r.currentBodyweight(ctx, userID)
	if err != nil {
		return nil, err
	}
	v := load.LogBreakdown(l, bw)
	return &v, nil
}

// WorkoutHistory is the comparison window of a log against earlier sessions
// of the same workout.
type WorkoutHistory struct {
	LogID     string          `json:"log_id"`
	WorkoutID string          `json:"workout_id"`
	Entries   []history.Entry `json:"entries"`
}

// WorkoutHistory returns the volume of logID and up to three earlier
// sessions of its workout.
func (r *Reporter) WorkoutHistory(ctx context.Context, userID int, logID string) (*WorkoutHistory, error) {
	current, err := r.src.GetLog(ctx, logID, userID)
	if err != nil {
		return nil, fmt.Errorf("loading log: %w", err)
	}
	logs, err := r.src.QueryLogs(ctx, storage.LogFilter{WorkoutID: current.Workout.ID}, userID)
	if err != nil {
		return nil, fmt.Errorf("loading workout history: %w", err)
	}
	bw, err := r.currentBodyweight(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &WorkoutHistory{
		LogID:     current.ID,
		WorkoutID: current.Workout.ID,
		Entries:   r.selector(bw).Workout(logs, current),
	}, nil
}

// ExerciseHistory is the comparison window of one exercise.
type ExerciseHistory struct {
	LogID     string            `json:"log_id"`
	ModelID   string            `json:"modelo_id"`
	Statistic history.Statistic `json:"statistic"`
	Entries   []history.Entry   `json:"entries"`
}

// ExerciseHistory returns stat for modelID over logID and up to three
// earlier sessions containing the exercise. An unknown logID yields
// storage.ErrLogNotFound; a known log without the exercise yields no entries.
func (r *Reporter) ExerciseHistory(ctx context.Context, userID int, logID, modelID string, stat history.Statistic) (*ExerciseHistory, error) {
	if _, err := r.src.GetLog(ctx, logID, userID); err != nil {
		return nil, fmt.Errorf("loading log: %w", err)
	}
	logs, err := r.src.QueryLogs(ctx, storage.LogFilter{ModelID: modelID}, userID)
	if err != nil {
		return nil, fmt.Errorf("loading exercise history: %w", err)
	}
	bw, err := r.currentBodyweight(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ExerciseHistory{
		LogID:     logID,
		ModelID:   modelID,
		Statistic: stat,
		Entries:   r.selector(bw).Exercise(logs, logID, modelID, stat),
	}, nil
}

// WeeklyVolume returns the volume of the last weeks calendar weeks ending
// with the week containing now. weeks defaults to load.DefaultWeeks and is
// capped at MaxWeeks.
func (r *Reporter) WeeklyVolume(ctx context.Context, userID, weeks int, now time.Time) ([]load.WeekVolume, error) {
	if weeks <= 0 {
		weeks = load.DefaultWeeks
	}
	weeks = min(weeks, MaxWeeks)
	now = now.In(r.defaults.Location)
	start := load.WeekStart(now).AddDate(0, 0, -7*(weeks-1))

	logs, err := r.src.QueryLogs(ctx, storage.LogFilter{Start: start}, userID)
	if err != nil {
		return nil, fmt.Errorf("loading logs: %w", err)
	}
	bw, err := r.currentBodyweight(ctx, userID)
	if err != nil {
		return nil, err
	}
	return load.WeeklyVolume(logs, bw, weeks, now), nil
}
