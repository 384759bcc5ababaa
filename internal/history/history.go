// Package history selects the recent sessions a log is compared against and
// derives one statistic per session for progress charts.
package history

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/claude/carga/internal/load"
	"github.com/claude/carga/internal/models"
)

// MaxWindow is the largest number of sessions returned, current included.
const MaxWindow = 4

// ErrUnknownStatistic is returned by ParseStatistic.
var ErrUnknownStatistic = errors.New("unknown statistic")

// Statistic selects what is measured per session in exercise history.
type Statistic string

const (
	Accumulated Statistic = "acumulada"
	Maximum     Statistic = "maxima"
	Minimum     Statistic = "minima"
	Mean        Statistic = "media"
)

// ParseStatistic maps a filter name to a Statistic. Empty means Accumulated.
func ParseStatistic(s string) (Statistic, error) {
	switch Statistic(s) {
	case "":
		return Accumulated, nil
	case Accumulated, Maximum, Minimum, Mean:
		return Statistic(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatistic, s)
}

// Entry is one session in a comparison window.
type Entry struct {
	LogID     string    `json:"log_id"`
	Label     string    `json:"label"`
	StartedAt time.Time `json:"started_at"`
	Value     float64   `json:"value"`
	Current   bool      `json:"current"`
}

// Window returns up to MaxWindow logs ending with the one identified by
// currentID. Logs without a start time, cancelled logs and logs rejected by
// match are dropped; the rest are ordered by start time. The result is empty
// when currentID does not survive filtering.
func Window(logs []models.Log, currentID string, match func(*models.Log) bool) []*models.Log {
	candidates := make([]*models.Log, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		if l.StartedAt == nil || l.Cancelled() || !match(l) {
			continue
		}
		candidates = append(candidates, l)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].StartedAt.Before(*candidates[j].StartedAt)
	})

	current := -1
	for i, l := range candidates {
		if l.ID == currentID {
			current = i
			break
		}
	}
	if current < 0 {
		return nil
	}
	return candidates[max(0, current-(MaxWindow-1)) : current+1]
}

// Selector builds labelled comparison series. Bodyweight feeds the load
// calculation; Location controls the D/M labels and defaults to UTC.
type Selector struct {
	Bodyweight float64
	Location   *time.Location
}

// Workout returns the volume of current and up to three earlier sessions of
// the same workout template.
func (s Selector) Workout(logs []models.Log, current *models.Log) []Entry {
	if current == nil {
		return []Entry{}
	}
	workoutID := current.Workout.ID
	window := Window(logs, current.ID, func(l *models.Log) bool {
		return l.Workout.ID == workoutID
	})
	return s.entries(window, current.ID, func(l *models.Log) float64 {
		return load.ResolveVolume(l, s.Bodyweight)
	})
}

// Exercise returns stat for one exercise over current and up to three
// earlier sessions containing it. Only completed sets are considered.
func (s Selector) Exercise(logs []models.Log, currentID, modelID string, stat Statistic) []Entry {
	window := Window(logs, currentID, func(l *models.Log) bool {
		return l.HasExercise(modelID)
	})
	return s.entries(window, currentID, func(l *models.Log) float64 {
		return exerciseStatistic(l.FindExercise(modelID), stat, s.Bodyweight)
	})
}

func (s Selector) entries(window []*models.Log, currentID string, value func(*models.Log) float64) []Entry {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	out := make([]Entry, 0, len(window))
	for _, l := range window {
		started := l.StartedAt.In(loc)
		out = append(out, Entry{
			LogID:     l.ID,
			Label:     load.DayMonth(started),
			StartedAt: started,
			Value:     value(l),
			Current:   l.ID == currentID,
		})
	}
	return out
}

func exerciseStatistic(ex *models.Exercise, stat Statistic, bodyweight float64) float64 {
	if ex == nil {
		return 0
	}
	if stat == Accumulated {
		return load.ExerciseVolume(ex, bodyweight, true).Volume
	}

	var weights []float64
	for _, set := range ex.Sets {
		if set.Completed && set.Weight > 0 {
			weights = append(weights, float64(set.Weight))
		}
	}
	if len(weights) == 0 {
		return 0
	}

	switch stat {
	case Maximum:
		m := weights[0]
		for _, w := range weights[1:] {
			m = max(m, w)
		}
		return m
	case Minimum:
		m := weights[0]
		for _, w := range weights[1:] {
			m = min(m, w)
		}
		return m
	case Mean:
		var sum float64
		for _, w := range weights {
			sum += w
		}
		return sum / float64(len(weights))
	}
	return 0
}
