package load

import (
	"github.com/claude/carga/internal/models"
)

// TotalVolume sums the load of every set across exercises. With
// onlyCompleted, sets not flagged as completed are ignored. A nil or empty
// slice yields 0.
func TotalVolume(exercises []models.Exercise, userWeight float64, onlyCompleted bool) float64 {
	var total float64
	for i := range exercises {
		total += exerciseTotal(&exercises[i], userWeight, onlyCompleted)
	}
	return total
}

func exerciseTotal(ex *models.Exercise, userWeight float64, onlyCompleted bool) float64 {
	var total float64
	for i := range ex.Sets {
		set := &ex.Sets[i]
		if onlyCompleted && !set.Completed {
			continue
		}
		total += CalculateSetLoad(set, ex, userWeight).TotalLoad
	}
	return total
}

// CachedVolume returns the log's recorded volume when it is authoritative,
// i.e. present and positive.
func CachedVolume(log *models.Log) (float64, bool) {
	if log == nil || log.CachedVolume == nil || *log.CachedVolume <= 0 {
		return 0, false
	}
	return *log.CachedVolume, true
}

// ResolveVolume returns the total volume of a log, preferring the recorded
// cargaAcumulada over recomputing from completed sets.
func ResolveVolume(log *models.Log, userWeight float64) float64 {
	if log == nil {
		return 0
	}
	if v, ok := CachedVolume(log); ok {
		return v
	}
	return TotalVolume(log.Exercises, userWeight, true)
}

// ExerciseLoad is the per-set breakdown of one exercise.
type ExerciseLoad struct {
	ModelID string    `json:"modelo_id"`
	Name    string    `json:"name"`
	Volume  float64   `json:"volume"`
	Sets    []SetLoad `json:"sets"`
}

// ExerciseVolume computes the load of each counted set of ex.
func ExerciseVolume(ex *models.Exercise, userWeight float64, onlyCompleted bool) ExerciseLoad {
	if ex == nil {
		return ExerciseLoad{}
	}
	out := ExerciseLoad{ModelID: ex.ModelID, Name: ex.Model.Name, Sets: []SetLoad{}}
	for i := range ex.Sets {
		set := &ex.Sets[i]
		if onlyCompleted && !set.Completed {
			continue
		}
		sl := CalculateSetLoad(set, ex, userWeight)
		out.Volume += sl.TotalLoad
		out.Sets = append(out.Sets, sl)
	}
	return out
}

// LogVolume is the volume of a log with its per-exercise composition.
// Cached reports whether Total came from the recorded value, in which case
// it may differ from the sum of the recomputed exercises.
type LogVolume struct {
	LogID     string         `json:"log_id"`
	Total     float64        `json:"total"`
	Cached    bool           `json:"cached"`
	Exercises []ExerciseLoad `json:"exercises"`
}

// LogBreakdown resolves a log's total and recomputes each exercise over its
// completed sets.
func LogBreakdown(log *models.Log, userWeight float64) LogVolume {
	if log == nil {
		return LogVolume{Exercises: []ExerciseLoad{}}
	}
	out := LogVolume{LogID: log.ID, Exercises: make([]ExerciseLoad, 0, len(log.Exercises))}
	for i := range log.Exercises {
		out.Exercises = append(out.Exercises, ExerciseVolume(&log.Exercises[i], userWeight, true))
	}
	if v, ok := CachedVolume(log); ok {
		out.Total = v
		out.Cached = true
		return out
	}
	for _, ex := range out.Exercises {
		out.Total += ex.Volume
	}
	return out
}

// ResolveBodyweight returns the most recent positive weight in history.
// Entries sharing a date resolve to the later one. Without any, fallback is
// used, or DefaultBodyweightKg when fallback is not positive.
func ResolveBodyweight(history []models.BodyweightEntry, fallback float64) float64 {
	best := -1
	for i, e := range history {
		if e.Weight <= 0 {
			continue
		}
		if best < 0 || !e.Date.Before(history[best].Date) {
			best = i
		}
	}
	if best >= 0 {
		return float64(history[best].Weight)
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultBodyweightKg
}
