package load

import (
	"fmt"
	"time"

	"github.com/claude/carga/internal/models"
)

// DefaultWeeks is the number of weekly buckets returned when none is asked for.
const DefaultWeeks = 8

// WeekVolume is the total volume of finished sessions in one calendar week.
type WeekVolume struct {
	WeekStart time.Time `json:"week_start"`
	Label     string    `json:"label"`
	Volume    float64   `json:"volume"`
	Sessions  int       `json:"sessions"`
}

// WeeklyVolume buckets finished, non-cancelled logs into Monday-based weeks
// in now's location. It always returns exactly weeks buckets, oldest first,
// the last one containing now.
func WeeklyVolume(logs []models.Log, userWeight float64, weeks int, now time.Time) []WeekVolume {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	loc := now.Location()
	last := WeekStart(now)
	first := last.AddDate(0, 0, -7*(weeks-1))

	out := make([]WeekVolume, weeks)
	index := make(map[int64]int, weeks)
	for i := range out {
		ws := first.AddDate(0, 0, 7*i)
		out[i] = WeekVolume{WeekStart: ws, Label: DayMonth(ws)}
		index[ws.Unix()] = i
	}

	for i := range logs {
		l := &logs[i]
		if l.StartedAt == nil || l.Cancelled() || l.InProgress() {
			continue
		}
		idx, ok := index[WeekStart(l.StartedAt.In(loc)).Unix()]
		if !ok {
			continue
		}
		out[idx].Volume += ResolveVolume(l, userWeight)
		out[idx].Sessions++
	}
	return out
}

// WeekStart returns Monday 00:00 of t's week in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// DayMonth formats t as "D/M" without padding.
func DayMonth(t time.Time) string {
	return fmt.Sprintf("%d/%d", t.Day(), int(t.Month()))
}
