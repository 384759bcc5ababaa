package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about a user's stored logs.
type DataStats struct {
	TotalLogs       int64             `json:"total_logs"`
	LogsByStatus    map[string]int64  `json:"logs_by_status"`
	TotalSets       int64             `json:"total_sets"`
	TotalBodyweight int64             `json:"total_bodyweights"`
	EarliestLog     *time.Time        `json:"earliest_log"`
	LatestLog       *time.Time        `json:"latest_log"`
	LogsByWorkout   []WorkoutLogStats `json:"logs_by_workout"`
}

// WorkoutLogStats summarises the sessions of one workout template.
type WorkoutLogStats struct {
	WorkoutID   string     `json:"workout_id"`
	WorkoutName string     `json:"workout_name"`
	Count       int64      `json:"count"`
	LastStarted *time.Time `json:"last_started"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{LogsByStatus: map[string]int64{}}

	rows, err := db.Pool.Query(ctx,
		`SELECT status, COUNT(*) FROM workout_logs WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return nil, fmt.Errorf("counting logs: %w", err)
	}
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning log count: %w", err)
		}
		stats.LogsByStatus[status] = n
		stats.TotalLogs += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(jsonb_array_length(ex->'series')), 0)
		 FROM workout_logs, jsonb_array_elements(exercises) AS ex
		 WHERE user_id = $1 AND jsonb_typeof(ex->'series') = 'array'`, userID,
	).Scan(&stats.TotalSets)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM bodyweights WHERE user_id = $1`, userID,
	).Scan(&stats.TotalBodyweight)
	if err != nil {
		return nil, fmt.Errorf("counting bodyweights: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT MIN(started_at), MAX(started_at) FROM workout_logs WHERE user_id = $1`, userID,
	).Scan(&stats.EarliestLog, &stats.LatestLog)
	if err != nil {
		return nil, fmt.Errorf("querying date range: %w", err)
	}

	rows, err = db.Pool.Query(ctx,
		`SELECT workout_id, MAX(workout_name), COUNT(*), MAX(started_at)
		 FROM workout_logs
		 WHERE user_id = $1 AND status <> 'cancelado'
		 GROUP BY workout_id
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying logs by workout: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s WorkoutLogStats
		if err := rows.Scan(&s.WorkoutID, &s.WorkoutName, &s.Count, &s.LastStarted); err != nil {
			return nil, fmt.Errorf("scanning workout stat: %w", err)
		}
		stats.LogsByWorkout = append(stats.LogsByWorkout, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
