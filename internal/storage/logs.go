package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/carga/internal/models"
	"github.com/jackc/pgx/v5"
)

// ErrLogNotFound is returned by GetLog when no log matches.
var ErrLogNotFound = errors.New("log not found")

// upsertBatch bounds the number of rows per INSERT statement.
const upsertBatch = 200

// LogFilter narrows QueryLogs. Zero values mean "no constraint".
type LogFilter struct {
	Start     time.Time
	End       time.Time
	WorkoutID string
	ModelID   string
}

const logColumns = `id, source_uid, workout_id, workout_name, status,
	started_at, finished_at, cached_volume, exercises`

// UpsertLogs inserts logs, replacing any existing log with the same ID for
// the user. Repeated IDs collapse to their last occurrence. Returns the
// number of rows written.
func (db *DB) UpsertLogs(ctx context.Context, userID int, logs []models.Log) (int64, error) {
	// A single statement cannot touch the same key twice.
	logs = models.DedupLogs(logs)
	var total int64
	for start := 0; start < len(logs); start += upsertBatch {
		end := min(start+upsertBatch, len(logs))
		n, err := db.upsertLogBatch(ctx, userID, logs[start:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (db *DB) upsertLogBatch(ctx context.Context, userID int, logs []models.Log) (int64, error) {
	query := `INSERT INTO workout_logs (user_id, id, source_uid, workout_id, workout_name, status,
		started_at, finished_at, cached_volume, exercises) VALUES `
	args := make([]any, 0, len(logs)*10)
	valueStrings := make([]string, 0, len(logs))

	for i, l := range logs {
		exercises, err := json.Marshal(exercisesOrEmpty(l.Exercises))
		if err != nil {
			return 0, fmt.Errorf("encoding exercises of log %s: %w", l.ID, err)
		}
		base := i * 10
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10,
		))
		args = append(args, userID, l.ID, l.UserID, l.Workout.ID, l.Workout.Name, string(l.Status),
			l.StartedAt, l.FinishedAt, l.CachedVolume, exercises)
	}

	query += strings.Join(valueStrings, ",") + `
		ON CONFLICT (user_id, id) DO UPDATE SET
			source_uid = EXCLUDED.source_uid,
			workout_id = EXCLUDED.workout_id,
			workout_name = EXCLUDED.workout_name,
			status = EXCLUDED.status,
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at,
			cached_volume = EXCLUDED.cached_volume,
			exercises = EXCLUDED.exercises,
			updated_at = NOW()`

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upserting logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetLog returns a single log owned by userID.
func (db *DB) GetLog(ctx context.Context, id string, userID int) (*models.Log, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+logColumns+` FROM workout_logs WHERE user_id = $1 AND id = $2`,
		userID, id)
	l, err := scanLog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting log %s: %w", id, err)
	}
	return l, nil
}

// QueryLogs returns the user's logs matching f, oldest first. Logs without
// a start time sort last.
func (db *DB) QueryLogs(ctx context.Context, f LogFilter, userID int) ([]models.Log, error) {
	query, args := buildLogQuery(f, userID)
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying logs: %w", err)
	}
	defer rows.Close()

	var result []models.Log
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning log: %w", err)
		}
		result = append(result, *l)
	}
	return result, rows.Err()
}

func buildLogQuery(f LogFilter, userID int) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{userID}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if !f.Start.IsZero() {
		add("started_at >= $%d", f.Start)
	}
	if !f.End.IsZero() {
		add("started_at < $%d", f.End)
	}
	if f.WorkoutID != "" {
		add("workout_id = $%d", f.WorkoutID)
	}
	if f.ModelID != "" {
		containment, _ := json.Marshal([]map[string]string{{"modeloId": f.ModelID}})
		add("exercises @> $%d::jsonb", string(containment))
	}
	query := `SELECT ` + logColumns + ` FROM workout_logs WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY started_at ASC NULLS LAST, id ASC`
	return query, args
}

func scanLog(row pgx.Row) (*models.Log, error) {
	var (
		l         models.Log
		status    string
		exercises []byte
	)
	if err := row.Scan(&l.ID, &l.UserID, &l.Workout.ID, &l.Workout.Name, &status,
		&l.StartedAt, &l.FinishedAt, &l.CachedVolume, &exercises); err != nil {
		return nil, err
	}
	l.Status = models.LogStatus(status)
	if len(exercises) > 0 {
		if err := json.Unmarshal(exercises, &l.Exercises); err != nil {
			return nil, fmt.Errorf("decoding exercises of log %s: %w", l.ID, err)
		}
	}
	return &l, nil
}

func exercisesOrEmpty(ex []models.Exercise) []models.Exercise {
	if ex == nil {
		return []models.Exercise{}
	}
	return ex
}
