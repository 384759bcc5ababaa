package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ImportLog records the outcome of one ingest or import run.
type ImportLog struct {
	ID                  int64            `json:"id"`
	UserID              int              `json:"user_id"`
	CreatedAt           time.Time        `json:"created_at"`
	Source              string           `json:"source"`
	Status              string           `json:"status"`
	LogsReceived        int              `json:"logs_received"`
	LogsInserted        int64            `json:"logs_inserted"`
	BodyweightsInserted int64            `json:"bodyweights_inserted"`
	VolumesCached       int              `json:"volumes_cached"`
	DurationMs          *int             `json:"duration_ms"`
	ErrorMessage        *string          `json:"error_message"`
	Metadata            *json.RawMessage `json:"metadata"`
}

// InsertImportLog creates a new import log entry and returns its ID.
func (db *DB) InsertImportLog(ctx context.Context, log ImportLog) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO import_logs (user_id, source, status, logs_received, logs_inserted,
		 bodyweights_inserted, volumes_cached, duration_ms, error_message, metadata)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 RETURNING id`,
		log.UserID, log.Source, log.Status, log.LogsReceived, log.LogsInserted,
		log.BodyweightsInserted, log.VolumesCached, log.DurationMs, log.ErrorMessage, log.Metadata,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	return id, nil
}

// UpdateImportLog moves an entry from "running" to its final state.
func (db *DB) UpdateImportLog(ctx context.Context, id int64, log ImportLog) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE import_logs SET
		 status = $2, logs_received = $3, logs_inserted = $4,
		 bodyweights_inserted = $5, volumes_cached = $6,
		 duration_ms = $7, error_message = $8, metadata = $9
		 WHERE id = $1`,
		id, log.Status, log.LogsReceived, log.LogsInserted,
		log.BodyweightsInserted, log.VolumesCached,
		log.DurationMs, log.ErrorMessage, log.Metadata,
	)
	if err != nil {
		return fmt.Errorf("updating import log %d: %w", id, err)
	}
	return nil
}

// QueryImportLogs returns the most recent import logs for a user.
func (db *DB) QueryImportLogs(ctx context.Context, userID, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, created_at, source, status, logs_received, logs_inserted,
		 bodyweights_inserted, volumes_cached, duration_ms, error_message, metadata
		 FROM import_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	var result []ImportLog
	for rows.Next() {
		var l ImportLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.CreatedAt, &l.Source, &l.Status,
			&l.LogsReceived, &l.LogsInserted, &l.BodyweightsInserted, &l.VolumesCached,
			&l.DurationMs, &l.ErrorMessage, &l.Metadata); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
