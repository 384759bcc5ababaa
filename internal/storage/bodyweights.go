package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/carga/internal/models"
)

// InsertBodyweights stores weigh-ins, updating the weight of an existing
// entry at the same instant. Entries with a zero date or weight are skipped.
func (db *DB) InsertBodyweights(ctx context.Context, userID int, entries []models.BodyweightEntry) (int64, error) {
	valueStrings := make([]string, 0, len(entries))
	args := make([]any, 0, len(entries)*3)
	seen := make(map[int64]bool, len(entries))
	for _, e := range entries {
		if e.Date.IsZero() || e.Weight <= 0 {
			continue
		}
		// A single statement cannot touch the same key twice.
		key := e.Date.UnixNano()
		if seen[key] {
			continue
		}
		seen[key] = true
		base := len(args)
		valueStrings = append(valueStrings, fmt.Sprintf("($%d,$%d,$%d)", base+1, base+2, base+3))
		args = append(args, userID, e.Date, float64(e.Weight))
	}
	if len(valueStrings) == 0 {
		return 0, nil
	}

	query := `INSERT INTO bodyweights (user_id, measured_at, weight_kg) VALUES ` +
		strings.Join(valueStrings, ",") +
		` ON CONFLICT (user_id, measured_at) DO UPDATE SET weight_kg = EXCLUDED.weight_kg`

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting bodyweights: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryBodyweights returns the user's weight history, oldest first.
func (db *DB) QueryBodyweights(ctx context.Context, userID int) ([]models.BodyweightEntry, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT measured_at, weight_kg FROM bodyweights
		 WHERE user_id = $1
		 ORDER BY measured_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying bodyweights: %w", err)
	}
	defer rows.Close()

	var result []models.BodyweightEntry
	for rows.Next() {
		var (
			e  models.BodyweightEntry
			kg float64
		)
		if err := rows.Scan(&e.Date, &kg); err != nil {
			return nil, fmt.Errorf("scanning bodyweight: %w", err)
		}
		e.Weight = models.Kg(kg)
		result = append(result, e)
	}
	return result, rows.Err()
}
