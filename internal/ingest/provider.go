// Package ingest accepts workout logs and bodyweight history from clients
// and persists them, caching the session volume of finished logs.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/claude/carga/internal/load"
	"github.com/claude/carga/internal/models"
	"github.com/google/uuid"
)

// ErrEmptyPayload is returned when a payload carries neither logs nor weigh-ins.
var ErrEmptyPayload = errors.New("payload contains no logs or bodyweights")

// Store is the persistence used by Provider. *storage.DB satisfies it.
type Store interface {
	UpsertLogs(ctx context.Context, userID int, logs []models.Log) (int64, error)
	InsertBodyweights(ctx context.Context, userID int, entries []models.BodyweightEntry) (int64, error)
	QueryBodyweights(ctx context.Context, userID int) ([]models.BodyweightEntry, error)
}

// Result holds the outcome of an ingest operation.
type Result struct {
	LogsReceived        int    `json:"logs_received"`
	LogsInserted        int64  `json:"logs_inserted"`
	BodyweightsReceived int    `json:"bodyweights_received"`
	BodyweightsInserted int64  `json:"bodyweights_inserted"`
	VolumesCached       int    `json:"volumes_cached"`
	Message             string `json:"message,omitempty"`
}

// Provider processes LogPayloads.
type Provider struct {
	store             Store
	defaultBodyweight float64
	log               *slog.Logger
}

// NewProvider creates a Provider. defaultBodyweight is used when a user has
// no weigh-ins.
func NewProvider(store Store, defaultBodyweight float64, log *slog.Logger) *Provider {
	return &Provider{store: store, defaultBodyweight: defaultBodyweight, log: log}
}

// Ingest stores the payload for userID. Logs without an ID get a fresh UUID.
// Finished sessions that lack a recorded volume have it computed from their
// completed sets before they are written.
func (p *Provider) Ingest(ctx context.Context, payload *models.LogPayload, userID int) (*Result, error) {
	if payload == nil || (len(payload.Logs) == 0 && len(payload.Bodyweights) == 0) {
		return nil, ErrEmptyPayload
	}
	result := &Result{
		LogsReceived:        len(payload.Logs),
		BodyweightsReceived: len(payload.Bodyweights),
	}

	if len(payload.Bodyweights) > 0 {
		n, err := p.store.InsertBodyweights(ctx, userID, payload.Bodyweights)
		if err != nil {
			return result, fmt.Errorf("storing bodyweights: %w", err)
		}
		result.BodyweightsInserted = n
	}

	if len(payload.Logs) == 0 {
		return result, nil
	}

	bodyweight, err := p.bodyweight(ctx, userID, payload.Bodyweights)
	if err != nil {
		return result, err
	}

	logs := make([]models.Log, len(payload.Logs))
	copy(logs, payload.Logs)
	for i := range logs {
		if logs[i].ID == "" {
			logs[i].ID = uuid.NewString()
		}
	}
	logs = models.DedupLogs(logs)
	for i := range logs {
		if CacheVolume(&logs[i], bodyweight) {
			result.VolumesCached++
		}
	}

	n, err := p.store.UpsertLogs(ctx, userID, logs)
	if err != nil {
		return result, fmt.Errorf("storing logs: %w", err)
	}
	result.LogsInserted = n

	if dup := result.LogsReceived - len(logs); dup > 0 {
		result.Message = fmt.Sprintf("%d duplicate log IDs collapsed", dup)
	}
	if skipped := int64(len(logs)) - n; skipped > 0 {
		result.Message = fmt.Sprintf("%d logs were not written", skipped)
	}
	p.log.Info("ingested logs",
		"user_id", userID,
		"logs", result.LogsInserted,
		"bodyweights", result.BodyweightsInserted,
		"volumes_cached", result.VolumesCached)
	return result, nil
}

func (p *Provider) bodyweight(ctx context.Context, userID int, incoming []models.BodyweightEntry) (float64, error) {
	stored, err := p.store.QueryBodyweights(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("loading bodyweights: %w", err)
	}
	history := make([]models.BodyweightEntry, 0, len(stored)+len(incoming))
	history = append(append(history, stored...), incoming...)
	return load.ResolveBodyweight(history, p.defaultBodyweight), nil
}

// CacheVolume records the volume of a finished, completed log that has no
// positive cargaAcumulada yet. It reports whether the log was changed.
func CacheVolume(l *models.Log, bodyweight float64) bool {
	if l.InProgress() || l.Status != models.StatusCompleted {
		return false
	}
	if _, ok := load.CachedVolume(l); ok {
		return false
	}
	v := load.TotalVolume(l.Exercises, bodyweight, true)
	if v <= 0 {
		return false
	}
	l.CachedVolume = &v
	return true
}
