// Package importer copies a user's history from the app's document store
// into the local database.
package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/carga/internal/ingest"
	"github.com/claude/carga/internal/models"
)

// DefaultBatchSize is the number of logs handed to the sink at once.
const DefaultBatchSize = 200

// Source yields the documents of one app user. *docstore.Client satisfies it.
type Source interface {
	Logs(ctx context.Context, uid string) ([]models.Log, error)
	Bodyweights(ctx context.Context, uid string) ([]models.BodyweightEntry, error)
}

// Sink persists payloads for a local user. *ingest.Provider satisfies it.
type Sink interface {
	Ingest(ctx context.Context, payload *models.LogPayload, userID int) (*ingest.Result, error)
}

// Stats tracks import progress.
type Stats struct {
	LogsRead           int
	LogsWritten        int64
	LogsSkipped        int
	BodyweightsRead    int
	BodyweightsWritten int64
	VolumesCached      int
}

// Importer moves logs from a Source into a Sink.
type Importer struct {
	src       Source
	sink      Sink
	userID    int
	log       *slog.Logger
	dryRun    bool
	BatchSize int
}

// New creates an Importer writing on behalf of the local user userID.
func New(src Source, sink Sink, userID int, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{src: src, sink: sink, userID: userID, log: log, dryRun: dryRun, BatchSize: DefaultBatchSize}
}

// Import reads every log and weigh-in of the app user uid. Logs without a
// start time are skipped. In dry-run mode nothing is written.
func (imp *Importer) Import(ctx context.Context, uid string) (*Stats, error) {
	stats := &Stats{}

	logs, err := imp.src.Logs(ctx, uid)
	if err != nil {
		return stats, fmt.Errorf("reading logs: %w", err)
	}
	bodyweights, err := imp.src.Bodyweights(ctx, uid)
	if err != nil {
		return stats, fmt.Errorf("reading bodyweights: %w", err)
	}
	stats.LogsRead = len(logs)
	stats.BodyweightsRead = len(bodyweights)

	kept := logs[:0:0]
	for _, l := range logs {
		if l.StartedAt == nil {
			imp.log.Debug("skipping log without start time", "log_id", l.ID)
			stats.LogsSkipped++
			continue
		}
		kept = append(kept, l)
	}

	imp.log.Info("read documents", "uid", uid, "logs", len(kept), "skipped", stats.LogsSkipped,
		"bodyweights", len(bodyweights))
	if imp.dryRun {
		return stats, nil
	}

	// Weigh-ins go first so the volume cache uses the full history.
	if len(bodyweights) > 0 {
		res, err := imp.sink.Ingest(ctx, &models.LogPayload{Bodyweights: bodyweights}, imp.userID)
		if err != nil {
			return stats, fmt.Errorf("writing bodyweights: %w", err)
		}
		stats.BodyweightsWritten = res.BodyweightsInserted
	}

	size := imp.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	for start := 0; start < len(kept); start += size {
		end := min(start+size, len(kept))
		res, err := imp.sink.Ingest(ctx, &models.LogPayload{Logs: kept[start:end]}, imp.userID)
		if err != nil {
			return stats, fmt.Errorf("writing logs %d-%d: %w", start, end, err)
		}
		stats.LogsWritten += res.LogsInserted
		stats.VolumesCached += res.VolumesCached
		imp.log.Info("batch written", "logs", res.LogsInserted, "progress", fmt.Sprintf("%d/%d", end, len(kept)))
	}
	return stats, nil
}
