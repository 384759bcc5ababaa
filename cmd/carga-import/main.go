package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/carga/internal/config"
	"github.com/claude/carga/internal/docstore"
	"github.com/claude/carga/internal/importer"
	"github.com/claude/carga/internal/ingest"
	"github.com/claude/carga/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	uid := flag.String("uid", "", "document store user ID to import (required)")
	login := flag.String("login", "local", "local user login the logs are attributed to")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *uid == "" {
		fmt.Fprintf(os.Stderr, "Usage: carga-import -config config.yaml -uid <user id> [-login <login>] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Docstore.ProjectID == "" {
		log.Error("docstore.project_id is required for import")
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	userID, err := db.GetOrCreateUser(ctx, *login, *login)
	if err != nil {
		log.Error("failed to resolve local user", "login", *login, "error", err)
		os.Exit(1)
	}

	// Connect document store
	src, err := docstore.Open(ctx, docstore.Config{
		ProjectID:       cfg.Docstore.ProjectID,
		CredentialsFile: cfg.Docstore.CredentialsFile,
		LogsCollection:  cfg.Docstore.LogsCollection,
		UsersCollection: cfg.Docstore.UsersCollection,
	})
	if err != nil {
		log.Error("failed to open document store", "error", err)
		os.Exit(1)
	}
	defer src.Close()
	log.Info("document store connected", "project", cfg.Docstore.ProjectID)

	var importID int64
	if !*dryRun {
		importID, err = db.InsertImportLog(ctx, storage.ImportLog{
			UserID: userID,
			Source: "docstore",
			Status: "running",
		})
		if err != nil {
			log.Warn("failed to record import start", "error", err)
		}
	}

	// Run import
	started := time.Now()
	provider := ingest.NewProvider(db, cfg.Training.DefaultBodyweightKg, log)
	imp := importer.New(src, provider, userID, log, *dryRun)
	stats, importErr := imp.Import(ctx, *uid)

	if importID != 0 {
		recordImport(ctx, db, importID, userID, *uid, stats, importErr, time.Since(started), log)
	}

	printStats(log, stats)
	if importErr != nil {
		log.Error("import failed", "error", importErr)
		os.Exit(1)
	}
	log.Info("import complete")
}

// recordImport completes the import log entry created before the run.
func recordImport(ctx context.Context, db *storage.DB, id int64, userID int, uid string, stats *importer.Stats, importErr error, elapsed time.Duration, log *slog.Logger) {
	durationMs := int(elapsed.Milliseconds())
	entry := storage.ImportLog{
		UserID:              userID,
		Source:              "docstore",
		Status:              "success",
		LogsReceived:        stats.LogsRead,
		LogsInserted:        stats.LogsWritten,
		BodyweightsInserted: stats.BodyweightsWritten,
		VolumesCached:       stats.VolumesCached,
		DurationMs:          &durationMs,
	}
	if importErr != nil {
		entry.Status = "error"
		msg := importErr.Error()
		entry.ErrorMessage = &msg
	}
	meta, err := json.Marshal(map[string]any{"uid": uid, "logs_skipped": stats.LogsSkipped})
	if err == nil {
		raw := json.RawMessage(meta)
		entry.Metadata = &raw
	}
	if err := db.UpdateImportLog(ctx, id, entry); err != nil {
		log.Warn("failed to record import result", "error", err)
	}
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"logs_read", stats.LogsRead,
		"logs_written", stats.LogsWritten,
		"logs_skipped", stats.LogsSkipped,
		"bodyweights_read", stats.BodyweightsRead,
		"bodyweights_written", stats.BodyweightsWritten,
		"volumes_cached", stats.VolumesCached,
	)
}
