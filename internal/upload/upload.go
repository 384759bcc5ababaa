// Package upload sends workout log exports from disk to a carga server.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/carga/internal/models"
)

// ErrEmptyFile is returned by DecodeFile when a file holds no logs or weigh-ins.
var ErrEmptyFile = errors.New("no logs or bodyweights in file")

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	LogsSent        int
	BodyweightsSent int
}

// Sender delivers a payload to the server. *Client satisfies it.
type Sender interface {
	SendPayload(ctx context.Context, payload *models.LogPayload) error
}

// Uploader walks an export directory and POSTs each JSON file.
type Uploader struct {
	client Sender
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. client may be nil in dry-run mode.
func New(client Sender, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{client: client, state: state, dir: dir, dryRun: dryRun, log: log}
}

// Run uploads every *.json file under the directory that has not been sent
// before. Per-file failures are counted and logged; only state database
// errors abort the run.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	err := filepath.WalkDir(u.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		u.stats.FilesTotal++
		return u.processFile(ctx, path)
	})
	if err != nil {
		return &u.stats, fmt.Errorf("walking %s: %w", u.dir, err)
	}
	return &u.stats, nil
}

func (u *Uploader) processFile(ctx context.Context, path string) error {
	rel, err := filepath.Rel(u.dir, path)
	if err != nil {
		rel = path
	}
	info, err := os.Stat(path)
	if err != nil {
		u.log.Warn("stat failed", "file", rel, "error", err)
		u.stats.FilesErrored++
		return nil
	}
	hash, err := HashFile(path)
	if err != nil {
		u.log.Warn("hash failed", "file", rel, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	if u.state != nil {
		done, err := u.state.IsUploaded(rel, info.Size(), hash)
		if err != nil {
			return err
		}
		if done {
			u.stats.FilesSkipped++
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		u.log.Warn("read failed", "file", rel, "error", err)
		u.stats.FilesErrored++
		return nil
	}
	payload, err := DecodeFile(data)
	if errors.Is(err, ErrEmptyFile) {
		u.log.Info("skipping empty export", "file", rel)
		u.stats.FilesSkipped++
		return nil
	}
	if err != nil {
		u.log.Warn("parse failed", "file", rel, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	if !u.dryRun {
		if err := u.client.SendPayload(ctx, payload); err != nil {
			u.log.Error("upload failed", "file", rel, "error", err)
			u.stats.FilesErrored++
			return nil
		}
		if u.state != nil {
			if err := u.state.MarkUploaded(rel, info.Size(), hash, len(payload.Logs)); err != nil {
				return err
			}
		}
	}

	u.stats.FilesUploaded++
	u.stats.LogsSent += len(payload.Logs)
	u.stats.BodyweightsSent += len(payload.Bodyweights)
	u.log.Info("uploaded", "file", rel, "logs", len(payload.Logs), "bodyweights", len(payload.Bodyweights))
	return nil
}

// DecodeFile accepts a single log object, an array of logs, or a LogPayload
// envelope with "logs" and "bodyweights" keys.
func DecodeFile(data []byte) (*models.LogPayload, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	payload := &models.LogPayload{}
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &payload.Logs); err != nil {
			return nil, fmt.Errorf("decoding log array: %w", err)
		}
	case '{':
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(data, &keys); err != nil {
			return nil, fmt.Errorf("decoding object: %w", err)
		}
		_, hasLogs := keys["logs"]
		_, hasBodyweights := keys["bodyweights"]
		if hasLogs || hasBodyweights {
			if err := json.Unmarshal(data, payload); err != nil {
				return nil, fmt.Errorf("decoding payload: %w", err)
			}
			break
		}
		var l models.Log
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("decoding log: %w", err)
		}
		payload.Logs = []models.Log{l}
	default:
		return nil, fmt.Errorf("unexpected JSON value starting with %q", data[0])
	}

	if len(payload.Logs) == 0 && len(payload.Bodyweights) == 0 {
		return nil, ErrEmptyFile
	}
	return payload, nil
}
