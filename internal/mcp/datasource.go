package mcp

import (
	"context"

	"github.com/claude/carga/internal/models"
	"github.com/claude/carga/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QueryLogs(ctx context.Context, f storage.LogFilter, userID int) ([]models.Log, error)
	GetLog(ctx context.Context, id string, userID int) (*models.Log, error)
	QueryBodyweights(ctx context.Context, userID int) ([]models.BodyweightEntry, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
