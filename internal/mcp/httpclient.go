package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/carga/internal/models"
	"github.com/claude/carga/internal/storage"
)

// HTTPClient implements DataSource by calling the carga REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

var errNotFound = errors.New("not found")

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("httpclient: %s: %w", path, errNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

// QueryLogs lists logs through GET /api/v1/logs. Zero filter fields are
// left out of the query.
func (c *HTTPClient) QueryLogs(ctx context.Context, f storage.LogFilter, _ int) ([]models.Log, error) {
	params := url.Values{}
	if !f.Start.IsZero() {
		params.Set("start", f.Start.Format(time.RFC3339))
	}
	if !f.End.IsZero() {
		params.Set("end", f.End.Format(time.RFC3339))
	}
	if f.WorkoutID != "" {
		params.Set("workout", f.WorkoutID)
	}
	if f.ModelID != "" {
		params.Set("exercise", f.ModelID)
	}

	body, err := c.get(ctx, "/api/v1/logs", params)
	if err != nil {
		return nil, err
	}

	var logs []models.Log
	if err := json.Unmarshal(body, &logs); err != nil {
		return nil, fmt.Errorf("httpclient: decode logs: %w", err)
	}
	return logs, nil
}

// GetLog fetches one log. A 404 maps to storage.ErrLogNotFound.
func (c *HTTPClient) GetLog(ctx context.Context, id string, _ int) (*models.Log, error) {
	body, err := c.get(ctx, "/api/v1/logs/"+url.PathEscape(id), nil)
	if errors.Is(err, errNotFound) {
		return nil, storage.ErrLogNotFound
	}
	if err != nil {
		return nil, err
	}

	var l models.Log
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, fmt.Errorf("httpclient: decode log: %w", err)
	}
	return &l, nil
}

// QueryBodyweights reads the weigh-in history from GET /api/v1/bodyweight.
func (c *HTTPClient) QueryBodyweights(ctx context.Context, _ int) ([]models.BodyweightEntry, error) {
	body, err := c.get(ctx, "/api/v1/bodyweight", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		History []models.BodyweightEntry `json:"history"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode bodyweights: %w", err)
	}
	return resp.History, nil
}
