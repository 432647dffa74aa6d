// Package httpsource implements the remote project and cloud-log sources
// over plain HTTP.
package httpsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wyattjouan/stagehand/internal/logging"
	"github.com/wyattjouan/stagehand/pkg/domain"
	"github.com/wyattjouan/stagehand/pkg/ports"
)

// maxPayloadBytes bounds a single project download.
const maxPayloadBytes = 64 << 20

// Client talks to a project host exposing
// GET {base}/projects/{id} for raw project bytes and
// GET {base}/logs/{id}?limit=N for recent cloud log entries.
type Client struct {
	base   string
	http   *http.Client
	logger *slog.Logger
}

var (
	_ ports.ProjectSource  = (*Client)(nil)
	_ ports.CloudLogSource = (*Client)(nil)
)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the given base URL.
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: 60 * time.Second},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the raw project bytes. A 404 maps to
// *domain.ProjectNotFoundError so the caller can show bespoke messaging.
func (c *Client) Fetch(ctx context.Context, id string) ([]byte, error) {
	u := c.base + "/projects/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building project request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching project %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &domain.ProjectNotFoundError{ID: id}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching project %s: unexpected status %s", id, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("reading project %s: %w", id, err)
	}
	c.logger.Debug("project fetched", "project", id, "bytes", len(data))
	return data, nil
}

// RecentEntries retrieves the most recent cloud log entries, newest first.
func (c *Client) RecentEntries(ctx context.Context, id string, limit int) ([]domain.CloudEntry, error) {
	u := c.base + "/logs/" + url.PathEscape(id) + "?limit=" + strconv.Itoa(limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building cloud log request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching cloud log for %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching cloud log for %s: unexpected status %s", id, resp.Status)
	}

	var entries []domain.CloudEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding cloud log for %s: %w", id, err)
	}
	return entries, nil
}
