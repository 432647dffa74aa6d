// Package redis implements a cloud-log source backed by Redis lists, for
// self-hosted cloud variable setups. Writers LPUSH JSON-encoded entries,
// so index 0 is always the newest record, matching the newest-first wire
// order the replayer expects.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	backend "github.com/redis/go-redis/v9"

	"github.com/wyattjouan/stagehand/internal/logging"
	"github.com/wyattjouan/stagehand/pkg/domain"
	"github.com/wyattjouan/stagehand/pkg/ports"
)

// CloudLog reads recent change entries from a Redis list per project.
type CloudLog struct {
	client *backend.Client
	prefix string
	logger *slog.Logger
}

var _ ports.CloudLogSource = (*CloudLog)(nil)

// Option configures the CloudLog.
type Option func(*CloudLog)

// WithLogger configures a logger for decode diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CloudLog) { c.logger = logger }
}

// NewCloudLog creates a source reading lists keyed "{prefix}cloudlog:{id}".
func NewCloudLog(client *backend.Client, prefix string, opts ...Option) *CloudLog {
	c := &CloudLog{
		client: client,
		prefix: prefix,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CloudLog) key(id string) string {
	return c.prefix + "cloudlog:" + id
}

// RecentEntries returns up to limit entries, newest first. Records that do
// not decode are skipped with a diagnostic rather than failing the replay.
func (c *CloudLog) RecentEntries(ctx context.Context, id string, limit int) ([]domain.CloudEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	raw, err := c.client.LRange(ctx, c.key(id), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading cloud log list: %w", err)
	}

	entries := make([]domain.CloudEntry, 0, len(raw))
	for _, item := range raw {
		var e domain.CloudEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			c.logger.Warn("skipping undecodable cloud log record", "project", id, "err", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Append pushes a new entry to the front of the list and trims it to cap.
// Intended for self-hosted writers; the player itself only reads.
func (c *CloudLog) Append(ctx context.Context, id string, entry domain.CloudEntry, cap int64) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cloud log entry: %w", err)
	}
	key := c.key(id)
	if err := c.client.LPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("appending cloud log entry: %w", err)
	}
	if cap > 0 {
		if err := c.client.LTrim(ctx, key, 0, cap-1).Err(); err != nil {
			return fmt.Errorf("trimming cloud log: %w", err)
		}
	}
	return nil
}
