// Package cloud rebuilds an approximate cloud-variable snapshot from the
// remote append-only change log. The log is bounded and may lag the true
// latest values; the replay is a best-effort approximation with no
// consistency guarantee under concurrent remote writers.
package cloud

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wyattjouan/stagehand/internal/logging"
	"github.com/wyattjouan/stagehand/pkg/domain"
	"github.com/wyattjouan/stagehand/pkg/ports"
)

// DefaultLimit is how many log entries are fetched per replay.
const DefaultLimit = 50

// Replayer fetches and folds the change log into a snapshot, then applies
// it to an attached session. One replay runs per successful attach, only
// when the project declares at least one cloud-marked variable.
type Replayer struct {
	source ports.CloudLogSource
	limit  int
	logger *slog.Logger
}

// Option configures the Replayer.
type Option func(*Replayer)

// WithLimit overrides the number of log entries fetched.
func WithLimit(n int) Option {
	return func(r *Replayer) {
		if n > 0 {
			r.limit = n
		}
	}
}

// WithLogger configures a logger for skip diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Replayer) { r.logger = logger }
}

// NewReplayer creates a Replayer over the given log source.
func NewReplayer(source ports.CloudLogSource, opts ...Option) *Replayer {
	r := &Replayer{
		source: source,
		limit:  DefaultLimit,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run fetches the most recent entries for the project and writes the folded
// snapshot back to the session. Only variables the project already declares
// are written; the snapshot never introduces new ones.
func (r *Replayer) Run(ctx context.Context, id string, sess *domain.Session) error {
	entries, err := r.source.RecentEntries(ctx, id, r.limit)
	if err != nil {
		return fmt.Errorf("fetching cloud log: %w", err)
	}

	snapshot := Fold(entries, r.logger)

	declared := sess.Stage.Variables()
	for name, value := range snapshot {
		if _, ok := declared[name]; !ok {
			r.logger.Warn("dropping cloud value for undeclared variable", "name", name, "project", id)
			continue
		}
		sess.Stage.SetVariable(name, value)
	}
	return nil
}

// Fold replays entries into a snapshot. Entries arrive newest first in wire
// order and are folded oldest-to-newest, so the slice is walked in reverse.
// Entries naming a variable without the cloud marker are skipped with a
// diagnostic, never applied.
func Fold(entries []domain.CloudEntry, logger *slog.Logger) map[string]any {
	if logger == nil {
		logger = logging.NewNop()
	}
	snapshot := make(map[string]any)

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if !domain.IsCloudName(e.Name) {
			logger.Warn("skipping log entry for non-cloud variable", "verb", e.Verb, "name", e.Name)
			continue
		}
		switch e.Verb {
		case domain.CloudCreate, domain.CloudSet:
			snapshot[e.Name] = e.Value
		case domain.CloudDelete:
			delete(snapshot, e.Name)
		case domain.CloudRename:
			newName, ok := e.Value.(string)
			if !ok || !domain.IsCloudName(newName) {
				logger.Warn("skipping rename to non-cloud name", "name", e.Name, "value", e.Value)
				continue
			}
			if value, exists := snapshot[e.Name]; exists {
				snapshot[newName] = value
				delete(snapshot, e.Name)
			}
		default:
			logger.Warn("skipping log entry with unknown verb", "verb", e.Verb, "name", e.Name)
		}
	}
	return snapshot
}
