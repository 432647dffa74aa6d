package ports

import (
	"context"

	"github.com/wyattjouan/stagehand/pkg/domain"
)

// ProjectSource retrieves raw project bytes by identifier. Non-existence
// must be reported as *domain.ProjectNotFoundError so it stays
// distinguishable from other fetch failures.
type ProjectSource interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// CloudLogSource retrieves the most recent change entries for a project,
// newest first in wire order. Implementations may return fewer than limit.
type CloudLogSource interface {
	RecentEntries(ctx context.Context, id string, limit int) ([]domain.CloudEntry, error)
}
