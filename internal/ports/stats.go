package ports

import (
	"context"

	"github.com/remedikit/pushqueue/internal/model"
)

// StatsProviderInterface is the read-only operational view of the queue.
type StatsProviderInterface interface {
	Stats(ctx context.Context) (model.QueueStats, error)
}
