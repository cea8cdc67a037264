package ports

import (
	"context"
	"time"

	"github.com/remedikit/pushqueue/internal/model"
)

// QueueRepositoryInterface is the shared-store queue state machine. Every
// transition is a single atomic store operation; the worker loop is the only
// writer that moves a job between queue states.
type QueueRepositoryInterface interface {
	// Enqueue appends a job to the main queue (FIFO tail).
	Enqueue(ctx context.Context, job *model.Job) error
	// Claim atomically moves the oldest main-queue entry to the processing
	// list and returns it together with the raw stored value, which is
	// needed to ack the exact entry later. Returns ErrQueueEmpty when there
	// is nothing to claim.
	Claim(ctx context.Context) (*model.Job, string, error)
	// AckInflight removes the exact raw entry from the processing list.
	AckInflight(ctx context.Context, raw string) error
	// ScheduleRetry inserts the job into the delayed set scored by dueAt.
	ScheduleRetry(ctx context.Context, job *model.Job, dueAt time.Time) error
	// PromoteDue moves every delayed entry with due time <= now back to the
	// claim end of the main queue and reports how many were promoted.
	PromoteDue(ctx context.Context, now time.Time) (int, error)
	// DeadLetter pushes the job's terminal failure onto the dead-letter list.
	DeadLetter(ctx context.Context, job *model.Job, reason string) error
	// Stats returns current main/processing/dead-letter list lengths.
	Stats(ctx context.Context) (model.QueueStats, error)
}

type ResultRepositoryInterface interface {
	SaveResult(ctx context.Context, result *model.JobResult, ttl time.Duration) error
	// GetResult returns ErrResultNotFound before processing completes or
	// after the TTL expires.
	GetResult(ctx context.Context, jobID string) (*model.JobResult, error)
}

type AttemptRepositoryInterface interface {
	RecordAttempt(ctx context.Context, attempt *model.DeliveryAttempt) error
	ListAttempts(ctx context.Context, jobID string) ([]*model.DeliveryAttempt, error)
}

// NotificationSender performs one delivery attempt. Ordinary delivery
// failures come back as errors; the worker treats errors and panics alike
// as a failed attempt.
type NotificationSender interface {
	Send(ctx context.Context, payload model.Payload) (string, error)
}

// FailureHandler receives a job whose dispatch failed, with its attempt
// counter already incremented.
type FailureHandler interface {
	HandleFailure(ctx context.Context, job *model.Job, cause error) error
}

type ProducerServiceInterface interface {
	Enqueue(ctx context.Context, payload model.Payload, priority model.Priority, maxRetries int) (string, error)
}
