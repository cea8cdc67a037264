package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/remedikit/pushqueue/internal/metrics"
	"github.com/remedikit/pushqueue/internal/model"
	"github.com/remedikit/pushqueue/internal/ports"
)

// Producer accepts notification requests and appends jobs to the main
// queue. It returns as soon as the job is stored; delivery outcome is
// observable only through the result lookup.
type Producer struct {
	queueRepo         ports.QueueRepositoryInterface
	defaultMaxRetries int
}

func NewProducer(queueRepo ports.QueueRepositoryInterface, defaultMaxRetries int) *Producer {
	return &Producer{
		queueRepo:         queueRepo,
		defaultMaxRetries: defaultMaxRetries,
	}
}

// Enqueue builds a job with attempt 0 and a generated id and stores it.
// No payload validation happens here; an invalid payload surfaces later as
// a failed delivery attempt.
func (p *Producer) Enqueue(ctx context.Context, payload model.Payload, priority model.Priority, maxRetries int) (string, error) {
	if maxRetries <= 0 {
		maxRetries = p.defaultMaxRetries
	}
	if priority == "" {
		priority = model.PriorityNormal
	}

	job := &model.Job{
		ID:         uuid.New().String(),
		Payload:    payload,
		Priority:   priority,
		Attempt:    0,
		MaxRetries: maxRetries,
		CreatedAt:  time.Now().UTC(),
	}

	if err := p.queueRepo.Enqueue(ctx, job); err != nil {
		return "", fmt.Errorf("producer failed to enqueue job: %w", err)
	}

	metrics.JobsEnqueued.WithLabelValues(string(priority)).Inc()
	zlog.Logger.Info().
		Str("job_id", job.ID).
		Str("channel", string(payload.Channel)).
		Str("priority", string(priority)).
		Msg("job enqueued")
	return job.ID, nil
}
