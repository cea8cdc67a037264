package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/remedikit/pushqueue/internal/metrics"
	"github.com/remedikit/pushqueue/internal/model"
	"github.com/remedikit/pushqueue/internal/ports"
)

// RetryScheduler decides what happens to a failed job: either a delayed
// retry with exponential backoff or the dead-letter list once retries are
// exhausted. Its Run loop is the promoter sweep moving due retries back to
// the main queue.
type RetryScheduler struct {
	queueRepo        ports.QueueRepositoryInterface
	resultRepo       ports.ResultRepositoryInterface
	maxBackoff       time.Duration
	failureResultTTL time.Duration
	sweepInterval    time.Duration
}

func NewRetryScheduler(
	queueRepo ports.QueueRepositoryInterface,
	resultRepo ports.ResultRepositoryInterface,
	maxBackoff time.Duration,
	failureResultTTL time.Duration,
	sweepInterval time.Duration,
) *RetryScheduler {
	return &RetryScheduler{
		queueRepo:        queueRepo,
		resultRepo:       resultRepo,
		maxBackoff:       maxBackoff,
		failureResultTTL: failureResultTTL,
		sweepInterval:    sweepInterval,
	}
}

// NextDelay computes the backoff before the next retry after the given
// failed attempt: 2^(attempt-1) seconds, saturating at the configured cap.
func (s *RetryScheduler) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	shift := uint(attempt - 1)
	if shift > 30 {
		shift = 30
	}
	delay := time.Duration(1<<shift) * time.Second
	if delay > s.maxBackoff {
		delay = s.maxBackoff
	}
	return delay
}

// HandleFailure receives a job whose dispatch just failed, with Attempt
// already counting that failure. Below the retry ceiling the job goes to
// the delayed set; at the ceiling it is terminal.
func (s *RetryScheduler) HandleFailure(ctx context.Context, job *model.Job, cause error) error {
	if job.Attempt < job.MaxRetries {
		delay := s.NextDelay(job.Attempt)
		dueAt := time.Now().Add(delay)
		if err := s.queueRepo.ScheduleRetry(ctx, job, dueAt); err != nil {
			return fmt.Errorf("failed to schedule retry: %w", err)
		}
		metrics.JobsProcessed.WithLabelValues("retry").Inc()
		zlog.Logger.Info().
			Str("job_id", job.ID).
			Int("attempt", job.Attempt).
			Int("max_retries", job.MaxRetries).
			Dur("delay", delay).
			Err(cause).
			Msg("delivery failed, retry scheduled")
		return nil
	}

	if err := s.queueRepo.DeadLetter(ctx, job, cause.Error()); err != nil {
		return fmt.Errorf("failed to dead-letter job: %w", err)
	}

	result := &model.JobResult{
		JobID:       job.ID,
		Success:     false,
		Error:       cause.Error(),
		Attempt:     job.Attempt,
		ProcessedAt: time.Now().UTC(),
	}
	if err := s.resultRepo.SaveResult(ctx, result, s.failureResultTTL); err != nil {
		return fmt.Errorf("failed to save terminal result: %w", err)
	}
	metrics.JobsProcessed.WithLabelValues("dead").Inc()
	return nil
}

// Run sweeps the delayed set on a fixed interval, promoting due retries.
// Promotion latency is bounded by the sweep interval.
func (s *RetryScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	zlog.Logger.Info().
		Dur("sweep_interval", s.sweepInterval).
		Msg("retry promoter started")

	for {
		select {
		case <-ctx.Done():
			zlog.Logger.Info().Msg("retry promoter stopped")
			return nil
		case <-ticker.C:
			promoted, err := s.queueRepo.PromoteDue(ctx, time.Now())
			if err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to promote due retries")
				continue
			}
			if promoted > 0 {
				metrics.JobsPromoted.Add(float64(promoted))
				zlog.Logger.Debug().Int("promoted", promoted).Msg("promoted due retries")
			}
		}
	}
}
