package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/remedikit/pushqueue/internal/metrics"
	"github.com/remedikit/pushqueue/internal/model"
	"github.com/remedikit/pushqueue/internal/ports"
	"github.com/remedikit/pushqueue/internal/repository"
)

// Worker is the single queue consumer: it claims jobs one at a time,
// dispatches them to the sender and classifies the outcome. A failure
// inside one job never stops the loop.
type Worker struct {
	queueRepo        ports.QueueRepositoryInterface
	resultRepo       ports.ResultRepositoryInterface
	attemptRepo      ports.AttemptRepositoryInterface
	sender           ports.NotificationSender
	failureHandler   ports.FailureHandler
	pollInterval     time.Duration
	successResultTTL time.Duration
}

func NewWorker(
	queueRepo ports.QueueRepositoryInterface,
	resultRepo ports.ResultRepositoryInterface,
	attemptRepo ports.AttemptRepositoryInterface,
	sender ports.NotificationSender,
	failureHandler ports.FailureHandler,
	pollInterval time.Duration,
	successResultTTL time.Duration,
) *Worker {
	return &Worker{
		queueRepo:        queueRepo,
		resultRepo:       resultRepo,
		attemptRepo:      attemptRepo,
		sender:           sender,
		failureHandler:   failureHandler,
		pollInterval:     pollInterval,
		successResultTTL: successResultTTL,
	}
}

// Run polls until the context is cancelled. Cancellation is observed at the
// next poll boundary; an in-flight dispatch is never preempted.
func (w *Worker) Run(ctx context.Context) error {
	zlog.Logger.Info().
		Dur("poll_interval", w.pollInterval).
		Msg("worker started")

	for {
		if ctx.Err() != nil {
			zlog.Logger.Info().Msg("worker stopped")
			return nil
		}

		job, raw, err := w.queueRepo.Claim(ctx)
		switch {
		case errors.Is(err, repository.ErrQueueEmpty):
			if !w.wait(ctx) {
				zlog.Logger.Info().Msg("worker stopped")
				return nil
			}
			continue
		case errors.Is(err, repository.ErrCorruptEntry):
			continue
		case err != nil:
			// Store unavailability on the idle path: log and back off for
			// the standard poll interval, then try the claim again.
			zlog.Logger.Error().Err(err).Msg("failed to claim job")
			if !w.wait(ctx) {
				zlog.Logger.Info().Msg("worker stopped")
				return nil
			}
			continue
		}

		w.process(ctx, job, raw)
	}
}

// wait sleeps for one poll interval, returning false when the context is
// cancelled first.
func (w *Worker) wait(ctx context.Context) bool {
	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (w *Worker) process(ctx context.Context, job *model.Job, raw string) {
	job.Attempt++

	messageID, err := w.dispatch(ctx, job)
	w.recordAttempt(ctx, job, messageID, err)

	if err != nil {
		if ackErr := w.queueRepo.AckInflight(ctx, raw); ackErr != nil {
			zlog.Logger.Error().Err(ackErr).Str("job_id", job.ID).Msg("failed to remove failed job from in-flight list")
		}
		if hErr := w.failureHandler.HandleFailure(ctx, job, err); hErr != nil {
			zlog.Logger.Error().Err(hErr).Str("job_id", job.ID).Msg("failed to hand off failed job")
		}
		return
	}

	result := &model.JobResult{
		JobID:       job.ID,
		Success:     true,
		MessageID:   messageID,
		Attempt:     job.Attempt,
		ProcessedAt: time.Now().UTC(),
	}
	if err := w.resultRepo.SaveResult(ctx, result, w.successResultTTL); err != nil {
		zlog.Logger.Error().Err(err).Str("job_id", job.ID).Msg("failed to save success result")
	}
	if err := w.queueRepo.AckInflight(ctx, raw); err != nil {
		zlog.Logger.Error().Err(err).Str("job_id", job.ID).Msg("failed to remove job from in-flight list")
	}

	metrics.JobsProcessed.WithLabelValues("success").Inc()
	zlog.Logger.Info().
		Str("job_id", job.ID).
		Str("message_id", messageID).
		Int("attempt", job.Attempt).
		Msg("notification delivered")
}

// dispatch calls the sender, converting a panic into an ordinary failed
// attempt so one bad payload cannot take down the loop.
func (w *Worker) dispatch(ctx context.Context, job *model.Job) (messageID string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("sender panic: %v", rec)
		}
	}()
	return w.sender.Send(ctx, job.Payload)
}

func (w *Worker) recordAttempt(ctx context.Context, job *model.Job, messageID string, sendErr error) {
	if w.attemptRepo == nil {
		return
	}

	attempt := &model.DeliveryAttempt{
		ID:          uuid.New().String(),
		JobID:       job.ID,
		Attempt:     job.Attempt,
		Success:     sendErr == nil,
		MessageID:   messageID,
		Channel:     job.Payload.Channel,
		AttemptedAt: time.Now().UTC(),
	}
	if sendErr != nil {
		attempt.Error = sendErr.Error()
	}

	if err := w.attemptRepo.RecordAttempt(ctx, attempt); err != nil {
		zlog.Logger.Error().Err(err).Str("job_id", job.ID).Msg("failed to record delivery attempt")
	}
}
