package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/remedikit/pushqueue/internal/model"
)

// AttemptRepository keeps the per-attempt delivery audit trail. It serves
// operator queries only; the queue never reads it back to make decisions.
type AttemptRepository struct {
	db       *dbpg.DB
	strategy retry.Strategy
}

func NewAttemptRepository(db *dbpg.DB, strategy retry.Strategy) *AttemptRepository {
	return &AttemptRepository{
		db:       db,
		strategy: strategy,
	}
}

func (r *AttemptRepository) RecordAttempt(ctx context.Context, attempt *model.DeliveryAttempt) error {
	query := `INSERT INTO delivery_attempts (id, job_id, attempt, success, message_id, error, channel, attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecWithRetry(
		ctx,
		r.strategy,
		query,
		attempt.ID,
		attempt.JobID,
		attempt.Attempt,
		attempt.Success,
		attempt.MessageID,
		attempt.Error,
		string(attempt.Channel),
		attempt.AttemptedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("attempts: insert attempt for job %s: %w", attempt.JobID, err)
	}
	return nil
}

func (r *AttemptRepository) ListAttempts(ctx context.Context, jobID string) ([]*model.DeliveryAttempt, error) {
	query := `
		SELECT id, job_id, attempt, success, message_id, error, channel, attempted_at
		FROM delivery_attempts
		WHERE job_id = $1
		ORDER BY attempt
	`
	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("attempts: select by job %s: %w", jobID, err)
	}
	if rows == nil {
		zlog.Logger.Warn().Msg("QueryWithRetry returned nil rows, returning empty result")
		return []*model.DeliveryAttempt{}, nil
	}
	defer rows.Close()

	result := []*model.DeliveryAttempt{}

	for rows.Next() {
		var (
			id          string
			rowJobID    string
			attemptNum  int
			success     bool
			messageID   string
			attemptErr  string
			channel     string
			attemptedAt time.Time
		)

		if err := rows.Scan(
			&id,
			&rowJobID,
			&attemptNum,
			&success,
			&messageID,
			&attemptErr,
			&channel,
			&attemptedAt,
		); err != nil {
			return nil, fmt.Errorf("attempts: failed to scan row: %w", err)
		}

		result = append(result, &model.DeliveryAttempt{
			ID:          id,
			JobID:       rowJobID,
			Attempt:     attemptNum,
			Success:     success,
			MessageID:   messageID,
			Error:       attemptErr,
			Channel:     model.Channel(channel),
			AttemptedAt: attemptedAt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("attempts: error after scanning rows: %w", err)
	}

	return result, nil
}
