package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"

	"github.com/remedikit/pushqueue/internal/model"
)

func newTestResultRepo(t *testing.T) *ResultRepository {
	t.Helper()
	strategy := retry.Strategy{Attempts: 1, Delay: 10 * time.Millisecond, Backoff: 1}
	return NewResultRepository(newTestClient(t), strategy, "pushqueue_test")
}

func TestResultSaveAndGet(t *testing.T) {
	repo := newTestResultRepo(t)
	ctx := context.Background()

	saved := &model.JobResult{
		JobID:       "job-1",
		Success:     true,
		MessageID:   "msg-1",
		Attempt:     2,
		ProcessedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.SaveResult(ctx, saved, time.Hour))

	got, err := repo.GetResult(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestResultNotFound(t *testing.T) {
	repo := newTestResultRepo(t)

	_, err := repo.GetResult(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestResultExpires(t *testing.T) {
	repo := newTestResultRepo(t)
	ctx := context.Background()

	result := &model.JobResult{JobID: "job-ttl", Success: false, Error: "timeout", Attempt: 3}
	require.NoError(t, repo.SaveResult(ctx, result, 50*time.Millisecond))

	_, err := repo.GetResult(ctx, "job-ttl")
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = repo.GetResult(ctx, "job-ttl")
	assert.ErrorIs(t, err, ErrResultNotFound)
}
