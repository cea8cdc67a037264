package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/retry"

	"github.com/remedikit/pushqueue/internal/model"
)

// ErrResultNotFound is returned before a job's processing concludes and
// after the result's TTL expires.
var ErrResultNotFound = errors.New("job result not found")

type ResultRepository struct {
	redisClient   *redis.Client
	retryStrategy retry.Strategy
	keyPrefix     string
}

func NewResultRepository(redisClient *redis.Client, retryStrategy retry.Strategy, keyPrefix string) *ResultRepository {
	return &ResultRepository{
		redisClient:   redisClient,
		retryStrategy: retryStrategy,
		keyPrefix:     keyPrefix,
	}
}

func (r *ResultRepository) resultKey(jobID string) string {
	return r.keyPrefix + ":results:" + jobID
}

func (r *ResultRepository) SaveResult(ctx context.Context, result *model.JobResult, ttl time.Duration) error {
	key := r.resultKey(result.JobID)
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("results: marshal result: %w", err)
	}
	err = retry.DoContext(ctx, r.retryStrategy, func() error {
		return r.redisClient.Set(ctx, key, data, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("results: set key %s: %w", key, err)
	}
	return nil
}

func (r *ResultRepository) GetResult(ctx context.Context, jobID string) (*model.JobResult, error) {
	data, err := r.redisClient.Get(ctx, r.resultKey(jobID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("results: get key for job %s: %w", jobID, err)
	}

	var result model.JobResult
	if err = json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("results: unmarshal result: %w", err)
	}
	return &result, nil
}
