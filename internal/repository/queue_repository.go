package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/remedikit/pushqueue/internal/model"
)

// ErrQueueEmpty is returned by Claim when the main queue has no entries.
var ErrQueueEmpty = errors.New("queue is empty")

// ErrCorruptEntry is returned by Claim when a claimed entry cannot be
// decoded. The entry has already been moved to the dead-letter list.
var ErrCorruptEntry = errors.New("corrupt queue entry")

// queueKeys holds the Redis keys backing the queue, derived from a common
// prefix so several environments can share one instance.
type queueKeys struct {
	pending    string // main FIFO list
	processing string // in-flight entries claimed by the worker
	delayed    string // zset of retries scored by due time
	dead       string // terminal failures
}

func keysForPrefix(prefix string) queueKeys {
	return queueKeys{
		pending:    prefix + ":jobs:pending",
		processing: prefix + ":jobs:processing",
		delayed:    prefix + ":jobs:delayed",
		dead:       prefix + ":jobs:dead",
	}
}

type QueueRepository struct {
	redisClient   *redis.Client
	retryStrategy retry.Strategy
	keys          queueKeys
}

func NewQueueRepository(redisClient *redis.Client, retryStrategy retry.Strategy, keyPrefix string) *QueueRepository {
	return &QueueRepository{
		redisClient:   redisClient,
		retryStrategy: retryStrategy,
		keys:          keysForPrefix(keyPrefix),
	}
}

// Enqueue pushes the job onto the fresh end of the main list. Claims pop the
// opposite end, so first-time jobs are serviced oldest first.
func (r *QueueRepository) Enqueue(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job: %w", err)
	}
	err = retry.DoContext(ctx, r.retryStrategy, func() error {
		return r.redisClient.LPush(ctx, r.keys.pending, data).Err()
	})
	if err != nil {
		return fmt.Errorf("queue: push job %s: %w", job.ID, err)
	}
	return nil
}

// Claim is the crash-safety point: one atomic move from the main list to the
// processing list. A worker dying after the move leaves the entry visible in
// the processing list instead of losing it. Not retried on error, since a
// lost reply after a successful move would otherwise claim a second entry.
func (r *QueueRepository) Claim(ctx context.Context) (*model.Job, string, error) {
	raw, err := r.redisClient.LMove(ctx, r.keys.pending, r.keys.processing, "RIGHT", "LEFT").Result()
	if errors.Is(err, redis.Nil) {
		return nil, "", ErrQueueEmpty
	}
	if err != nil {
		return nil, "", fmt.Errorf("queue: claim: %w", err)
	}

	var job model.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		// An undecodable entry would wedge the loop forever, so it goes
		// straight to the dead-letter list for manual inspection.
		zlog.Logger.Error().Err(err).Str("raw", raw).Msg("claimed entry is not a valid job")
		if remErr := r.redisClient.LRem(ctx, r.keys.processing, 1, raw).Err(); remErr != nil {
			return nil, "", fmt.Errorf("queue: remove corrupt entry: %w", remErr)
		}
		if pushErr := r.redisClient.LPush(ctx, r.keys.dead, raw).Err(); pushErr != nil {
			return nil, "", fmt.Errorf("queue: dead-letter corrupt entry: %w", pushErr)
		}
		return nil, "", ErrCorruptEntry
	}
	return &job, raw, nil
}

func (r *QueueRepository) AckInflight(ctx context.Context, raw string) error {
	if err := r.redisClient.LRem(ctx, r.keys.processing, 1, raw).Err(); err != nil {
		return fmt.Errorf("queue: remove in-flight entry: %w", err)
	}
	return nil
}

func (r *QueueRepository) ScheduleRetry(ctx context.Context, job *model.Job, dueAt time.Time) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal delayed job: %w", err)
	}
	err = retry.DoContext(ctx, r.retryStrategy, func() error {
		return r.redisClient.ZAdd(ctx, r.keys.delayed, redis.Z{
			Score:  float64(dueAt.Unix()),
			Member: data,
		}).Err()
	})
	if err != nil {
		return fmt.Errorf("queue: schedule retry for job %s: %w", job.ID, err)
	}
	return nil
}

// PromoteDue moves every due delayed entry to the claim end of the main
// list, so retries are serviced ahead of not-yet-attempted jobs. The ZREM
// before the push guards against a concurrent sweep promoting the same
// entry twice.
func (r *QueueRepository) PromoteDue(ctx context.Context, now time.Time) (int, error) {
	entries, err := r.redisClient.ZRangeByScore(ctx, r.keys.delayed, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("queue: range delayed set: %w", err)
	}

	promoted := 0
	for _, entry := range entries {
		removed, err := r.redisClient.ZRem(ctx, r.keys.delayed, entry).Result()
		if err != nil {
			return promoted, fmt.Errorf("queue: remove delayed entry: %w", err)
		}
		if removed == 0 {
			continue
		}
		if err := r.redisClient.RPush(ctx, r.keys.pending, entry).Err(); err != nil {
			return promoted, fmt.Errorf("queue: promote delayed entry: %w", err)
		}
		promoted++
	}
	return promoted, nil
}

func (r *QueueRepository) DeadLetter(ctx context.Context, job *model.Job, reason string) error {
	entry := model.DeadLetter{
		Job:      *job,
		Error:    reason,
		FailedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("queue: marshal dead letter: %w", err)
	}
	err = retry.DoContext(ctx, r.retryStrategy, func() error {
		return r.redisClient.LPush(ctx, r.keys.dead, data).Err()
	})
	if err != nil {
		return fmt.Errorf("queue: dead-letter job %s: %w", job.ID, err)
	}
	zlog.Logger.Warn().
		Str("job_id", job.ID).
		Int("attempt", job.Attempt).
		Str("error", reason).
		Msg("job moved to dead-letter list")
	return nil
}

func (r *QueueRepository) Stats(ctx context.Context) (model.QueueStats, error) {
	var stats model.QueueStats
	err := retry.DoContext(ctx, r.retryStrategy, func() error {
		pipe := r.redisClient.Pipeline()
		pending := pipe.LLen(ctx, r.keys.pending)
		processing := pipe.LLen(ctx, r.keys.processing)
		dead := pipe.LLen(ctx, r.keys.dead)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		stats = model.QueueStats{
			Pending:    pending.Val(),
			Processing: processing.Val(),
			Failed:     dead.Val(),
		}
		return nil
	})
	if err != nil {
		return model.QueueStats{}, fmt.Errorf("queue: stats: %w", err)
	}
	return stats, nil
}
