package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/remedikit/pushqueue/internal/model"
	"github.com/remedikit/pushqueue/internal/repository"
)

// fakeQueueRepo mimics the Redis list semantics in memory: index 0 is the
// fresh end, the last element is the claim end.
type fakeQueueRepo struct {
	mu         sync.Mutex
	pending    []string
	processing []string
	scheduled  []scheduledRetry
	dead       []deadEntry

	enqueueErr error
	claimErr   error
}

type scheduledRetry struct {
	job   model.Job
	dueAt time.Time
}

type deadEntry struct {
	job    model.Job
	reason string
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{}
}

func (f *fakeQueueRepo) Enqueue(ctx context.Context, job *model.Job) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append([]string{string(data)}, f.pending...)
	return nil
}

func (f *fakeQueueRepo) Claim(ctx context.Context) (*model.Job, string, error) {
	if f.claimErr != nil {
		return nil, "", f.claimErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return nil, "", repository.ErrQueueEmpty
	}
	raw := f.pending[len(f.pending)-1]
	f.pending = f.pending[:len(f.pending)-1]
	f.processing = append(f.processing, raw)

	var job model.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		f.processing = f.processing[:len(f.processing)-1]
		f.dead = append(f.dead, deadEntry{reason: err.Error()})
		return nil, "", repository.ErrCorruptEntry
	}
	return &job, raw, nil
}

func (f *fakeQueueRepo) AckInflight(ctx context.Context, raw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, entry := range f.processing {
		if entry == raw {
			f.processing = append(f.processing[:i], f.processing[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeQueueRepo) ScheduleRetry(ctx context.Context, job *model.Job, dueAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, scheduledRetry{job: *job, dueAt: dueAt})
	return nil
}

func (f *fakeQueueRepo) PromoteDue(ctx context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	promoted := 0
	remaining := f.scheduled[:0]
	for _, entry := range f.scheduled {
		if entry.dueAt.After(now) {
			remaining = append(remaining, entry)
			continue
		}
		data, err := json.Marshal(entry.job)
		if err != nil {
			return promoted, err
		}
		f.pending = append(f.pending, string(data))
		promoted++
	}
	f.scheduled = remaining
	return promoted, nil
}

func (f *fakeQueueRepo) DeadLetter(ctx context.Context, job *model.Job, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dead = append(f.dead, deadEntry{job: *job, reason: reason})
	return nil
}

func (f *fakeQueueRepo) Stats(ctx context.Context) (model.QueueStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.QueueStats{
		Pending:    int64(len(f.pending)),
		Processing: int64(len(f.processing)),
		Failed:     int64(len(f.dead)),
	}, nil
}

type savedResult struct {
	result model.JobResult
	ttl    time.Duration
}

type fakeResultRepo struct {
	mu      sync.Mutex
	results map[string]savedResult
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: map[string]savedResult{}}
}

func (f *fakeResultRepo) SaveResult(ctx context.Context, result *model.JobResult, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[result.JobID] = savedResult{result: *result, ttl: ttl}
	return nil
}

func (f *fakeResultRepo) GetResult(ctx context.Context, jobID string) (*model.JobResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	saved, ok := f.results[jobID]
	if !ok {
		return nil, repository.ErrResultNotFound
	}
	result := saved.result
	return &result, nil
}

type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts []model.DeliveryAttempt
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{}
}

func (f *fakeAttemptRepo) RecordAttempt(ctx context.Context, attempt *model.DeliveryAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, *attempt)
	return nil
}

func (f *fakeAttemptRepo) ListAttempts(ctx context.Context, jobID string) ([]*model.DeliveryAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []*model.DeliveryAttempt{}
	for i := range f.attempts {
		if f.attempts[i].JobID == jobID {
			attempt := f.attempts[i]
			result = append(result, &attempt)
		}
	}
	return result, nil
}

type fakeSender struct {
	sendFunc func(ctx context.Context, payload model.Payload) (string, error)
}

func (f *fakeSender) Send(ctx context.Context, payload model.Payload) (string, error) {
	return f.sendFunc(ctx, payload)
}

type handledFailure struct {
	job   model.Job
	cause error
}

type fakeFailureHandler struct {
	mu      sync.Mutex
	handled []handledFailure
}

func newFakeFailureHandler() *fakeFailureHandler {
	return &fakeFailureHandler{}
}

func (f *fakeFailureHandler) HandleFailure(ctx context.Context, job *model.Job, cause error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handled = append(f.handled, handledFailure{job: *job, cause: cause})
	return nil
}
