package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remedikit/pushqueue/internal/model"
	"github.com/remedikit/pushqueue/internal/repository"
)

type fakeProducer struct {
	jobID    string
	err      error
	payload  model.Payload
	priority model.Priority
	retries  int
}

func (f *fakeProducer) Enqueue(ctx context.Context, payload model.Payload, priority model.Priority, maxRetries int) (string, error) {
	f.payload = payload
	f.priority = priority
	f.retries = maxRetries
	return f.jobID, f.err
}

type fakeResults struct {
	results map[string]*model.JobResult
}

func (f *fakeResults) SaveResult(ctx context.Context, result *model.JobResult, ttl time.Duration) error {
	return nil
}

func (f *fakeResults) GetResult(ctx context.Context, jobID string) (*model.JobResult, error) {
	result, ok := f.results[jobID]
	if !ok {
		return nil, repository.ErrResultNotFound
	}
	return result, nil
}

type fakeAttempts struct {
	attempts []*model.DeliveryAttempt
}

func (f *fakeAttempts) RecordAttempt(ctx context.Context, attempt *model.DeliveryAttempt) error {
	return nil
}

func (f *fakeAttempts) ListAttempts(ctx context.Context, jobID string) ([]*model.DeliveryAttempt, error) {
	return f.attempts, nil
}

type fakeStats struct {
	stats model.QueueStats
	err   error
}

func (f *fakeStats) Stats(ctx context.Context) (model.QueueStats, error) {
	return f.stats, f.err
}

func serve(t *testing.T, h *NotifyHandler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestEnqueueNotification(t *testing.T) {
	producer := &fakeProducer{jobID: "job-123"}
	h := NewNotifyHandler(producer, &fakeResults{}, &fakeAttempts{}, &fakeStats{})

	body := `{
		"priority": "high",
		"max_retries": 5,
		"payload": {
			"channel": "push",
			"push": {"device_tokens": ["t1"], "title": "Refill", "body": "Ready"}
		}
	}`
	rec := serve(t, h, http.MethodPost, "/api/v1/notifications", body)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "job-123", resp["job_id"])

	assert.Equal(t, model.PriorityHigh, producer.priority)
	assert.Equal(t, 5, producer.retries)
	assert.Equal(t, model.ChannelPush, producer.payload.Channel)
}

func TestEnqueueNotificationBadPriority(t *testing.T) {
	h := NewNotifyHandler(&fakeProducer{jobID: "x"}, &fakeResults{}, &fakeAttempts{}, &fakeStats{})

	body := `{"priority": "urgent", "payload": {"channel": "push"}}`
	rec := serve(t, h, http.MethodPost, "/api/v1/notifications", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnqueueNotificationBadBody(t *testing.T) {
	h := NewNotifyHandler(&fakeProducer{jobID: "x"}, &fakeResults{}, &fakeAttempts{}, &fakeStats{})

	rec := serve(t, h, http.MethodPost, "/api/v1/notifications", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnqueueNotificationStoreDown(t *testing.T) {
	producer := &fakeProducer{err: errors.New("redis down")}
	h := NewNotifyHandler(producer, &fakeResults{}, &fakeAttempts{}, &fakeStats{})

	body := `{"payload": {"channel": "push", "push": {"device_tokens": ["t1"]}}}`
	rec := serve(t, h, http.MethodPost, "/api/v1/notifications", body)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetResultFound(t *testing.T) {
	results := &fakeResults{results: map[string]*model.JobResult{
		"job-1": {
			JobID:       "job-1",
			Success:     true,
			MessageID:   "msg-1",
			Attempt:     2,
			ProcessedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}}
	h := NewNotifyHandler(&fakeProducer{}, results, &fakeAttempts{}, &fakeStats{})

	rec := serve(t, h, http.MethodGet, "/api/v1/notifications/job-1/result", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "msg-1", resp["message_id"])
	assert.Equal(t, float64(2), resp["attempt"])
}

func TestGetResultNotFound(t *testing.T) {
	h := NewNotifyHandler(&fakeProducer{}, &fakeResults{}, &fakeAttempts{}, &fakeStats{})

	rec := serve(t, h, http.MethodGet, "/api/v1/notifications/missing/result", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStats(t *testing.T) {
	stats := &fakeStats{stats: model.QueueStats{Pending: 2, Processing: 1, Failed: 1}}
	h := NewNotifyHandler(&fakeProducer{}, &fakeResults{}, &fakeAttempts{}, stats)

	rec := serve(t, h, http.MethodGet, "/api/v1/queue/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.QueueStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.QueueStats{Pending: 2, Processing: 1, Failed: 1}, resp)
}

func TestListAttempts(t *testing.T) {
	attempts := &fakeAttempts{attempts: []*model.DeliveryAttempt{
		{ID: "a1", JobID: "job-1", Attempt: 1, Success: false, Error: "timeout"},
		{ID: "a2", JobID: "job-1", Attempt: 2, Success: true, MessageID: "msg"},
	}}
	h := NewNotifyHandler(&fakeProducer{}, &fakeResults{}, attempts, &fakeStats{})

	rec := serve(t, h, http.MethodGet, "/api/v1/notifications/job-1/attempts", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Attempts []model.DeliveryAttempt `json:"attempts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Attempts, 2)
	assert.Equal(t, 2, resp.Attempts[1].Attempt)
}

func TestListAttemptsNotConfigured(t *testing.T) {
	h := NewNotifyHandler(&fakeProducer{}, &fakeResults{}, nil, &fakeStats{})

	rec := serve(t, h, http.MethodGet, "/api/v1/notifications/job-1/attempts", "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
