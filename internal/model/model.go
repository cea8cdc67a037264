package model

import (
	"fmt"
	"time"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// PriorityFromString parses a priority value; an empty string means normal.
// Priority is informational only and does not reorder the queue.
func PriorityFromString(val string) (Priority, error) {
	switch val {
	case "":
		return PriorityNormal, nil
	case string(PriorityHigh), string(PriorityNormal), string(PriorityLow):
		return Priority(val), nil
	default:
		return "", fmt.Errorf("invalid priority '%s': possible ones are: '%s', '%s', '%s'",
			val, PriorityHigh, PriorityNormal, PriorityLow)
	}
}

// Job is a unit of requested notification work with retry metadata.
// The queue never inspects Payload beyond passing it to the sender.
type Job struct {
	ID         string    `json:"id"`
	Payload    Payload   `json:"payload"`
	Priority   Priority  `json:"priority"`
	Attempt    int       `json:"attempt"`
	MaxRetries int       `json:"max_retries"`
	CreatedAt  time.Time `json:"created_at"`
}

// JobResult is the outcome record for a job, stored with a bounded TTL.
type JobResult struct {
	JobID       string    `json:"job_id"`
	Success     bool      `json:"success"`
	MessageID   string    `json:"message_id,omitempty"`
	Error       string    `json:"error,omitempty"`
	Attempt     int       `json:"attempt"`
	ProcessedAt time.Time `json:"processed_at"`
}

// DeadLetter wraps a terminally failed job together with its last error.
type DeadLetter struct {
	Job      Job       `json:"job"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// QueueStats reports current lengths of the main, processing and
// dead-letter lists.
type QueueStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Failed     int64 `json:"failed"`
}

// DeliveryAttempt is one audit row per dispatch, success or failure.
type DeliveryAttempt struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	Attempt     int       `json:"attempt"`
	Success     bool      `json:"success"`
	MessageID   string    `json:"message_id,omitempty"`
	Error       string    `json:"error,omitempty"`
	Channel     Channel   `json:"channel"`
	AttemptedAt time.Time `json:"attempted_at"`
}
