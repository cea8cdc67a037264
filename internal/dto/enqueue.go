package dto

import (
	"fmt"

	"github.com/remedikit/pushqueue/internal/model"
)

type EnqueueRequest struct {
	Priority   string        `json:"priority,omitempty"`
	MaxRetries int           `json:"max_retries,omitempty"`
	Payload    model.Payload `json:"payload"`
}

// ToPriority parses the optional priority field; missing means normal.
// Payload shape is not validated here: that is the sender's job, and an
// invalid payload surfaces as a failed attempt.
func (b EnqueueRequest) ToPriority() (model.Priority, error) {
	priority, err := model.PriorityFromString(b.Priority)
	if err != nil {
		return "", fmt.Errorf("incorrect 'priority' '%s': %w", b.Priority, err)
	}
	return priority, nil
}

type EnqueueResponse struct {
	JobID string `json:"job_id"`
}
