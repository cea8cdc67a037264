package dto

import (
	"time"

	"github.com/remedikit/pushqueue/internal/model"
)

type JobResultResponse struct {
	JobID       string `json:"job_id"`
	Success     bool   `json:"success"`
	MessageID   string `json:"message_id,omitempty"`
	Error       string `json:"error,omitempty"`
	Attempt     int    `json:"attempt"`
	ProcessedAt string `json:"processed_at"`
}

func ToResultResponse(result *model.JobResult) *JobResultResponse {
	return &JobResultResponse{
		JobID:       result.JobID,
		Success:     result.Success,
		MessageID:   result.MessageID,
		Error:       result.Error,
		Attempt:     result.Attempt,
		ProcessedAt: result.ProcessedAt.Format(time.RFC3339),
	}
}
