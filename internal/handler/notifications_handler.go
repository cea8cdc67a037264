package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/wb-go/wbf/ginext"

	"github.com/remedikit/pushqueue/internal/dto"
	"github.com/remedikit/pushqueue/internal/ports"
	"github.com/remedikit/pushqueue/internal/repository"
)

type NotifyHandler struct {
	producer ports.ProducerServiceInterface
	results  ports.ResultRepositoryInterface
	attempts ports.AttemptRepositoryInterface
	stats    ports.StatsProviderInterface
}

func NewNotifyHandler(
	producer ports.ProducerServiceInterface,
	results ports.ResultRepositoryInterface,
	attempts ports.AttemptRepositoryInterface,
	stats ports.StatsProviderInterface,
) *NotifyHandler {
	return &NotifyHandler{
		producer: producer,
		results:  results,
		attempts: attempts,
		stats:    stats,
	}
}

// EnqueueNotification accepts a notification request and answers with the
// job id immediately, before any delivery happens.
func (h *NotifyHandler) EnqueueNotification(c *ginext.Context) {
	var body dto.EnqueueRequest

	err := c.BindJSON(&body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ginext.H{"error": fmt.Sprintf("invalid body (parsing): %s", err.Error())})
		return
	}

	priority, err := body.ToPriority()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ginext.H{"error": fmt.Sprintf("invalid body (validating): %s", err.Error())})
		return
	}

	jobID, err := h.producer.Enqueue(c.Request.Context(), body.Payload, priority, body.MaxRetries)
	if err != nil {
		c.AbortWithStatusJSON(
			http.StatusServiceUnavailable,
			ginext.H{"error": fmt.Sprintf("couldn't enqueue notification: %s", err.Error())},
		)
		return
	}
	c.JSON(http.StatusAccepted, dto.EnqueueResponse{JobID: jobID})
}

func (h *NotifyHandler) GetResult(c *ginext.Context) {
	jobID := c.Param("id")
	if jobID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ginext.H{"error": "missing id parameter"})
		return
	}

	result, err := h.results.GetResult(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, repository.ErrResultNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, ginext.H{"error": "result not found"})
			return
		}
		c.AbortWithStatusJSON(
			http.StatusInternalServerError,
			ginext.H{"error": fmt.Sprintf("couldn't get result: %s", err.Error())},
		)
		return
	}

	c.JSON(http.StatusOK, dto.ToResultResponse(result))
}

func (h *NotifyHandler) ListAttempts(c *ginext.Context) {
	if h.attempts == nil {
		c.AbortWithStatusJSON(http.StatusNotImplemented, ginext.H{"error": "attempt audit is not configured"})
		return
	}

	jobID := c.Param("id")
	if jobID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ginext.H{"error": "missing id parameter"})
		return
	}

	attempts, err := h.attempts.ListAttempts(c.Request.Context(), jobID)
	if err != nil {
		c.AbortWithStatusJSON(
			http.StatusInternalServerError,
			ginext.H{"error": fmt.Sprintf("couldn't list attempts: %s", err.Error())},
		)
		return
	}

	c.JSON(http.StatusOK, ginext.H{"attempts": attempts})
}

func (h *NotifyHandler) GetStats(c *ginext.Context) {
	stats, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(
			http.StatusInternalServerError,
			ginext.H{"error": fmt.Sprintf("couldn't get queue stats: %s", err.Error())},
		)
		return
	}

	c.JSON(http.StatusOK, stats)
}
