package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	JobsEnqueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pushqueue_jobs_enqueued_total",
			Help: "Total number of jobs accepted by the producer",
		},
		[]string{"priority"},
	)
	JobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pushqueue_jobs_processed_total",
			Help: "Total number of processed delivery attempts by outcome",
		},
		[]string{"outcome"}, // success, retry, dead
	)
	JobsPromoted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pushqueue_jobs_promoted_total",
			Help: "Total number of delayed retries promoted back to the main queue",
		},
	)
)

func init() {
	prometheus.MustRegister(JobsEnqueued, JobsProcessed, JobsPromoted)
}
