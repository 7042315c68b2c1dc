// Package metrics exposes queue activity as Prometheus metrics.
package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/joshu-sajeev/pingcrm/internal/models"
	"github.com/joshu-sajeev/pingcrm/internal/queue"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records job lifecycle events. It implements queue.Observer.
type Collector struct {
	jobsEnqueued  *prometheus.CounterVec
	jobsClaimed   *prometheus.CounterVec
	jobsSucceeded *prometheus.CounterVec
	jobsRetried   *prometheus.CounterVec
	jobsAbandoned *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
}

var _ queue.Observer = (*Collector)(nil)

func NewCollector(reg prometheus.Registerer) *Collector {
	byKind := []string{"kind"}
	c := &Collector{
		jobsEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_jobs_enqueued_total",
			Help: "Total number of jobs enqueued",
		}, byKind),
		jobsClaimed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_jobs_claimed_total",
			Help: "Total number of job claims by workers",
		}, byKind),
		jobsSucceeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_jobs_succeeded_total",
			Help: "Total number of jobs completed successfully",
		}, byKind),
		jobsRetried: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_jobs_retried_total",
			Help: "Total number of failed executions scheduled for retry",
		}, byKind),
		jobsAbandoned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_jobs_abandoned_total",
			Help: "Total number of jobs abandoned after their last attempt",
		}, byKind),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "queue_job_duration_seconds",
			Help:    "Job execution time in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind", "outcome"}),
	}

	reg.MustRegister(
		c.jobsEnqueued,
		c.jobsClaimed,
		c.jobsSucceeded,
		c.jobsRetried,
		c.jobsAbandoned,
		c.jobDuration,
	)
	return c
}

func (c *Collector) JobEnqueued(kind string) {
	c.jobsEnqueued.WithLabelValues(kind).Inc()
}

func (c *Collector) JobClaimed(kind string) {
	c.jobsClaimed.WithLabelValues(kind).Inc()
}

func (c *Collector) JobSucceeded(kind string, elapsed time.Duration) {
	c.jobsSucceeded.WithLabelValues(kind).Inc()
	c.jobDuration.WithLabelValues(kind, "succeeded").Observe(elapsed.Seconds())
}

func (c *Collector) JobRetried(kind string, elapsed time.Duration) {
	c.jobsRetried.WithLabelValues(kind).Inc()
	c.jobDuration.WithLabelValues(kind, "retried").Observe(elapsed.Seconds())
}

func (c *Collector) JobAbandoned(kind string, elapsed time.Duration) {
	c.jobsAbandoned.WithLabelValues(kind).Inc()
	c.jobDuration.WithLabelValues(kind, "abandoned").Observe(elapsed.Seconds())
}

// StatusCollector reports the number of jobs per status, read from the
// store at scrape time.
type StatusCollector struct {
	store   queue.Store
	timeout time.Duration
	desc    *prometheus.Desc
}

func NewStatusCollector(store queue.Store) *StatusCollector {
	return &StatusCollector{
		store:   store,
		timeout: 5 * time.Second,
		desc: prometheus.NewDesc(
			"queue_jobs",
			"Current number of jobs by status",
			[]string{"status"}, nil,
		),
	}
}

func (c *StatusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *StatusCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	counts, err := c.store.CountByStatus(ctx)
	if err != nil {
		slog.Error("collect job status counts", slog.Any("error", err))
		ch <- prometheus.NewInvalidMetric(c.desc, err)
		return
	}

	for _, status := range []models.JobStatus{
		models.JobStatusPending,
		models.JobStatusRunning,
		models.JobStatusSucceeded,
		models.JobStatusFailed,
		models.JobStatusAbandoned,
	} {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(counts[status]), string(status))
	}
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
