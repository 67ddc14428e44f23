// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A run is a short-lived batch process, so metrics are pushed once at the end
// instead of being scraped. The Pushgateway "job" grouping key carries the
// job label; the remaining labels map onto collector label dimensions.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"nypd311/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	chunkCounter  *prometheus.CounterVec
	chunkDuration *prometheus.SummaryVec
	stageCounter  *prometheus.CounterVec
	stageDuration *prometheus.SummaryVec
	rowCounter    *prometheus.CounterVec
	failedChunks  prometheus.Counter
}

var objectives = map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001}

// NewBackend constructs a Pushgateway backend. gatewayURL is required; an
// empty jobName defaults to "nypd311".
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "nypd311"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		chunkCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.ChunkTotal,
			Help: "Year-chunk fetches, partitioned by year and status.",
		}, []string{"year", "status"}),
		chunkDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.ChunkDuration,
			Help:       "Duration of year-chunk fetches in seconds.",
			Objectives: objectives,
		}, []string{"year", "status"}),
		stageCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StageTotal,
			Help: "Pipeline stage executions, partitioned by stage and status.",
		}, []string{"stage", "status"}),
		stageDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.StageDuration,
			Help:       "Duration of pipeline stages in seconds.",
			Objectives: objectives,
		}, []string{"stage", "status"}),
		rowCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Row counts per kind (fetched, duplicate, validate_dropped, exported, ...).",
		}, []string{"kind"}),
		failedChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metrics.FailedChunks,
			Help: "Year chunks that failed and contributed no rows.",
		}),
	}

	for _, c := range []prometheus.Collector{
		b.chunkCounter, b.chunkDuration, b.stageCounter, b.stageDuration, b.rowCounter, b.failedChunks,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}
	return b, nil
}

// IncCounter implements metrics.Backend. Unknown names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.ChunkTotal:
		b.chunkCounter.WithLabelValues(labels["year"], labels["status"]).Add(delta)
	case metrics.StageTotal:
		b.stageCounter.WithLabelValues(labels["stage"], labels["status"]).Add(delta)
	case metrics.RowsTotal:
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)
	case metrics.FailedChunks:
		b.failedChunks.Add(delta)
	}
}

// ObserveHistogram implements metrics.Backend. Unknown names are ignored.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	switch name {
	case metrics.ChunkDuration:
		b.chunkDuration.WithLabelValues(labels["year"], labels["status"]).Observe(value)
	case metrics.StageDuration:
		b.stageDuration.WithLabelValues(labels["stage"], labels["status"]).Observe(value)
	}
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
