// Package metrics records operational metrics for a pipeline run without
// tying the pipeline to a particular metrics system.
//
// A global, pluggable Backend defaults to a no-op, so the helpers are always
// safe to call. Concrete systems live in subpackages (prompush, datadog) and
// are installed once at startup with SetBackend.
package metrics

import (
	"strconv"
	"time"
)

// Metric names shared by all backends.
const (
	ChunkTotal    = "nypd311_chunk_total"
	ChunkDuration = "nypd311_chunk_duration_seconds"
	StageTotal    = "nypd311_stage_total"
	StageDuration = "nypd311_stage_duration_seconds"
	RowsTotal     = "nypd311_rows_total"
	FailedChunks  = "nypd311_failed_chunks_total"

	statusSuccess = "success"
	statusFailure = "failure"
)

// Row kinds passed to RecordRows.
const (
	RowsFetched   = "fetched"
	RowsDuplicate = "duplicate"
	RowsDropped   = "validate_dropped"
	RowsRetained  = "retained"
	RowsExported  = "exported"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordChunk counts one chunk fetch and its latency. A failed chunk also
// bumps FailedChunks.
func RecordChunk(job string, year int, err error, d time.Duration) {
	status := statusSuccess
	if err != nil {
		status = statusFailure
	}
	lbls := Labels{
		"job":    job,
		"year":   strconv.Itoa(year),
		"status": status,
	}
	backend.IncCounter(ChunkTotal, 1, lbls)
	backend.ObserveHistogram(ChunkDuration, d.Seconds(), lbls)
	if err != nil {
		backend.IncCounter(FailedChunks, 1, Labels{"job": job})
	}
}

// RecordStage measures latency and outcome of a named pipeline stage
// (normalize, validate, export, report, ...).
func RecordStage(job, stage string, err error, d time.Duration) {
	status := statusSuccess
	if err != nil {
		status = statusFailure
	}
	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}
	backend.IncCounter(StageTotal, 1, lbls)
	backend.ObserveHistogram(StageDuration, d.Seconds(), lbls)
}

// RecordRows adds delta to the row counter for kind. Non-positive deltas are
// ignored.
func RecordRows(job, kind string, delta int) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
