// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the warehouse pipeline.
//
//   - It exposes a narrow interface (Backend) for counters, timings and gauges.
//   - A global, pluggable backend defaults to a no-op, so metrics are always
//     safe to call even when nothing is configured.
//   - Concrete systems (Prometheus Pushgateway, Datadog) live in subpackages.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the Record helpers.
const (
	StageTotal      = "dwetl_stage_total"
	StageDuration   = "dwetl_stage_duration_seconds"
	RowsTotal       = "dwetl_rows_total"
	QualityScore    = "dwetl_quality_score"
	ColumnsRemoved  = "dwetl_columns_removed_total"
	DimensionMember = "dwetl_dimension_members"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// SetGauge records the current value of a gauge.
	SetGauge(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) SetGauge(string, float64, Labels)         {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Reset restores the no-op backend.
func Reset() {
	mu.Lock()
	backend = nopBackend{}
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStage measures latency and success/failure of one pipeline stage.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "stage": stage, "status": status}

	b := current()
	b.IncCounter(StageTotal, 1, lbls)
	b.ObserveHistogram(StageDuration, d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Kinds used by the pipeline:
//   - "read"
//   - "skipped"
//   - "density_dropped"
//   - "fact"
//   - "written"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{"job": job, "kind": kind})
}

// RecordColumnsRemoved counts columns dropped by a cleaning filter.
func RecordColumnsRemoved(job, filter string, delta int) {
	if delta <= 0 {
		return
	}
	current().IncCounter(ColumnsRemoved, float64(delta), Labels{"job": job, "filter": filter})
}

// RecordDimension sets the member count of a dimension table.
func RecordDimension(job, dimension string, members int) {
	current().SetGauge(DimensionMember, float64(members), Labels{"job": job, "dimension": dimension})
}

// RecordQuality sets a quality gauge; metric is "overall" or a metric name.
func RecordQuality(job, metric string, value float64) {
	current().SetGauge(QualityScore, value, Labels{"job": job, "metric": metric})
}
