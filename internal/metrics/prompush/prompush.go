// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package. Collectors live in a private registry that is pushed on
// Flush, since a batch run exits before any scrape could happen.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"dwetl/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stageCounter   *prometheus.CounterVec
	stageDuration  *prometheus.SummaryVec
	rowCounter     *prometheus.CounterVec
	columnsRemoved *prometheus.CounterVec
	quality        *prometheus.GaugeVec
	dimension      *prometheus.GaugeVec
}

var _ metrics.Backend = (*Backend)(nil)

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (usually the pipeline job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "dwetl"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		stageCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StageTotal,
			Help: "Pipeline stage executions, partitioned by stage and status.",
		}, []string{"stage", "status"}),
		stageDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.StageDuration,
			Help:       "Duration of pipeline stages in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"stage", "status"}),
		rowCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Row counts per kind (read, skipped, fact, written, ...).",
		}, []string{"kind"}),
		columnsRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.ColumnsRemoved,
			Help: "Columns dropped by cleaning filters.",
		}, []string{"filter"}),
		quality: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: metrics.QualityScore,
			Help: "Latest quality score (overall 0-100) or metric value (0-1).",
		}, []string{"metric"}),
		dimension: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: metrics.DimensionMember,
			Help: "Member count of each dimension table.",
		}, []string{"dimension"}),
	}

	for _, c := range []prometheus.Collector{b.stageCounter, b.stageDuration, b.rowCounter, b.columnsRemoved, b.quality, b.dimension} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}
	return b, nil
}

// IncCounter routes known counters; unknown names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StageTotal:
		if b.stageCounter != nil {
			b.stageCounter.WithLabelValues(labels["stage"], labels["status"]).Add(delta)
		}
	case metrics.RowsTotal:
		if b.rowCounter != nil {
			b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)
		}
	case metrics.ColumnsRemoved:
		if b.columnsRemoved != nil {
			b.columnsRemoved.WithLabelValues(labels["filter"]).Add(delta)
		}
	}
}

// ObserveHistogram records stage durations.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StageDuration || b.stageDuration == nil {
		return
	}
	b.stageDuration.WithLabelValues(labels["stage"], labels["status"]).Observe(value)
}

// SetGauge routes known gauges; unknown names are ignored.
func (b *Backend) SetGauge(name string, value float64, labels metrics.Labels) {
	switch name {
	case metrics.QualityScore:
		if b.quality != nil {
			b.quality.WithLabelValues(labels["metric"]).Set(value)
		}
	case metrics.DimensionMember:
		if b.dimension != nil {
			b.dimension.WithLabelValues(labels["dimension"]).Set(value)
		}
	}
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
