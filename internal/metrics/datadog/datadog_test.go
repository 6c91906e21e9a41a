package datadog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwetl/internal/metrics"
)

type sent struct {
	kind  string
	name  string
	value float64
	tags  []string
}

type fakeClient struct {
	sent    []sent
	flushes int
}

func (f *fakeClient) Count(name string, value int64, tags []string, _ float64) error {
	f.sent = append(f.sent, sent{"count", name, float64(value), tags})
	return nil
}

func (f *fakeClient) Histogram(name string, value float64, tags []string, _ float64) error {
	f.sent = append(f.sent, sent{"histogram", name, value, tags})
	return nil
}

func (f *fakeClient) Gauge(name string, value float64, tags []string, _ float64) error {
	f.sent = append(f.sent, sent{"gauge", name, value, tags})
	return nil
}

func (f *fakeClient) Flush() error {
	f.flushes++
	return nil
}

func TestNewBackendRequiresAddr(t *testing.T) {
	t.Parallel()

	_, err := NewBackend(Config{})
	assert.Error(t, err)
}

func TestBackendForwards(t *testing.T) {
	t.Parallel()

	fc := &fakeClient{}
	b := &Backend{client: fc}

	b.IncCounter(metrics.RowsTotal, 12.7, metrics.Labels{"kind": "read", "job": "loans"})
	b.ObserveHistogram(metrics.StageDuration, 0.5, metrics.Labels{"stage": "infer"})
	b.SetGauge(metrics.QualityScore, 91, nil)
	require.NoError(t, b.Flush())

	require.Len(t, fc.sent, 3)
	assert.Equal(t, sent{"count", metrics.RowsTotal, 12, []string{"job:loans", "kind:read"}}, fc.sent[0])
	assert.Equal(t, sent{"histogram", metrics.StageDuration, 0.5, []string{"stage:infer"}}, fc.sent[1])
	assert.Equal(t, sent{"gauge", metrics.QualityScore, 91, nil}, fc.sent[2])
	assert.Equal(t, 1, fc.flushes)
}

func TestNilClientIsSafe(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter("x", 1, nil)
	b.ObserveHistogram("x", 1, nil)
	b.SetGauge("x", 1, nil)
	assert.NoError(t, b.Flush())
}
