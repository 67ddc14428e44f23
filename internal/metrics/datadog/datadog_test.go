package datadog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nypd311/internal/metrics"
)

type sent struct {
	kind  string
	name  string
	value float64
	tags  []string
}

type fakeClient struct {
	sent   []sent
	closed bool
}

func (f *fakeClient) Count(name string, value int64, tags []string, _ float64) error {
	f.sent = append(f.sent, sent{"count", name, float64(value), tags})
	return nil
}

func (f *fakeClient) Histogram(name string, value float64, tags []string, _ float64) error {
	f.sent = append(f.sent, sent{"histogram", name, value, tags})
	return nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func TestNewBackend_RequiresAddr(t *testing.T) {
	_, err := NewBackend(Config{})
	assert.Error(t, err)
}

func TestBackend_ForwardsWithTags(t *testing.T) {
	fc := &fakeClient{}
	b := &Backend{client: fc}

	b.IncCounter(metrics.RowsTotal, 12, metrics.Labels{"kind": "fetched", "job": "run"})
	b.ObserveHistogram(metrics.ChunkDuration, 0.25, metrics.Labels{"year": "2020"})
	require.NoError(t, b.Flush())

	require.Len(t, fc.sent, 2)
	assert.Equal(t, sent{"count", metrics.RowsTotal, 12, []string{"job:run", "kind:fetched"}}, fc.sent[0])
	assert.Equal(t, sent{"histogram", metrics.ChunkDuration, 0.25, []string{"year:2020"}}, fc.sent[1])
	assert.True(t, fc.closed)
}

func TestBackend_NilClientIsSafe(t *testing.T) {
	b := &Backend{}
	b.IncCounter("x", 1, nil)
	b.ObserveHistogram("x", 1, nil)
	assert.NoError(t, b.Flush())
}

func TestLabelsToTags(t *testing.T) {
	assert.Nil(t, labelsToTags(nil))
	assert.Equal(t, []string{"a:1", "b:2"}, labelsToTags(metrics.Labels{"b": "2", "a": "1"}))
}
