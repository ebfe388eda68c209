package worker

import (
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/moviecatalog/internal/metrics"
)

func TestPoolRunsEverySubmittedTask(t *testing.T) {
	p := NewPool(4)
	var n atomic.Int64
	for i := 0; i < 100; i++ {
		assert.True(t, p.Submit(func() { n.Add(1) }))
	}
	p.Stop()
	assert.Equal(t, int64(100), n.Load())
}

func TestPoolSurvivesPanickingTask(t *testing.T) {
	p := NewPool(1)
	var ran atomic.Bool
	p.Submit(func() { panic("boom") })
	p.Submit(func() { ran.Store(true) })
	p.Stop()
	assert.True(t, ran.Load())
}

func TestSubmitAfterStopIsRejected(t *testing.T) {
	p := NewPool(1)
	p.Stop()
	assert.False(t, p.Submit(func() {}))
	p.Stop()
}

func TestFullQueueRefusesAndKeepsDepthExact(t *testing.T) {
	base := testutil.ToFloat64(metrics.AuditQueueDepth)
	p := NewPool(1)

	started, release := make(chan struct{}), make(chan struct{})
	require.True(t, p.Submit(func() { close(started); <-release }))
	<-started

	for i := 0; i < queueSize; i++ {
		require.True(t, p.Submit(func() {}))
	}
	assert.False(t, p.Submit(func() {}))
	assert.Equal(t, base+queueSize, testutil.ToFloat64(metrics.AuditQueueDepth))

	close(release)
	p.Stop()
	assert.Equal(t, base, testutil.ToFloat64(metrics.AuditQueueDepth))
}
