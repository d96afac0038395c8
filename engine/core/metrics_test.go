package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Metrics state is package global, so the tests only assert properties
// that hold regardless of what earlier tests fed it.

func TestMetricsFrameTimeWindowAverage(t *testing.T) {
	require.NoError(t, MetricsInitialize())

	// Two full windows guarantee the last recompute saw only these frames.
	for i := 0; i < 2*frameTimeWindow; i++ {
		MetricsUpdate(0.016)
	}

	_, avgFrameMS := MetricsFrame()
	assert.InDelta(t, 16.0, avgFrameMS, 1e-9)
}

func TestMetricsFPSLatchesPerSecond(t *testing.T) {
	require.NoError(t, MetricsInitialize())

	// The first update flushes any partial second, the next one is a full
	// second on its own.
	MetricsUpdate(1.0)
	MetricsUpdate(1.0)

	fps, _ := MetricsFrame()
	assert.Equal(t, 1.0, fps)
}
