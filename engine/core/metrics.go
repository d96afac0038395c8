package core

import "sync"

// Frame time is averaged over a sliding window this many frames wide.
const frameTimeWindow = 30

type frameMetrics struct {
	frameTimesMS  [frameTimeWindow]float64
	cursor        int
	avgFrameMS    float64
	frameCount    int
	accumulatedMS float64
	fps           float64
}

var metricsOnce sync.Once
var metricsState *frameMetrics

func MetricsInitialize() error {
	metricsOnce.Do(func() {
		metricsState = &frameMetrics{}
	})
	return nil
}

// MetricsUpdate records one completed frame. The average frame time is
// recomputed each time the window fills; the FPS value latches the number
// of frames completed over the last accumulated second.
func MetricsUpdate(frameElapsedSeconds float64) {
	m := metricsState
	frameMS := frameElapsedSeconds * 1000.0

	m.frameTimesMS[m.cursor] = frameMS
	m.cursor++
	if m.cursor == frameTimeWindow {
		m.cursor = 0
		var sum float64
		for _, ms := range m.frameTimesMS {
			sum += ms
		}
		m.avgFrameMS = sum / frameTimeWindow
	}

	m.frameCount++
	m.accumulatedMS += frameMS
	if m.accumulatedMS >= 1000.0 {
		m.fps = float64(m.frameCount)
		m.accumulatedMS -= 1000.0
		m.frameCount = 0
	}
}

// MetricsFrame reports the latched frames per second and the windowed
// average frame time in milliseconds.
func MetricsFrame() (fps, avgFrameMS float64) {
	return metricsState.fps, metricsState.avgFrameMS
}
