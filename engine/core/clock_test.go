package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockZeroValueIsStopped(t *testing.T) {
	c := NewClock()
	assert.Zero(t, c.Elapsed())

	c.Update()
	assert.Zero(t, c.Elapsed())
}

func TestClockMeasuresBetweenUpdates(t *testing.T) {
	c := NewClock()
	c.Start()

	time.Sleep(5 * time.Millisecond)
	c.Update()
	first := c.Elapsed()
	assert.Greater(t, first, 0.0)

	// Elapsed holds steady until the next Update.
	assert.Equal(t, first, c.Elapsed())

	time.Sleep(time.Millisecond)
	c.Update()
	assert.Greater(t, c.Elapsed(), first)
}

func TestClockStopFreezesElapsed(t *testing.T) {
	c := NewClock()
	c.Start()
	time.Sleep(time.Millisecond)
	c.Update()
	frozen := c.Elapsed()

	c.Stop()
	time.Sleep(time.Millisecond)
	c.Update()
	assert.Equal(t, frozen, c.Elapsed())

	c.Start()
	assert.Zero(t, c.Elapsed())
}
