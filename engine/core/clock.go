package core

import "time"

// Clock measures wall time for the frame loop. The zero value is stopped.
// Elapsed only advances on Update, so one reading can serve a whole frame.
type Clock struct {
	startTime time.Time
	elapsed   time.Duration
}

func NewClock() *Clock {
	return &Clock{}
}

// Start begins measuring and clears the elapsed time.
func (c *Clock) Start() {
	c.startTime = time.Now()
	c.elapsed = 0
}

// Update refreshes the elapsed time. It has no effect on a stopped clock.
func (c *Clock) Update() {
	if !c.startTime.IsZero() {
		c.elapsed = time.Since(c.startTime)
	}
}

// Stop halts measuring without clearing the elapsed time.
func (c *Clock) Stop() {
	c.startTime = time.Time{}
}

// Elapsed reports the seconds measured between Start and the last Update.
func (c *Clock) Elapsed() float64 {
	return c.elapsed.Seconds()
}
