package core

import (
	"sync/atomic"
	"time"
)

type Clock struct {
	startTime float64
	elapsed   float64
}

func NewClock() *Clock {
	return &Clock{}
}

// Updates the provided clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if c.startTime != 0 {
		c.elapsed = float64(time.Now().UnixNano()) - c.startTime
	}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = float64(time.Now().UnixNano())
	c.elapsed = 0
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.startTime = 0
}

// Elapsed returns the time since Start in seconds.
func (c *Clock) Elapsed() float64 {
	return c.elapsed / float64(time.Second)
}

// FrameClock counts rendered frames. The counter is read from worker
// goroutines while the main loop advances it.
type FrameClock struct {
	frame atomic.Int64
}

func NewFrameClock() *FrameClock {
	return &FrameClock{}
}

func (f *FrameClock) FrameIndex() int64 {
	return f.frame.Load()
}

// Advance moves to the next frame and returns its index.
func (f *FrameClock) Advance() int64 {
	return f.frame.Add(1)
}
