// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

// FrameClock tracks per-frame timing for the render scheduler's Timer
// collaborator, backed by the platform's high-resolution monotonic
// clock (QueryPerformanceCounter on Windows, clock_gettime
// CLOCK_MONOTONIC elsewhere).
type FrameClock struct {
	start float64
	last  float64
	delta float64
}

// NewFrameClock creates a FrameClock and starts its epoch at the
// current time.
func NewFrameClock() *FrameClock {
	now := monotonicSeconds()
	return &FrameClock{start: now, last: now}
}

// Tick samples the clock and records the delta since the previous
// Tick (or since NewFrameClock, for the first call). Call once per
// frame, before ExecutePipeline.
func (c *FrameClock) Tick() {
	now := monotonicSeconds()
	c.delta = now - c.last
	c.last = now
}

// DeltaTime returns the seconds elapsed since the previous Tick.
func (c *FrameClock) DeltaTime() float32 { return float32(c.delta) }

// TotalTime returns the seconds elapsed since the clock was created.
func (c *FrameClock) TotalTime() float32 { return float32(c.last - c.start) }
