// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import (
	"testing"
	"time"
)

func TestFrameClockTick(t *testing.T) {
	c := NewFrameClock()
	if c.TotalTime() < 0 {
		t.Fatalf("TotalTime() = %v, want >= 0", c.TotalTime())
	}
	time.Sleep(time.Millisecond)
	c.Tick()
	if c.DeltaTime() < 0 {
		t.Errorf("DeltaTime() = %v, want >= 0", c.DeltaTime())
	}
	if c.TotalTime() < c.DeltaTime() {
		t.Errorf("TotalTime() = %v, want >= DeltaTime() = %v", c.TotalTime(), c.DeltaTime())
	}
}
