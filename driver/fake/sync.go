// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package fake

import (
	"sync"

	"github.com/gviegas/scene/driver"
)

// Queue is the fake driver.GraphicsQueue implementation. Submission
// is synchronous: Submit "executes" a command list immediately by
// doing nothing (the fake backend has no GPU to race against), so a
// Signal's value is visible to CompletedValue as soon as Signal
// returns.
type Queue struct {
	mu         sync.Mutex
	fenceVal   uint64
	lastSignal uint64
}

func (q *Queue) Submit(lists []driver.CmdList) error { return nil }

func (q *Queue) Signal(f driver.Fence, value uint64) error {
	fence := f.(*Fence)
	fence.mu.Lock()
	fence.completed = value
	fence.mu.Unlock()
	q.mu.Lock()
	q.lastSignal = value
	q.mu.Unlock()
	return nil
}

// Fence is the fake driver.Fence implementation.
type Fence struct {
	mu        sync.Mutex
	completed uint64
}

// NewFence implements driver.Device.
func (d *Device) NewFence(initial uint64) (driver.Fence, error) {
	return &Fence{completed: initial}, nil
}

func (f *Fence) Destroy() {}

func (f *Fence) CompletedValue() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// Wait implements driver.Fence. It never blocks: if CompletedValue
// is below value (e.g. after SetCompleted lowered it), Wait raises it
// to value, as if the GPU had caught up.
func (f *Fence) Wait(value uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completed < value {
		f.completed = value
	}
	return nil
}

// SetCompleted overrides the fence's completed value directly,
// without going through Signal. It lets tests simulate a GPU that is
// running behind the CPU, to exercise the fence-based frame-in-flight
// bound (spec §5) without a real asynchronous device.
func (f *Fence) SetCompleted(value uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = value
}
