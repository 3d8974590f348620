// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package memory_test

import (
	"testing"

	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/driver/fake"
	"github.com/gviegas/scene/memory"
)

func openDevice(t *testing.T) driver.Device {
	t.Helper()
	drv, err := (&fake.Driver{}).Open()
	if err != nil {
		t.Fatal(err)
	}
	return drv
}

func bufferDesc(size int) driver.ResourceDesc {
	return driver.ResourceDesc{Dimension: 0, Size: driver.Dim3D{Width: size}, InitialState: driver.StateCopyDst}
}

func TestAllocateRoutesByUsage(t *testing.T) {
	dev := openDevice(t)
	a := memory.New(dev, 3)
	alloc, err := a.Allocate(driver.HeapDefault, bufferDesc(4096))
	if err != nil {
		t.Fatal(err)
	}
	if alloc.Committed() {
		t.Error("Allocate: expected a placed allocation for a small buffer")
	}
	if alloc.Resource == nil {
		t.Fatal("Allocate: nil Resource")
	}
}

func TestAllocateFallsBackToCommittedWhenOversize(t *testing.T) {
	dev := openDevice(t)
	a := memory.New(dev, 3)
	alloc, err := a.Allocate(driver.HeapDefault, bufferDesc(memory.PageSize+1))
	if err != nil {
		t.Fatal(err)
	}
	if !alloc.Committed() {
		t.Error("Allocate: expected a committed allocation for an oversize request")
	}
}

func TestDeferredFreeWaitsFrameCount(t *testing.T) {
	dev := openDevice(t)
	const frames = 3
	a := memory.New(dev, frames)

	first, err := a.Allocate(driver.HeapDefault, bufferDesc(256))
	if err != nil {
		t.Fatal(err)
	}
	a.Free(first)

	// Advancing fewer than frameCount times must not hand the freed
	// allocation's resource out again.
	for i := 0; i < frames-1; i++ {
		a.NextFrame()
	}
	second, err := a.Allocate(driver.HeapDefault, bufferDesc(256))
	if err != nil {
		t.Fatal(err)
	}
	if second.Resource == first.Resource {
		t.Error("Allocate: reused a resource before its frame slot came back around")
	}

	a.NextFrame() // completes the cycle; first's slot is now recycled
}

func TestMultipleAllocationsGetDistinctPlacements(t *testing.T) {
	dev := openDevice(t)
	a := memory.New(dev, 1)
	var allocs []*memory.HeapAllocation
	for i := 0; i < 8; i++ {
		alloc, err := a.Allocate(driver.HeapDefault, bufferDesc(1024))
		if err != nil {
			t.Fatal(err)
		}
		allocs = append(allocs, alloc)
	}
	seen := map[driver.Resource]bool{}
	for _, a := range allocs {
		if seen[a.Resource] {
			t.Error("Allocate: returned the same Resource twice")
		}
		seen[a.Resource] = true
	}
}
