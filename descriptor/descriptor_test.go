// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package descriptor_test

import (
	"testing"

	"github.com/gviegas/scene/descriptor"
	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/driver/fake"
)

func openDevice(t *testing.T) driver.Device {
	t.Helper()
	dev, err := (&fake.Driver{}).Open()
	if err != nil {
		t.Fatal(err)
	}
	return dev
}

func TestCPUAllocatorRoundTripNeverExceedsCeilPages(t *testing.T) {
	dev := openDevice(t)
	a := descriptor.NewCPUAllocator(dev, driver.DescHeapRTV)

	const pageCapacity = 256
	const n = pageCapacity*3 + 7
	for i := 0; i < n; i++ {
		s, err := a.Allocate()
		if err != nil {
			t.Fatal(err)
		}
		s.Free()
	}
	want := (n + pageCapacity - 1) / pageCapacity
	if a.PageCount() != want {
		t.Errorf("CPUAllocator.PageCount: want %d, have %d", want, a.PageCount())
	}
}

func TestCPUSlotDoubleFreePanics(t *testing.T) {
	dev := openDevice(t)
	a := descriptor.NewCPUAllocator(dev, driver.DescHeapCBVSRVUAV)
	s, err := a.Allocate()
	if err != nil {
		t.Fatal(err)
	}
	s.Free()
	defer func() {
		if recover() == nil {
			t.Error("Free: expected panic on double free")
		}
	}()
	s.Free()
}

func TestGPUAllocatorRequiresShaderVisibleType(t *testing.T) {
	dev := openDevice(t)
	defer func() {
		if recover() == nil {
			t.Error("NewGPUAllocator: expected panic for a non-shader-visible heap type")
		}
	}()
	descriptor.NewGPUAllocator(dev, driver.DescHeapRTV)
}

func TestGPUAllocatorResetRewinds(t *testing.T) {
	dev := openDevice(t)
	a := descriptor.NewGPUAllocator(dev, driver.DescHeapCBVSRVUAV)
	r1, err := a.Allocate(8)
	if err != nil {
		t.Fatal(err)
	}
	a.Reset()
	r2, err := a.Allocate(8)
	if err != nil {
		t.Fatal(err)
	}
	if r1.GPUHandle(0) != r2.GPUHandle(0) {
		t.Error("Reset: expected the next allocation to revisit page 0 offset 0")
	}
}

func TestGPURangeCreateRoundTrip(t *testing.T) {
	dev := openDevice(t)
	a := descriptor.NewGPUAllocator(dev, driver.DescHeapCBVSRVUAV)
	r, err := a.Allocate(4)
	if err != nil {
		t.Fatal(err)
	}
	if r.Count() != 4 {
		t.Fatalf("GPURange.Count: want 4, have %d", r.Count())
	}
	h := r.CPUHandle(0)
	h.Heap.CreateSampler(h.Index, driver.Sampling{Filter: driver.FilterLinear})
	kind, _ := h.Heap.(*fake.DescHeap).EntryAt(h.Index)
	if kind != "sampler" {
		t.Errorf("GPURange.CPUHandle: want entry kind sampler, have %s", kind)
	}
}
