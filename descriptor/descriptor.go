// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package descriptor implements the two descriptor heap allocators of
// spec §4.5: a CPU descriptor allocator (one random-free paged heap
// per descriptor type, RAII slots) and a GPU descriptor allocator (one
// frame-arena paged heap per shader-visible type, reset every frame).
package descriptor

import (
	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/internal/handle"
)

// defaultPageSize is the slot count carved into each underlying
// driver.DescHeap page.
const defaultPageSize = 256

// CPUSlot is an RAII handle owning one slot in a typed CPU-visible
// heap. Free returns it to its source page; a CPUSlot must be freed
// at most once (spec §7 "contract-violation": freeing a slot twice
// is assertion-level and panics).
type CPUSlot struct {
	owner *CPUAllocator
	h     handle.Handle
	freed bool
}

// Handle returns the CPU-visible descriptor handle backing s.
func (s *CPUSlot) Handle() driver.CPUHandle {
	return s.owner.pages[s.h.Page].heap.CPUHandle(int(s.h.Offset))
}

// Free returns s's slot to its source page (spec §4.5 "dropping calls
// back into its source heap").
func (s *CPUSlot) Free() {
	if s.freed {
		panic("descriptor: slot freed twice")
	}
	s.freed = true
	s.owner.random.Free(s.h)
}

type cpuPage struct {
	heap driver.DescHeap
}

// CPUAllocator is a random-free paged allocator over one descriptor
// heap type (spec §4.5 "CPU descriptor allocator").
type CPUAllocator struct {
	dev    driver.Device
	typ    driver.DescHeapType
	random *handle.Random
	pages  []*cpuPage
}

// NewCPUAllocator creates a CPUAllocator for descriptor type t.
func NewCPUAllocator(dev driver.Device, t driver.DescHeapType) *CPUAllocator {
	return &CPUAllocator{dev: dev, typ: t, random: handle.NewRandom(defaultPageSize)}
}

// Allocate reserves one slot, growing by one page if every existing
// page is exhausted (spec §4.1 "allocate() ... growing one page if
// empty").
func (a *CPUAllocator) Allocate() (*CPUSlot, error) {
	h, err := a.random.Allocate()
	if err != nil {
		return nil, err
	}
	if int(h.Page) == len(a.pages) {
		heap, err := a.dev.NewDescriptorHeap(a.typ, a.random.PageSize(), false)
		if err != nil {
			a.random.Free(h)
			return nil, err
		}
		a.pages = append(a.pages, &cpuPage{heap: heap})
	}
	return &CPUSlot{owner: a, h: h}, nil
}

// PageCount returns the number of pages backing a. Tests use this to
// verify spec §8 property 11 ("at most ceil(N / page-capacity) pages").
func (a *CPUAllocator) PageCount() int { return a.random.PageCount() }

// GPURange names a contiguous shader-visible slot range carved from a
// frame arena (spec §3 "GPU descriptor").
type GPURange struct {
	heap  driver.DescHeap
	start int
	count int
}

// Count returns the number of slots in r.
func (r GPURange) Count() int { return r.count }

// Heap returns the underlying descriptor heap r was carved from, for
// SetDescriptorHeaps calls.
func (r GPURange) Heap() driver.DescHeap { return r.heap }

// CPUHandle returns the CPU-visible write handle for slot i of r,
// used to populate the range via driver.DescHeap's CreateXXX methods.
func (r GPURange) CPUHandle(i int) driver.CPUHandle { return r.heap.CPUHandle(r.start + i) }

// GPUHandle returns the shader-visible handle for slot i of r.
func (r GPURange) GPUHandle(i int) driver.GPUHandle { return r.heap.GPUHandle(r.start + i) }

// CopyDescriptor copies the CPU-visible descriptor at src into slot i
// of r (spec §4.7 "stages them into freshly allocated GPU descriptor
// slots").
func (r GPURange) CopyDescriptor(i int, src driver.CPUHandle) {
	r.heap.CopyDescriptor(r.start+i, src)
}

type gpuPage struct {
	heap driver.DescHeap
}

// GPUAllocator is a frame-arena paged allocator over one
// shader-visible descriptor heap type (spec §4.5 "GPU descriptor
// allocator"). It is valid only for DescHeapCBVSRVUAV and
// DescHeapSampler.
type GPUAllocator struct {
	dev   driver.Device
	typ   driver.DescHeapType
	arena *handle.Arena
	pages []*gpuPage
}

// NewGPUAllocator creates a GPUAllocator for shader-visible
// descriptor type t.
func NewGPUAllocator(dev driver.Device, t driver.DescHeapType) *GPUAllocator {
	if !t.IsShaderVisible() {
		panic("descriptor: GPUAllocator requires a shader-visible heap type")
	}
	return &GPUAllocator{dev: dev, typ: t, arena: handle.NewArena(defaultPageSize)}
}

// Allocate reserves a contiguous range of n slots (spec §4.5
// "allocate(count) returns a range").
func (a *GPUAllocator) Allocate(n int) (GPURange, error) {
	h, err := a.arena.AllocateRange(n)
	if err != nil {
		return GPURange{}, err
	}
	if int(h.Page) == len(a.pages) {
		heap, err := a.dev.NewDescriptorHeap(a.typ, a.arena.PageCapacity(), true)
		if err != nil {
			return GPURange{}, err
		}
		a.pages = append(a.pages, &gpuPage{heap: heap})
	}
	p := a.pages[h.Page]
	return GPURange{heap: p.heap, start: int(h.Offset), count: n}, nil
}

// Reset rewinds every page's arena to the start, invalidating every
// range handed out so far (spec §4.5 "reset() rewinds all heaps;
// called at start of each frame").
func (a *GPUAllocator) Reset() { a.arena.Reset() }

// PageCount returns the number of pages backing a.
func (a *GPUAllocator) PageCount() int { return a.arena.PageCount() }
