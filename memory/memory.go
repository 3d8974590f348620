// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package memory implements the GPU memory allocator (spec §4.3): a
// grid of typed heap buckets, each a sequence of fixed-size pages
// backed by a TLSF meta-allocator (package internal/tlsf), producing
// placed resource allocations. Freed allocations are not returned to
// their page immediately — they are queued per frame slot and only
// recycled once the GPU is known to be done with that frame (spec §5
// "a resource released during frame f may be destroyed no earlier
// than the start of frame f + frame-count").
package memory

import (
	"fmt"

	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/internal/tlsf"
)

// PageSize is the fixed size of every heap page (spec §4.3 "64 MiB").
const PageSize = 64 << 20

const (
	tlsfMinBlockSize = 256
	tlsfFLBits       = 27 // covers sizes up to 2^27 = 128 MiB, > PageSize
	tlsfSLBits       = 5
)

// ErrOutOfMemory is returned by Allocate when no page in the selected
// bucket can satisfy the request and a new page cannot be created
// (spec §7 "out-of-memory-gpu").
var ErrOutOfMemory = fmt.Errorf("memory: out of device memory")

// page is one fixed-size heap page plus its TLSF bookkeeping.
type page struct {
	heap driver.Heap
	tlsf *tlsf.Meta
}

// bucket groups every page of one (HeapType, HeapUsage) pair.
type bucket struct {
	typ   driver.HeapType
	usage driver.HeapUsage
	pages []*page
}

// HeapAllocation is a placed region within one GPU heap page (spec
// §3). A committed allocation (Committed reports true) bypasses TLSF entirely;
// it owns its Resource outright and Free destroys it immediately
// rather than deferring.
type HeapAllocation struct {
	Resource driver.Resource

	bucket *bucket
	page   *page
	alloc  *tlsf.Allocation
}

// Committed reports whether a is a committed (non-placed) allocation.
func (a *HeapAllocation) Committed() bool { return a.page == nil }

// Allocator owns the full |heap_types| x |heap_usages| bucket grid
// and the deferred per-frame-slot recycle lists.
type Allocator struct {
	dev        driver.Device
	frameCount int
	frameIndex int

	buckets [driver.NumHeapTypes][driver.NumHeapUsages]*bucket

	// recycle[i] holds allocations freed during frame slot i, pending
	// actual release the next time slot i comes back around.
	recycle [][]*HeapAllocation
}

// New creates an Allocator that rotates its deferred-release queues
// across frameCount frame slots (spec §4.6 "frame-count").
func New(dev driver.Device, frameCount int) *Allocator {
	if frameCount < 1 {
		panic("memory: frameCount must be >= 1")
	}
	a := &Allocator{dev: dev, frameCount: frameCount, recycle: make([][]*HeapAllocation, frameCount)}
	for t := 0; t < driver.NumHeapTypes; t++ {
		for u := 0; u < driver.NumHeapUsages; u++ {
			a.buckets[t][u] = &bucket{typ: driver.HeapType(t), usage: driver.HeapUsage(u)}
		}
	}
	return a
}

// usageFor selects the HeapUsage bucket a ResourceDesc routes to
// (spec §4.3 "Bucket selection from a AllocationDesc is driven by
// dimension and usage flags").
func usageFor(desc driver.ResourceDesc) driver.HeapUsage {
	if desc.Dimension == 0 {
		return driver.HeapUsageBuffer
	}
	if desc.RenderTarget || desc.DepthStencil {
		return driver.HeapUsageRTDSTexture
	}
	return driver.HeapUsageNonRTDSTexture
}

// Allocate places desc within heap type t, creating a new page in
// the selected bucket if none of its existing pages can fit the
// request (spec §4.3 "allocate(desc)").
func (a *Allocator) Allocate(t driver.HeapType, desc driver.ResourceDesc) (*HeapAllocation, error) {
	b := a.buckets[t][usageFor(desc)]
	info := a.dev.ResourceAllocationInfo(desc)
	if info.Size > PageSize {
		// Too large to be placed within a single fixed-size page;
		// fall back to the committed path (spec §4.3 "A parallel
		// committed (non-placed) path exists for resources that
		// cannot honor the heap alignment").
		return a.AllocateCommitted(t, desc)
	}

	for _, p := range b.pages {
		if alloc, err := p.tlsf.Allocate(uint32(info.Size), uint32(info.Alignment)); err == nil {
			res, err := a.dev.NewPlacedResource(p.heap, uint64(alloc.Offset), desc)
			if err != nil {
				p.tlsf.Free(alloc)
				return nil, err
			}
			return &HeapAllocation{Resource: res, bucket: b, page: p, alloc: alloc}, nil
		}
	}

	p, err := a.newPage(t, b.usage)
	if err != nil {
		return nil, ErrOutOfMemory
	}
	b.pages = append(b.pages, p)

	alloc, err := p.tlsf.Allocate(uint32(info.Size), uint32(info.Alignment))
	if err != nil {
		return nil, ErrOutOfMemory
	}
	res, err := a.dev.NewPlacedResource(p.heap, uint64(alloc.Offset), desc)
	if err != nil {
		p.tlsf.Free(alloc)
		return nil, err
	}
	return &HeapAllocation{Resource: res, bucket: b, page: p, alloc: alloc}, nil
}

// AllocateCommitted creates a resource over its own implicit heap,
// bypassing TLSF entirely (spec §4.3 "committed (non-placed) path";
// used unconditionally for back-buffers).
func (a *Allocator) AllocateCommitted(t driver.HeapType, desc driver.ResourceDesc) (*HeapAllocation, error) {
	res, err := a.dev.NewCommittedResource(t, desc)
	if err != nil {
		return nil, err
	}
	return &HeapAllocation{Resource: res}, nil
}

func (a *Allocator) newPage(t driver.HeapType, u driver.HeapUsage) (*page, error) {
	h, err := a.dev.NewHeap(t, u, PageSize)
	if err != nil {
		return nil, err
	}
	return &page{heap: h, tlsf: tlsf.New(PageSize, tlsfMinBlockSize, tlsfFLBits, tlsfSLBits)}, nil
}

// Free queues alloc for release in the current frame slot. A
// committed allocation is destroyed immediately, since it owns its
// memory outright and no page bookkeeping needs to outlive in-flight
// GPU work on a shared page (spec §3 "released deferred").
func (a *Allocator) Free(alloc *HeapAllocation) {
	if alloc.Committed() {
		alloc.Resource.Destroy()
		return
	}
	a.recycle[a.frameIndex] = append(a.recycle[a.frameIndex], alloc)
}

// NextFrame advances the frame index and actually releases every
// allocation queued frameCount frames ago, returning their TLSF
// ranges to the free pool (spec §4.6 begin_frame "release
// deferred-released heap allocations belonging to this frame slot").
func (a *Allocator) NextFrame() {
	a.frameIndex = (a.frameIndex + 1) % a.frameCount
	pending := a.recycle[a.frameIndex]
	a.recycle[a.frameIndex] = pending[:0]
	for _, alloc := range pending {
		alloc.Resource.Destroy()
		alloc.page.tlsf.Free(alloc.alloc)
	}
}

// FrameIndex returns the allocator's current frame slot.
func (a *Allocator) FrameIndex() int { return a.frameIndex }
