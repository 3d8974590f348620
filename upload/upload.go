// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package upload implements the per-frame upload buffer ring (spec
// §4.4): N frame-indexed pools, each suballocating small requests
// from a bump-pointer 1 MiB page list and handing out whole reusable
// pages for large requests, over committed upload-heap resources.
package upload

import "github.com/gviegas/scene/driver"

// SmallPageSize is the size of one small page (spec §4.4 "1 MiB pages").
const SmallPageSize = 1 << 20

// page is one committed upload-heap resource, persistently mapped.
type page struct {
	res    driver.Resource
	mapped []byte
}

func newPage(dev driver.Device, size int) (*page, error) {
	desc := driver.ResourceDesc{
		Dimension:    0,
		Size:         driver.Dim3D{Width: size},
		InitialState: driver.StateGenericRead,
	}
	res, err := dev.NewCommittedResource(driver.HeapUpload, desc)
	if err != nil {
		return nil, err
	}
	return &page{res: res, mapped: res.Map()}, nil
}

// Allocation is a suballocated range of a committed upload resource,
// valid until the GPU has finished consuming the frame it was handed
// out in (spec §4.4 invariant).
type Allocation struct {
	Resource driver.Resource
	Mapped   []byte
	Offset   uint64
	Size     uint64
}

// pool is one frame slot's state.
type pool struct {
	small     []*page
	smallCur  int
	smallOff  uint32
	smallHigh int

	large    map[uint64][]*page
	largeIdx map[uint64]int
}

func newPool() *pool {
	return &pool{large: make(map[uint64][]*page), largeIdx: make(map[uint64]int)}
}

// Ring is the upload buffer ring: N per-frame pools rotated by
// NextFrame (spec §4.4).
type Ring struct {
	dev   driver.Device
	pools []*pool
	cur   int
}

// New creates a Ring with frameCount per-frame pools.
func New(dev driver.Device, frameCount int) *Ring {
	if frameCount < 1 {
		panic("upload: frameCount must be >= 1")
	}
	r := &Ring{dev: dev, pools: make([]*pool, frameCount)}
	for i := range r.pools {
		r.pools[i] = newPool()
	}
	return r
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

// Allocate suballocates size bytes aligned to alignment from the
// currently active pool (spec §4.4 "allocate(size, alignment)").
func (r *Ring) Allocate(size uint64, alignment uint64) (Allocation, error) {
	p := r.pools[r.cur]
	if size <= SmallPageSize {
		return r.allocateSmall(p, uint32(size), uint32(alignment))
	}
	return r.allocateLarge(p, size)
}

func (r *Ring) allocateSmall(p *pool, size, alignment uint32) (Allocation, error) {
	for {
		if p.smallCur >= len(p.small) {
			np, err := newPage(r.dev, SmallPageSize)
			if err != nil {
				return Allocation{}, err
			}
			p.small = append(p.small, np)
		}
		cur := p.small[p.smallCur]
		off := uint32(alignUp(uint64(p.smallOff), uint64(alignment)))
		if uint64(off)+uint64(size) <= SmallPageSize {
			p.smallOff = off + size
			if p.smallCur > p.smallHigh {
				p.smallHigh = p.smallCur
			}
			return Allocation{
				Resource: cur.res,
				Mapped:   cur.mapped[off : off+size],
				Offset:   uint64(off),
				Size:     uint64(size),
			}, nil
		}
		// Does not fit in the current page: advance, leaving the
		// remainder of this page unused for the rest of the frame
		// (spec §4.4 "rolling to a new page on overflow").
		p.smallCur++
		p.smallOff = 0
	}
}

func (r *Ring) allocateLarge(p *pool, size uint64) (Allocation, error) {
	idx := p.largeIdx[size]
	pages := p.large[size]
	var pg *page
	if idx < len(pages) {
		pg = pages[idx]
	} else {
		np, err := newPage(r.dev, int(size))
		if err != nil {
			return Allocation{}, err
		}
		pg = np
		p.large[size] = append(pages, pg)
	}
	p.largeIdx[size] = idx + 1
	return Allocation{Resource: pg.res, Mapped: pg.mapped, Offset: 0, Size: size}, nil
}

// NextFrame rotates to the next pool index and cleans up the newly
// current pool: pages beyond the high-water mark its previous
// occupancy reached are dropped, and offsets/per-size large-page
// indices are reset (spec §4.4 "next_frame()").
func (r *Ring) NextFrame() {
	r.cur = (r.cur + 1) % len(r.pools)
	p := r.pools[r.cur]

	if len(p.small) > p.smallHigh+1 {
		p.small = p.small[:p.smallHigh+1]
	}
	p.smallCur = 0
	p.smallOff = 0
	p.smallHigh = 0

	for size, used := range p.largeIdx {
		if pages := p.large[size]; len(pages) > used {
			p.large[size] = pages[:used]
		}
		p.largeIdx[size] = 0
	}
}
