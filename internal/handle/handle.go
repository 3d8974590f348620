// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package handle implements the two paged handle allocators that back
// descriptor-slot metadata throughout the renderer: a random-free
// allocator with LIFO free-list discipline (used for CPU descriptors,
// which are released individually and in arbitrary order) and a
// frame-bump arena (used for GPU descriptors, which are only ever
// reset wholesale at the start of a frame).
package handle

import (
	"fmt"
)

// pageSizeOf validates and narrows the page size/capacity argument
// shared by NewRandom and NewArena.
func pageSizeOf(n int) uint16 {
	if n <= 0 || n > MaxPageSize {
		panic("handle: invalid page size")
	}
	return uint16(n)
}

// MaxPageSize is the largest page size either allocator accepts,
// imposed by page sizes, page indices and in-page offsets all being
// held in 16 bits.
const MaxPageSize = 1<<16 - 1

// MaxPageCount bounds the number of pages either allocator may hold,
// for the same 16-bit reason.
const MaxPageCount = 1<<16 - 1

// Handle identifies a slot by page index and in-page offset. It is
// the uniform currency of every slot allocator in the renderer
// (descriptor slots, GPU descriptor ranges).
type Handle struct {
	Page   uint16
	Offset uint16
}

// ErrOutOfSpace is returned when an allocation would require more
// than MaxPageCount pages.
var ErrOutOfSpace = fmt.Errorf("handle: out of descriptor space")

// Random is a paged slot allocator with LIFO free-list discipline:
// Allocate pops the most recently freed slot when one is available,
// otherwise it grows by one page of pageSize fresh slots. There is no
// compaction; pages are never released once grown.
type Random struct {
	pageSize uint16
	pages    uint16
	free     []Handle
}

// NewRandom creates a Random allocator whose pages hold pageSize slots
// each. pageSize must be in (0, MaxPageSize].
func NewRandom(pageSize int) *Random {
	return &Random{pageSize: pageSizeOf(pageSize)}
}

// PageSize returns the number of slots per page.
func (r *Random) PageSize() int { return int(r.pageSize) }

// PageCount returns the number of pages allocated so far.
func (r *Random) PageCount() int { return int(r.pages) }

// Allocate returns a free slot, growing by one page if none remain.
func (r *Random) Allocate() (Handle, error) {
	if len(r.free) == 0 {
		if int(r.pages) >= MaxPageCount {
			return Handle{}, ErrOutOfSpace
		}
		page := r.pages
		r.pages++
		// Appended in reverse so that offset 0 is popped first,
		// matching the order a fresh page would be consumed in.
		for i := int(r.pageSize) - 1; i >= 0; i-- {
			r.free = append(r.free, Handle{Page: page, Offset: uint16(i)})
		}
	}
	n := len(r.free) - 1
	h := r.free[n]
	r.free = r.free[:n]
	return h, nil
}

// Free returns a slot to the free list. Freeing a slot that was not
// outstanding, or freeing it twice, is a contract violation (spec §7,
// "contract-violation") and is not caught here: callers are expected
// to track outstanding handles (e.g., via an RAII wrapper) and must
// not call Free twice for the same handle.
func (r *Random) Free(h Handle) {
	r.free = append(r.free, h)
}

// Arena is a bump-pointer allocator across fixed-capacity pages. It
// never frees individual slots; the only way to reclaim space is
// Reset, which rewinds to page 0 offset 0. This is the allocation
// discipline for per-frame GPU descriptor ranges (spec §4.1, §4.5).
type Arena struct {
	pageCapacity uint16
	pages        uint16
	curPage      uint16
	curOffset    uint16
}

// NewArena creates an Arena whose pages hold pageCapacity slots each.
func NewArena(pageCapacity int) *Arena {
	return &Arena{pageCapacity: pageSizeOf(pageCapacity)}
}

// PageCapacity returns the number of slots per page.
func (a *Arena) PageCapacity() int { return int(a.pageCapacity) }

// AllocateRange returns a handle to a contiguous run of n slots, all
// within a single page. n must not exceed PageCapacity. If the
// current page lacks room, the arena advances to the next page,
// leaving the unused residue of the current page stranded (never
// reused until Reset).
func (a *Arena) AllocateRange(n int) (Handle, error) {
	if n <= 0 || n > int(a.pageCapacity) {
		panic("handle: invalid range size")
	}
	if int(a.curOffset)+n > int(a.pageCapacity) {
		a.curPage++
		a.curOffset = 0
		if int(a.curPage) >= MaxPageCount {
			return Handle{}, ErrOutOfSpace
		}
	}
	if a.curPage >= a.pages {
		a.pages = a.curPage + 1
	}
	h := Handle{Page: a.curPage, Offset: a.curOffset}
	a.curOffset += uint16(n)
	return h, nil
}

// Reset rewinds the arena so that the next AllocateRange call returns
// page 0, offset 0. Previously issued handles become invalid; it is
// the caller's responsibility (the per-frame GPU descriptor heap) to
// ensure no in-flight reader still depends on them (spec §4.5, §5).
func (a *Arena) Reset() {
	a.curPage = 0
	a.curOffset = 0
}

// PageCount returns the number of pages touched since the arena was
// created. Reset leaves it unchanged (pages remain allocated for
// reuse), so it never decreases.
func (a *Arena) PageCount() int { return int(a.pages) }
