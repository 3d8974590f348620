// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package tlsf implements a two-level segregated-fit allocator: O(1)
// best-fit allocation and O(1) coalescing free over a fixed-size
// address range. It performs bookkeeping only — the backing memory
// is a GPU heap page owned by the caller (package memory); tlsf just
// decides which byte range of that page an allocation occupies.
package tlsf

import (
	"fmt"
	"math/bits"
)

// block is a node in both the physical (address-ordered) doubly
// linked list and, while free, a bucket's free list.
type block struct {
	offset, size       uint32
	prevPhys, nextPhys *block
	prevFree, nextFree *block
}

// isFree mirrors the original representation: prevFree points to the
// block itself exactly when the block is occupied.
func (b *block) isFree() bool { return b.prevFree != b }

// Allocation is an opaque handle to a placed range. The zero value is
// not a valid Allocation; only values returned by Meta.Allocate are.
type Allocation struct {
	Offset, Size, Alignment uint32
	block                   *block
	source                  *Meta
}

// Stats reports a snapshot of pool occupancy, used by callers (and
// tests) to verify the round-trip invariant in spec §8 property 1.
type Stats struct {
	Allocated       uint64
	Free            uint64
	Unallocated     uint64
	AllocatedBlocks int
	FreeBlocks      int
}

// Meta is a TLSF meta-allocator over the address range [0, size).
// MinBlockSize must be a power of two no smaller than 256.
// FirstLevelBits is the number of first-level (coarse, power-of-two)
// buckets; it must be large enough that 1<<(FirstLevelBits-1) covers
// size. SecondLevelBits subdivides each first-level bucket further
// and must be in [1, 6].
type Meta struct {
	minBlockSize uint32
	flBits       int
	slBits       int
	size         uint32
	freeOffset   uint32

	physFirst, physLast *block

	freeList  []*block
	bitmapFli uint32
	bitmapSli []uint32

	allocBlocks int
	freeBlocks  int
}

// New creates a Meta managing the address range [0, size).
func New(size, minBlockSize uint32, firstLevelBits, secondLevelBits int) *Meta {
	if minBlockSize == 0 || minBlockSize&(minBlockSize-1) != 0 || minBlockSize < 256 {
		panic("tlsf: minBlockSize must be a power of two >= 256")
	}
	if secondLevelBits < 1 || secondLevelBits > 6 {
		panic("tlsf: secondLevelBits must be in [1,6]")
	}
	if firstLevelBits <= secondLevelBits || firstLevelBits > 32 {
		panic("tlsf: invalid firstLevelBits")
	}
	slSlots := 1 << secondLevelBits
	return &Meta{
		minBlockSize: minBlockSize,
		flBits:       firstLevelBits,
		slBits:       secondLevelBits,
		size:         size,
		freeList:     make([]*block, firstLevelBits*slSlots),
		bitmapSli:    make([]uint32, firstLevelBits),
	}
}

// Size returns the managed address range's size in bytes.
func (m *Meta) Size() uint32 { return m.size }

// ErrOutOfMemory is returned by Allocate when no block of sufficient
// size is available; spec §4.2 "Failure mode".
var ErrOutOfMemory = fmt.Errorf("tlsf: out of memory")

func (m *Meta) mapping(size uint32) (fli, sli int) {
	slSlots := uint32(1 << m.slBits)
	if size < slSlots {
		return 0, int(size)
	}
	fl := bits.Len32(size) - 1
	s := (size >> uint(fl-m.slBits)) & (slSlots - 1)
	return fl, int(s)
}

func (m *Meta) index(fli, sli int) int { return fli*(1<<m.slBits) + sli }

func alignUp(v, alignment uint32) uint32 {
	return (v + alignment - 1) &^ (alignment - 1)
}

// Allocate reserves size bytes aligned to alignment (a power of two),
// returning a block whose effective span
// align_up(offset,alignment)-offset+align_up(size,alignment) fits
// within a single free block. It never partially allocates: on
// failure it returns ErrOutOfMemory and leaves the pool untouched.
func (m *Meta) Allocate(size, alignment uint32) (*Allocation, error) {
	if alignment == 0 || alignment&(alignment-1) != 0 {
		panic("tlsf: alignment must be a power of two")
	}
	if size == 0 {
		panic("tlsf: size must be > 0")
	}

	b := m.findFreeBlock(size, alignment)
	if b == nil {
		return nil, ErrOutOfMemory
	}
	m.removeBlock(b)

	begin := b.offset
	end := b.offset + b.size
	alignLeft := alignUp(b.offset, alignment)
	alignRight := alignLeft + alignUp(size, alignment)

	if alignLeft-begin >= m.minBlockSize {
		split := &block{
			offset:   begin,
			size:     alignLeft - begin,
			prevPhys: b.prevPhys,
			nextPhys: b,
		}
		b.offset = alignLeft
		b.size -= split.size
		b.prevPhys = split
		if split.prevPhys != nil {
			split.prevPhys.nextPhys = split
		}
		m.insertBlock(split)
		if b == m.physFirst {
			m.physFirst = split
		}
	}

	if end-alignRight >= m.minBlockSize {
		split := &block{
			offset:   alignRight,
			size:     end - alignRight,
			prevPhys: b,
			nextPhys: b.nextPhys,
		}
		b.size -= split.size
		b.nextPhys = split
		if split.nextPhys != nil {
			split.nextPhys.prevPhys = split
		}
		m.insertBlock(split)
		if b == m.physLast {
			m.physLast = split
		}
	}

	m.allocBlocks++

	return &Allocation{
		Offset:    alignUp(b.offset, alignment),
		Size:      size,
		Alignment: alignment,
		block:     b,
		source:    m,
	}, nil
}

// Free releases allocation, coalescing with free physical neighbors.
// Freeing a nil allocation, or one not sourced from m, is a contract
// violation and panics (spec §7 "contract-violation").
func (m *Meta) Free(a *Allocation) {
	if a == nil || a.source != m {
		panic("tlsf: allocation does not belong to this pool")
	}
	b := a.block
	if b.isFree() {
		panic("tlsf: double free")
	}
	m.allocBlocks--

	if b.prevPhys != nil && b.prevPhys.isFree() {
		prev := b.prevPhys
		if prev == m.physFirst {
			m.physFirst = b
		}
		b.prevPhys = prev.prevPhys
		if prev.prevPhys != nil {
			prev.prevPhys.nextPhys = b
		}
		b.offset = prev.offset
		b.size += prev.size
		m.removeBlock(prev)
	}

	if b.nextPhys != nil && b.nextPhys.isFree() {
		next := b.nextPhys
		if next == m.physLast {
			m.physLast = b
		}
		b.nextPhys = next.nextPhys
		if next.nextPhys != nil {
			next.nextPhys.prevPhys = b
		}
		b.size += next.size
		m.removeBlock(next)
	}

	m.insertBlock(b)
	a.block = nil
	a.source = nil
}

func (m *Meta) findFreeBlock(size, alignment uint32) *block {
	bestFli, bestSli := m.mapping(size)

	fliMap := m.bitmapFli &^ ((1 << uint(bestFli)) - 1)
	for fliMap != 0 {
		fli := bits.TrailingZeros32(fliMap)
		fliMap &^= 1 << uint(fli)

		sliMap := m.bitmapSli[fli]
		if fli == bestFli {
			sliMap &^= (1 << uint(bestSli)) - 1
		}

		for sliMap != 0 {
			sli := bits.TrailingZeros32(sliMap)
			sliMap &^= 1 << uint(sli)

			for b := m.freeList[m.index(fli, sli)]; b != nil; b = b.nextFree {
				if m.checkBlock(b, size, alignment) {
					return b
				}
			}
		}
	}

	return m.makeNewBlock(size, alignment)
}

func (m *Meta) checkBlock(b *block, size, alignment uint32) bool {
	required := alignUp(b.offset, alignment) - b.offset + alignUp(size, alignment)
	return b.size >= required
}

func (m *Meta) removeBlock(b *block) {
	if b.prevFree != nil && b.prevFree != b {
		b.prevFree.nextFree = b.nextFree
	}
	if b.nextFree != nil {
		b.nextFree.prevFree = b.prevFree
	}
	b.prevFree = b // occupied marker

	fli, sli := m.mapping(b.size)
	idx := m.index(fli, sli)
	if m.freeList[idx] == b {
		m.freeList[idx] = b.nextFree
	}
	b.nextFree = nil
	if m.freeList[idx] == nil {
		m.bitmapSli[fli] &^= 1 << uint(sli)
		if m.bitmapSli[fli] == 0 {
			m.bitmapFli &^= 1 << uint(fli)
		}
	}
	m.freeBlocks--
}

func (m *Meta) insertBlock(b *block) {
	fli, sli := m.mapping(b.size)
	idx := m.index(fli, sli)

	b.prevFree = nil
	b.nextFree = m.freeList[idx]
	if b.nextFree != nil {
		b.nextFree.prevFree = b
	}
	m.freeList[idx] = b

	m.bitmapFli |= 1 << uint(fli)
	m.bitmapSli[fli] |= 1 << uint(sli)
	m.freeBlocks++
}

func (m *Meta) makeNewBlock(size, alignment uint32) *block {
	extent := alignUp(m.freeOffset, alignment) - m.freeOffset + alignUp(size, alignment)
	if extent > m.size-m.freeOffset {
		return nil
	}

	b := &block{offset: m.freeOffset, size: extent}
	m.freeOffset += extent

	switch {
	case m.physFirst == nil && m.physLast == nil:
		m.physFirst, m.physLast = b, b
	default:
		m.physLast.nextPhys = b
		b.prevPhys = m.physLast
		m.physLast = b
	}

	m.insertBlock(b)
	return b
}

// GetStats walks the physical list to report current occupancy. It is
// O(n) in the number of physical blocks; callers needing this on a
// hot path should track their own counters instead, as the original
// implementation's test-only usage does.
func (m *Meta) GetStats() Stats {
	var s Stats
	for b := m.physFirst; b != nil; b = b.nextPhys {
		if b.isFree() {
			s.Free += uint64(b.size)
			s.FreeBlocks++
		} else {
			s.Allocated += uint64(b.size)
			s.AllocatedBlocks++
		}
	}
	s.Unallocated = uint64(m.size - m.freeOffset)
	return s
}
