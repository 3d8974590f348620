// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package tlsf_test

import (
	"testing"

	"github.com/gviegas/scene/internal/tlsf"
)

func newMeta(size uint32) *tlsf.Meta {
	return tlsf.New(size, 256, 20, 5)
}

func checkStats(t *testing.T, m *tlsf.Meta) tlsf.Stats {
	t.Helper()
	s := m.GetStats()
	if s.Allocated+s.Free+s.Unallocated != uint64(m.Size()) {
		t.Fatalf("stats do not partition heap size: %+v (size=%d)", s, m.Size())
	}
	return s
}

// TestSplitMerge mirrors scenario S1 of spec.md §8 and the original
// MemoryAllocatorTest.cpp SplitMergeTest scenario.
func TestSplitMerge(t *testing.T) {
	m := newMeta(1024)

	a, err := m.Allocate(256, 16)
	if err != nil {
		t.Fatalf("Allocate A: %v", err)
	}
	b, err := m.Allocate(256, 16)
	if err != nil {
		t.Fatalf("Allocate B: %v", err)
	}
	c, err := m.Allocate(256, 16)
	if err != nil {
		t.Fatalf("Allocate C: %v", err)
	}
	d, err := m.Allocate(256, 16)
	if err != nil {
		t.Fatalf("Allocate D: %v", err)
	}
	if s := checkStats(t, m); s.Unallocated != 0 {
		t.Fatalf("Unallocated = %d, want 0", s.Unallocated)
	}

	m.Free(d)
	m.Free(c)
	s := checkStats(t, m)
	if s.FreeBlocks != 1 {
		t.Fatalf("FreeBlocks = %d, want 1 (coalesced)", s.FreeBlocks)
	}

	e, err := m.Allocate(512, 16)
	if err != nil {
		t.Fatalf("Allocate E: %v", err)
	}

	m.Free(e)
	m.Free(b)
	m.Free(a)
	s = checkStats(t, m)
	if s.FreeBlocks != 1 || s.Free != 1024 {
		t.Fatalf("final stats = %+v, want one 1024-byte free block", s)
	}
}

// TestAlignmentDrivenSplit mirrors scenario S2.
func TestAlignmentDrivenSplit(t *testing.T) {
	m := newMeta(1024)
	a, err := m.Allocate(512, 512)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if a.Offset%512 != 0 {
		t.Fatalf("Offset = %d, not aligned to 512", a.Offset)
	}
	s := checkStats(t, m)
	if s.FreeBlocks != 2 {
		t.Fatalf("FreeBlocks = %d, want 2 (left+right residue)", s.FreeBlocks)
	}
}

func TestAlignmentInvariant(t *testing.T) {
	m := newMeta(64 * 1024)
	aligns := []uint32{16, 32, 64, 32, 128, 256}
	var allocs []*tlsf.Allocation
	for _, a := range aligns {
		alloc, err := m.Allocate(256, a)
		if err != nil {
			t.Fatalf("Allocate align=%d: %v", a, err)
		}
		if alloc.Offset%a != 0 {
			t.Errorf("Offset %d not aligned to %d", alloc.Offset, a)
		}
		allocs = append(allocs, alloc)
	}
	s := m.GetStats()
	if s.AllocatedBlocks != len(allocs) {
		t.Fatalf("AllocatedBlocks = %d, want %d", s.AllocatedBlocks, len(allocs))
	}
	for _, a := range allocs {
		m.Free(a)
	}
	s = m.GetStats()
	if s.FreeBlocks != 1 {
		t.Fatalf("FreeBlocks after freeing all = %d, want 1", s.FreeBlocks)
	}
}

func TestOutOfMemory(t *testing.T) {
	m := newMeta(1024)
	a, err := m.Allocate(1024, 16)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if _, err := m.Allocate(1, 16); err != tlsf.ErrOutOfMemory {
		t.Fatalf("Allocate on exhausted pool: err = %v, want ErrOutOfMemory", err)
	}
	m.Free(a)
	if _, err := m.Allocate(1024, 16); err != nil {
		t.Fatalf("Allocate after free: %v", err)
	}
}

func TestDoubleFreePanics(t *testing.T) {
	m := newMeta(1024)
	a, _ := m.Allocate(256, 16)
	m.Free(a)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on double free")
		}
	}()
	m.Free(a)
}

// TestRoundTripInvariant is a randomized check of spec.md §8 property 1.
func TestRoundTripInvariant(t *testing.T) {
	m := newMeta(64 * 1024)
	var live []*tlsf.Allocation
	seed := uint32(12345)
	next := func() uint32 {
		seed = seed*1664525 + 1013904223
		return seed
	}
	for i := 0; i < 500; i++ {
		if len(live) > 0 && next()%3 == 0 {
			idx := int(next() % uint32(len(live)))
			m.Free(live[idx])
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
		} else {
			size := 256 * (1 + next()%8)
			a, err := m.Allocate(size, 256)
			if err == nil {
				live = append(live, a)
			}
		}
		checkStats(t, m)
	}
	s := m.GetStats()
	if s.AllocatedBlocks+s.FreeBlocks < 0 {
		t.Fatalf("negative block count: %+v", s)
	}
}
