// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package handle_test

import (
	"testing"

	"github.com/gviegas/scene/internal/handle"
)

func TestRandomGrowsOnExhaustion(t *testing.T) {
	r := handle.NewRandom(4)
	var got []handle.Handle
	for i := 0; i < 4; i++ {
		h, err := r.Allocate()
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		got = append(got, h)
	}
	if r.PageCount() != 1 {
		t.Fatalf("PageCount = %d, want 1", r.PageCount())
	}
	if _, err := r.Allocate(); err != nil {
		t.Fatalf("Allocate (page 2): %v", err)
	}
	if r.PageCount() != 2 {
		t.Fatalf("PageCount = %d, want 2", r.PageCount())
	}
}

func TestRandomLIFO(t *testing.T) {
	r := handle.NewRandom(4)
	a, _ := r.Allocate()
	b, _ := r.Allocate()
	r.Free(a)
	r.Free(b)
	// LIFO: the most recently freed (b) comes back first.
	got, err := r.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got != b {
		t.Errorf("Allocate = %+v, want %+v (LIFO order)", got, b)
	}
}

func TestRandomRoundTripNeverExceedsOutstanding(t *testing.T) {
	const pageSize = 8
	r := handle.NewRandom(pageSize)
	live := map[handle.Handle]bool{}
	for i := 0; i < pageSize*3; i++ {
		h, err := r.Allocate()
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		if live[h] {
			t.Fatalf("slot %+v co-assigned while live", h)
		}
		live[h] = true
		if i%2 == 0 {
			r.Free(h)
			delete(live, h)
		}
	}
	if len(live) > pageSize*3 {
		t.Fatalf("live count %d exceeds outstanding handles", len(live))
	}
}

func TestArenaAllocateRangeWithinPage(t *testing.T) {
	a := handle.NewArena(8)
	h1, err := a.AllocateRange(3)
	if err != nil {
		t.Fatalf("AllocateRange: %v", err)
	}
	if h1.Page != 0 || h1.Offset != 0 {
		t.Fatalf("h1 = %+v, want page 0 offset 0", h1)
	}
	h2, err := a.AllocateRange(3)
	if err != nil {
		t.Fatalf("AllocateRange: %v", err)
	}
	if h2.Page != 0 || h2.Offset != 3 {
		t.Fatalf("h2 = %+v, want page 0 offset 3", h2)
	}
}

func TestArenaAdvancesPageOnOverflow(t *testing.T) {
	a := handle.NewArena(8)
	if _, err := a.AllocateRange(6); err != nil {
		t.Fatalf("AllocateRange: %v", err)
	}
	// 6 used, 2 left: a range of 4 does not fit, must advance,
	// stranding the 2-slot residue.
	h, err := a.AllocateRange(4)
	if err != nil {
		t.Fatalf("AllocateRange: %v", err)
	}
	if h.Page != 1 || h.Offset != 0 {
		t.Fatalf("h = %+v, want page 1 offset 0", h)
	}
}

func TestArenaResetRewinds(t *testing.T) {
	a := handle.NewArena(4)
	a.AllocateRange(4)
	a.AllocateRange(4)
	a.Reset()
	h, err := a.AllocateRange(1)
	if err != nil {
		t.Fatalf("AllocateRange: %v", err)
	}
	if h.Page != 0 || h.Offset != 0 {
		t.Fatalf("post-reset handle = %+v, want page 0 offset 0", h)
	}
}
