// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package framegraph

// aliasBlock is one byte range of a transientPool, currently backing
// whatever resource last claimed it.
type aliasBlock struct {
	offset, size uint64
	retiredAt    int // lifetime.end of the resource currently occupying this block
}

// transientPool assigns byte offsets to transient resources so that
// two resources whose lifetimes never overlap reuse the same bytes
// (spec §4.8 step 5 "Reset the transient pool first so memory is
// aliased across frames"; spec §8 property 9, scenario S4). It knows
// nothing about GPU heaps or resource descriptions — Graph.Compile
// uses the offsets it returns to place real resources.
type transientPool struct {
	blocks    []aliasBlock
	highWater uint64
}

func alignUp(v, a uint64) uint64 {
	if a == 0 {
		return v
	}
	return (v + a - 1) &^ (a - 1)
}

// reset discards every block, so the next assign call starts from a
// fresh, empty pool (spec §4.8 "Reset the transient pool first").
func (p *transientPool) reset() {
	p.blocks = p.blocks[:0]
	p.highWater = 0
}

// assign returns the byte offset backing a resource of size bytes
// (aligned to align) whose lifetime is [start,end] in topological
// execution order. It reuses the smallest free block — one whose
// occupant retired before start — that is both large enough and
// already offset-aligned; failing that, it grows the pool.
func (p *transientPool) assign(size, align uint64, start, end int) uint64 {
	best := -1
	for i, b := range p.blocks {
		if b.retiredAt >= start {
			continue // still in use when this resource's lifetime begins
		}
		if b.size < size || b.offset%align != 0 {
			continue
		}
		if best == -1 || b.size < p.blocks[best].size {
			best = i
		}
	}
	if best != -1 {
		p.blocks[best].retiredAt = end
		return p.blocks[best].offset
	}

	offset := alignUp(p.highWater, align)
	p.blocks = append(p.blocks, aliasBlock{offset: offset, size: size, retiredAt: end})
	p.highWater = offset + size
	return offset
}

// size returns the high-water mark reached so far, i.e. the minimum
// heap size that can back every assignment made since the last reset.
func (p *transientPool) size() uint64 { return p.highWater }
