// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package framegraph

import (
	"fmt"
	"sort"

	"github.com/gviegas/scene/descriptor"
	"github.com/gviegas/scene/device"
	"github.com/gviegas/scene/driver"
)

// PassKind distinguishes the GPU work a Pass records, used by Compile
// to derive RenderPassPsoDesc for graphics passes and to reject a
// graphics pass that writes to a buffer (spec §4.8 step 6).
type PassKind int

const (
	GraphicsPass PassKind = iota
	ComputePass
	CopyPass
)

// Pass is one node of the frame graph (spec §4.8 "a pass declares
// ordered input-ids and output-ids and holds a derived
// RenderPassPsoDesc once compiled").
type Pass interface {
	Name() string
	Kind() PassKind
	Setup(b *Builder)
	Execute(ctx *Context) error
}

// Graph is one compiled frame graph (spec §4.8). It is rebuilt by
// each Compile call — every registered pass's Setup runs again, so
// passes added with AddPass between compiles (e.g. enabling bloom)
// are included. There is no way to remove a registered pass.
type Graph struct {
	dev    *device.Device
	passes []Pass

	descTable map[ResourceID]resourceDecl
	writerOf  map[ResourceID]int

	passReads  [][]ResourceID
	passWrites [][]ResourceID

	order    []int
	lifetime map[ResourceID][2]int

	passPso map[int]device.RenderPassPsoDesc

	pools map[driver.HeapUsage]*transientPool
	heaps map[driver.HeapUsage]driver.Heap

	realizedTex map[ResourceID]*realizedTexture
	realizedBuf map[ResourceID]*realizedBuffer
}

// New creates an empty Graph over dev.
func New(dev *device.Device) *Graph {
	return &Graph{
		dev:         dev,
		pools:       map[driver.HeapUsage]*transientPool{},
		heaps:       map[driver.HeapUsage]driver.Heap{},
		realizedTex: map[ResourceID]*realizedTexture{},
		realizedBuf: map[ResourceID]*realizedBuffer{},
	}
}

// AddPass registers p. Passes may be added in any order (spec §4.8
// "the pipeline enumerates its passes in any order"); their
// registration order only matters as a topological-sort tie-break.
func (g *Graph) AddPass(p Pass) { g.passes = append(g.passes, p) }

// destroyTransients releases every resource and heap the previous
// Compile created, before rebuilding from scratch.
func (g *Graph) destroyTransients() {
	for _, t := range g.realizedTex {
		for _, slot := range []*descriptor.CPUSlot{t.srv, t.rtv, t.dsv} {
			if slot != nil {
				slot.Free()
			}
		}
		t.resource.Destroy()
	}
	for _, b := range g.realizedBuf {
		for _, slot := range []*descriptor.CPUSlot{b.srv, b.uav} {
			if slot != nil {
				slot.Free()
			}
		}
		b.resource.Destroy()
	}
	for _, h := range g.heaps {
		h.Destroy()
	}
	g.realizedTex = map[ResourceID]*realizedTexture{}
	g.realizedBuf = map[ResourceID]*realizedBuffer{}
	g.heaps = map[driver.HeapUsage]driver.Heap{}
	for _, p := range g.pools {
		p.reset()
	}
}

// Compile runs Setup on every registered pass, builds the execution
// order, computes transient resource lifetimes, allocates backing
// store, and derives each graphics pass's RenderPassPsoDesc (spec
// §4.8 "Compile").
func (g *Graph) Compile() error {
	g.destroyTransients()

	n := len(g.passes)
	g.descTable = map[ResourceID]resourceDecl{}
	g.writerOf = map[ResourceID]int{}
	g.passReads = make([][]ResourceID, n)
	g.passWrites = make([][]ResourceID, n)
	g.passPso = map[int]device.RenderPassPsoDesc{}

	for i, p := range g.passes {
		b := newBuilder(g, i)
		p.Setup(b)
		if b.err != nil {
			return b.err
		}
		g.passReads[i] = b.readOrder
		g.passWrites[i] = b.writeOrder
	}

	for i := range g.passes {
		for _, id := range g.passReads[i] {
			if _, ok := g.writerOf[id]; !ok {
				return fmt.Errorf("framegraph: resource %q is read by pass %q but never written", Name(id), g.passes[i].Name())
			}
		}
	}

	order, err := g.compileOrder()
	if err != nil {
		return err
	}
	g.order = order
	g.computeLifetimes()

	if err := g.allocateTransients(); err != nil {
		return err
	}

	return g.derivePsoDescs()
}

// compileOrder implements spec §4.8 steps 1-3: build the dependency
// DAG, locate the unique terminal (present) pass, and topologically
// sort by reverse-DFS from it, breaking ties by declaration order.
func (g *Graph) compileOrder() ([]int, error) {
	n := len(g.passes)

	readByOther := make([]bool, n)
	for i := range g.passes {
		for _, id := range g.passReads[i] {
			if w := g.writerOf[id]; w != i {
				readByOther[w] = true
			}
		}
	}
	var sinks []int
	for i := 0; i < n; i++ {
		if !readByOther[i] {
			sinks = append(sinks, i)
		}
	}
	if len(sinks) != 1 {
		return nil, fmt.Errorf("framegraph: expected exactly one terminal (present) pass, found %d", len(sinks))
	}
	terminal := sinks[0]

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, n)
	var order []int

	var deps func(i int) []int
	deps = func(i int) []int {
		seen := map[int]bool{}
		var ds []int
		for _, id := range g.passReads[i] {
			w := g.writerOf[id]
			if w == i || seen[w] {
				continue
			}
			seen[w] = true
			ds = append(ds, w)
		}
		sort.Ints(ds)
		return ds
	}

	var visit func(i int) error
	visit = func(i int) error {
		switch color[i] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("framegraph: cycle detected at pass %q", g.passes[i].Name())
		}
		color[i] = gray
		for _, d := range deps(i) {
			if err := visit(d); err != nil {
				return err
			}
		}
		color[i] = black
		order = append(order, i)
		return nil
	}
	if err := visit(terminal); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if color[i] != black {
			return nil, fmt.Errorf("framegraph: pass %q is unreachable from the present pass", g.passes[i].Name())
		}
	}
	return order, nil
}

// computeLifetimes implements spec §4.8 step 4: lifetime = [min, max]
// pass position (in execution order) referencing each id.
func (g *Graph) computeLifetimes() {
	g.lifetime = map[ResourceID][2]int{}
	note := func(id ResourceID, pos int) {
		lt, ok := g.lifetime[id]
		if !ok {
			g.lifetime[id] = [2]int{pos, pos}
			return
		}
		if pos < lt[0] {
			lt[0] = pos
		}
		if pos > lt[1] {
			lt[1] = pos
		}
		g.lifetime[id] = lt
	}
	for pos, i := range g.order {
		for _, id := range g.passReads[i] {
			note(id, pos)
		}
		for _, id := range g.passWrites[i] {
			note(id, pos)
		}
	}
}

// Lifetime returns the [start,end] pass-index interval computed for
// id by the last successful Compile.
func (g *Graph) Lifetime(id ResourceID) (start, end int) {
	lt := g.lifetime[id]
	return lt[0], lt[1]
}

// Order returns the pass names in compiled execution order.
func (g *Graph) Order() []string {
	names := make([]string, len(g.order))
	for i, idx := range g.order {
		names[i] = g.passes[idx].Name()
	}
	return names
}
