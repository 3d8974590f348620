// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package fake

import "github.com/gviegas/scene/driver"

type descEntry struct {
	kind     string
	res      driver.Resource
	vd       driver.ViewDesc
	sampling driver.Sampling
	offset   uint64
	size     uint64
}

// DescHeap is the fake driver.DescHeap implementation: a plain slice
// of descriptor entries, recording the last CreateXXX call made
// against each slot so tests can assert on view contents.
type DescHeap struct {
	typ     driver.DescHeapType
	visible bool
	entries []descEntry
}

// NewDescriptorHeap implements driver.Device.
func (d *Device) NewDescriptorHeap(t driver.DescHeapType, numDescriptors int, shaderVisible bool) (driver.DescHeap, error) {
	return &DescHeap{
		typ:     t,
		visible: shaderVisible && t.IsShaderVisible(),
		entries: make([]descEntry, numDescriptors),
	}, nil
}

func (h *DescHeap) Destroy()                  {}
func (h *DescHeap) Type() driver.DescHeapType { return h.typ }
func (h *DescHeap) ShaderVisible() bool       { return h.visible }
func (h *DescHeap) Count() int                { return len(h.entries) }

func (h *DescHeap) CPUHandle(index int) driver.CPUHandle {
	return driver.CPUHandle{Heap: h, Index: index}
}

func (h *DescHeap) GPUHandle(index int) driver.GPUHandle {
	return driver.GPUHandle{Heap: h, Index: index}
}

func (h *DescHeap) CreateCBV(index int, res driver.Resource, offset, size uint64) {
	h.entries[index] = descEntry{kind: "cbv", res: res, offset: offset, size: size}
}

func (h *DescHeap) CreateSRV(index int, res driver.Resource, vd driver.ViewDesc) {
	h.entries[index] = descEntry{kind: "srv", res: res, vd: vd}
}

func (h *DescHeap) CreateUAV(index int, res driver.Resource, vd driver.ViewDesc) {
	h.entries[index] = descEntry{kind: "uav", res: res, vd: vd}
}

func (h *DescHeap) CreateRTV(index int, res driver.Resource, vd driver.ViewDesc) {
	h.entries[index] = descEntry{kind: "rtv", res: res, vd: vd}
}

func (h *DescHeap) CreateDSV(index int, res driver.Resource, vd driver.ViewDesc) {
	h.entries[index] = descEntry{kind: "dsv", res: res, vd: vd}
}

func (h *DescHeap) CreateSampler(index int, s driver.Sampling) {
	h.entries[index] = descEntry{kind: "sampler", sampling: s}
}

func (h *DescHeap) CopyDescriptor(dstIndex int, src driver.CPUHandle) {
	s := src.Heap.(*DescHeap)
	h.entries[dstIndex] = s.entries[src.Index]
}

// EntryAt exposes the descriptor written at index, for test assertions.
func (h *DescHeap) EntryAt(index int) (kind string, res driver.Resource) {
	e := h.entries[index]
	return e.kind, e.res
}
