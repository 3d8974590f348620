// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package fake

import (
	"github.com/gviegas/scene/driver"
)

// Heap is the fake driver.Heap implementation: it has no backing
// storage of its own, since each placed Resource carries its own
// byte slice. It exists only to satisfy the Heap contract's identity
// and bookkeeping (type/usage/size).
type Heap struct {
	typ  driver.HeapType
	use  driver.HeapUsage
	size uint64
}

// NewHeap implements driver.Device.
func (d *Device) NewHeap(t driver.HeapType, u driver.HeapUsage, size uint64) (driver.Heap, error) {
	return &Heap{typ: t, use: u, size: size}, nil
}

func (h *Heap) Destroy()                {}
func (h *Heap) Type() driver.HeapType   { return h.typ }
func (h *Heap) Usage() driver.HeapUsage { return h.use }
func (h *Heap) Size() uint64            { return h.size }

// Resource is the fake driver.Resource implementation: a plain byte
// slice standing in for GPU-visible memory, with a tracked State.
type Resource struct {
	id    uint64
	desc  driver.ResourceDesc
	state driver.State
	data  []byte
	heapT driver.HeapType
}

// NewPlacedResource implements driver.Device. The fake backend does
// not enforce offset bounds against the heap's declared size; real
// backends would reject an offset/size that overruns the heap.
func (d *Device) NewPlacedResource(h driver.Heap, offset uint64, desc driver.ResourceDesc) (driver.Resource, error) {
	info := d.ResourceAllocationInfo(desc)
	return &Resource{
		id:    d.newResID(),
		desc:  desc,
		state: desc.InitialState,
		data:  make([]byte, info.Size),
		heapT: h.Type(),
	}, nil
}

// NewCommittedResource implements driver.Device.
func (d *Device) NewCommittedResource(t driver.HeapType, desc driver.ResourceDesc) (driver.Resource, error) {
	info := d.ResourceAllocationInfo(desc)
	return &Resource{
		id:    d.newResID(),
		desc:  desc,
		state: desc.InitialState,
		data:  make([]byte, info.Size),
		heapT: t,
	}, nil
}

func (r *Resource) Destroy()                  {}
func (r *Resource) State() driver.State       { return r.state }
func (r *Resource) SetState(s driver.State)   { r.state = s }
func (r *Resource) Desc() driver.ResourceDesc { return r.desc }
func (r *Resource) GPUAddress() uint64        { return r.id << 32 }

// Map implements driver.Resource. The fake backend keeps every
// resource host-visible for simplicity; it does not model the real
// contract's restriction to upload/readback heaps, since tests only
// need to observe written bytes, not enforce that restriction.
func (r *Resource) Map() []byte { return r.data }
