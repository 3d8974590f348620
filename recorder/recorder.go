// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package recorder implements the command-list recorder of spec §4.7:
// a state-tracking wrapper around a single driver.CmdList per frame
// slot that elides redundant bindings, builds and caches pipeline
// state objects keyed by a packed device.PSOKey, and stages
// root-parameter descriptor tables through a per-frame GPU descriptor
// allocator.
package recorder

import (
	"fmt"

	"github.com/gviegas/scene/descriptor"
	"github.com/gviegas/scene/device"
	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/shader"
)

// ConstantSlot names one of the three fixed constant-buffer root
// parameters (spec §4.6 "fixed root CBV slots"), in root-parameter
// order; the resource-binding descriptor tables occupy the root
// parameters that follow.
type ConstantSlot int

// Constant-buffer slots, in root-parameter order.
const (
	SlotShader ConstantSlot = iota
	SlotInstance
	SlotGlobal
)

// Recorder is the per-device command-list recorder (spec §4.7). It is
// not safe for concurrent use — the spec's concurrency model gives it
// a single render thread (spec §5).
type Recorder struct {
	dev        *device.Device
	lists      []driver.CmdList
	cbvSrvUav  []*descriptor.GPUAllocator
	samplers   []*descriptor.GPUAllocator
	backBuffer []*device.BackBuffer

	psoCache map[device.PSOKey]driver.PipelineState

	nullSRV *descriptor.CPUSlot
	nullUAV *descriptor.CPUSlot

	canonicalSamplers [shader.MaxSamplers]driver.CPUHandle

	state
}

// state is the in-memory cache the recorder resets at the start of
// every frame (spec §4.7 "in-memory state caches").
type state struct {
	vbSet, ibSet      bool
	vb                driver.VertexBufferView
	ib                driver.IndexBufferView
	haveKey           bool
	key               device.PSOKey
	graphicsCBVSet    [shader.MaxConstantBuffers]bool
	graphicsCBV       [shader.MaxConstantBuffers]uint64
	computeCBVSet     [shader.MaxConstantBuffers]bool
	computeCBV        [shader.MaxConstantBuffers]uint64
	heapsSet          bool
	lastCBVSRVUAVHeap driver.DescHeap
	lastSamplerHeap   driver.DescHeap
}

// New creates a Recorder over dev, allocating one command list and
// one GPU descriptor allocator pair per frame slot. backBuffer is the
// device's wrapped swap-chain images, used by begin_frame to clear
// the current back-buffer and by Present to copy into it.
func New(dev *device.Device, backBuffer []*device.BackBuffer) (*Recorder, error) {
	r := &Recorder{
		dev:        dev,
		backBuffer: backBuffer,
		psoCache:   make(map[device.PSOKey]driver.PipelineState),
	}
	for i := 0; i < dev.FrameCount; i++ {
		list, err := dev.GPU().NewCmdList()
		if err != nil {
			return nil, err
		}
		r.lists = append(r.lists, list)
		r.cbvSrvUav = append(r.cbvSrvUav, descriptor.NewGPUAllocator(dev.GPU(), driver.DescHeapCBVSRVUAV))
		r.samplers = append(r.samplers, descriptor.NewGPUAllocator(dev.GPU(), driver.DescHeapSampler))
	}

	// Canonical null descriptors (spec §4.7 "Unbound SRV/UAV slots are
	// filled with canonical null descriptors"): a real view created
	// over a nil resource, so every slot in a staged range is always a
	// valid descriptor even when the pass left it unbound.
	nullSRV, err := dev.CPUHeap(driver.DescHeapCBVSRVUAV).Allocate()
	if err != nil {
		return nil, err
	}
	h := nullSRV.Handle()
	h.Heap.CreateSRV(h.Index, nil, driver.ViewDesc{})
	r.nullSRV = nullSRV

	nullUAV, err := dev.CPUHeap(driver.DescHeapCBVSRVUAV).Allocate()
	if err != nil {
		return nil, err
	}
	h = nullUAV.Handle()
	h.Heap.CreateUAV(h.Index, nil, driver.ViewDesc{})
	r.nullUAV = nullUAV

	// Canonical sampler set, in slot order: point, linear and
	// anisotropic filtering, each with wrap then clamp addressing.
	for i := range r.canonicalSamplers {
		slot, err := dev.CPUHeap(driver.DescHeapSampler).Allocate()
		if err != nil {
			return nil, err
		}
		filter := [3]driver.Filter{driver.FilterPoint, driver.FilterLinear, driver.FilterAnisotropic}[i/2]
		addr := [2]driver.AddrMode{driver.AddrWrap, driver.AddrClamp}[i%2]
		h := slot.Handle()
		h.Heap.CreateSampler(h.Index, driver.Sampling{Filter: filter, AddrU: addr, AddrV: addr, AddrW: addr, MaxAniso: 16})
		r.canonicalSamplers[i] = h
	}

	return r, nil
}

// SetCanonicalSamplers replaces the 6-slot sampler set that New
// creates and every set_resource_binding call stages, in the process-wide canonical
// order the spec requires (spec §4.7 "Samplers are a fixed 6-slot
// set bound in a process-wide canonical order").
func (r *Recorder) SetCanonicalSamplers(samplers [shader.MaxSamplers]driver.CPUHandle) {
	r.canonicalSamplers = samplers
}

func (r *Recorder) list() driver.CmdList { return r.lists[r.dev.FrameIndex()] }

func (r *Recorder) gpuHeap() *descriptor.GPUAllocator     { return r.cbvSrvUav[r.dev.FrameIndex()] }
func (r *Recorder) samplerHeap() *descriptor.GPUAllocator { return r.samplers[r.dev.FrameIndex()] }

// BeginFrame resets the recorder's state caches and the frame slot's
// command list and GPU descriptor allocators, then sets the ambient
// per-frame state every pass shares: viewport, scissor, both root
// signatures, triangle-list topology, and a cleared back-buffer
// (spec §4.7 "begin_frame()").
func (r *Recorder) BeginFrame(viewport driver.Viewport, scissor driver.Rect) error {
	r.state = state{}
	list := r.list()
	if err := list.Reset(); err != nil {
		return fmt.Errorf("recorder: resetting frame command list: %w", err)
	}
	r.gpuHeap().Reset()
	r.samplerHeap().Reset()

	list.RSSetViewports([]driver.Viewport{viewport})
	list.RSSetScissorRects([]driver.Rect{scissor})
	list.SetGraphicsRootSignature()
	list.SetComputeRootSignature()
	list.IASetPrimitiveTopology(driver.TopologyTriangleList)

	bb := r.backBuffer[r.dev.SwapChain().CurrentBackBufferIndex()]
	driver.Transition(list, bb.Resource(), driver.StateRenderTarget)
	list.ClearRenderTargetView(bb.RTV.Handle(), [4]float32{0, 0, 0, 0})

	return nil
}

// EndFrame closes the frame slot's command list (spec §4.7
// "end_frame()"). The caller passes the same list to
// device.Device.EndFrame for submission.
func (r *Recorder) EndFrame() (driver.CmdList, error) {
	list := r.list()
	if err := list.Close(); err != nil {
		return nil, err
	}
	return list, nil
}

// SetVertexIndex binds vb/ib, skipping the input-assembler setters
// when neither pointer changed (spec §4.7 "calls ... only when
// pointers changed").
func (r *Recorder) SetVertexIndex(vb driver.VertexBufferView, ib driver.IndexBufferView) {
	list := r.list()
	if !r.vbSet || r.vb != vb {
		list.IASetVertexBuffers(0, []driver.VertexBufferView{vb})
		r.vb, r.vbSet = vb, true
	}
	if !r.ibSet || r.ib != ib {
		list.IASetIndexBuffer(ib)
		r.ib, r.ibSet = ib, true
	}
}

// SetGraphicsConstant binds the root CBV for slot, skipping the
// setter when the GPU address did not change (spec §4.7
// "set_graphics_constant(slot, view)").
func (r *Recorder) SetGraphicsConstant(slot ConstantSlot, gpuAddr uint64) {
	if r.graphicsCBVSet[slot] && r.graphicsCBV[slot] == gpuAddr {
		return
	}
	r.list().SetGraphicsRootConstantBufferView(int(slot), gpuAddr)
	r.graphicsCBV[slot], r.graphicsCBVSet[slot] = gpuAddr, true
}

// SetComputeConstant binds the root CBV for slot on the compute root
// signature, with the same elision rule as SetGraphicsConstant.
func (r *Recorder) SetComputeConstant(slot ConstantSlot, gpuAddr uint64) {
	if r.computeCBVSet[slot] && r.computeCBV[slot] == gpuAddr {
		return
	}
	r.list().SetComputeRootConstantBufferView(int(slot), gpuAddr)
	r.computeCBV[slot], r.computeCBVSet[slot] = gpuAddr, true
}
