// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// Topology is the type of primitive topology used by draw calls.
type Topology int

// Primitive topologies. This renderer only ever uses triangle lists
// (spec §4.7 "topology triangle-list"), but the contract names the
// others for completeness of the external collaborator boundary.
const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyLineList
	TopologyPointList
)

// IndexFmt is the type of index buffer element. This renderer uses
// 32-bit indices unconditionally (spec §6).
type IndexFmt int

// Index formats.
const (
	Index32 IndexFmt = iota
)

// Viewport defines the viewport transform of a render pass.
type Viewport struct {
	X, Y, Width, Height, MinDepth, MaxDepth float32
}

// Rect defines a scissor rectangle in pixels.
type Rect struct {
	Left, Top, Right, Bottom int
}

// VertexBufferView describes a vertex buffer binding.
type VertexBufferView struct {
	GPUAddress  uint64
	SizeBytes   uint32
	StrideBytes uint32
}

// IndexBufferView describes an index buffer binding.
type IndexBufferView struct {
	GPUAddress uint64
	SizeBytes  uint32
	Format     IndexFmt
}

// ResourceTransition names a single resource's state change, to be
// recorded as part of a barrier batch.
type ResourceTransition struct {
	Resource Resource
	Before   State
	After    State
}

// CmdList is the interface that defines a command list: commands are
// recorded into it and later submitted to a GraphicsQueue for
// execution. Unlike the higher-level recorder (package recorder),
// CmdList performs no state tracking or redundant-set elision — it
// is a thin, literal recording of GPU commands (spec §4.7 is built on
// top of this).
type CmdList interface {
	Destroyer

	// Reset discards any previously recorded commands and prepares
	// the command list for a new recording.
	Reset() error
	// Close ends recording, preparing the command list for
	// submission. New recordings are not allowed until Reset.
	Close() error

	ResourceBarrier(transitions []ResourceTransition)
	CopyResource(dst, src Resource)

	ClearRenderTargetView(h CPUHandle, color [4]float32)
	ClearDepthStencilView(h CPUHandle, depth float32, stencil uint8)
	OMSetRenderTargets(rtv []CPUHandle, dsv *CPUHandle)

	SetDescriptorHeaps(heaps []DescHeap)

	SetGraphicsRootSignature()
	SetComputeRootSignature()
	SetGraphicsRootConstantBufferView(rootParam int, gpuAddr uint64)
	SetComputeRootConstantBufferView(rootParam int, gpuAddr uint64)
	SetGraphicsRootDescriptorTable(rootParam int, h GPUHandle)
	SetComputeRootDescriptorTable(rootParam int, h GPUHandle)

	SetPipelineState(p PipelineState)

	IASetVertexBuffers(startSlot int, views []VertexBufferView)
	IASetIndexBuffer(view IndexBufferView)
	IASetPrimitiveTopology(t Topology)

	RSSetViewports(vp []Viewport)
	RSSetScissorRects(r []Rect)

	DrawInstanced(vertexCount, instanceCount, startVertex, startInstance int)
	DrawIndexedInstanced(indexCount, instanceCount, startIndex, baseVertex, startInstance int)
	Dispatch(groupsX, groupsY, groupsZ int)
}

// Transition inserts a barrier for res iff its last-recorded state
// differs from after, and updates res's recorded state to match
// (spec §3: "every access goes through a transition helper that
// inserts a barrier iff the state changes").
func Transition(list CmdList, res Resource, after State) {
	before := res.State()
	if before == after {
		return
	}
	list.ResourceBarrier([]ResourceTransition{{Resource: res, Before: before, After: after}})
	res.SetState(after)
}
