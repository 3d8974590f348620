// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// DescHeapType is the type of a descriptor heap (spec §6).
type DescHeapType int

// Descriptor heap types.
const (
	DescHeapCBVSRVUAV DescHeapType = iota
	DescHeapSampler
	DescHeapRTV
	DescHeapDSV
	numDescHeapTypes
)

// NumDescHeapTypes is the number of DescHeapType values.
const NumDescHeapTypes = int(numDescHeapTypes)

// IsShaderVisible reports whether t may back a shader-visible
// (GPU-bound) descriptor heap. Only CBV/SRV/UAV and Sampler heaps
// can be made shader-visible (spec §4.5, §6).
func (t DescHeapType) IsShaderVisible() bool {
	return t == DescHeapCBVSRVUAV || t == DescHeapSampler
}

// CPUHandle names a single descriptor slot for CPU-side writes
// (CreateXXXView calls) and, for RTV/DSV, as a bind target.
type CPUHandle struct {
	Heap  DescHeap
	Index int
}

// GPUHandle names a descriptor slot (or the start of a contiguous
// range) for shader-visible binding.
type GPUHandle struct {
	Heap  DescHeap
	Index int
}

// ViewDesc parametrizes the handful of view kinds this renderer
// creates: shader-read (SRV), unordered-access (UAV), render-target
// (RTV) and depth-stencil (DSV). Not every field is meaningful for
// every view kind; see the CreateXXX method it is passed to.
type ViewDesc struct {
	Format PixelFmt
	// MostDetailedMip/MipLevels select the mip range of an SRV.
	// MipLevels == -1 means "remaining levels".
	MostDetailedMip int
	MipLevels       int
	// MipSlice selects a single mip for a UAV or RTV.
	MipSlice int
	// FirstArraySlice/ArraySize select a layer range, used for
	// texture-2D-array and cubemap views.
	FirstArraySlice int
	ArraySize       int
	// Cube requests a cube (as opposed to 2D-array) SRV over a
	// 6-layer array resource.
	Cube bool
}

// DescHeap is a typed table of descriptors, CPU-visible and
// optionally shader-visible (spec §4.5, §6).
type DescHeap interface {
	Destroyer

	Type() DescHeapType
	ShaderVisible() bool
	Count() int

	CPUHandle(index int) CPUHandle
	GPUHandle(index int) GPUHandle

	CreateCBV(index int, res Resource, offset, size uint64)
	CreateSRV(index int, res Resource, vd ViewDesc)
	CreateUAV(index int, res Resource, vd ViewDesc)
	CreateRTV(index int, res Resource, vd ViewDesc)
	CreateDSV(index int, res Resource, vd ViewDesc)
	CreateSampler(index int, s Sampling)

	// CopyDescriptor copies the descriptor at src into slot dstIndex of
	// this heap, used by the recorder to stage CPU-visible views into a
	// shader-visible GPU descriptor range (spec §4.7 "stages them into
	// freshly allocated GPU descriptor slots").
	CopyDescriptor(dstIndex int, src CPUHandle)
}

// Filter is the type of sampler filters.
type Filter int

// Filters.
const (
	FilterPoint Filter = iota
	FilterLinear
	FilterAnisotropic
)

// AddrMode is the type of sampler address modes.
type AddrMode int

// Address modes.
const (
	AddrWrap AddrMode = iota
	AddrClamp
)

// Sampling describes a sampler's filtering and addressing state
// (spec §6 "Fixed sampler set").
type Sampling struct {
	Filter   Filter
	AddrU    AddrMode
	AddrV    AddrMode
	AddrW    AddrMode
	MaxAniso int
}
