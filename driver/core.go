// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package driver defines the explicit GPU API contract this renderer
// targets (spec §6): typed committed and placed resources over typed
// heaps, CPU- and shader-visible descriptor heaps, a graphics command
// queue, resource-state transition barriers, a monotonic fence, and a
// swap chain. It assumes Tier-1 heap behavior (heaps partitioned by
// usage) and makes no attempt to abstract over multiple GPU APIs —
// this is the one explicit, placed-resource, descriptor-heap-binding
// contract the spec is written against (see spec.md Non-goals).
//
// package driver declares interfaces only; concrete backends (a real
// GPU binding, or the in-memory driver/fake used by this module's own
// tests) implement them.
package driver

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// Destroyer is implemented by types that own GPU-visible memory not
// managed by the Go garbage collector, and so must be destroyed
// explicitly.
type Destroyer interface {
	Destroy()
}

// ErrNoDeviceMemory means that device memory could not be allocated
// to satisfy a NewHeap, NewCommittedResource or NewPlacedResource
// call. Callers may retry after freeing other allocations (spec §7
// "recoverable allocation failure").
var ErrNoDeviceMemory = errors.New("driver: out of device memory")

// ErrDeviceRemoved means the device has entered an unrecoverable
// state (spec §7 "fatal device loss"). Every object created from the
// Device must be destroyed and a new Device obtained.
var ErrDeviceRemoved = errors.New("driver: device removed")

// Driver is the interface that provides methods for opening and
// closing an underlying Device implementation. Concrete backends
// (driver/fake, or a real GPU binding) register a Driver from an
// init function; client code selects one by name.
type Driver interface {
	// Open initializes the driver. Further calls with the same
	// receiver must return the same Device.
	Open() (Device, error)
	// Name returns the name of the driver.
	Name() string
	// Close deinitializes the driver. Closing a driver that is not
	// open has no effect.
	Close()
}

// Drivers returns the registered Drivers.
func Drivers() []Driver {
	mu.Lock()
	defer mu.Unlock()
	drv := make([]Driver, len(drivers))
	copy(drv, drivers)
	return drv
}

// Register registers a Driver. If a driver with the same name has
// already been registered, it is replaced by drv.
func Register(drv Driver) {
	mu.Lock()
	defer mu.Unlock()
	for i := range drivers {
		if drivers[i].Name() == drv.Name() {
			drivers[i] = drv
			log.Printf("[!] driver '%s' replaced", drv.Name())
			return
		}
	}
	drivers = append(drivers, drv)
}

var (
	mu      sync.Mutex
	drivers []Driver
)

// HeapType is the type of memory a heap is backed by.
type HeapType int

// Heap types (spec §4.3).
const (
	HeapDefault HeapType = iota
	HeapUpload
	HeapReadback
	heapTypeCount
)

// HeapUsage partitions heaps by the kind of resource they may back,
// required to support Tier-1 heaps (spec §4.3, §6).
type HeapUsage int

// Heap usages.
const (
	HeapUsageNonRTDSTexture HeapUsage = iota
	HeapUsageBuffer
	HeapUsageRTDSTexture
	heapUsageCount
)

// NumHeapTypes and NumHeapUsages size the bucket grid a GPU memory
// allocator indexes into (spec §4.3: "|heap_types| x |heap_usages|").
const (
	NumHeapTypes  = int(heapTypeCount)
	NumHeapUsages = int(heapUsageCount)
)

// State is a GPU resource's current usage state. Every access to a
// Resource goes through a transition that inserts a barrier iff the
// state differs from the resource's last-recorded state (spec §3).
type State int

// Resource states.
const (
	StateCommon State = iota
	StateVertexBuffer
	StateIndexBuffer
	StateCopySrc
	StateCopyDst
	StateRenderTarget
	StateDepthWrite
	StateDepthRead
	StateShaderRead
	StateUnorderedAccess
	StatePresent
	StateGenericRead
)

func (s State) String() string {
	switch s {
	case StateCommon:
		return "common"
	case StateVertexBuffer:
		return "vertex-buffer"
	case StateIndexBuffer:
		return "index-buffer"
	case StateCopySrc:
		return "copy-src"
	case StateCopyDst:
		return "copy-dst"
	case StateRenderTarget:
		return "render-target"
	case StateDepthWrite:
		return "depth-write"
	case StateDepthRead:
		return "depth-read"
	case StateShaderRead:
		return "shader-read"
	case StateUnorderedAccess:
		return "unordered-access"
	case StatePresent:
		return "present"
	case StateGenericRead:
		return "generic-read"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// PixelFmt describes the format of a pixel. Only the formats this
// renderer's fixed contract actually names (spec §6) are defined.
type PixelFmt int

// Pixel formats.
const (
	FmtUnknown PixelFmt = iota
	// RGBA8un is the back-buffer format.
	RGBA8un
	// RGBA16f is the HDR intermediate format.
	RGBA16f
	// D32fS8X24 is the depth-stencil format.
	D32fS8X24
	// R32fX8X24 is D32fS8X24's SRV-compatible typeless-ish view
	// format (depth aspect only).
	R32fX8X24
	// R8un/RG8un/RGBA32f etc. round out common GBuffer/texture formats.
	R8un
	RG8un
	RGBA8unSRGB
	R16f
	RG16f
	R32f
	RG32f
	RGBA32f
	numPixelFmts
)

// NumPixelFmts is the number of defined PixelFmt values, used to size
// lookup tables keyed by format (e.g. the PSO key's packed format
// fields, which assume the whole set fits in 4 bits).
const NumPixelFmts = int(numPixelFmts)

// Bytes returns the size in bytes of one texel of f, or 0 if unknown
// (compressed formats are out of scope per spec §1).
func (f PixelFmt) Bytes() int {
	switch f {
	case R8un:
		return 1
	case RG8un, R16f:
		return 2
	case RGBA8un, RGBA8unSRGB, RG16f, R32f, D32fS8X24, R32fX8X24:
		return 4
	case RG32f:
		return 8
	case RGBA16f:
		return 8
	case RGBA32f:
		return 16
	default:
		return 0
	}
}

// IsDepthStencil reports whether f is a depth/stencil format.
func (f PixelFmt) IsDepthStencil() bool {
	return f == D32fS8X24
}

// Dim3D is a three-dimensional size, used for texture creation.
type Dim3D struct{ Width, Height, Depth int }

// ResourceDesc fully describes a resource to be created, whether
// placed or committed (spec §3's AllocationDesc).
type ResourceDesc struct {
	// Dimension distinguishes buffers (Dimension == 0) from 2D
	// textures (Dimension == 2) for heap-usage routing (spec §4.3).
	Dimension int
	Size      Dim3D
	MipLevels int
	Format    PixelFmt
	// RenderTarget/DepthStencil/UnorderedAccess mirror the typed
	// resource capability flags of spec §3.
	RenderTarget    bool
	DepthStencil    bool
	UnorderedAccess bool
	// ArrayLayers > 1 describes a texture-2D array (e.g. a cubemap's
	// backing storage, always 6 layers).
	ArrayLayers int
	// InitialState is the resource's state at creation.
	InitialState State
}

// AllocationInfo reports the size and alignment the device requires
// for a given ResourceDesc (spec §4.3 "queries the API's
// alignment/size").
type AllocationInfo struct {
	Size      uint64
	Alignment uint64
}

// Heap is an explicit GPU heap of a single HeapType/HeapUsage pair,
// over which placed resources may be created (spec §4.3).
type Heap interface {
	Destroyer

	Type() HeapType
	Usage() HeapUsage
	Size() uint64
}

// Resource is the interface that defines a single GPU resource
// (buffer or texture) plus its current state. Only the recorder may
// mutate a Resource's state (spec §5 "Shared-resource policy").
type Resource interface {
	Destroyer

	// State returns the resource's last-recorded state.
	State() State
	// SetState records a new state without emitting a barrier; used
	// by the recorder immediately after it has inserted one.
	SetState(State)

	// Desc returns the description the resource was created from.
	Desc() ResourceDesc

	// GPUAddress returns the resource's base GPU virtual address,
	// valid for buffers.
	GPUAddress() uint64

	// Map returns a byte slice over the resource's persistently
	// mapped CPU-visible memory. It panics if the resource was not
	// created in an upload or readback heap.
	Map() []byte
}

// GraphicsQueue is the single render-thread-owned command submission
// point (spec §5: "exactly one render thread").
type GraphicsQueue interface {
	// Submit commits command lists for execution, in order.
	Submit(lists []CmdList) error
	// Signal schedules a fence signal of the given value after all
	// previously submitted work completes.
	Signal(f Fence, value uint64) error
}

// Fence is a monotonically increasing GPU/CPU synchronization
// primitive (spec §4.6, §5).
type Fence interface {
	Destroyer

	// CompletedValue returns the highest value the GPU has reached.
	CompletedValue() uint64
	// Wait blocks the calling (render) thread until CompletedValue
	// reaches value. It is the renderer's only suspension point
	// (spec §5).
	Wait(value uint64) error
}

// SwapChain presents rendered images to the display and owns N
// back-buffer resources (spec §4.6).
type SwapChain interface {
	Destroyer

	// BackBufferCount returns the number of back-buffers (N).
	BackBufferCount() int
	// BackBuffer returns the resource for back-buffer index, in
	// [0, BackBufferCount()), without requiring it to be current.
	BackBuffer(index int) Resource
	// CurrentBackBuffer returns the resource for the currently
	// writable back-buffer.
	CurrentBackBuffer() Resource
	CurrentBackBufferIndex() int
	// Present schedules the current back-buffer for display and
	// advances the back-buffer index.
	Present() error
}

// Device creates every GPU-owned object the renderer needs and
// queries implementation facts (alignment/size, descriptor
// increment sizes). It is the facade spec §4.6 is built on top of.
type Device interface {
	GraphicsQueue() GraphicsQueue

	NewHeap(t HeapType, u HeapUsage, size uint64) (Heap, error)
	NewPlacedResource(h Heap, offset uint64, desc ResourceDesc) (Resource, error)
	NewCommittedResource(t HeapType, desc ResourceDesc) (Resource, error)
	ResourceAllocationInfo(desc ResourceDesc) AllocationInfo

	NewDescriptorHeap(t DescHeapType, numDescriptors int, shaderVisible bool) (DescHeap, error)
	DescriptorIncrementSize(t DescHeapType) uint32

	NewCmdList() (CmdList, error)
	NewFence(initial uint64) (Fence, error)
	NewSwapChain(backBufferCount int, format PixelFmt, width, height int) (SwapChain, error)

	NewPipelineState(desc PipelineDesc) (PipelineState, error)
	NewShader(stage ShaderStage, code []byte) (Shader, error)

	// Wait blocks until all work submitted to the graphics queue has
	// completed; used to drain the queue at shutdown (spec §5).
	Wait() error
}
