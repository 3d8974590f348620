// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package device implements the device facade of spec §4.6: typed
// resource creation over the GPU memory allocator and descriptor
// allocators (package memory, package descriptor), the swap chain,
// and the per-frame begin/end lifecycle.
package device

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gviegas/scene/descriptor"
	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/memory"
	"github.com/gviegas/scene/upload"
)

// Device owns every GPU-visible allocator this renderer needs and
// advances the frame index (spec §4.6).
type Device struct {
	gpu driver.Device

	FrameCount int
	frameIndex int

	width, height int

	Memory *memory.Allocator
	Upload *upload.Ring

	cpuHeaps [driver.NumDescHeapTypes]*descriptor.CPUAllocator

	swapChain driver.SwapChain
	fence     driver.Fence
	fenceVal  uint64

	uploadList driver.CmdList

	// ScreenVB/ScreenIB back every draw_screen call with the same
	// oversized full-screen triangle (spec §4.7 "full-screen triangle
	// over a device-owned vertex/index pair").
	ScreenVB *VertexBuffer
	ScreenIB *IndexBuffer
}

// Config configures a new Device (ambient configuration per spec §4.6
// "frame-count").
type Config struct {
	FrameCount      int
	BackBufferCount int
	BackBufferFmt   driver.PixelFmt
	Width, Height   int
}

// New creates a Device over gpu, bringing up its swap chain, fence,
// and per-type descriptor allocators.
func New(gpu driver.Device, cfg Config) (*Device, error) {
	if cfg.FrameCount < 1 {
		panic("device: FrameCount must be >= 1")
	}
	d := &Device{gpu: gpu, FrameCount: cfg.FrameCount, width: cfg.Width, height: cfg.Height}
	d.Memory = memory.New(gpu, cfg.FrameCount)
	d.Upload = upload.New(gpu, cfg.FrameCount)

	for t := 0; t < driver.NumDescHeapTypes; t++ {
		d.cpuHeaps[t] = descriptor.NewCPUAllocator(gpu, driver.DescHeapType(t))
	}

	sc, err := gpu.NewSwapChain(cfg.BackBufferCount, cfg.BackBufferFmt, cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	d.swapChain = sc

	fence, err := gpu.NewFence(0)
	if err != nil {
		sc.Destroy()
		return nil, err
	}
	d.fence = fence

	list, err := gpu.NewCmdList()
	if err != nil {
		sc.Destroy()
		fence.Destroy()
		return nil, err
	}
	d.uploadList = list

	if err := d.initScreenTriangle(); err != nil {
		sc.Destroy()
		fence.Destroy()
		return nil, err
	}

	return d, nil
}

// initScreenTriangle creates the device-owned oversized triangle
// draw_screen draws: three vertices whose clip-space footprint covers
// the whole viewport, avoiding a separate full-screen quad's extra
// diagonal edge. The pair lives in the upload heap directly (it is
// written once, here, and never again) rather than going through the
// default-heap+staged-copy path NewVertexBuffer/NewIndexBuffer use for
// caller-supplied mesh data.
func (d *Device) initScreenTriangle() error {
	const stride = 20 // VertexFmtA: position3f, texcoord2f
	vSize := uint64(3 * stride)
	vAlloc, err := d.Memory.AllocateCommitted(driver.HeapUpload, driver.ResourceDesc{
		Dimension: 0, Size: driver.Dim3D{Width: int(vSize)}, InitialState: driver.StateGenericRead,
	})
	if err != nil {
		return err
	}
	iSize := uint64(3 * 4)
	iAlloc, err := d.Memory.AllocateCommitted(driver.HeapUpload, driver.ResourceDesc{
		Dimension: 0, Size: driver.Dim3D{Width: int(iSize)}, InitialState: driver.StateGenericRead,
	})
	if err != nil {
		d.Memory.Free(vAlloc)
		return err
	}

	type vertex struct{ x, y, z, u, v float32 }
	verts := [3]vertex{
		{-1, -1, 0, 0, 1},
		{-1, 3, 0, 0, -1},
		{3, -1, 0, 2, 1},
	}
	vbytes := vAlloc.Resource.Map()
	for i, v := range verts {
		off := i * stride
		binary.LittleEndian.PutUint32(vbytes[off:], math.Float32bits(v.x))
		binary.LittleEndian.PutUint32(vbytes[off+4:], math.Float32bits(v.y))
		binary.LittleEndian.PutUint32(vbytes[off+8:], math.Float32bits(v.z))
		binary.LittleEndian.PutUint32(vbytes[off+12:], math.Float32bits(v.u))
		binary.LittleEndian.PutUint32(vbytes[off+16:], math.Float32bits(v.v))
	}
	ibytes := iAlloc.Resource.Map()
	binary.LittleEndian.PutUint32(ibytes[0:], 0)
	binary.LittleEndian.PutUint32(ibytes[4:], 1)
	binary.LittleEndian.PutUint32(ibytes[8:], 2)

	d.ScreenVB = &VertexBuffer{alloc: vAlloc, View: driver.VertexBufferView{
		GPUAddress: vAlloc.Resource.GPUAddress(), SizeBytes: uint32(vSize), StrideBytes: stride,
	}}
	d.ScreenIB = &IndexBuffer{alloc: iAlloc, View: driver.IndexBufferView{
		GPUAddress: iAlloc.Resource.GPUAddress(), SizeBytes: uint32(iSize), Format: driver.Index32,
	}}
	return nil
}

// GPU exposes the underlying driver.Device, for packages (recorder,
// framegraph) that need to create resources or command lists
// directly.
func (d *Device) GPU() driver.Device { return d.gpu }

// CPUHeap returns the CPU descriptor allocator for heap type t.
func (d *Device) CPUHeap(t driver.DescHeapType) *descriptor.CPUAllocator { return d.cpuHeaps[t] }

// FrameIndex returns the device's current frame slot, in
// [0, FrameCount).
func (d *Device) FrameIndex() int { return d.frameIndex }

// SwapChain returns the device's swap chain.
func (d *Device) SwapChain() driver.SwapChain { return d.swapChain }

// Width returns the swap chain width in pixels, as configured at New.
func (d *Device) Width() int { return d.width }

// Height returns the swap chain height in pixels, as configured at New.
func (d *Device) Height() int { return d.height }

// UploadCmdList returns the command list reserved for resource
// uploads, submitted as part of EndFrame. NewTexture2D takes no
// initial data and records nothing onto it.
func (d *Device) UploadCmdList() driver.CmdList { return d.uploadList }

// ErrDeviceRemoved is returned by EndFrame when the device has
// entered an unrecoverable state (spec §7 "device-removed").
var ErrDeviceRemoved = driver.ErrDeviceRemoved

// BeginFrame advances the frame index modulo FrameCount, rotates the
// upload ring, and releases deferred-released heap allocations
// belonging to this frame slot (spec §4.6 "begin_frame()").
func (d *Device) BeginFrame() {
	d.frameIndex = (d.frameIndex + 1) % d.FrameCount
	d.Upload.NextFrame()
	d.Memory.NextFrame()

	if err := d.uploadList.Reset(); err != nil {
		panic(fmt.Sprintf("device: resetting upload command list: %v", err))
	}
}

// EndFrame closes and submits the resource-upload command list and
// submits the render command list (if non-nil; the recorder's own
// end_frame already closed it, spec §4.7), signals the frame fence
// with a monotonic value, waits on it if the GPU is more than
// FrameCount-1 frames behind, presents the current back-buffer, and
// advances the back-buffer index (spec §4.6 "end_frame(render_cmd_list)",
// §5 "the render thread blocks in exactly one place").
func (d *Device) EndFrame(renderList driver.CmdList) error {
	if err := d.uploadList.Close(); err != nil {
		return err
	}
	lists := []driver.CmdList{d.uploadList}
	if renderList != nil {
		lists = append(lists, renderList)
	}

	queue := d.gpu.GraphicsQueue()
	if err := queue.Submit(lists); err != nil {
		return err
	}

	d.fenceVal++
	if err := queue.Signal(d.fence, d.fenceVal); err != nil {
		return err
	}
	// Invariant: in-flight frames <= FrameCount (spec §4.6).
	if d.fenceVal > uint64(d.FrameCount) {
		if err := d.fence.Wait(d.fenceVal - uint64(d.FrameCount)); err != nil {
			return err
		}
	}

	if err := d.swapChain.Present(); err != nil {
		return err
	}
	return nil
}

// Wait drains the graphics queue, for use at shutdown before
// destroying any owned resource (spec §5 "the device must drain the
// queue").
func (d *Device) Wait() error { return d.gpu.Wait() }
