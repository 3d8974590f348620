// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package device

import (
	"github.com/gviegas/scene/descriptor"
	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/memory"
)

func alignUp256(n uint64) uint64 { return (n + 255) &^ 255 }

// VertexBuffer wraps a DeviceResource as a vertex buffer, plus its
// view record (spec §3).
type VertexBuffer struct {
	alloc *memory.HeapAllocation
	View  driver.VertexBufferView
}

// NewVertexBuffer creates a default-heap buffer of sizeBytes, viewed
// with the given per-vertex stride.
func (d *Device) NewVertexBuffer(sizeBytes, strideBytes uint32) (*VertexBuffer, error) {
	desc := driver.ResourceDesc{
		Dimension:    0,
		Size:         driver.Dim3D{Width: int(sizeBytes)},
		InitialState: driver.StateCommon,
	}
	alloc, err := d.Memory.Allocate(driver.HeapDefault, desc)
	if err != nil {
		return nil, err
	}
	return &VertexBuffer{
		alloc: alloc,
		View: driver.VertexBufferView{
			GPUAddress:  alloc.Resource.GPUAddress(),
			SizeBytes:   sizeBytes,
			StrideBytes: strideBytes,
		},
	}, nil
}

// Resource returns the underlying device resource.
func (b *VertexBuffer) Resource() driver.Resource { return b.alloc.Resource }

// Destroy queues b's backing allocation for deferred release.
func (b *VertexBuffer) Destroy(d *Device) { d.Memory.Free(b.alloc) }

// IndexBuffer wraps a DeviceResource as an index buffer (spec §3,
// "fixed 32-bit index format").
type IndexBuffer struct {
	alloc *memory.HeapAllocation
	View  driver.IndexBufferView
}

// NewIndexBuffer creates a default-heap index buffer of sizeBytes.
func (d *Device) NewIndexBuffer(sizeBytes uint32) (*IndexBuffer, error) {
	desc := driver.ResourceDesc{
		Dimension:    0,
		Size:         driver.Dim3D{Width: int(sizeBytes)},
		InitialState: driver.StateCommon,
	}
	alloc, err := d.Memory.Allocate(driver.HeapDefault, desc)
	if err != nil {
		return nil, err
	}
	return &IndexBuffer{
		alloc: alloc,
		View: driver.IndexBufferView{
			GPUAddress: alloc.Resource.GPUAddress(),
			SizeBytes:  sizeBytes,
			Format:     driver.Index32,
		},
	}, nil
}

func (b *IndexBuffer) Resource() driver.Resource { return b.alloc.Resource }
func (b *IndexBuffer) Destroy(d *Device)         { d.Memory.Free(b.alloc) }

// StructuredBuffer wraps a DeviceResource with a shader-read view and
// an unordered-access view (spec §3).
type StructuredBuffer struct {
	alloc  *memory.HeapAllocation
	SRV    *descriptor.CPUSlot
	UAV    *descriptor.CPUSlot
	Stride uint32
}

// NewStructuredBuffer creates a default-heap structured buffer of
// count elements of strideBytes each, with SRV and UAV views.
func (d *Device) NewStructuredBuffer(count int, strideBytes uint32) (*StructuredBuffer, error) {
	size := uint32(count) * strideBytes
	desc := driver.ResourceDesc{
		Dimension:       0,
		Size:            driver.Dim3D{Width: int(size)},
		UnorderedAccess: true,
		InitialState:    driver.StateCommon,
	}
	alloc, err := d.Memory.Allocate(driver.HeapDefault, desc)
	if err != nil {
		return nil, err
	}
	srv, err := d.cpuHeaps[driver.DescHeapCBVSRVUAV].Allocate()
	if err != nil {
		d.Memory.Free(alloc)
		return nil, err
	}
	uav, err := d.cpuHeaps[driver.DescHeapCBVSRVUAV].Allocate()
	if err != nil {
		srv.Free()
		d.Memory.Free(alloc)
		return nil, err
	}
	h := srv.Handle()
	h.Heap.CreateSRV(h.Index, alloc.Resource, driver.ViewDesc{})
	h = uav.Handle()
	h.Heap.CreateUAV(h.Index, alloc.Resource, driver.ViewDesc{})

	return &StructuredBuffer{alloc: alloc, SRV: srv, UAV: uav, Stride: strideBytes}, nil
}

func (b *StructuredBuffer) Resource() driver.Resource { return b.alloc.Resource }

func (b *StructuredBuffer) Destroy(d *Device) {
	b.SRV.Free()
	b.UAV.Free()
	d.Memory.Free(b.alloc)
}

// ConstantBuffer is N-buffered, one slot per frame, each persistently
// mapped with its own constant-buffer view (spec §4.6 "Constant
// buffer").
type ConstantBuffer struct {
	allocs []*memory.HeapAllocation
	views  []*descriptor.CPUSlot
	size   uint64
}

// NewConstantBuffer allocates d.FrameCount upload-heap buffers of
// align_up(sizeBytes, 256) bytes (minimum 256), each with a CBV.
func (d *Device) NewConstantBuffer(sizeBytes uint64) (*ConstantBuffer, error) {
	size := alignUp256(sizeBytes)
	if size < 256 {
		size = 256
	}
	cb := &ConstantBuffer{size: size}
	for i := 0; i < d.FrameCount; i++ {
		desc := driver.ResourceDesc{
			Dimension:    0,
			Size:         driver.Dim3D{Width: int(size)},
			InitialState: driver.StateGenericRead,
		}
		alloc, err := d.Memory.AllocateCommitted(driver.HeapUpload, desc)
		if err != nil {
			cb.destroyPartial(d, i)
			return nil, err
		}
		slot, err := d.cpuHeaps[driver.DescHeapCBVSRVUAV].Allocate()
		if err != nil {
			d.Memory.Free(alloc)
			cb.destroyPartial(d, i)
			return nil, err
		}
		h := slot.Handle()
		h.Heap.CreateCBV(h.Index, alloc.Resource, 0, size)

		cb.allocs = append(cb.allocs, alloc)
		cb.views = append(cb.views, slot)
	}
	return cb, nil
}

func (cb *ConstantBuffer) destroyPartial(d *Device, n int) {
	for i := 0; i < n; i++ {
		d.Memory.Free(cb.allocs[i])
		cb.views[i].Free()
	}
}

// Commit writes bytes into the slot active for the given frame index
// (spec §4.6 "commit(bytes)").
func (cb *ConstantBuffer) Commit(frameIndex int, bytes []byte) {
	dst := cb.allocs[frameIndex].Resource.Map()
	copy(dst, bytes)
}

// CurrentView returns the constant-buffer view active for the given
// frame index (spec §4.6 "current_view()").
func (cb *ConstantBuffer) CurrentView(frameIndex int) driver.CPUHandle {
	return cb.views[frameIndex].Handle()
}

// GPUAddress returns the GPU address of the slot active for the
// given frame index, used for root CBV binding.
func (cb *ConstantBuffer) GPUAddress(frameIndex int) uint64 {
	return cb.allocs[frameIndex].Resource.GPUAddress()
}

// ResourceAt returns the backing resource for the given frame index.
func (cb *ConstantBuffer) ResourceAt(frameIndex int) driver.Resource {
	return cb.allocs[frameIndex].Resource
}

func (cb *ConstantBuffer) Destroy(d *Device) {
	for i := range cb.allocs {
		d.Memory.Free(cb.allocs[i])
		cb.views[i].Free()
	}
}

// TextureCaps records a Texture2D/Cubemap's optional capabilities
// (spec §3 "flag recording render-target / depth-stencil /
// unordered-access capability").
type TextureCaps struct {
	RenderTarget    bool
	DepthStencil    bool
	UnorderedAccess bool
}

// Texture2D composes a DeviceResource with its associated views
// (spec §3 "texture-2D").
type Texture2D struct {
	alloc *memory.HeapAllocation

	SRV     *descriptor.CPUSlot
	MipSRVs []*descriptor.CPUSlot
	MipUAVs []*descriptor.CPUSlot
	RTV     *descriptor.CPUSlot
	DSV     *descriptor.CPUSlot

	Caps   TextureCaps
	Format driver.PixelFmt
	Mips   int
}

// srvFormat returns the format to use for a shader-read view, which
// must be a compatible non-depth-stencil format when the resource
// itself is a depth-stencil format (spec §4.6 "using a compatible
// depth-SRV format when depth-stencil").
func srvFormat(f driver.PixelFmt) driver.PixelFmt {
	if f == driver.D32fS8X24 {
		return driver.R32fX8X24
	}
	return f
}

// NewTexture2D creates a texture-2D resource plus its views, deriving
// resource flags from caps (spec §4.6 "Texture-2D").
func (d *Device) NewTexture2D(w, h, mips int, format driver.PixelFmt, caps TextureCaps) (*Texture2D, error) {
	if mips < 1 {
		mips = 1
	}
	desc := driver.ResourceDesc{
		Dimension:       2,
		Size:            driver.Dim3D{Width: w, Height: h, Depth: 1},
		MipLevels:       mips,
		Format:          format,
		RenderTarget:    caps.RenderTarget,
		DepthStencil:    caps.DepthStencil,
		UnorderedAccess: caps.UnorderedAccess,
		ArrayLayers:     1,
		InitialState:    driver.StateCommon,
	}
	alloc, err := d.Memory.Allocate(driver.HeapDefault, desc)
	if err != nil {
		return nil, err
	}
	t := &Texture2D{alloc: alloc, Caps: caps, Format: format, Mips: mips}

	srv, err := d.cpuHeaps[driver.DescHeapCBVSRVUAV].Allocate()
	if err != nil {
		d.Memory.Free(alloc)
		return nil, err
	}
	hs := srv.Handle()
	hs.Heap.CreateSRV(hs.Index, alloc.Resource, driver.ViewDesc{Format: srvFormat(format), MipLevels: -1})
	t.SRV = srv

	for mip := 0; mip < mips; mip++ {
		s, err := d.cpuHeaps[driver.DescHeapCBVSRVUAV].Allocate()
		if err != nil {
			t.Destroy(d)
			return nil, err
		}
		h := s.Handle()
		h.Heap.CreateSRV(h.Index, alloc.Resource, driver.ViewDesc{Format: srvFormat(format), MostDetailedMip: mip, MipLevels: 1})
		t.MipSRVs = append(t.MipSRVs, s)

		if caps.UnorderedAccess {
			u, err := d.cpuHeaps[driver.DescHeapCBVSRVUAV].Allocate()
			if err != nil {
				t.Destroy(d)
				return nil, err
			}
			h = u.Handle()
			h.Heap.CreateUAV(h.Index, alloc.Resource, driver.ViewDesc{Format: format, MipSlice: mip})
			t.MipUAVs = append(t.MipUAVs, u)
		}
	}

	if caps.RenderTarget {
		rtv, err := d.cpuHeaps[driver.DescHeapRTV].Allocate()
		if err != nil {
			t.Destroy(d)
			return nil, err
		}
		h := rtv.Handle()
		h.Heap.CreateRTV(h.Index, alloc.Resource, driver.ViewDesc{Format: format})
		t.RTV = rtv
	}
	if caps.DepthStencil {
		dsv, err := d.cpuHeaps[driver.DescHeapDSV].Allocate()
		if err != nil {
			t.Destroy(d)
			return nil, err
		}
		h := dsv.Handle()
		h.Heap.CreateDSV(h.Index, alloc.Resource, driver.ViewDesc{Format: format})
		t.DSV = dsv
	}

	return t, nil
}

func (t *Texture2D) Resource() driver.Resource { return t.alloc.Resource }

func (t *Texture2D) Destroy(d *Device) {
	if t.SRV != nil {
		t.SRV.Free()
	}
	for _, s := range t.MipSRVs {
		s.Free()
	}
	for _, u := range t.MipUAVs {
		u.Free()
	}
	if t.RTV != nil {
		t.RTV.Free()
	}
	if t.DSV != nil {
		t.DSV.Free()
	}
	d.Memory.Free(t.alloc)
}

// Cubemap is a texture-2D-array of 6 layers with a cube shader-read
// view and, optionally, per-mip array unordered-access views (spec
// §3, §4.6 "Cubemap").
type Cubemap struct {
	alloc *memory.HeapAllocation

	CubeSRV *descriptor.CPUSlot
	MipUAVs []*descriptor.CPUSlot

	Format driver.PixelFmt
	Mips   int
}

// NewCubemap creates a 6-layer texture-2D array with a cube SRV.
func (d *Device) NewCubemap(size, mips int, format driver.PixelFmt, unorderedAccess bool) (*Cubemap, error) {
	if mips < 1 {
		mips = 1
	}
	desc := driver.ResourceDesc{
		Dimension:       2,
		Size:            driver.Dim3D{Width: size, Height: size, Depth: 1},
		MipLevels:       mips,
		Format:          format,
		ArrayLayers:     6,
		UnorderedAccess: unorderedAccess,
		InitialState:    driver.StateCommon,
	}
	alloc, err := d.Memory.Allocate(driver.HeapDefault, desc)
	if err != nil {
		return nil, err
	}
	c := &Cubemap{alloc: alloc, Format: format, Mips: mips}

	srv, err := d.cpuHeaps[driver.DescHeapCBVSRVUAV].Allocate()
	if err != nil {
		d.Memory.Free(alloc)
		return nil, err
	}
	h := srv.Handle()
	h.Heap.CreateSRV(h.Index, alloc.Resource, driver.ViewDesc{
		Format: format, MipLevels: -1, FirstArraySlice: 0, ArraySize: 6, Cube: true,
	})
	c.CubeSRV = srv

	if unorderedAccess {
		for mip := 0; mip < mips; mip++ {
			u, err := d.cpuHeaps[driver.DescHeapCBVSRVUAV].Allocate()
			if err != nil {
				c.Destroy(d)
				return nil, err
			}
			h = u.Handle()
			h.Heap.CreateUAV(h.Index, alloc.Resource, driver.ViewDesc{
				Format: format, MipSlice: mip, FirstArraySlice: 0, ArraySize: 6,
			})
			c.MipUAVs = append(c.MipUAVs, u)
		}
	}

	return c, nil
}

func (c *Cubemap) Resource() driver.Resource { return c.alloc.Resource }

func (c *Cubemap) Destroy(d *Device) {
	c.CubeSRV.Free()
	for _, u := range c.MipUAVs {
		u.Free()
	}
	d.Memory.Free(c.alloc)
}

// Sampler is a single CPU descriptor (spec §3 "sampler").
type Sampler struct {
	slot *descriptor.CPUSlot
}

// NewSampler creates a sampler descriptor with the given state.
func (d *Device) NewSampler(s driver.Sampling) (*Sampler, error) {
	slot, err := d.cpuHeaps[driver.DescHeapSampler].Allocate()
	if err != nil {
		return nil, err
	}
	h := slot.Handle()
	h.Heap.CreateSampler(h.Index, s)
	return &Sampler{slot: slot}, nil
}

func (s *Sampler) Handle() driver.CPUHandle { return s.slot.Handle() }
func (s *Sampler) Destroy()                 { s.slot.Free() }

// BackBuffer wraps one of the swap chain's images without owning the
// underlying memory (spec §4.6 "Back-buffers"): only a render-target
// view is created, and Destroy does not free memory.
type BackBuffer struct {
	res driver.Resource
	RTV *descriptor.CPUSlot
}

// NewBackBuffers creates one BackBuffer wrapper per swap-chain image.
func (d *Device) NewBackBuffers(format driver.PixelFmt) ([]*BackBuffer, error) {
	n := d.swapChain.BackBufferCount()
	bufs := make([]*BackBuffer, 0, n)
	for i := 0; i < n; i++ {
		res := d.swapChain.BackBuffer(i)
		rtv, err := d.cpuHeaps[driver.DescHeapRTV].Allocate()
		if err != nil {
			return nil, err
		}
		h := rtv.Handle()
		h.Heap.CreateRTV(h.Index, res, driver.ViewDesc{Format: format})
		bufs = append(bufs, &BackBuffer{res: res, RTV: rtv})
	}
	return bufs, nil
}

func (b *BackBuffer) Resource() driver.Resource { return b.res }
func (b *BackBuffer) Destroy()                  { b.RTV.Free() }
