// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package framegraph

import "github.com/gviegas/scene/driver"

// ResourceKind distinguishes the tagged-union cases of a resource
// description (spec §4.8 "a resource description is a tagged union
// over {transient-texture, transient-buffer, persistent}").
type ResourceKind int

const (
	KindTexture ResourceKind = iota
	KindBuffer
	KindPersistent
)

// TextureDesc describes a transient texture output (spec §4.8
// "transient-texture {w,h,mips,format,capability-flag}").
type TextureDesc struct {
	Width, Height, Mips                        int
	Format                                     driver.PixelFmt
	RenderTarget, DepthStencil, UnorderedAccess bool
}

func (d TextureDesc) resourceDesc() driver.ResourceDesc {
	mips := d.Mips
	if mips < 1 {
		mips = 1
	}
	return driver.ResourceDesc{
		Dimension:       2,
		Size:            driver.Dim3D{Width: d.Width, Height: d.Height, Depth: 1},
		MipLevels:       mips,
		Format:          d.Format,
		RenderTarget:    d.RenderTarget,
		DepthStencil:    d.DepthStencil,
		UnorderedAccess: d.UnorderedAccess,
		ArrayLayers:     1,
		InitialState:    driver.StateCommon,
	}
}

func (d TextureDesc) usage() driver.HeapUsage {
	if d.RenderTarget || d.DepthStencil {
		return driver.HeapUsageRTDSTexture
	}
	return driver.HeapUsageNonRTDSTexture
}

// BufferDesc describes a transient structured-buffer output (spec
// §4.8 "transient-buffer {size,stride}").
type BufferDesc struct {
	Count           int
	StrideBytes     uint32
	UnorderedAccess bool
}

func (d BufferDesc) resourceDesc() driver.ResourceDesc {
	return driver.ResourceDesc{
		Dimension:       0,
		Size:            driver.Dim3D{Width: int(uint32(d.Count) * d.StrideBytes)},
		UnorderedAccess: d.UnorderedAccess,
		InitialState:    driver.StateCommon,
	}
}

// PersistentResource wraps an externally owned resource a pass writes
// to by id (spec §4.8 "persistent {external pointer}"), such as the
// swap chain's current back-buffer or a resource another subsystem
// created.
type PersistentResource struct {
	Resource driver.Resource
	SRV      *driver.CPUHandle
	RTV      *driver.CPUHandle
	DSV      *driver.CPUHandle
	UAV      *driver.CPUHandle
}

// resourceDecl is the global-table entry for one interned id (spec
// §4.8 "a parallel resource-description table indexed by id").
type resourceDecl struct {
	kind ResourceKind
	tex  TextureDesc
	buf  BufferDesc
	ext  PersistentResource
}

func (d resourceDecl) equal(o resourceDecl) bool {
	if d.kind != o.kind {
		return false
	}
	switch d.kind {
	case KindTexture:
		return d.tex == o.tex
	case KindBuffer:
		return d.buf == o.buf
	default:
		return d.ext.Resource == o.ext.Resource
	}
}
