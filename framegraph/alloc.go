// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package framegraph

import (
	"fmt"
	"sort"

	"github.com/gviegas/scene/descriptor"
	"github.com/gviegas/scene/device"
	"github.com/gviegas/scene/driver"
)

type realizedTexture struct {
	resource      driver.Resource
	srv, rtv, dsv *descriptor.CPUSlot
}

type realizedBuffer struct {
	resource driver.Resource
	srv, uav *descriptor.CPUSlot
}

// allocateTransients implements spec §4.8 step 5: places every
// transient resource — textures via the transient-memory pool,
// buffers the same way — after resetting the pool so this compile's
// assignment does not carry stale reservations from the last one.
func (g *Graph) allocateTransients() error {
	type item struct {
		id   ResourceID
		kind ResourceKind
	}
	var items []item
	for id, decl := range g.descTable {
		if decl.kind == KindPersistent {
			continue
		}
		items = append(items, item{id, decl.kind})
	}
	sort.Slice(items, func(a, b int) bool {
		la, lb := g.lifetime[items[a].id], g.lifetime[items[b].id]
		if la[0] != lb[0] {
			return la[0] < lb[0]
		}
		return items[a].id < items[b].id
	})

	type placement struct {
		id     ResourceID
		usage  driver.HeapUsage
		offset uint64
		desc   driver.ResourceDesc
	}
	var placements []placement

	for _, it := range items {
		decl := g.descTable[it.id]
		var rd driver.ResourceDesc
		var usage driver.HeapUsage
		switch it.kind {
		case KindTexture:
			rd = decl.tex.resourceDesc()
			usage = decl.tex.usage()
		case KindBuffer:
			rd = decl.buf.resourceDesc()
			usage = driver.HeapUsageBuffer
		}
		info := g.dev.GPU().ResourceAllocationInfo(rd)
		pool, ok := g.pools[usage]
		if !ok {
			pool = &transientPool{}
			g.pools[usage] = pool
		}
		lt := g.lifetime[it.id]
		offset := pool.assign(info.Size, info.Alignment, lt[0], lt[1])
		placements = append(placements, placement{it.id, usage, offset, rd})
	}

	for usage, pool := range g.pools {
		if pool.size() == 0 {
			continue
		}
		h, err := g.dev.GPU().NewHeap(driver.HeapDefault, usage, pool.size())
		if err != nil {
			return err
		}
		g.heaps[usage] = h
	}

	for _, pl := range placements {
		h := g.heaps[pl.usage]
		res, err := g.dev.GPU().NewPlacedResource(h, pl.offset, pl.desc)
		if err != nil {
			return err
		}
		decl := g.descTable[pl.id]
		switch decl.kind {
		case KindTexture:
			t, err := g.buildTextureViews(res, decl.tex)
			if err != nil {
				return err
			}
			g.realizedTex[pl.id] = t
		case KindBuffer:
			b, err := g.buildBufferViews(res, decl.buf)
			if err != nil {
				return err
			}
			g.realizedBuf[pl.id] = b
		}
	}
	return nil
}

func (g *Graph) buildTextureViews(res driver.Resource, desc TextureDesc) (*realizedTexture, error) {
	t := &realizedTexture{resource: res}

	srv, err := g.dev.CPUHeap(driver.DescHeapCBVSRVUAV).Allocate()
	if err != nil {
		return nil, err
	}
	format := desc.Format
	if format == driver.D32fS8X24 {
		format = driver.R32fX8X24
	}
	h := srv.Handle()
	h.Heap.CreateSRV(h.Index, res, driver.ViewDesc{Format: format, MipLevels: -1})
	t.srv = srv

	if desc.RenderTarget {
		rtv, err := g.dev.CPUHeap(driver.DescHeapRTV).Allocate()
		if err != nil {
			return nil, err
		}
		h := rtv.Handle()
		h.Heap.CreateRTV(h.Index, res, driver.ViewDesc{Format: desc.Format})
		t.rtv = rtv
	}
	if desc.DepthStencil {
		dsv, err := g.dev.CPUHeap(driver.DescHeapDSV).Allocate()
		if err != nil {
			return nil, err
		}
		h := dsv.Handle()
		h.Heap.CreateDSV(h.Index, res, driver.ViewDesc{Format: desc.Format})
		t.dsv = dsv
	}
	return t, nil
}

func (g *Graph) buildBufferViews(res driver.Resource, desc BufferDesc) (*realizedBuffer, error) {
	b := &realizedBuffer{resource: res}

	srv, err := g.dev.CPUHeap(driver.DescHeapCBVSRVUAV).Allocate()
	if err != nil {
		return nil, err
	}
	h := srv.Handle()
	h.Heap.CreateSRV(h.Index, res, driver.ViewDesc{})
	b.srv = srv

	if desc.UnorderedAccess {
		uav, err := g.dev.CPUHeap(driver.DescHeapCBVSRVUAV).Allocate()
		if err != nil {
			return nil, err
		}
		h := uav.Handle()
		h.Heap.CreateUAV(h.Index, res, driver.ViewDesc{})
		b.uav = uav
	}
	return b, nil
}

// derivePsoDescs implements spec §4.8 step 6: derive each graphics
// pass's RenderPassPsoDesc from its output resources' formats and
// capabilities, and reject a graphics pass that writes to a buffer.
func (g *Graph) derivePsoDescs() error {
	for _, i := range g.order {
		p := g.passes[i]
		if p.Kind() != GraphicsPass {
			continue
		}
		var pass device.RenderPassPsoDesc
		for _, id := range g.passWrites[i] {
			decl := g.descTable[id]
			switch decl.kind {
			case KindBuffer:
				return fmt.Errorf("framegraph: graphics pass %q writes to buffer %q", p.Name(), Name(id))
			case KindTexture:
				if decl.tex.DepthStencil {
					pass.DepthStencilFormat = decl.tex.Format
				} else if decl.tex.RenderTarget {
					if pass.RenderTargetCount >= device.MaxRenderTargets {
						return fmt.Errorf("framegraph: graphics pass %q writes more than %d render targets", p.Name(), device.MaxRenderTargets)
					}
					pass.RenderTargetFormats[pass.RenderTargetCount] = decl.tex.Format
					pass.RenderTargetCount++
				}
			case KindPersistent:
				if decl.ext.DSV != nil {
					pass.DepthStencilFormat = decl.ext.Resource.Desc().Format
				} else if decl.ext.RTV != nil {
					if pass.RenderTargetCount >= device.MaxRenderTargets {
						return fmt.Errorf("framegraph: graphics pass %q writes more than %d render targets", p.Name(), device.MaxRenderTargets)
					}
					pass.RenderTargetFormats[pass.RenderTargetCount] = decl.ext.Resource.Desc().Format
					pass.RenderTargetCount++
				}
			}
		}
		g.passPso[i] = pass
	}
	return nil
}

// PassRenderFormats returns the RenderPassPsoDesc derived for a
// graphics pass by the last successful Compile.
func (g *Graph) PassRenderFormats(name string) (device.RenderPassPsoDesc, bool) {
	for i, p := range g.passes {
		if p.Name() == name {
			rp, ok := g.passPso[i]
			return rp, ok
		}
	}
	return device.RenderPassPsoDesc{}, false
}
