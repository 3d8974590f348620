// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package recorder

import (
	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/shader"
)

// ResourceView pairs a GPU resource with the CPU-visible view the
// recorder stages into a shader-visible descriptor table.
type ResourceView struct {
	Resource driver.Resource
	View     driver.CPUHandle
}

// ResourceBinding is the up-to-8-SRV, up-to-8-UAV set a pass binds
// for one draw or dispatch (spec §4.7 "set_resource_binding").
// Unset entries are left as the zero ResourceView and filled with a
// canonical null descriptor.
type ResourceBinding struct {
	SRVs [shader.MaxTextures]ResourceView
	UAVs [shader.MaxUAVs]ResourceView
}

// srvTransitionState picks the read state a shader-read view's
// resource must be transitioned to: a depth-stencil format cannot be
// bound as a plain shader-read target (spec §4.7 "depth-read ... if
// the resource format is depth-stencil").
func srvTransitionState(res driver.Resource) driver.State {
	if res.Desc().Format.IsDepthStencil() {
		return driver.StateDepthRead
	}
	return driver.StateShaderRead
}

// SetResourceBinding stages b's views into a freshly allocated range
// of the frame's GPU descriptor heaps and binds the resulting
// descriptor tables on the graphics or compute root signature (spec
// §4.7 "set_resource_binding(binding, is_compute)").
func (r *Recorder) SetResourceBinding(b ResourceBinding, isCompute bool) error {
	list := r.list()

	rng, err := r.gpuHeap().Allocate(shader.MaxTextures + shader.MaxUAVs)
	if err != nil {
		return err
	}
	for i := 0; i < shader.MaxTextures; i++ {
		if v := b.SRVs[i]; v.Resource != nil {
			driver.Transition(list, v.Resource, srvTransitionState(v.Resource))
			rng.CopyDescriptor(i, v.View)
		} else {
			rng.CopyDescriptor(i, r.nullSRV.Handle())
		}
	}
	for i := 0; i < shader.MaxUAVs; i++ {
		slot := shader.MaxTextures + i
		if v := b.UAVs[i]; v.Resource != nil {
			driver.Transition(list, v.Resource, driver.StateUnorderedAccess)
			rng.CopyDescriptor(slot, v.View)
		} else {
			rng.CopyDescriptor(slot, r.nullUAV.Handle())
		}
	}

	sRng, err := r.samplerHeap().Allocate(shader.MaxSamplers)
	if err != nil {
		return err
	}
	for i := 0; i < shader.MaxSamplers; i++ {
		sRng.CopyDescriptor(i, r.canonicalSamplers[i])
	}

	heaps := []driver.DescHeap{rng.Heap(), sRng.Heap()}
	if !r.heapsSet || r.lastCBVSRVUAVHeap != heaps[0] || r.lastSamplerHeap != heaps[1] {
		list.SetDescriptorHeaps(heaps)
		r.heapsSet, r.lastCBVSRVUAVHeap, r.lastSamplerHeap = true, heaps[0], heaps[1]
	}

	if isCompute {
		list.SetComputeRootDescriptorTable(int(SlotGlobal)+1, rng.GPUHandle(0))
		list.SetComputeRootDescriptorTable(int(SlotGlobal)+2, sRng.GPUHandle(0))
	} else {
		list.SetGraphicsRootDescriptorTable(int(SlotGlobal)+1, rng.GPUHandle(0))
		list.SetGraphicsRootDescriptorTable(int(SlotGlobal)+2, sRng.GPUHandle(0))
	}
	return nil
}
