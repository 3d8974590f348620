// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package recorder

import "github.com/gviegas/scene/driver"

// ClearRenderTarget transitions res to render-target state and clears
// view to {0,0,0,0} (spec §4.7 "clear_render_target(view)").
func (r *Recorder) ClearRenderTarget(res driver.Resource, view driver.CPUHandle) {
	list := r.list()
	driver.Transition(list, res, driver.StateRenderTarget)
	list.ClearRenderTargetView(view, [4]float32{0, 0, 0, 0})
}

// ClearDepthStencil transitions res to depth-write state and clears
// view to depth 1.0, stencil 0 (spec §4.7 "clear_depth_stencil(view)").
func (r *Recorder) ClearDepthStencil(res driver.Resource, view driver.CPUHandle) {
	list := r.list()
	driver.Transition(list, res, driver.StateDepthWrite)
	list.ClearDepthStencilView(view, 1.0, 0)
}

// RenderTarget pairs a render-target resource with its view, for
// SetRenderTarget's batch transition.
type RenderTarget struct {
	Resource driver.Resource
	View     driver.CPUHandle
}

// SetRenderTarget batch-transitions every target (and the optional
// depth-stencil target) then binds them (spec §4.7
// "set_render_target(rtv[0..n], dsv?)").
func (r *Recorder) SetRenderTarget(rt []RenderTarget, ds *RenderTarget) {
	list := r.list()

	var transitions []driver.ResourceTransition
	for _, t := range rt {
		if before := t.Resource.State(); before != driver.StateRenderTarget {
			transitions = append(transitions, driver.ResourceTransition{Resource: t.Resource, Before: before, After: driver.StateRenderTarget})
			t.Resource.SetState(driver.StateRenderTarget)
		}
	}
	if ds != nil {
		if before := ds.Resource.State(); before != driver.StateDepthWrite {
			transitions = append(transitions, driver.ResourceTransition{Resource: ds.Resource, Before: before, After: driver.StateDepthWrite})
			ds.Resource.SetState(driver.StateDepthWrite)
		}
	}
	if len(transitions) > 0 {
		list.ResourceBarrier(transitions)
	}

	rtv := make([]driver.CPUHandle, len(rt))
	for i, t := range rt {
		rtv[i] = t.View
	}
	var dsv *driver.CPUHandle
	if ds != nil {
		dsv = &ds.View
	}
	list.OMSetRenderTargets(rtv, dsv)
}

// DrawScreen binds sh's pipeline state and resource binding, then
// draws the device-owned full-screen triangle (spec §4.7
// "draw_screen(shading)").
func (r *Recorder) DrawScreen(sh GraphicsPipeline, binding ResourceBinding) error {
	if err := r.SetGraphicsPipelineState(sh); err != nil {
		return err
	}
	if err := r.SetResourceBinding(binding, false); err != nil {
		return err
	}
	r.SetVertexIndex(r.dev.ScreenVB.View, r.dev.ScreenIB.View)
	r.list().DrawIndexedInstanced(3, 1, 0, 0, 0)
	return nil
}

// DrawMesh binds sh's pipeline state and resource binding, then
// records an indexed draw over vb/ib (spec §4.7 "draw_mesh(shading,
// vertex-format, vb, ib, index-offset, index-count)").
func (r *Recorder) DrawMesh(sh GraphicsPipeline, binding ResourceBinding, vb driver.VertexBufferView, ib driver.IndexBufferView, indexOffset, indexCount int) error {
	if err := r.SetGraphicsPipelineState(sh); err != nil {
		return err
	}
	if err := r.SetResourceBinding(binding, false); err != nil {
		return err
	}
	r.SetVertexIndex(vb, ib)
	r.list().DrawIndexedInstanced(indexCount, 1, indexOffset, 0, 0)
	return nil
}

// Dispatch binds comp's compute pipeline state and resource binding,
// then dispatches gx*gy*gz thread groups (spec §4.7
// "dispatch(shading, gx, gy, gz)").
func (r *Recorder) Dispatch(comp driver.Shader, shaderHash uint64, binding ResourceBinding, gx, gy, gz int) error {
	if err := r.SetComputePipelineState(comp, shaderHash); err != nil {
		return err
	}
	if err := r.SetResourceBinding(binding, true); err != nil {
		return err
	}
	r.list().Dispatch(gx, gy, gz)
	return nil
}

// CopyTexture transitions src to copy-source and dst to copy-dest,
// then records a whole-resource copy (spec §4.7
// "copy_texture(src, dst)").
func (r *Recorder) CopyTexture(src, dst driver.Resource) {
	list := r.list()
	driver.Transition(list, src, driver.StateCopySrc)
	driver.Transition(list, dst, driver.StateCopyDst)
	list.CopyResource(dst, src)
}

// Present copies src into the current back-buffer and transitions the
// back-buffer to the present state (spec §4.7 "present(src)"); the
// swap chain's own Present (called by device.Device.EndFrame) then
// schedules it for display.
func (r *Recorder) Present(src driver.Resource) {
	list := r.list()
	bb := r.backBuffer[r.dev.SwapChain().CurrentBackBufferIndex()]
	driver.Transition(list, src, driver.StateCopySrc)
	driver.Transition(list, bb.Resource(), driver.StateCopyDst)
	list.CopyResource(bb.Resource(), src)
	driver.Transition(list, bb.Resource(), driver.StatePresent)
}
