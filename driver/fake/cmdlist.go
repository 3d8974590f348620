// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package fake

import "github.com/gviegas/scene/driver"

// Counters tallies the number of times each CmdList method was
// called since the last Reset, so tests can assert that the
// higher-level recorder actually elided a redundant set call (spec
// §8 property 6) rather than merely producing the correct output.
type Counters struct {
	ResourceBarrier                   int
	SetPipelineState                  int
	SetGraphicsRootSignature          int
	SetComputeRootSignature           int
	SetDescriptorHeaps                int
	IASetVertexBuffers                int
	IASetIndexBuffer                  int
	IASetPrimitiveTopology            int
	RSSetViewports                    int
	RSSetScissorRects                 int
	OMSetRenderTargets                int
	SetGraphicsRootConstantBufferView int
	SetComputeRootConstantBufferView  int
	SetGraphicsRootDescriptorTable    int
	SetComputeRootDescriptorTable     int
	DrawInstanced                     int
	DrawIndexedInstanced              int
	Dispatch                          int
}

// CmdList is the fake driver.CmdList implementation. It records
// every call in Counters and keeps the barrier log for inspection,
// but otherwise performs no real recording work.
type CmdList struct {
	open     bool
	Counters Counters
	Barriers []driver.ResourceTransition
}

// NewCmdList implements driver.Device.
func (d *Device) NewCmdList() (driver.CmdList, error) {
	return &CmdList{open: true}, nil
}

func (c *CmdList) Destroy() {}

func (c *CmdList) Reset() error {
	c.open = true
	c.Counters = Counters{}
	c.Barriers = nil
	return nil
}

func (c *CmdList) Close() error {
	c.open = false
	return nil
}

func (c *CmdList) ResourceBarrier(transitions []driver.ResourceTransition) {
	c.Counters.ResourceBarrier++
	c.Barriers = append(c.Barriers, transitions...)
}

func (c *CmdList) CopyResource(dst, src driver.Resource) {
	d, s := dst.(*Resource), src.(*Resource)
	n := len(d.data)
	if len(s.data) < n {
		n = len(s.data)
	}
	copy(d.data[:n], s.data[:n])
}

func (c *CmdList) ClearRenderTargetView(h driver.CPUHandle, color [4]float32) {}
func (c *CmdList) ClearDepthStencilView(h driver.CPUHandle, depth float32, stencil uint8) {}

func (c *CmdList) OMSetRenderTargets(rtv []driver.CPUHandle, dsv *driver.CPUHandle) {
	c.Counters.OMSetRenderTargets++
}

func (c *CmdList) SetDescriptorHeaps(heaps []driver.DescHeap) {
	c.Counters.SetDescriptorHeaps++
}

func (c *CmdList) SetGraphicsRootSignature() { c.Counters.SetGraphicsRootSignature++ }
func (c *CmdList) SetComputeRootSignature()  { c.Counters.SetComputeRootSignature++ }

func (c *CmdList) SetGraphicsRootConstantBufferView(rootParam int, gpuAddr uint64) {
	c.Counters.SetGraphicsRootConstantBufferView++
}

func (c *CmdList) SetComputeRootConstantBufferView(rootParam int, gpuAddr uint64) {
	c.Counters.SetComputeRootConstantBufferView++
}

func (c *CmdList) SetGraphicsRootDescriptorTable(rootParam int, h driver.GPUHandle) {
	c.Counters.SetGraphicsRootDescriptorTable++
}

func (c *CmdList) SetComputeRootDescriptorTable(rootParam int, h driver.GPUHandle) {
	c.Counters.SetComputeRootDescriptorTable++
}

func (c *CmdList) SetPipelineState(p driver.PipelineState) { c.Counters.SetPipelineState++ }

func (c *CmdList) IASetVertexBuffers(startSlot int, views []driver.VertexBufferView) {
	c.Counters.IASetVertexBuffers++
}

func (c *CmdList) IASetIndexBuffer(view driver.IndexBufferView) { c.Counters.IASetIndexBuffer++ }

func (c *CmdList) IASetPrimitiveTopology(t driver.Topology) { c.Counters.IASetPrimitiveTopology++ }

func (c *CmdList) RSSetViewports(vp []driver.Viewport) { c.Counters.RSSetViewports++ }
func (c *CmdList) RSSetScissorRects(r []driver.Rect)   { c.Counters.RSSetScissorRects++ }

func (c *CmdList) DrawInstanced(vertexCount, instanceCount, startVertex, startInstance int) {
	c.Counters.DrawInstanced++
}

func (c *CmdList) DrawIndexedInstanced(indexCount, instanceCount, startIndex, baseVertex, startInstance int) {
	c.Counters.DrawIndexedInstanced++
}

func (c *CmdList) Dispatch(groupsX, groupsY, groupsZ int) { c.Counters.Dispatch++ }
