// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package recorder_test

import (
	"testing"

	"github.com/gviegas/scene/device"
	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/driver/fake"
	"github.com/gviegas/scene/recorder"
)

func newRecorder(t *testing.T) (*device.Device, *recorder.Recorder) {
	t.Helper()
	gpu, err := (&fake.Driver{}).Open()
	if err != nil {
		t.Fatal(err)
	}
	d, err := device.New(gpu, device.Config{
		FrameCount:      2,
		BackBufferCount: 2,
		BackBufferFmt:   driver.RGBA8un,
		Width:           640,
		Height:          480,
	})
	if err != nil {
		t.Fatal(err)
	}
	bufs, err := d.NewBackBuffers(driver.RGBA8un)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := recorder.New(d, bufs)
	if err != nil {
		t.Fatal(err)
	}
	return d, rec
}

func fakeList(t *testing.T, list driver.CmdList) *fake.CmdList {
	t.Helper()
	fl, ok := list.(*fake.CmdList)
	if !ok {
		t.Fatalf("expected a *fake.CmdList, got %T", list)
	}
	return fl
}

func vp() (driver.Viewport, driver.Rect) {
	return driver.Viewport{Width: 640, Height: 480, MaxDepth: 1},
		driver.Rect{Right: 640, Bottom: 480}
}

func TestVertexIndexElision(t *testing.T) {
	_, rec := newRecorder(t)
	viewport, scissor := vp()
	if err := rec.BeginFrame(viewport, scissor); err != nil {
		t.Fatal(err)
	}
	vb := driver.VertexBufferView{GPUAddress: 1, SizeBytes: 64, StrideBytes: 20}
	ib := driver.IndexBufferView{GPUAddress: 2, SizeBytes: 32, Format: driver.Index32}

	rec.SetVertexIndex(vb, ib)
	rec.SetVertexIndex(vb, ib)
	rec.SetVertexIndex(vb, ib)

	list, err := rec.EndFrame()
	if err != nil {
		t.Fatal(err)
	}
	fl := fakeList(t, list)
	if fl.Counters.IASetVertexBuffers != 1 {
		t.Errorf("IASetVertexBuffers called %d times, want 1 (redundant sets must be elided)", fl.Counters.IASetVertexBuffers)
	}
	if fl.Counters.IASetIndexBuffer != 1 {
		t.Errorf("IASetIndexBuffer called %d times, want 1", fl.Counters.IASetIndexBuffer)
	}
}

func TestGraphicsConstantElision(t *testing.T) {
	_, rec := newRecorder(t)
	viewport, scissor := vp()
	if err := rec.BeginFrame(viewport, scissor); err != nil {
		t.Fatal(err)
	}
	rec.SetGraphicsConstant(recorder.SlotGlobal, 0x1000)
	rec.SetGraphicsConstant(recorder.SlotGlobal, 0x1000)
	rec.SetGraphicsConstant(recorder.SlotGlobal, 0x2000)

	list, err := rec.EndFrame()
	if err != nil {
		t.Fatal(err)
	}
	fl := fakeList(t, list)
	if fl.Counters.SetGraphicsRootConstantBufferView != 2 {
		t.Errorf("SetGraphicsRootConstantBufferView called %d times, want 2 (one elided)", fl.Counters.SetGraphicsRootConstantBufferView)
	}
}

func TestPipelineStateElisionAndCache(t *testing.T) {
	d, rec := newRecorder(t)
	viewport, scissor := vp()
	if err := rec.BeginFrame(viewport, scissor); err != nil {
		t.Fatal(err)
	}

	vert, err := d.GPU().NewShader(driver.StageVertex, []byte{1})
	if err != nil {
		t.Fatal(err)
	}
	frag, err := d.GPU().NewShader(driver.StagePixel, []byte{2})
	if err != nil {
		t.Fatal(err)
	}

	gp := recorder.GraphicsPipeline{
		VertexFmt:  driver.VertexFmtA,
		State:      driver.PipelineDesc{VertFunc: vert, FragFunc: frag},
		Pass:       device.RenderPassPsoDesc{RenderTargetCount: 1, RenderTargetFormats: [device.MaxRenderTargets]driver.PixelFmt{driver.RGBA8un}},
		ShaderHash: 42,
	}
	for i := 0; i < 3; i++ {
		if err := rec.SetGraphicsPipelineState(gp); err != nil {
			t.Fatal(err)
		}
	}
	list, err := rec.EndFrame()
	if err != nil {
		t.Fatal(err)
	}
	fl := fakeList(t, list)
	if fl.Counters.SetPipelineState != 1 {
		t.Errorf("SetPipelineState called %d times, want 1 (identical key elided)", fl.Counters.SetPipelineState)
	}
}

func TestResourceBindingFillsNullDescriptorsForUnsetSlots(t *testing.T) {
	d, rec := newRecorder(t)
	viewport, scissor := vp()
	if err := rec.BeginFrame(viewport, scissor); err != nil {
		t.Fatal(err)
	}

	tex, err := d.NewTexture2D(64, 64, 1, driver.RGBA8un, device.TextureCaps{})
	if err != nil {
		t.Fatal(err)
	}
	defer tex.Destroy(d)

	var binding recorder.ResourceBinding
	binding.SRVs[0] = recorder.ResourceView{Resource: tex.Resource(), View: tex.SRV.Handle()}

	if err := rec.SetResourceBinding(binding, false); err != nil {
		t.Fatal(err)
	}
	if tex.Resource().State() != driver.StateShaderRead {
		t.Errorf("bound SRV resource state = %v, want shader-read", tex.Resource().State())
	}

	if _, err := rec.EndFrame(); err != nil {
		t.Fatal(err)
	}
}

func TestPresentCopiesIntoCurrentBackBuffer(t *testing.T) {
	d, rec := newRecorder(t)
	viewport, scissor := vp()
	if err := rec.BeginFrame(viewport, scissor); err != nil {
		t.Fatal(err)
	}

	tex, err := d.NewTexture2D(640, 480, 1, driver.RGBA8un, device.TextureCaps{RenderTarget: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tex.Destroy(d)

	rec.Present(tex.Resource())

	list, err := rec.EndFrame()
	if err != nil {
		t.Fatal(err)
	}
	if err := d.EndFrame(list); err != nil {
		t.Fatal(err)
	}
}
