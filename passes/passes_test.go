// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package passes_test

import (
	"testing"

	"github.com/gviegas/scene/device"
	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/driver/fake"
	"github.com/gviegas/scene/framegraph"
	"github.com/gviegas/scene/passes"
	"github.com/gviegas/scene/recorder"
)

func newDevice(t *testing.T) *device.Device {
	t.Helper()
	gpu, err := (&fake.Driver{}).Open()
	if err != nil {
		t.Fatal(err)
	}
	d, err := device.New(gpu, device.Config{
		FrameCount:      2,
		BackBufferCount: 2,
		BackBufferFmt:   driver.RGBA8un,
		Width:           320,
		Height:          240,
	})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func newGraph(t *testing.T, d *device.Device) *framegraph.Graph {
	t.Helper()
	g := framegraph.New(d)
	g.AddPass(passes.NewGBufferPass(d))
	g.AddPass(passes.NewClusteredLightingPass())
	g.AddPass(passes.NewDeferredShadingPass(d))
	g.AddPass(passes.NewSkyboxPass())
	g.AddPass(passes.NewBloomPass(d))
	g.AddPass(passes.NewAutoExposurePass())
	g.AddPass(passes.NewToneMappingPass(d))
	g.AddPass(passes.NewPresentPass())
	return g
}

func TestPipelineCompiles(t *testing.T) {
	d := newDevice(t)
	g := newGraph(t, d)
	if err := g.Compile(); err != nil {
		t.Fatal(err)
	}

	order := g.Order()
	want := []string{
		"GBuffer", "ClusterLighting", "DeferredShading", "Skybox",
		"Bloom", "AutoExposure", "ToneMapping", "Present",
	}
	if len(order) != len(want) {
		t.Fatalf("Order() = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Order() = %v, want %v", order, want)
		}
	}
}

func TestPipelineRenderFormats(t *testing.T) {
	d := newDevice(t)
	g := newGraph(t, d)
	if err := g.Compile(); err != nil {
		t.Fatal(err)
	}

	rp, ok := g.PassRenderFormats("GBuffer")
	if !ok || rp.RenderTargetCount != 3 || rp.DepthStencilFormat != driver.D32fS8X24 {
		t.Errorf("PassRenderFormats(GBuffer) = %+v, ok=%v, want 3 targets + D32fS8X24 depth-stencil", rp, ok)
	}

	rp, ok = g.PassRenderFormats("DeferredShading")
	if !ok || rp.RenderTargetCount != 1 || rp.RenderTargetFormats[0] != driver.RGBA16f {
		t.Errorf("PassRenderFormats(DeferredShading) = %+v, ok=%v, want one RGBA16f target", rp, ok)
	}

	rp, ok = g.PassRenderFormats("ToneMapping")
	if !ok || rp.RenderTargetCount != 1 || rp.RenderTargetFormats[0] != driver.RGBA8un {
		t.Errorf("PassRenderFormats(ToneMapping) = %+v, ok=%v, want one RGBA8un target", rp, ok)
	}
}

func TestPipelineExecutesEveryPass(t *testing.T) {
	d := newDevice(t)
	g := newGraph(t, d)
	if err := g.Compile(); err != nil {
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
	if err := rec.BeginFrame(driver.Viewport{Width: 320, Height: 240, MaxDepth: 1}, driver.Rect{Right: 320, Bottom: 240}); err != nil {
		t.Fatal(err)
	}
	if err := g.Execute(rec, nil, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := rec.EndFrame(); err != nil {
		t.Fatal(err)
	}
}
