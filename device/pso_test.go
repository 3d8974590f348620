// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package device_test

import (
	"testing"

	"github.com/gviegas/scene/device"
	"github.com/gviegas/scene/driver"
)

func TestPackPipelineStateDescBitPositions(t *testing.T) {
	d := driver.PipelineDesc{
		FillMode:     driver.FillWireframe,
		CullMode:     driver.CullBack,
		DepthTest:    true,
		DepthWrite:   true,
		DepthCompare: driver.CmpLessEqual,
		StencilTest:  true,
		FrontFace:    driver.StencilFace{Compare: driver.CmpEqual, Pass: driver.StencilReplace, DepthFail: driver.StencilKeep, Fail: driver.StencilZero},
		BackFace:     driver.StencilFace{Compare: driver.CmpAlways, Pass: driver.StencilIncrClamp, DepthFail: driver.StencilDecrClamp, Fail: driver.StencilInvert},
		BlendEnable:  true,
		BlendOp:      driver.BlendAdd,
		BlendSrc:     driver.BlendSrcAlpha,
		BlendDst:     driver.BlendInvSrcAlpha,
	}
	v := uint64(device.PackPipelineStateDesc(d))

	if got := v & 0x3; got != uint64(driver.FillWireframe) {
		t.Errorf("fill-mode bits: want %d, have %d", driver.FillWireframe, got)
	}
	if got := (v >> 2) & 0x3; got != uint64(driver.CullBack) {
		t.Errorf("cull-mode bits: want %d, have %d", driver.CullBack, got)
	}
	if v&(1<<4) == 0 {
		t.Error("depth-test bit not set")
	}
	if v&(1<<5) == 0 {
		t.Error("depth-write bit not set")
	}
	if v&(1<<6) == 0 {
		t.Error("stencil-test bit not set")
	}
	if v&(1<<7) != 0 {
		t.Error("stencil-write bit set when StencilWrite is false")
	}
	if got := (v >> 8) & 0xf; got != uint64(driver.CmpLessEqual) {
		t.Errorf("depth-compare bits: want %d, have %d", driver.CmpLessEqual, got)
	}
}

func TestBuildGraphicsKeyAndComputeKeyDistinguishIsCompute(t *testing.T) {
	pass := device.RenderPassPsoDesc{
		DepthStencilFormat:  driver.D32fS8X24,
		RenderTargetFormats: [device.MaxRenderTargets]driver.PixelFmt{driver.RGBA8un, driver.RGBA16f},
		RenderTargetCount:   2,
	}
	gfx := device.BuildGraphicsKey(driver.VertexFmtB, device.PackPipelineStateDesc(driver.PipelineDesc{}), pass, 0xdeadbeef)
	if gfx.IsCompute() {
		t.Error("BuildGraphicsKey: key reports IsCompute")
	}
	if gfx.W2 != 0xdeadbeef {
		t.Errorf("BuildGraphicsKey: W2 = %#x, want shader hash 0xdeadbeef", gfx.W2)
	}

	cmp := device.BuildComputeKey(0xdeadbeef)
	if !cmp.IsCompute() {
		t.Error("BuildComputeKey: key does not report IsCompute")
	}
	if cmp.W0 != 0 {
		t.Errorf("BuildComputeKey: W0 = %#x, want 0 (no fixed-function state)", cmp.W0)
	}

	if gfx == cmp {
		t.Error("graphics and compute keys for the same shader hash must not collide")
	}
}

func TestRenderPassPsoDescDistinguishesFormats(t *testing.T) {
	base := device.PackPipelineStateDesc(driver.PipelineDesc{})
	p1 := device.RenderPassPsoDesc{RenderTargetFormats: [device.MaxRenderTargets]driver.PixelFmt{driver.RGBA8un}, RenderTargetCount: 1}
	p2 := device.RenderPassPsoDesc{RenderTargetFormats: [device.MaxRenderTargets]driver.PixelFmt{driver.RGBA16f}, RenderTargetCount: 1}

	k1 := device.BuildGraphicsKey(driver.VertexFmtA, base, p1, 1)
	k2 := device.BuildGraphicsKey(driver.VertexFmtA, base, p2, 1)
	if k1.W1 == k2.W1 {
		t.Error("distinct render-target formats must produce distinct W1 words")
	}
}
