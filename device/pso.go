// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package device

import "github.com/gviegas/scene/driver"

// PipelineStateDesc packs the fixed-function pipeline state spec §3
// describes into a single 8-byte word: fill-mode(2b), cull-mode(2b),
// depth-test(1b), depth-write(1b), stencil-test(1b), stencil-write(1b),
// depth-compare(4b), front-face-stencil(16b), back-face-stencil(16b),
// blend-state(16b). Only 60 of the 64 bits are meaningful.
type PipelineStateDesc uint64

const (
	pFillShift         = 0
	pCullShift         = 2
	pDepthTestBit      = 1 << 4
	pDepthWriteBit     = 1 << 5
	pStencilTestBit    = 1 << 6
	pStencilWriteBit   = 1 << 7
	pDepthCmpShift     = 8
	pFrontStencilShift = 12
	pBackStencilShift  = 28
	pBlendShift        = 44
)

func packStencilFace(f driver.StencilFace) uint64 {
	return uint64(f.Compare) | uint64(f.Pass)<<4 | uint64(f.DepthFail)<<8 | uint64(f.Fail)<<12
}

// PackPipelineStateDesc derives a PipelineStateDesc from a
// driver.PipelineDesc's fixed-function fields (spec §3). Per spec §9
// Design Notes, the blend-state sub-word reserves 4 bits for "enable"
// but only the low bit is ever meaningful; callers must not rely on
// the upper 3 enable bits.
func PackPipelineStateDesc(d driver.PipelineDesc) PipelineStateDesc {
	var v uint64
	v |= uint64(d.FillMode) << pFillShift
	v |= uint64(d.CullMode) << pCullShift
	if d.DepthTest {
		v |= pDepthTestBit
	}
	if d.DepthWrite {
		v |= pDepthWriteBit
	}
	if d.StencilTest {
		v |= pStencilTestBit
	}
	if d.StencilWrite {
		v |= pStencilWriteBit
	}
	v |= uint64(d.DepthCompare) << pDepthCmpShift
	v |= packStencilFace(d.FrontFace) << pFrontStencilShift
	v |= packStencilFace(d.BackFace) << pBackStencilShift

	var blend uint64
	if d.BlendEnable {
		blend |= 1
	}
	blend |= uint64(d.BlendOp) << 4
	blend |= uint64(d.BlendSrc) << 8
	blend |= uint64(d.BlendDst) << 12
	v |= blend << pBlendShift

	return PipelineStateDesc(v)
}

// MaxRenderTargets is the maximum render-target count a
// RenderPassPsoDesc may carry (spec §3 "up to 8 render-target formats").
const MaxRenderTargets = 8

// RenderPassPsoDesc carries the depth-stencil and render-target
// formats a pipeline is compiled against (spec §3).
type RenderPassPsoDesc struct {
	DepthStencilFormat  driver.PixelFmt
	RenderTargetFormats [MaxRenderTargets]driver.PixelFmt
	RenderTargetCount   int
}

// pack encodes r into the low bits of a uint64: up to 8 render-target
// formats (4 bits each), their count (4 bits), and the depth-stencil
// format (4 bits) — 40 bits total, assuming driver.NumPixelFmts fits
// in 4 bits (checked by an explicit panic rather than silent
// truncation).
func (r RenderPassPsoDesc) pack() uint64 {
	if driver.NumPixelFmts > 16 {
		panic("device: PixelFmt no longer fits the PSO key's 4-bit format field")
	}
	var v uint64
	for i, f := range r.RenderTargetFormats {
		v |= uint64(f) << uint(i*4)
	}
	v |= uint64(r.RenderTargetCount) << 32
	v |= uint64(r.DepthStencilFormat) << 36
	return v
}

// PSOKey is the packed triple (PipelineStateDesc, RenderPassPsoDesc,
// vertex-format, shader-hash, is-compute), totaling 24 bytes, hashed
// and compared as three 64-bit words (spec §3).
type PSOKey struct {
	W0 uint64 // PipelineStateDesc
	W1 uint64 // RenderPassPsoDesc | vertex-format | is-compute
	W2 uint64 // shader-hash
}

// BuildGraphicsKey builds the PSO key for a graphics pipeline state
// (spec §4.7 "set_graphics_pipeline_state").
func BuildGraphicsKey(vertexFmt driver.VertexFmt, pso PipelineStateDesc, pass RenderPassPsoDesc, shaderHash uint64) PSOKey {
	w1 := pass.pack()
	w1 |= uint64(vertexFmt) << 40
	return PSOKey{W0: uint64(pso), W1: w1, W2: shaderHash}
}

// BuildComputeKey builds the PSO key for a compute pipeline state
// (spec §4.7 "set_compute_pipeline_state"). Compute states carry no
// fixed-function rasterizer/blend state or render-pass formats; only
// the is-compute bit and the shader hash distinguish them.
func BuildComputeKey(shaderHash uint64) PSOKey {
	return PSOKey{W1: 1 << 63, W2: shaderHash}
}

// IsCompute reports whether k was built by BuildComputeKey.
func (k PSOKey) IsCompute() bool { return k.W1&(1<<63) != 0 }
