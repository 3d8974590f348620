// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// ShaderStage is a programmable pipeline stage.
type ShaderStage int

// Shader stages.
const (
	StageVertex ShaderStage = iota
	StagePixel
	StageCompute
)

// Shader is the interface that defines a compiled shader program for
// a single stage, created from the bytecode blob the shader
// reflection contract (package shader) pairs with its reflection
// data (spec §6).
type Shader interface {
	Destroyer

	Stage() ShaderStage
}

// VertexFmt names one of the renderer's two fixed vertex layouts
// (spec §6).
type VertexFmt int

// Vertex formats.
const (
	// VertexFmtA is {position3f, texcoord2f}, stride 20.
	VertexFmtA VertexFmt = iota
	// VertexFmtB is {position3f, normal3f, tangent3f, color3f,
	// texcoord2f}, stride 56.
	VertexFmtB
)

// Stride returns the per-vertex byte stride of f.
func (f VertexFmt) Stride() int {
	switch f {
	case VertexFmtA:
		return 20
	case VertexFmtB:
		return 56
	default:
		panic("driver: invalid VertexFmt")
	}
}

// CullMode selects which triangle winding to discard.
type CullMode int

// Cull modes.
const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// FillMode selects triangle rasterization fill.
type FillMode int

// Fill modes.
const (
	FillSolid FillMode = iota
	FillWireframe
)

// CmpFunc is a comparison function used by depth and stencil tests.
type CmpFunc int

// Comparison functions.
const (
	CmpNever CmpFunc = iota
	CmpLess
	CmpEqual
	CmpLessEqual
	CmpGreater
	CmpNotEqual
	CmpGreaterEqual
	CmpAlways
)

// StencilOp is a stencil buffer update operation.
type StencilOp int

// Stencil operations.
const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrClamp
	StencilDecrClamp
	StencilInvert
)

// StencilFace describes one face's stencil operation triple plus its
// comparison function (spec §3 "front-face-stencil"/"back-face-stencil").
type StencilFace struct {
	Compare   CmpFunc
	Pass      StencilOp
	DepthFail StencilOp
	Fail      StencilOp
}

// BlendOp is a color/alpha blend operation.
type BlendOp int

// Blend operations.
const (
	BlendAdd BlendOp = iota
)

// BlendFac is a blend factor.
type BlendFac int

// Blend factors.
const (
	BlendZero BlendFac = iota
	BlendOne
	BlendSrcAlpha
	BlendInvSrcAlpha
)

// PipelineDesc fully describes a graphics or compute pipeline state
// object for creation (spec §3 PipelineStateDesc + RenderPassPsoDesc,
// unpacked into a creation-time description; the packed 8-byte/24-byte
// encodings used for the PSO cache key live in package device).
type PipelineDesc struct {
	IsCompute bool

	VertFunc Shader
	FragFunc Shader
	CompFunc Shader

	VertexFmt VertexFmt

	FillMode FillMode
	CullMode CullMode

	DepthTest    bool
	DepthWrite   bool
	DepthCompare CmpFunc

	StencilTest  bool
	StencilWrite bool
	FrontFace    StencilFace
	BackFace     StencilFace

	BlendEnable bool
	BlendOp     BlendOp
	BlendSrc    BlendFac
	BlendDst    BlendFac

	DepthStencilFormat  PixelFmt
	RenderTargetFormats []PixelFmt
}

// PipelineState is an opaque, device-compiled pipeline.
type PipelineState interface {
	Destroyer
}
