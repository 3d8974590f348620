// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package passes

import (
	"github.com/gviegas/scene/device"
	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/framegraph"
)

// GBufferPass renders opaque geometry into three render targets plus
// a depth-stencil buffer. The stencil is written (not just tested) so
// DeferredShadingPass can mask out pixels no geometry touched.
type GBufferPass struct {
	width, height int

	// Culled and Drawn count the models the pass culled and drew, for
	// a caller that wants basic frustum-cull telemetry. Execute draws
	// nothing, so it resets both to zero every frame.
	Culled, Drawn int
}

// NewGBufferPass creates the pass, sizing its outputs to dev's
// current swap-chain resolution.
func NewGBufferPass(dev *device.Device) *GBufferPass {
	return &GBufferPass{width: dev.Width(), height: dev.Height()}
}

func (p *GBufferPass) Name() string              { return "GBuffer" }
func (p *GBufferPass) Kind() framegraph.PassKind { return framegraph.GraphicsPass }

func (p *GBufferPass) Setup(b *framegraph.Builder) {
	albedo := framegraph.TextureDesc{Width: p.width, Height: p.height, Mips: 1, Format: driver.RGBA8un, RenderTarget: true}
	b.WriteTransientTexture(GBufferA, albedo)
	b.WriteTransientTexture(GBufferB, albedo)
	b.WriteTransientTexture(GBufferC, albedo)
	b.WriteTransientTexture(DepthStencil, framegraph.TextureDesc{
		Width: p.width, Height: p.height, Mips: 1, Format: driver.D32fS8X24, DepthStencil: true,
	})
}

// Execute would cull the scene against the camera frustum and draw
// each visible model's submeshes, one SetGraphicsPipelineState +
// DrawMesh call per submesh (scene traversal is an external
// collaborator, out of scope here).
func (p *GBufferPass) Execute(ctx *framegraph.Context) error {
	p.Culled, p.Drawn = 0, 0
	return nil
}
