// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package passes

import (
	"github.com/gviegas/scene/device"
	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/framegraph"
)

// DeferredShadingPass resolves the GBuffer and clustered lights into
// one HDR render target, drawn with the device's full-screen triangle
// (draw_screen), stencil-masked to the pixels GBufferPass touched.
type DeferredShadingPass struct {
	width, height int
}

func NewDeferredShadingPass(dev *device.Device) *DeferredShadingPass {
	return &DeferredShadingPass{width: dev.Width(), height: dev.Height()}
}

func (p *DeferredShadingPass) Name() string              { return "DeferredShading" }
func (p *DeferredShadingPass) Kind() framegraph.PassKind { return framegraph.GraphicsPass }

func (p *DeferredShadingPass) Setup(b *framegraph.Builder) {
	b.ReadResource(GBufferA)
	b.ReadResource(GBufferB)
	b.ReadResource(GBufferC)
	b.ReadResource(DepthStencil)
	b.ReadResource(FrustumCluster)
	b.ReadResource(PointLights)

	b.WriteTransientTexture(DeferredShadingRT, framegraph.TextureDesc{
		Width: p.width, Height: p.height, Mips: 1, Format: driver.RGBA16f, RenderTarget: true,
	})
}

// Execute would bind the GBuffer textures and cluster buffers to the
// deferred-shading shader, set stencil-ref 0 (so only pixels with
// stencil >= 1 pass), and call draw_screen.
func (p *DeferredShadingPass) Execute(ctx *framegraph.Context) error {
	return nil
}
