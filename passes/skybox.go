// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package passes

import "github.com/gviegas/scene/framegraph"

// SkyboxPass draws the scene's skybox sphere into the pixels
// DeferredShadingPass left untouched (depth test only, no clear — it
// composites into DeferredShadingRT in place).
type SkyboxPass struct{}

func NewSkyboxPass() *SkyboxPass { return &SkyboxPass{} }

func (p *SkyboxPass) Name() string              { return "Skybox" }
func (p *SkyboxPass) Kind() framegraph.PassKind { return framegraph.GraphicsPass }

func (p *SkyboxPass) Setup(b *framegraph.Builder) {
	b.ReadResource(DeferredShadingRT)
	b.ReadResource(DepthStencil)

	// A 1x1 marker texture: declaring it as this pass's only output
	// gives downstream passes something to ReadResource so the
	// dependency DAG orders them after the in-place skybox composite,
	// since DeferredShadingRT itself isn't redeclared as a new write.
	b.WriteTransientTexture(SkyboxComposited, markerDesc)
}

// Execute would set the skybox cubemap as an input, draw the unit
// sphere mesh with depth test enabled and depth write disabled, and
// blend the result straight into DeferredShadingRT — no automatic
// clear happens here, since the pass declares no render-target
// output; it binds DeferredShadingRT itself by calling
// ctx.Texture(DeferredShadingRT) and recorder.SetRenderTarget.
func (p *SkyboxPass) Execute(ctx *framegraph.Context) error {
	return nil
}
