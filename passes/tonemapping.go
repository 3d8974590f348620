// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package passes

import (
	"github.com/gviegas/scene/device"
	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/framegraph"
)

// ToneMappingPass combines the composited scene, its bloom mip chain
// and average luminance into the final low-dynamic-range image
// (grounded on ToneMappingPass in the original pipeline).
type ToneMappingPass struct {
	width, height int
}

func NewToneMappingPass(dev *device.Device) *ToneMappingPass {
	return &ToneMappingPass{width: dev.Width(), height: dev.Height()}
}

func (p *ToneMappingPass) Name() string              { return "ToneMapping" }
func (p *ToneMappingPass) Kind() framegraph.PassKind { return framegraph.GraphicsPass }

func (p *ToneMappingPass) Setup(b *framegraph.Builder) {
	b.ReadResource(DeferredShadingRT)
	b.ReadResource(SkyboxComposited)
	b.ReadResource(BloomMipchain)
	b.ReadResource(AverageLuminance)

	b.WriteTransientTexture(ToneMappedTexture, framegraph.TextureDesc{
		Width: p.width, Height: p.height, Mips: 1, Format: driver.RGBA8un, RenderTarget: true,
	})
}

// Execute would draw_screen with the tone-mapping shader, sampling
// DeferredShadingRT, BloomMipchain and AverageLuminance to produce the
// final LDR color.
func (p *ToneMappingPass) Execute(ctx *framegraph.Context) error {
	return nil
}
