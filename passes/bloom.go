// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package passes

import (
	"github.com/gviegas/scene/device"
	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/framegraph"
)

// bloomMips is the number of mip levels in the bloom downsample chain.
const bloomMips = 6

// BloomPass extracts bright pixels from the composited scene and
// builds a downsample/upsample mip chain out of them (grounded on
// BloomPass in the original pipeline's post-process stack).
type BloomPass struct {
	width, height int
}

func NewBloomPass(dev *device.Device) *BloomPass {
	return &BloomPass{width: dev.Width(), height: dev.Height()}
}

func (p *BloomPass) Name() string              { return "Bloom" }
func (p *BloomPass) Kind() framegraph.PassKind { return framegraph.ComputePass }

func (p *BloomPass) Setup(b *framegraph.Builder) {
	b.ReadResource(DeferredShadingRT)
	b.ReadResource(SkyboxComposited)

	b.WriteTransientTexture(BloomMipchain, framegraph.TextureDesc{
		Width: p.width / 2, Height: p.height / 2, Mips: bloomMips, Format: driver.RGBA16f, UnorderedAccess: true,
	})
	// BloomTempTexture is a downsample/upsample scratch target; nothing
	// outside this pass ever reads it.
	b.WriteTransientTexture(BloomTempTexture, framegraph.TextureDesc{
		Width: p.width / 2, Height: p.height / 2, Mips: 1, Format: driver.RGBA16f, UnorderedAccess: true,
	})
}

// Execute would dispatch a bright-pass extraction into mip 0, then a
// chain of downsample dispatches followed by a chain of blurred
// upsample-and-combine dispatches, bouncing through BloomTempTexture.
func (p *BloomPass) Execute(ctx *framegraph.Context) error {
	return nil
}
