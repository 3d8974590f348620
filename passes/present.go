// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package passes

import "github.com/gviegas/scene/framegraph"

// PresentPass copies the tone-mapped image into the swap chain's
// current back buffer. It declares no outputs, making it the
// pipeline's unique terminal pass.
type PresentPass struct{}

func NewPresentPass() *PresentPass { return &PresentPass{} }

func (p *PresentPass) Name() string              { return "Present" }
func (p *PresentPass) Kind() framegraph.PassKind { return framegraph.GraphicsPass }

func (p *PresentPass) Setup(b *framegraph.Builder) {
	b.ReadResource(ToneMappedTexture)
}

func (p *PresentPass) Execute(ctx *framegraph.Context) error {
	src := ctx.Texture(ToneMappedTexture)
	ctx.Recorder().Present(src.Resource)
	return nil
}
