// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package passes

import "github.com/gviegas/scene/framegraph"

// luminanceBins is the histogram bin count used to derive scene
// average luminance (grounded on the original's 256-bin log-luminance
// histogram).
const luminanceBins = 256

// AutoExposurePass builds a log-luminance histogram of the composited
// scene and reduces it to a single exponentially-smoothed average
// luminance value, used by ToneMappingPass to drive exposure.
type AutoExposurePass struct{}

func NewAutoExposurePass() *AutoExposurePass { return &AutoExposurePass{} }

func (p *AutoExposurePass) Name() string              { return "AutoExposure" }
func (p *AutoExposurePass) Kind() framegraph.PassKind { return framegraph.ComputePass }

func (p *AutoExposurePass) Setup(b *framegraph.Builder) {
	b.ReadResource(DeferredShadingRT)
	b.ReadResource(BloomMipchain)

	b.WriteTransientBuffer(LuminanceHistogram, framegraph.BufferDesc{
		Count: luminanceBins, StrideBytes: 4, UnorderedAccess: true,
	})
	// AverageLuminance is a single-element buffer, smoothed frame to
	// frame rather than reset, so its UAV must persist across passes
	// within the frame — a plain transient buffer suffices here since
	// it is written once per frame and read once downstream.
	b.WriteTransientBuffer(AverageLuminance, framegraph.BufferDesc{
		Count: 1, StrideBytes: 4, UnorderedAccess: true,
	})
}

// Execute would dispatch the histogram-build compute shader over
// DeferredShadingRT (plus bloom contribution), then a second dispatch
// reducing the histogram to one exponentially-smoothed luminance
// value.
func (p *AutoExposurePass) Execute(ctx *framegraph.Context) error {
	return nil
}
