// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package passes implements the deferred pipeline's concrete frame
// graph passes: GBuffer, clustered lighting, deferred shading,
// skybox, bloom, auto-exposure, tone mapping and present. Each pass's
// resource declarations, lifetimes and render-target/depth-stencil
// derivation are real and exercised by tests; the shader-stage bodies
// are stubs, since the shading algorithms themselves are out of scope.
package passes

import (
	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/framegraph"
)

// markerDesc describes a minimal 1x1 texture used purely as a
// graph-ordering token: it carries no real content, so its format and
// dimensions do not matter beyond being a valid, non-RT/non-DS
// TextureDesc (derivePsoDescs skips such outputs entirely).
var markerDesc = framegraph.TextureDesc{Width: 1, Height: 1, Mips: 1, Format: driver.R32f}

// Resource ids shared across passes, interned once at package load.
var (
	GBufferA     = framegraph.Intern("GBufferA")
	GBufferB     = framegraph.Intern("GBufferB")
	GBufferC     = framegraph.Intern("GBufferC")
	DepthStencil = framegraph.Intern("GBufferDepthStencil")

	FrustumCluster = framegraph.Intern("FrustumCluster")
	PointLights    = framegraph.Intern("ClusteredLights")

	DeferredShadingRT = framegraph.Intern("DeferredShadingRT")

	// SkyboxComposited has no real content — writing it makes explicit
	// the graph-ordering dependency "skybox composites in place into
	// DeferredShadingRT before anything downstream samples it", since
	// an in-place mutation of an already-declared output is not itself
	// a new write the dependency DAG would otherwise see.
	SkyboxComposited = framegraph.Intern("SkyboxComposited")

	BloomMipchain      = framegraph.Intern("BloomMipchain")
	BloomTempTexture   = framegraph.Intern("BloomTempTexture")
	LuminanceHistogram = framegraph.Intern("LuminanceHistogram")
	AverageLuminance   = framegraph.Intern("AverageLuminance")

	ToneMappedTexture = framegraph.Intern("ToneMappedTexture")
)
