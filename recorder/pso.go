// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package recorder

import (
	"github.com/gviegas/scene/device"
	"github.com/gviegas/scene/driver"
)

// GraphicsPipeline is the creation-time description set_graphics_pipeline_state
// builds a PSO key and, on a cache miss, a driver.PipelineState from
// (spec §4.7 "set_graphics_pipeline_state(vertex-format, pipeline-desc,
// pass-desc, shader)").
type GraphicsPipeline struct {
	VertexFmt  driver.VertexFmt
	State      driver.PipelineDesc
	Pass       device.RenderPassPsoDesc
	ShaderHash uint64
}

// resolve builds the driver.PipelineDesc a cache miss must compile,
// filling in the fields GraphicsPipeline keeps separate from State
// (vertex format and render-pass formats).
func (g GraphicsPipeline) resolve() driver.PipelineDesc {
	d := g.State
	d.VertexFmt = g.VertexFmt
	d.DepthStencilFormat = g.Pass.DepthStencilFormat
	d.RenderTargetFormats = append([]driver.PixelFmt(nil), g.Pass.RenderTargetFormats[:g.Pass.RenderTargetCount]...)
	return d
}

// pso returns the cached PipelineState for key, compiling and caching
// it via desc() on a miss.
func (r *Recorder) pso(key device.PSOKey, desc func() driver.PipelineDesc) (driver.PipelineState, error) {
	if p, ok := r.psoCache[key]; ok {
		return p, nil
	}
	p, err := r.dev.GPU().NewPipelineState(desc())
	if err != nil {
		return nil, err
	}
	r.psoCache[key] = p
	return p, nil
}

// SetGraphicsPipelineState builds g's PSO key, looks it up (compiling
// on a miss), and sets it only if the key differs from the one
// currently bound (spec §4.7's mandatory redundant-set elision).
func (r *Recorder) SetGraphicsPipelineState(g GraphicsPipeline) error {
	key := device.BuildGraphicsKey(g.VertexFmt, device.PackPipelineStateDesc(g.State), g.Pass, g.ShaderHash)
	if r.haveKey && r.key == key {
		return nil
	}
	p, err := r.pso(key, g.resolve)
	if err != nil {
		return err
	}
	r.list().SetPipelineState(p)
	r.key, r.haveKey = key, true
	return nil
}

// SetComputePipelineState builds the compute PSO key for shader (spec
// §4.7 "set_compute_pipeline_state(shader)"), with the same
// redundant-set elision rule.
func (r *Recorder) SetComputePipelineState(comp driver.Shader, shaderHash uint64) error {
	key := device.BuildComputeKey(shaderHash)
	if r.haveKey && r.key == key {
		return nil
	}
	p, err := r.pso(key, func() driver.PipelineDesc {
		return driver.PipelineDesc{IsCompute: true, CompFunc: comp}
	})
	if err != nil {
		return err
	}
	r.list().SetPipelineState(p)
	r.key, r.haveKey = key, true
	return nil
}
