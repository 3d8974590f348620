// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package fake

import "github.com/gviegas/scene/driver"

// Shader is the fake driver.Shader implementation: it keeps the raw
// bytecode only so tests can assert a shader was created from the
// bytes they expect.
type Shader struct {
	stage driver.ShaderStage
	code  []byte
}

// NewShader implements driver.Device.
func (d *Device) NewShader(stage driver.ShaderStage, code []byte) (driver.Shader, error) {
	cp := make([]byte, len(code))
	copy(cp, code)
	return &Shader{stage: stage, code: cp}, nil
}

func (s *Shader) Destroy()                  {}
func (s *Shader) Stage() driver.ShaderStage { return s.stage }

// PipelineState is the fake driver.PipelineState implementation. It
// retains the PipelineDesc it was created from, so tests can assert
// on how the higher layers populated it.
type PipelineState struct {
	Desc driver.PipelineDesc
}

// NewPipelineState implements driver.Device.
func (d *Device) NewPipelineState(desc driver.PipelineDesc) (driver.PipelineState, error) {
	return &PipelineState{Desc: desc}, nil
}

func (p *PipelineState) Destroy() {}
