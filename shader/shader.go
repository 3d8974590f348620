// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package shader defines the reflection contract the shader
// front-end collaborator must emit (spec §6): byte-code plus a
// description of every resource a compiled program binds. Compiling
// shader source is out of scope — this package only models what the
// compiler hands back.
package shader

import (
	"fmt"

	"github.com/gviegas/scene/driver"
)

// Limits the reflection contract enforces per program (spec §6).
const (
	MaxTextures        = 8
	MaxUAVs            = 8
	MaxSamplers        = 6
	MaxConstantBuffers = 3
)

// Special constant-buffer semantic names. A constant buffer whose
// semantic matches one of these is bound through the fixed root CBV
// slots rather than a descriptor table (spec §6, §4.6 root
// signature layout slots 0..2).
const (
	// Shader is per-shading-state data (material/pass constants).
	Shader = "Shader"
	// Instance is per-object data.
	Instance = "Instance"
	// Global is per-frame data.
	Global = "Global"
)

// Member describes one field of a constant buffer, as reported by
// reflection.
type Member struct {
	Name       string
	OffsetBytes int
	SizeBytes   int
}

// ConstantBuffer describes one constant-buffer resource bound by a
// program.
type ConstantBuffer struct {
	SemanticName string
	BindPoint    int
	BindCount    int
	SizeBytes    int
	Members      []Member
}

// ResourceBinding describes one texture, sampler or UAV resource
// bound by a program. SemanticName is how device/recorder code looks
// up the binding by name (spec §7 "invalid-binding": an unknown
// semantic name is a soft failure, not an error from this package).
type ResourceBinding struct {
	SemanticName string
	BindPoint    int
	BindCount    int
}

// Program is the reflection contract emitted for one compiled
// stage's shader: the raw byte-code plus every resource it binds.
type Program struct {
	Stage driver.ShaderStage
	Code  []byte

	ConstantBuffers []ConstantBuffer
	Textures        []ResourceBinding
	Samplers        []ResourceBinding
	UAVs            []ResourceBinding
}

// Validate reports whether p respects the reflection contract's
// limits (spec §6). Programs exceeding them are a front-end
// collaborator bug, not a condition this module recovers from —
// callers should treat a non-nil error as fatal for the shader in
// question (spec §7 "shader-compile-error").
func (p *Program) Validate() error {
	if len(p.ConstantBuffers) > MaxConstantBuffers {
		return fmt.Errorf("shader: too many constant buffers (%d > %d)", len(p.ConstantBuffers), MaxConstantBuffers)
	}
	if len(p.Textures) > MaxTextures {
		return fmt.Errorf("shader: too many textures (%d > %d)", len(p.Textures), MaxTextures)
	}
	if len(p.UAVs) > MaxUAVs {
		return fmt.Errorf("shader: too many UAVs (%d > %d)", len(p.UAVs), MaxUAVs)
	}
	if len(p.Samplers) > MaxSamplers {
		return fmt.Errorf("shader: too many samplers (%d > %d)", len(p.Samplers), MaxSamplers)
	}
	return nil
}

// ConstantBufferBySemantic returns the constant buffer in p whose
// SemanticName matches name, or nil if none does.
func (p *Program) ConstantBufferBySemantic(name string) *ConstantBuffer {
	for i := range p.ConstantBuffers {
		if p.ConstantBuffers[i].SemanticName == name {
			return &p.ConstantBuffers[i]
		}
	}
	return nil
}

// TextureBySemantic returns the texture binding in p whose
// SemanticName matches name, or nil if none does (spec §7
// "invalid-binding": callers treat a nil result as a soft failure to
// be logged and ignored, not as an error from this package).
func (p *Program) TextureBySemantic(name string) *ResourceBinding {
	for i := range p.Textures {
		if p.Textures[i].SemanticName == name {
			return &p.Textures[i]
		}
	}
	return nil
}

// UAVBySemantic returns the UAV binding in p whose SemanticName
// matches name, or nil if none does.
func (p *Program) UAVBySemantic(name string) *ResourceBinding {
	for i := range p.UAVs {
		if p.UAVs[i].SemanticName == name {
			return &p.UAVs[i]
		}
	}
	return nil
}
