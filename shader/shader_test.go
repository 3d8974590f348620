// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package shader_test

import (
	"testing"

	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/shader"
)

func TestValidateLimits(t *testing.T) {
	mk := func(nCB, nTex, nUAV, nSamp int) *shader.Program {
		p := &shader.Program{Stage: driver.StagePixel}
		for i := 0; i < nCB; i++ {
			p.ConstantBuffers = append(p.ConstantBuffers, shader.ConstantBuffer{SemanticName: "c"})
		}
		for i := 0; i < nTex; i++ {
			p.Textures = append(p.Textures, shader.ResourceBinding{SemanticName: "t"})
		}
		for i := 0; i < nUAV; i++ {
			p.UAVs = append(p.UAVs, shader.ResourceBinding{SemanticName: "u"})
		}
		for i := 0; i < nSamp; i++ {
			p.Samplers = append(p.Samplers, shader.ResourceBinding{SemanticName: "s"})
		}
		return p
	}
	cases := []struct {
		name    string
		p       *shader.Program
		wantErr bool
	}{
		{"within limits", mk(3, 8, 8, 6), false},
		{"too many constant buffers", mk(4, 0, 0, 0), true},
		{"too many textures", mk(0, 9, 0, 0), true},
		{"too many uavs", mk(0, 0, 9, 0), true},
		{"too many samplers", mk(0, 0, 0, 7), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.p.Validate()
			if (err != nil) != c.wantErr {
				t.Errorf("Validate: have err=%v, want err!=nil=%v", err, c.wantErr)
			}
		})
	}
}

func TestSemanticLookup(t *testing.T) {
	p := &shader.Program{
		ConstantBuffers: []shader.ConstantBuffer{
			{SemanticName: shader.Global, BindPoint: 0},
			{SemanticName: shader.Instance, BindPoint: 1},
			{SemanticName: shader.Shader, BindPoint: 2},
		},
		Textures: []shader.ResourceBinding{{SemanticName: "BaseColor", BindPoint: 0}},
		UAVs:     []shader.ResourceBinding{{SemanticName: "Output", BindPoint: 0}},
	}
	if cb := p.ConstantBufferBySemantic(shader.Instance); cb == nil || cb.BindPoint != 1 {
		t.Error("ConstantBufferBySemantic: did not find Instance buffer")
	}
	if cb := p.ConstantBufferBySemantic("Nonexistent"); cb != nil {
		t.Error("ConstantBufferBySemantic: expected nil for unknown semantic")
	}
	if tex := p.TextureBySemantic("BaseColor"); tex == nil {
		t.Error("TextureBySemantic: did not find BaseColor")
	}
	if u := p.UAVBySemantic("Output"); u == nil {
		t.Error("UAVBySemantic: did not find Output")
	}
	if u := p.UAVBySemantic("Missing"); u != nil {
		t.Error("UAVBySemantic: expected nil for unknown semantic")
	}
}
