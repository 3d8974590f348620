// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package framegraph

import (
	"fmt"

	"github.com/gviegas/scene/descriptor"
	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/recorder"
)

// RealizedTexture is the resolved backing resource and views for a
// texture resource id, valid for the duration of one Execute call
// (spec §4.8 "get_transient(id) returns the underlying device
// resource pointer").
type RealizedTexture struct {
	Resource      driver.Resource
	SRV, RTV, DSV *driver.CPUHandle
}

// RealizedBuffer is the resolved backing resource and views for a
// buffer resource id.
type RealizedBuffer struct {
	Resource driver.Resource
	SRV, UAV *driver.CPUHandle
}

func handleOf(s *descriptor.CPUSlot) *driver.CPUHandle {
	if s == nil {
		return nil
	}
	h := s.Handle()
	return &h
}

// Context is passed to Pass.Execute, scoped to the single pass it was
// built for (spec §4.8 "get_transient(id) must only be called with an
// id present in the calling pass's declared input or output set").
type Context struct {
	g      *Graph
	rec    *recorder.Recorder
	pass   int
	scene  any
	camera any
}

// Recorder returns the command-list recorder the pass records into.
func (c *Context) Recorder() *recorder.Recorder { return c.rec }

// Scene returns the scene value passed to Execute, for a pass that
// needs to walk scene data to record draws (spec §4.8
// "frame_graph.execute(recorder, scene, camera)"). Its concrete type
// is an external collaborator (spec §1), opaque to framegraph.
func (c *Context) Scene() any { return c.scene }

// Camera returns the camera value passed to Execute.
func (c *Context) Camera() any { return c.camera }

func (c *Context) declared(id ResourceID) bool {
	for _, r := range c.g.passReads[c.pass] {
		if r == id {
			return true
		}
	}
	for _, w := range c.g.passWrites[c.pass] {
		if w == id {
			return true
		}
	}
	return false
}

// Texture resolves id to its backing resource and views. It panics if
// id was not declared by the calling pass, or if it does not name a
// texture — both are programming errors, not run-time conditions.
func (c *Context) Texture(id ResourceID) *RealizedTexture {
	if !c.declared(id) {
		panic(fmt.Sprintf("framegraph: pass %q accessed undeclared resource %q", c.g.passes[c.pass].Name(), Name(id)))
	}
	decl := c.g.descTable[id]
	switch decl.kind {
	case KindTexture:
		t := c.g.realizedTex[id]
		return &RealizedTexture{Resource: t.resource, SRV: handleOf(t.srv), RTV: handleOf(t.rtv), DSV: handleOf(t.dsv)}
	case KindPersistent:
		return &RealizedTexture{Resource: decl.ext.Resource, SRV: decl.ext.SRV, RTV: decl.ext.RTV, DSV: decl.ext.DSV}
	default:
		panic(fmt.Sprintf("framegraph: resource %q is not a texture", Name(id)))
	}
}

// Buffer resolves id to its backing resource and views, with the same
// declared-set and tagged-union rules as Texture.
func (c *Context) Buffer(id ResourceID) *RealizedBuffer {
	if !c.declared(id) {
		panic(fmt.Sprintf("framegraph: pass %q accessed undeclared resource %q", c.g.passes[c.pass].Name(), Name(id)))
	}
	decl := c.g.descTable[id]
	switch decl.kind {
	case KindBuffer:
		b := c.g.realizedBuf[id]
		return &RealizedBuffer{Resource: b.resource, SRV: handleOf(b.srv), UAV: handleOf(b.uav)}
	case KindPersistent:
		return &RealizedBuffer{Resource: decl.ext.Resource, SRV: decl.ext.SRV, UAV: decl.ext.UAV}
	default:
		panic(fmt.Sprintf("framegraph: resource %q is not a buffer", Name(id)))
	}
}

func (g *Graph) viewFor(id ResourceID) (res driver.Resource, rtv, dsv *driver.CPUHandle) {
	decl := g.descTable[id]
	switch decl.kind {
	case KindTexture:
		t := g.realizedTex[id]
		return t.resource, handleOf(t.rtv), handleOf(t.dsv)
	case KindPersistent:
		return decl.ext.Resource, decl.ext.RTV, decl.ext.DSV
	default:
		return nil, nil, nil
	}
}

// Execute runs every pass in compiled order (spec §4.8 "Execute"): for
// a graphics pass, it first clears and binds the pass's outputs,
// clearing only those whose lifetime begins at this pass (first use
// clears); it then invokes the pass itself. No automatic state
// transitions happen between passes beyond those the recorder inserts
// on access.
func (g *Graph) Execute(rec *recorder.Recorder, scene, camera any) error {
	for pos, i := range g.order {
		p := g.passes[i]

		if p.Kind() == GraphicsPass {
			var rts []recorder.RenderTarget
			var ds *recorder.RenderTarget
			for _, id := range g.passWrites[i] {
				res, rtv, dsv := g.viewFor(id)
				first := g.lifetime[id][0] == pos
				if rtv != nil {
					if first {
						rec.ClearRenderTarget(res, *rtv)
					}
					rts = append(rts, recorder.RenderTarget{Resource: res, View: *rtv})
				}
				if dsv != nil {
					if first {
						rec.ClearDepthStencil(res, *dsv)
					}
					ds = &recorder.RenderTarget{Resource: res, View: *dsv}
				}
			}
			if len(rts) > 0 || ds != nil {
				rec.SetRenderTarget(rts, ds)
			}
		}

		ctx := &Context{g: g, rec: rec, pass: i, scene: scene, camera: camera}
		if err := p.Execute(ctx); err != nil {
			return fmt.Errorf("framegraph: pass %q: %w", p.Name(), err)
		}
	}
	return nil
}
