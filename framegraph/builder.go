// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package framegraph

import "fmt"

// Builder collects one pass's input/output declarations during Setup
// (spec §4.8 "each pass declares inputs (read_resource(id)) and
// outputs (write_transient_texture / write_transient_buffer /
// write_persistent_resource)").
type Builder struct {
	g    *Graph
	pass int
	err  error

	reads, writes         map[ResourceID]bool
	readOrder, writeOrder []ResourceID
}

func newBuilder(g *Graph, pass int) *Builder {
	return &Builder{g: g, pass: pass, reads: map[ResourceID]bool{}, writes: map[ResourceID]bool{}}
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) duplicate(id ResourceID) bool {
	return b.reads[id] || b.writes[id]
}

// ReadResource declares id as an input of the pass being set up (spec
// §4.8 "read_resource(id)").
func (b *Builder) ReadResource(id ResourceID) {
	if b.duplicate(id) {
		b.fail(fmt.Errorf("framegraph: pass %q declares %q more than once", b.g.passes[b.pass].Name(), Name(id)))
		return
	}
	b.reads[id] = true
	b.readOrder = append(b.readOrder, id)
}

func (b *Builder) write(id ResourceID, decl resourceDecl) {
	if b.duplicate(id) {
		b.fail(fmt.Errorf("framegraph: pass %q declares %q more than once", b.g.passes[b.pass].Name(), Name(id)))
		return
	}
	if prev, ok := b.g.descTable[id]; ok && !prev.equal(decl) {
		b.fail(fmt.Errorf("framegraph: resource %q redeclared with conflicting parameters", Name(id)))
		return
	}
	b.g.descTable[id] = decl
	if _, ok := b.g.writerOf[id]; !ok {
		b.g.writerOf[id] = b.pass
	}
	b.writes[id] = true
	b.writeOrder = append(b.writeOrder, id)
}

// WriteTransientTexture declares id as a transient-texture output
// (spec §4.8 "write_transient_texture").
func (b *Builder) WriteTransientTexture(id ResourceID, desc TextureDesc) {
	b.write(id, resourceDecl{kind: KindTexture, tex: desc})
}

// WriteTransientBuffer declares id as a transient-buffer output (spec
// §4.8 "write_transient_buffer").
func (b *Builder) WriteTransientBuffer(id ResourceID, desc BufferDesc) {
	b.write(id, resourceDecl{kind: KindBuffer, buf: desc})
}

// WritePersistentResource declares id as an externally owned output
// (spec §4.8 "write_persistent_resource").
func (b *Builder) WritePersistentResource(id ResourceID, res PersistentResource) {
	b.write(id, resourceDecl{kind: KindPersistent, ext: res})
}
