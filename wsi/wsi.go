// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package wsi names the windowing/input collaborator the renderer
// core treats as external: the windowing/input layer itself is out of
// scope, so this package carries nothing beyond the interface a live
// OS window must satisfy for the render scheduler to size a frame
// against it.
package wsi

// Window is the windowing/input collaborator: something that owns a
// drawable surface and can report its current pixel dimensions.
type Window interface {
	Width() int
	Height() int
}
