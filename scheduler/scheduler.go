// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package scheduler implements the render scheduler of spec §4.9: the
// thin per-frame orchestration that begins the frame, commits global
// constants, binds them to the graphics and compute root signatures,
// runs the frame graph, and ends the frame.
package scheduler

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gviegas/scene/device"
	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/framegraph"
	"github.com/gviegas/scene/internal/mathx"
	"github.com/gviegas/scene/recorder"
	"github.com/gviegas/scene/wsi"
)

// Scene is the scene-graph collaborator (spec §1): the scheduler asks
// it for nothing but a skybox's irradiance coefficients, and passes it
// through to the frame graph unexamined so that a pass may walk it to
// record draws.
type Scene interface {
	// SkyboxSH returns the second-order spherical-harmonics irradiance
	// of the scene's skybox, or the zero value if the scene has none.
	SkyboxSH() mathx.SH9
}

// Camera is the camera collaborator (spec §1).
type Camera interface {
	// ViewMatrix returns the world-to-view transform.
	ViewMatrix() mathx.Mat4
	// InvViewMatrix returns the view-to-world transform.
	InvViewMatrix() mathx.Mat4
	ProjectionMatrix() mathx.Mat4
	InvProjectionMatrix() mathx.Mat4
	Position() mathx.Vec3
	// Ratio is the camera's aspect ratio (width / height).
	Ratio() float32
	Near() float32
	Far() float32
	Fov() float32
}

// Timer is the frame-timing collaborator (spec §1).
type Timer interface {
	DeltaTime() float32
	TotalTime() float32
}

// ConstantBufferGlobal is the per-frame constant buffer payload bound
// to the root signature's global slot (spec §4.9 step 2), laid out to
// match the shader's `Global` constant buffer (spec §6 "one named
// `Global` is per-frame").
type ConstantBufferGlobal struct {
	SkyboxSH mathx.SH9

	InvView       mathx.Mat4
	View          mathx.Mat4
	Projection    mathx.Mat4
	InvProjection mathx.Mat4

	CameraPos mathx.Vec3

	Ratio      float32
	Resolution mathx.Vec2
	Near       float32

	Far       float32
	Fov       float32
	DeltaTime float32
	Time      float32
}

// sizeofConstantBufferGlobal is the payload's byte size, computed by
// hand rather than via unsafe.Sizeof (no field is a pointer or has
// platform-dependent size, so this is exact and stable).
const sizeofConstantBufferGlobal = 9*16 + 4*64 + 16 + 16 + 16

func putVec4(b []byte, off int, v mathx.Vec4) {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[off+4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[off+8:], math.Float32bits(v.Z))
	binary.LittleEndian.PutUint32(b[off+12:], math.Float32bits(v.W))
}

func putMat4(b []byte, off int, m mathx.Mat4) {
	for i, f := range m {
		binary.LittleEndian.PutUint32(b[off+i*4:], math.Float32bits(f))
	}
}

func putF32(b []byte, off int, f float32) {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(f))
}

// Bytes serializes g in the layout sizeofConstantBufferGlobal
// describes, ready for ConstantBuffer.Commit.
func (g *ConstantBufferGlobal) Bytes() []byte {
	b := make([]byte, sizeofConstantBufferGlobal)
	off := 0
	for _, v := range g.SkyboxSH {
		putVec4(b, off, v)
		off += 16
	}
	putMat4(b, off, g.InvView)
	off += 64
	putMat4(b, off, g.View)
	off += 64
	putMat4(b, off, g.Projection)
	off += 64
	putMat4(b, off, g.InvProjection)
	off += 64

	putF32(b, off, g.CameraPos.X)
	putF32(b, off+4, g.CameraPos.Y)
	putF32(b, off+8, g.CameraPos.Z)
	off += 16

	putF32(b, off, g.Ratio)
	putF32(b, off+4, g.Resolution.X)
	putF32(b, off+8, g.Resolution.Y)
	putF32(b, off+12, g.Near)
	off += 16

	putF32(b, off, g.Far)
	putF32(b, off+4, g.Fov)
	putF32(b, off+8, g.DeltaTime)
	putF32(b, off+12, g.Time)

	return b
}

// Scheduler owns a command-list recorder, a frame graph instance, and
// the global constant buffer (spec §4.9 "Owns a command-list
// recorder, a frame graph instance, and a ConstantBufferGlobal
// buffer").
type Scheduler struct {
	dev    *device.Device
	rec    *recorder.Recorder
	graph  *framegraph.Graph
	global *device.ConstantBuffer
}

// New creates a Scheduler over dev, wiring rec and graph as the
// recorder and frame graph it will drive every frame. graph's passes
// must already be registered; New compiles it once (the original's
// constructor calls Setup then Compile exactly once, and ExecutePipeline
// only executes — enabling or disabling whole passes between frames
// calls for a fresh Scheduler or an explicit re-Compile by the
// caller).
func New(dev *device.Device, rec *recorder.Recorder, graph *framegraph.Graph) (*Scheduler, error) {
	global, err := dev.NewConstantBuffer(sizeofConstantBufferGlobal)
	if err != nil {
		return nil, fmt.Errorf("scheduler: creating global constant buffer: %w", err)
	}
	if err := graph.Compile(); err != nil {
		global.Destroy(dev)
		return nil, fmt.Errorf("scheduler: compiling frame graph: %w", err)
	}
	return &Scheduler{dev: dev, rec: rec, graph: graph, global: global}, nil
}

// ExecutePipeline runs one frame (spec §4.9 "execute_pipeline(scene,
// camera, timer)"): begin_frame, commit the global constants, bind
// them to both root signatures, run the frame graph, end_frame. When
// scene or camera is nil it commits no constants and does not run the
// frame graph. It returns the closed command list for the caller to
// submit via device.Device.EndFrame.
func (s *Scheduler) ExecutePipeline(viewport driver.Viewport, scissor driver.Rect, scene Scene, camera Camera, timer Timer) (driver.CmdList, error) {
	if err := s.rec.BeginFrame(viewport, scissor); err != nil {
		return nil, fmt.Errorf("scheduler: begin_frame: %w", err)
	}

	if scene != nil && camera != nil {
		global := ConstantBufferGlobal{
			SkyboxSH:      scene.SkyboxSH(),
			InvView:       camera.InvViewMatrix(),
			View:          camera.ViewMatrix(),
			Projection:    camera.ProjectionMatrix(),
			InvProjection: camera.InvProjectionMatrix(),
			CameraPos:     camera.Position(),
			Ratio:         camera.Ratio(),
			Resolution:    mathx.Vec2{X: float32(s.dev.Width()), Y: float32(s.dev.Height())},
			Near:          camera.Near(),
			Far:           camera.Far(),
			Fov:           camera.Fov(),
		}
		if timer != nil {
			global.DeltaTime = timer.DeltaTime()
			global.Time = timer.TotalTime()
		}

		frameIndex := s.dev.FrameIndex()
		s.global.Commit(frameIndex, global.Bytes())

		addr := s.global.GPUAddress(frameIndex)
		s.rec.SetGraphicsConstant(recorder.SlotGlobal, addr)
		s.rec.SetComputeConstant(recorder.SlotGlobal, addr)

		if err := s.graph.Execute(s.rec, scene, camera); err != nil {
			return nil, err
		}
	}

	return s.rec.EndFrame()
}

// Graph returns the frame graph the scheduler drives, so a caller may
// inspect its compiled order or re-Compile it after changing the
// registered pass set.
func (s *Scheduler) Graph() *framegraph.Graph { return s.graph }

// ViewportFor derives a full-surface Viewport and scissor Rect from a
// wsi.Window, for a caller driving ExecutePipeline against a live
// window surface rather than a fixed size.
func ViewportFor(w wsi.Window) (driver.Viewport, driver.Rect) {
	width, height := w.Width(), w.Height()
	viewport := driver.Viewport{Width: float32(width), Height: float32(height), MaxDepth: 1}
	scissor := driver.Rect{Right: width, Bottom: height}
	return viewport, scissor
}

// Destroy releases the scheduler's global constant buffer. The
// recorder and frame graph remain owned by the caller.
func (s *Scheduler) Destroy() { s.global.Destroy(s.dev) }
