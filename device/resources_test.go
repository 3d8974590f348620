// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package device_test

import (
	"testing"

	"github.com/gviegas/scene/driver"
)

func TestVertexAndIndexBufferViews(t *testing.T) {
	d := newDevice(t)

	vb, err := d.NewVertexBuffer(1024, 20)
	if err != nil {
		t.Fatal(err)
	}
	defer vb.Destroy(d)
	if vb.View.StrideBytes != 20 {
		t.Errorf("VertexBuffer view stride = %d, want 20", vb.View.StrideBytes)
	}
	if vb.View.SizeBytes != 1024 {
		t.Errorf("VertexBuffer view size = %d, want 1024", vb.View.SizeBytes)
	}

	ib, err := d.NewIndexBuffer(512)
	if err != nil {
		t.Fatal(err)
	}
	defer ib.Destroy(d)
	if ib.View.Format != driver.Index32 {
		t.Error("IndexBuffer view must use the fixed 32-bit index format")
	}
}

func TestStructuredBufferHasSRVAndUAV(t *testing.T) {
	d := newDevice(t)
	sb, err := d.NewStructuredBuffer(64, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer sb.Destroy(d)
	if sb.SRV == nil || sb.UAV == nil {
		t.Fatal("StructuredBuffer must carry both an SRV and a UAV")
	}
	if sb.Resource().Desc().UnorderedAccess == false {
		t.Error("StructuredBuffer resource must be created with the unordered-access flag")
	}
}

func TestSamplerCreation(t *testing.T) {
	d := newDevice(t)
	s, err := d.NewSampler(driver.Sampling{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Destroy()
	if s.Handle().Heap == nil {
		t.Error("Sampler handle must reference a descriptor heap")
	}
}

func TestCubemapCreatesCubeSRVAndPerMipUAVs(t *testing.T) {
	d := newDevice(t)
	cm, err := d.NewCubemap(512, 3, driver.RGBA16f, true)
	if err != nil {
		t.Fatal(err)
	}
	defer cm.Destroy(d)
	if cm.CubeSRV == nil {
		t.Fatal("Cubemap must carry a cube SRV")
	}
	if len(cm.MipUAVs) != 3 {
		t.Errorf("Cubemap: want 3 per-mip UAVs, have %d", len(cm.MipUAVs))
	}
	if cm.Resource().Desc().ArrayLayers != 6 {
		t.Errorf("Cubemap backing resource must have 6 array layers, has %d", cm.Resource().Desc().ArrayLayers)
	}
}

func TestStructuredBufferDestroyIsDeferred(t *testing.T) {
	d := newDevice(t)
	sb, err := d.NewStructuredBuffer(4, 16)
	if err != nil {
		t.Fatal(err)
	}
	res := sb.Resource()
	sb.Destroy(d)
	// Placed allocations are queued for deferred release; advancing
	// FrameCount frames must not panic or otherwise disturb the
	// already-destroyed resource.
	for i := 0; i < d.FrameCount; i++ {
		d.BeginFrame()
		if err := d.EndFrame(nil); err != nil {
			t.Fatal(err)
		}
	}
	_ = res
}
