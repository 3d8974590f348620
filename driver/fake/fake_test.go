// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package fake_test

import (
	"testing"

	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/driver/fake"
)

func open(t *testing.T) driver.Device {
	t.Helper()
	var drv driver.Driver
	for _, d := range driver.Drivers() {
		if d.Name() == "fake" {
			drv = d
			break
		}
	}
	if drv == nil {
		t.Fatal("fake driver not registered")
	}
	dev, err := drv.Open()
	if err != nil {
		t.Fatal(err)
	}
	return dev
}

func TestOpenIsSingleton(t *testing.T) {
	dev1 := open(t)
	dev2 := open(t)
	if dev1 != dev2 {
		t.Error("Driver.Open: expected the same Device on repeated calls")
	}
}

func TestCommittedResourceRoundTrip(t *testing.T) {
	dev := open(t)
	desc := driver.ResourceDesc{
		Dimension:    0,
		Size:         driver.Dim3D{Width: 256},
		InitialState: driver.StateCopyDst,
	}
	res, err := dev.NewCommittedResource(driver.HeapUpload, desc)
	if err != nil {
		t.Fatal(err)
	}
	b := res.Map()
	if len(b) < 256 {
		t.Fatalf("Resource.Map: want len >= 256, have %d", len(b))
	}
	b[0] = 0xAB
	if res.Map()[0] != 0xAB {
		t.Error("Resource.Map: write did not persist")
	}
	if res.State() != driver.StateCopyDst {
		t.Error("Resource.State: unexpected initial state")
	}
	res.SetState(driver.StateGenericRead)
	if res.State() != driver.StateGenericRead {
		t.Error("Resource.SetState: state not updated")
	}
}

func TestCmdListCounters(t *testing.T) {
	dev := open(t)
	list, err := dev.NewCmdList()
	if err != nil {
		t.Fatal(err)
	}
	fl := list.(*fake.CmdList)
	list.IASetPrimitiveTopology(driver.TopologyTriangleList)
	list.IASetPrimitiveTopology(driver.TopologyTriangleList)
	if fl.Counters.IASetPrimitiveTopology != 2 {
		t.Errorf("CmdList.Counters.IASetPrimitiveTopology: want 2, have %d", fl.Counters.IASetPrimitiveTopology)
	}
	list.Reset()
	if fl.Counters.IASetPrimitiveTopology != 0 {
		t.Error("CmdList.Reset: counters not cleared")
	}
}

func TestFenceSignalWait(t *testing.T) {
	dev := open(t)
	fence, err := dev.NewFence(0)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.GraphicsQueue().Signal(fence, 5); err != nil {
		t.Fatal(err)
	}
	if fence.CompletedValue() != 5 {
		t.Errorf("Fence.CompletedValue: want 5, have %d", fence.CompletedValue())
	}
	if err := fence.Wait(5); err != nil {
		t.Fatal(err)
	}
}

func TestSwapChainPresentCycles(t *testing.T) {
	dev := open(t)
	sc, err := dev.NewSwapChain(3, driver.RGBA8un, 1920, 1080)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[int]bool{}
	for i := 0; i < sc.BackBufferCount(); i++ {
		seen[sc.CurrentBackBufferIndex()] = true
		sc.Present()
	}
	if len(seen) != 3 {
		t.Errorf("SwapChain.Present: expected to visit 3 distinct indices, saw %d", len(seen))
	}
}
