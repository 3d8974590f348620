// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package fake implements an in-memory driver.Driver backend with no
// real GPU behind it. It exists so that every other package in this
// module can be tested without a real D3D12-class device available —
// the teacher's own driver/vk backend requires a real Vulkan device
// and so cannot run headless either; this package is the legitimate
// software substitute for that role in this module's test suite.
//
// Resources are plain Go byte slices, descriptor heaps are plain
// tables, and command lists record the calls made against them
// (exposed via Counters) so tests can assert on redundant-set
// elision performed by package recorder.
package fake

import (
	"sync"

	"github.com/gviegas/scene/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver is the fake driver.Driver implementation.
type Driver struct {
	mu  sync.Mutex
	dev *Device
}

// Name implements driver.Driver.
func (d *Driver) Name() string { return "fake" }

// Open implements driver.Driver.
func (d *Driver) Open() (driver.Device, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		d.dev = newDevice()
	}
	return d.dev, nil
}

// Close implements driver.Driver.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dev = nil
}

// Device is the fake driver.Device implementation.
type Device struct {
	queue *Queue

	mu        sync.Mutex
	nextResID uint64
	descIncr  [driver.NumDescHeapTypes]uint32
}

func newDevice() *Device {
	d := &Device{queue: &Queue{}}
	// Arbitrary but distinct increment sizes, mirroring real devices
	// reporting different descriptor sizes per heap type.
	d.descIncr[driver.DescHeapCBVSRVUAV] = 32
	d.descIncr[driver.DescHeapSampler] = 16
	d.descIncr[driver.DescHeapRTV] = 64
	d.descIncr[driver.DescHeapDSV] = 64
	return d
}

// GraphicsQueue implements driver.Device.
func (d *Device) GraphicsQueue() driver.GraphicsQueue { return d.queue }

// DescriptorIncrementSize implements driver.Device.
func (d *Device) DescriptorIncrementSize(t driver.DescHeapType) uint32 {
	return d.descIncr[t]
}

// ResourceAllocationInfo implements driver.Device.
func (d *Device) ResourceAllocationInfo(desc driver.ResourceDesc) driver.AllocationInfo {
	size := resourceByteSize(desc)
	align := uint64(65536)
	if desc.Dimension == 0 {
		align = 256
	}
	return driver.AllocationInfo{Size: alignUp(size, align), Alignment: align}
}

func resourceByteSize(desc driver.ResourceDesc) uint64 {
	if desc.Dimension == 0 {
		return uint64(desc.Size.Width)
	}
	layers := desc.ArrayLayers
	if layers < 1 {
		layers = 1
	}
	bpp := uint64(desc.Format.Bytes())
	if bpp == 0 {
		bpp = 4
	}
	w, h := uint64(desc.Size.Width), uint64(desc.Size.Height)
	var total uint64
	for mip := 0; mip < max(desc.MipLevels, 1); mip++ {
		mw, mh := w>>uint(mip), h>>uint(mip)
		if mw == 0 {
			mw = 1
		}
		if mh == 0 {
			mh = 1
		}
		total += mw * mh * bpp
	}
	return total * uint64(layers)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}

// Wait implements driver.Device.
func (d *Device) Wait() error {
	d.queue.mu.Lock()
	defer d.queue.mu.Unlock()
	d.queue.fenceVal = d.queue.lastSignal
	return nil
}

func (d *Device) newResID() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextResID++
	return d.nextResID
}
