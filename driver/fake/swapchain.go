// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package fake

import "github.com/gviegas/scene/driver"

// SwapChain is the fake driver.SwapChain implementation: it owns N
// committed back-buffer resources and cycles through them on
// Present, with no real display behind it.
type SwapChain struct {
	buffers []driver.Resource
	cur     int
}

// NewSwapChain implements driver.Device.
func (d *Device) NewSwapChain(backBufferCount int, format driver.PixelFmt, width, height int) (driver.SwapChain, error) {
	sc := &SwapChain{buffers: make([]driver.Resource, backBufferCount)}
	desc := driver.ResourceDesc{
		Dimension:    2,
		Size:         driver.Dim3D{Width: width, Height: height, Depth: 1},
		MipLevels:    1,
		Format:       format,
		RenderTarget: true,
		InitialState: driver.StatePresent,
	}
	for i := range sc.buffers {
		res, err := d.NewCommittedResource(driver.HeapDefault, desc)
		if err != nil {
			return nil, err
		}
		sc.buffers[i] = res
	}
	return sc, nil
}

func (sc *SwapChain) Destroy()                         {}
func (sc *SwapChain) BackBufferCount() int             { return len(sc.buffers) }
func (sc *SwapChain) BackBuffer(i int) driver.Resource { return sc.buffers[i] }

func (sc *SwapChain) CurrentBackBuffer() driver.Resource { return sc.buffers[sc.cur] }
func (sc *SwapChain) CurrentBackBufferIndex() int        { return sc.cur }

func (sc *SwapChain) Present() error {
	sc.cur = (sc.cur + 1) % len(sc.buffers)
	return nil
}
