// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package upload_test

import (
	"testing"

	"github.com/gviegas/scene/driver"
	"github.com/gviegas/scene/driver/fake"
	"github.com/gviegas/scene/upload"
)

func openDevice(t *testing.T) driver.Device {
	t.Helper()
	dev, err := (&fake.Driver{}).Open()
	if err != nil {
		t.Fatal(err)
	}
	return dev
}

func TestSmallAllocationsBumpWithinPage(t *testing.T) {
	dev := openDevice(t)
	r := upload.New(dev, 2)
	a, err := r.Allocate(64, 16)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Allocate(64, 16)
	if err != nil {
		t.Fatal(err)
	}
	if a.Resource != b.Resource {
		t.Error("Allocate: expected both small allocations to share a page")
	}
	if b.Offset != 64 {
		t.Errorf("Allocate: want second offset 64, have %d", b.Offset)
	}
}

func TestSmallAllocationRollsToNewPageOnOverflow(t *testing.T) {
	dev := openDevice(t)
	r := upload.New(dev, 1)
	first, err := r.Allocate(upload.SmallPageSize-16, 16)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Allocate(32, 16)
	if err != nil {
		t.Fatal(err)
	}
	if first.Resource == second.Resource {
		t.Error("Allocate: expected overflow to roll onto a new page")
	}
	if second.Offset != 0 {
		t.Errorf("Allocate: want offset 0 on fresh page, have %d", second.Offset)
	}
}

func TestLargeAllocationReusedAcrossFrames(t *testing.T) {
	dev := openDevice(t)
	r := upload.New(dev, 2)
	const size = upload.SmallPageSize * 4

	first, err := r.Allocate(size, 256)
	if err != nil {
		t.Fatal(err)
	}
	r.NextFrame()
	r.NextFrame() // back to the same pool slot
	second, err := r.Allocate(size, 256)
	if err != nil {
		t.Fatal(err)
	}
	if first.Resource != second.Resource {
		t.Error("Allocate: expected the large page to be reused once its pool slot recycled")
	}
}

func TestMappedWritePersists(t *testing.T) {
	dev := openDevice(t)
	r := upload.New(dev, 1)
	a, err := r.Allocate(16, 4)
	if err != nil {
		t.Fatal(err)
	}
	a.Mapped[0] = 0x7F
	if a.Resource.Map()[a.Offset] != 0x7F {
		t.Error("Allocate: Mapped slice did not alias the resource's mapped memory")
	}
}
