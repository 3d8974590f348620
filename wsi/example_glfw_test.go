// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build demo

package wsi_test

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// This example opens an OS window with go-gl/glfw; wsi itself ships
// no window backend, only the Window interface such a window can
// satisfy. It is gated behind the demo build tag since it opens a
// real window and is not meant to run under go test by default.
func Example_glfw() {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		fmt.Println(err)
		return
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	win, err := glfw.CreateWindow(480, 360, "wsi demo", nil, nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer win.Destroy()

	for !win.ShouldClose() {
		glfw.PollEvents()
		break
	}
	fmt.Println("ok")
	// Output: ok
}
