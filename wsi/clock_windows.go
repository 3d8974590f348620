// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import "golang.org/x/sys/windows"

var perfFreq = func() int64 {
	var f int64
	if err := windows.QueryPerformanceFrequency(&f); err != nil || f == 0 {
		return 1
	}
	return f
}()

// monotonicSeconds reads QueryPerformanceCounter and scales it by
// QueryPerformanceFrequency into fractional seconds.
func monotonicSeconds() float64 {
	var c int64
	if err := windows.QueryPerformanceCounter(&c); err != nil {
		return 0
	}
	return float64(c) / float64(perfFreq)
}
