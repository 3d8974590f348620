// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build unix

package wsi

import "golang.org/x/sys/unix"

// monotonicSeconds reads CLOCK_MONOTONIC via clock_gettime.
func monotonicSeconds() float64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return float64(ts.Sec) + float64(ts.Nsec)/1e9
}
