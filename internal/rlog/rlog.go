// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package rlog is the renderer's single logging sink. Most of the core
// returns errors rather than logging (see the package-level error
// handling commentary in each package); rlog exists for the few cases
// spec'd as soft failures that must be surfaced to a developer without
// aborting the frame (e.g., binding a resource to an undeclared shader
// semantic).
package rlog

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// std is the process-wide logger. It is created at package
// initialization, and writes through Warnf and Errorf are serialized
// by mu, so it is safe for concurrent use, although in practice only the
// render thread writes to it (see spec §5).
var std = log.New(os.Stderr, "render: ", log.Ltime|log.Lmicroseconds)

var mu sync.Mutex

// Warnf logs a soft-failure condition: one the caller can safely
// ignore and continue (e.g., invalid-binding, §7).
func Warnf(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	std.Output(2, "WARN "+fmt.Sprintf(format, args...))
}

// Errorf logs a condition the caller is about to turn into a
// terminated frame (e.g., device-removed surfacing to the scheduler).
func Errorf(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	std.Output(2, "ERROR "+fmt.Sprintf(format, args...))
}
