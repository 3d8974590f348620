// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package mathx carries the handful of plain numeric types that flow
// through constant buffer payloads (camera matrices, vectors, spherical
// harmonics coefficients). It is deliberately not a math library: it
// defines no arithmetic, only the memory layout the renderer agrees on
// with its shaders. Vector/matrix arithmetic is an external collaborator
// (scene math), out of scope for this module.
package mathx

// Vec2 is a 2-component float32 vector, used for unpadded pairs such
// as viewport resolution.
type Vec2 struct {
	X, Y float32
}

// Vec3 is a 3-component float32 vector, padded to 16 bytes to match
// HLSL's default constant buffer packing rule (a float3 occupies a
// full four-component slot).
type Vec3 struct {
	X, Y, Z, _ float32
}

// Vec4 is a 4-component float32 vector.
type Vec4 struct {
	X, Y, Z, W float32
}

// Mat4 is a column-major 4x4 float32 matrix, stored exactly as shaders
// expect to read it via a constant buffer view.
type Mat4 [16]float32

// SH9 packs the 9 coefficients of a second-order spherical harmonics
// basis, one per RGB channel, used for skybox irradiance.
type SH9 [9]Vec4
