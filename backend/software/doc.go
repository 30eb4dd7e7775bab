// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software provides a CPU implementation of gfx.Backend.
//
// Buffers and textures live in Go memory. Render executes passes by clearing
// their targets and validating every draw against the bound pipeline and
// buffers; it does not rasterize triangles. The backend is useful for
// headless tooling, tests and as the fallback when no GPU is available.
//
// The backend registers itself as "software" on import:
//
//	import _ "github.com/gogpu/gfx/backend/software"
package software
