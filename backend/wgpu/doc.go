// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements gfx.Backend on top of the gogpu/wgpu hardware
// abstraction layer.
//
// A Backend wraps an opened hal.Device and hal.Queue. It can be built from
// an existing device with New, from a host application through
// NewFromProvider, or standalone with Open, which brings up a Vulkan device.
// Importing the package registers Open under the name "wgpu":
//
//	import _ "github.com/gogpu/gfx/backend/wgpu"
//
//	dev, err := gfx.Open(gfx.BackendWGPU)
//
// # Shaders
//
// Pipeline sources are WGSL, compiled to SPIR-V with naga, or SPIR-V
// binaries. The vertex stage entry point is "vs_main" and the fragment
// stage entry point is "fs_main" unless WithEntryPoints says otherwise.
//
// # Bindings
//
// Every pipeline uses bind group 0. Uniform blocks listed in
// PipelineOptions.Uniforms take bindings 0..n-1 in list order. Each texture
// slot in PipelineOptions.Textures then takes two bindings, the texture view
// followed by its sampler.
//
// Vertex buffers are bound at consecutive vertex slots in the order of the
// BindBuffer commands. The vertex layout of a pipeline is derived from the
// buffers bound at draw time, so one pipeline serves interleaved and split
// vertex streams alike.
//
// # Surface
//
// Drawing to gfx.NoTarget renders into an offscreen surface texture sized by
// SetSize, unless a host view was attached with SetSurfaceView.
//
// Build with the nogpu tag to leave out Vulkan bring-up and registration.
package wgpu
