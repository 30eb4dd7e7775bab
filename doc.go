// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gfx is a backend-agnostic GPU resource core.
//
// # Overview
//
// gfx defines the Backend contract a rendering API implements and the
// owning handles through which applications use the objects a backend
// creates. Handles are reference counted: Clone adds an owner, Release drops
// one, and when the last owner of an id is gone the id is queued in a
// ResourceCleaner. The Device drains the cleaner and calls Backend.Clean,
// so every GPU object is destroyed exactly once, on the goroutine that
// drives the backend.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/gfx"
//		_ "github.com/gogpu/gfx/backend/software"
//	)
//
//	dev, err := gfx.OpenDefault()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Close()
//
//	rt, err := dev.CreateRenderTexture(gfx.TextureInfo{Width: 64, Height: 64})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer rt.Release()
//
//	enc := gfx.NewEncoder()
//	enc.BeginClear(gfx.White).End()
//	dev.RenderTo(rt, enc.Commands())
//
// # Backends
//
// Backends register themselves from init:
//   - software: CPU textures and buffers, always available
//   - wgpu: gogpu/wgpu HAL (Vulkan), excluded with the nogpu build tag
//
// Default picks wgpu when it can open a device and falls back to software.
//
// # Vertex Layouts
//
// VertexInfo describes a vertex buffer as an ordered list of attributes.
// Attributes are packed without padding; Stride and Offsets give the byte
// layout backends use.
//
// # Logging
//
// gfx is silent by default. SetLogger installs a log/slog logger that
// backends share.
package gfx
