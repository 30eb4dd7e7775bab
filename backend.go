// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import "fmt"

// NoTarget is the target of a Render call that draws to the default surface.
// Backends never issue id 0.
const NoTarget uint64 = 0

// Limits reports backend capabilities.
type Limits struct {
	MaxTextureSize   uint32
	MaxUniformBlocks uint32
}

// DefaultLimits returns limits every backend is expected to meet.
func DefaultLimits() Limits {
	return Limits{MaxTextureSize: 8192, MaxUniformBlocks: 12}
}

// CheckTexture reports ErrTextureTooLarge when a width x height texture
// exceeds l. A zero MaxTextureSize means no limit.
func (l Limits) CheckTexture(width, height int) error {
	if limit := int(l.MaxTextureSize); limit > 0 && (width > limit || height > limit) {
		return fmt.Errorf("%w: %dx%d, limit %d", ErrTextureTooLarge, width, height, limit)
	}
	return nil
}

// Backend is the contract a rendering API implements.
//
// Ids returned by the Create methods are opaque, non-zero and unique among
// live objects of the backend. Shipped backends never reuse an id.
//
// Lifecycle rules:
//   - A Create method that fails returns an error, allocates no id and has
//     no side effect.
//   - UpdateTexture and ReadPixels leave the resource untouched on error.
//   - Clean is the only point where objects are destroyed. An id passed to
//     Clean must not be used again.
//   - Render executes the commands in order. It reports failures through
//     Logger because a frame is not retried.
//
// A Backend is driven by one goroutine at a time.
type Backend interface {
	// APIName returns the rendering API, e.g. "software" or "vulkan".
	APIName() string

	Limits() Limits

	CreatePipeline(vertexSource, fragmentSource []byte, attrs []VertexAttr, opts PipelineOptions) (uint64, error)
	CreateVertexBuffer(attrs []VertexAttr, step VertexStepMode) (uint64, error)
	CreateIndexBuffer() (uint64, error)
	CreateUniformBuffer(slot uint32, name string) (uint64, error)

	// SetBufferData replaces the whole content of a buffer. Buffers grow to
	// fit; the data is copied.
	SetBufferData(id uint64, data []byte)

	// Render executes cmds on target, or on the default surface when target
	// is NoTarget.
	Render(cmds []Command, target uint64)

	// Clean destroys the objects named by resources.
	Clean(resources []Resource)

	SetSize(width, height int)
	SetDPI(scale float64)

	CreateTexture(info *TextureInfo) (uint64, error)

	// CreateRenderTexture creates a render target drawing into the existing
	// texture textureID. info repeats the texture description.
	CreateRenderTexture(textureID uint64, info *TextureInfo) (uint64, error)

	UpdateTexture(id uint64, update *TextureUpdate) error
	ReadPixels(id uint64, out []byte, read *TextureRead) error
}
