// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

type buffer struct {
	kind  gfx.BufferKind
	attrs []gfx.VertexAttr
	step  gfx.VertexStepMode
	slot  uint32
	name  string

	buf  hal.Buffer
	cap  uint64 // allocated bytes
	size uint64 // bytes of valid data
}

func (buf *buffer) usage() gputypes.BufferUsage {
	switch buf.kind {
	case gfx.BufferIndex:
		return gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	case gfx.BufferUniform:
		return gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	default:
		return gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	}
}

func (buf *buffer) destroy(device hal.Device) {
	if buf.buf != nil {
		device.DestroyBuffer(buf.buf)
		buf.buf = nil
	}
	buf.cap, buf.size = 0, 0
}

// align4 rounds n up to the copy alignment of WriteBuffer.
func align4(n uint64) uint64 {
	return (n + 3) &^ 3
}

// upload writes data at offset 0, reallocating when the buffer is too small.
func (b *Backend) upload(id uint64, buf *buffer, data []byte) error {
	n := align4(uint64(len(data)))
	if buf.kind == gfx.BufferUniform {
		// Uniform bindings are sized in 16 byte steps.
		n = (n + 15) &^ 15
	}
	if n == 0 {
		buf.size = 0
		return nil
	}
	if n > buf.cap {
		hb, err := b.device.CreateBuffer(&hal.BufferDescriptor{
			Label: b.label(buf.kind.String(), id),
			Size:  n,
			Usage: buf.usage(),
		})
		if err != nil {
			return fmt.Errorf("create buffer: %w", err)
		}
		if buf.buf != nil {
			b.device.DestroyBuffer(buf.buf)
		}
		buf.buf, buf.cap = hb, n
	}
	if uint64(len(data)) != n {
		padded := make([]byte, n)
		copy(padded, data)
		data = padded
	}
	b.queue.WriteBuffer(buf.buf, 0, data)
	buf.size = uint64(len(data))
	return nil
}

type texture struct {
	info    gfx.TextureInfo
	format  gputypes.TextureFormat
	tex     hal.Texture
	view    hal.TextureView
	sampler hal.Sampler
	// state is the usage the texture was last transitioned to.
	state gputypes.TextureUsage
}

func (t *texture) destroy(device hal.Device) {
	if t.sampler != nil {
		device.DestroySampler(t.sampler)
		t.sampler = nil
	}
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

func (t *texture) extent() hal.Extent3D {
	return hal.Extent3D{Width: uint32(t.info.Width), Height: uint32(t.info.Height), DepthOrArrayLayers: 1}
}

func textureUsage(f gfx.TextureFormat) gputypes.TextureUsage {
	u := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst |
		gputypes.TextureUsageCopySrc | gputypes.TextureUsageRenderAttachment
	if f.IsDepth() {
		u &^= gputypes.TextureUsageTextureBinding
	}
	return u
}

// createTexture allocates the texture objects and uploads initial bytes.
// Nothing stays allocated on error.
func (b *Backend) createTexture(label string, info *gfx.TextureInfo) (*texture, error) {
	format, err := textureFormat(info.Format)
	if err != nil {
		return nil, err
	}
	t := &texture{info: *info, format: format}
	t.info.Bytes = nil
	if err := b.allocTexture(t, label); err != nil {
		t.destroy(b.device)
		return nil, err
	}
	if len(info.Bytes) > 0 {
		b.writeTexture(t, 0, 0, info.Width, info.Height, info.Bytes)
	}
	return t, nil
}

func (b *Backend) allocTexture(t *texture, label string) error {
	var err error
	t.tex, err = b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          t.extent(),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        t.format,
		Usage:         textureUsage(t.info.Format),
	})
	if err != nil {
		return fmt.Errorf("create texture: %w", err)
	}
	t.view, err = b.device.CreateTextureView(t.tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        t.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create texture view: %w", err)
	}
	if t.info.Format.IsDepth() {
		return nil
	}
	t.sampler, err = b.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        label + "_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filterMode(t.info.MagFilter),
		MinFilter:    filterMode(t.info.MinFilter),
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	return nil
}

func (b *Backend) writeTexture(t *texture, x, y, width, height int, data []byte) {
	b.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(x), Y: uint32(y)},
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(width * t.info.Format.BytesPerPixel()),
			RowsPerImage: uint32(height),
		},
		&hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
	)
}

// surfaceTexture returns the offscreen surface, allocating it on first use.
func (b *Backend) surfaceTexture() (*texture, error) {
	if b.surface != nil {
		return b.surface, nil
	}
	t, err := b.createTexture(b.opts.label+"_surface", &gfx.TextureInfo{
		Width:  b.width,
		Height: b.height,
		Format: gfx.TextureFormatSRGBA8,
	})
	if err != nil {
		return nil, err
	}
	b.surface = t
	return t, nil
}

// Surface returns the size of the default surface.
func (b *Backend) Surface() (width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

type renderTarget struct {
	textureID uint64
	depth     hal.Texture
	depthView hal.TextureView
}

func (rt *renderTarget) destroy(device hal.Device) {
	if rt.depthView != nil {
		device.DestroyTextureView(rt.depthView)
		rt.depthView = nil
	}
	if rt.depth != nil {
		device.DestroyTexture(rt.depth)
		rt.depth = nil
	}
}

func (b *Backend) createDepth(rt *renderTarget, label string, width, height int) error {
	format := b.opts.depthFormat
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create depth texture: %w", err)
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return fmt.Errorf("create depth view: %w", err)
	}
	rt.depth, rt.depthView = tex, view
	return nil
}
