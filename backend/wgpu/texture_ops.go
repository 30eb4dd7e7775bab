// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the row alignment of texture to buffer copies.
const copyPitchAlignment = 256

// UpdateTexture replaces a region of a texture through the queue.
func (b *Backend) UpdateTexture(id uint64, u *gfx.TextureUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("%w: texture %d", gfx.ErrUnknownResource, id)
	}
	if err := gfx.ValidateUpdate(&t.info, u); err != nil {
		return err
	}
	b.writeTexture(t, u.X, u.Y, u.Width, u.Height, u.Bytes)
	return nil
}

// ReadPixels copies a region of a texture into out through a staging
// buffer and waits for the copy to finish.
func (b *Backend) ReadPixels(id uint64, out []byte, r *gfx.TextureRead) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("%w: texture %d", gfx.ErrUnknownResource, id)
	}
	if err := gfx.ValidateRead(&t.info, r, len(out)); err != nil {
		return err
	}
	return b.readback(t, r, out)
}

func (b *Backend) readback(t *texture, r *gfx.TextureRead, out []byte) error {
	rowBytes := uint32(r.Width * t.info.Format.BytesPerPixel())
	alignedRow := (rowBytes + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	h := uint32(r.Height)
	size := uint64(alignedRow) * uint64(h)

	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: b.opts.label + "_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: b.opts.label + "_readback"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(b.opts.label + "_readback"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rendered := t.state == gputypes.TextureUsageRenderAttachment
	if rendered {
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: t.tex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})
	}
	encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedRow, RowsPerImage: h},
		TextureBase: hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(r.X), Y: uint32(r.Y)},
		},
		Size: hal.Extent3D{Width: uint32(r.Width), Height: h, DepthOrArrayLayers: 1},
	}})
	if rendered {
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: t.tex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
	}
	if err := b.submit(encoder); err != nil {
		return err
	}

	data := make([]byte, size)
	if err := b.queue.ReadBuffer(staging, 0, data); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	unpad(out, data, int(rowBytes), int(alignedRow), int(h))
	return nil
}

// unpad copies rows of rowBytes out of src rows spaced pitch bytes apart.
func unpad(dst, src []byte, rowBytes, pitch, rows int) {
	if rowBytes == pitch {
		copy(dst, src[:rowBytes*rows])
		return
	}
	for y := 0; y < rows; y++ {
		copy(dst[y*rowBytes:(y+1)*rowBytes], src[y*pitch:y*pitch+rowBytes])
	}
}
