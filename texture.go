// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"fmt"
	"math"
)

// TextureFormat is the texel encoding of a texture.
type TextureFormat uint8

// Texture formats.
const (
	// TextureFormatSRGBA8 is 8-bit RGBA in the sRGB color space.
	TextureFormatSRGBA8 TextureFormat = iota
	// TextureFormatRGBA32 is 32-bit float RGBA.
	TextureFormatRGBA32
	// TextureFormatR8 is a single 8-bit channel.
	TextureFormatR8
	// TextureFormatDepth16 is a 16-bit depth channel.
	TextureFormatDepth16
)

// String returns the format name.
func (f TextureFormat) String() string {
	switch f {
	case TextureFormatSRGBA8:
		return "SRGBA8"
	case TextureFormatRGBA32:
		return "RGBA32"
	case TextureFormatR8:
		return "R8"
	case TextureFormatDepth16:
		return "Depth16"
	default:
		return fmt.Sprintf("TextureFormat(%d)", uint8(f))
	}
}

// BytesPerPixel returns the size of one texel, or 0 for an unknown format.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case TextureFormatSRGBA8:
		return 4
	case TextureFormatRGBA32:
		return 16
	case TextureFormatR8:
		return 1
	case TextureFormatDepth16:
		return 2
	default:
		return 0
	}
}

// IsDepth reports whether f is a depth format.
func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatDepth16
}

func (f TextureFormat) valid() bool {
	return f <= TextureFormatDepth16
}

// TextureFilter selects texel sampling.
type TextureFilter uint8

// Texture filters.
const (
	TextureFilterLinear TextureFilter = iota
	TextureFilterNearest
)

// String returns the filter name.
func (f TextureFilter) String() string {
	switch f {
	case TextureFilterLinear:
		return "Linear"
	case TextureFilterNearest:
		return "Nearest"
	default:
		return fmt.Sprintf("TextureFilter(%d)", uint8(f))
	}
}

// TextureInfo describes a texture to create.
type TextureInfo struct {
	Width     int
	Height    int
	Format    TextureFormat
	MinFilter TextureFilter
	MagFilter TextureFilter

	// Bytes is the optional initial content, tightly packed rows of
	// Width*Format.BytesPerPixel() bytes. Nil leaves the texture zeroed.
	Bytes []byte

	// Depth requests a depth attachment when the texture is used as a
	// render target.
	Depth bool

	PremultipliedAlpha bool
}

// RowBytes returns the packed row length in bytes.
func (ti *TextureInfo) RowBytes() int {
	return ti.Width * ti.Format.BytesPerPixel()
}

// Validate checks dimensions, format and initial content length.
func (ti *TextureInfo) Validate() error {
	if ti.Width <= 0 || ti.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidTexture, ti.Width, ti.Height)
	}
	if !ti.Format.valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedTextureFormat, ti.Format)
	}
	if ti.Width > math.MaxInt/ti.Format.BytesPerPixel()/ti.Height {
		return fmt.Errorf("%w: size %dx%d %s overflows", ErrTextureTooLarge, ti.Width, ti.Height, ti.Format)
	}
	if ti.Bytes != nil && len(ti.Bytes) != ti.RowBytes()*ti.Height {
		return fmt.Errorf("%w: %d bytes for %dx%d %s", ErrInvalidTexture,
			len(ti.Bytes), ti.Width, ti.Height, ti.Format)
	}
	return nil
}

// TextureUpdate replaces a region of a texture.
type TextureUpdate struct {
	X, Y          int
	Width, Height int
	Format        TextureFormat
	Bytes         []byte
}

// TextureRead selects a region of a texture to copy out.
type TextureRead struct {
	X, Y          int
	Width, Height int
	Format        TextureFormat
}

// Len returns the number of bytes the region occupies in Format.
func (tr *TextureRead) Len() int {
	return tr.Width * tr.Height * tr.Format.BytesPerPixel()
}

func validateRegion(x, y, w, h, texW, texH int) error {
	if w <= 0 || h <= 0 || x < 0 || y < 0 || w > texW || x > texW-w || h > texH || y > texH-h {
		return fmt.Errorf("%w: %dx%d at (%d,%d) in %dx%d", ErrInvalidRegion, w, h, x, y, texW, texH)
	}
	return nil
}

// ValidateUpdate checks u against a texture described by info: the region
// must lie inside the texture, the format must match and Bytes must hold
// exactly the region.
func ValidateUpdate(info *TextureInfo, u *TextureUpdate) error {
	if err := validateRegion(u.X, u.Y, u.Width, u.Height, info.Width, info.Height); err != nil {
		return err
	}
	if u.Format != info.Format {
		return fmt.Errorf("%w: update %s, texture %s", ErrFormatMismatch, u.Format, info.Format)
	}
	if want := u.Width * u.Height * u.Format.BytesPerPixel(); len(u.Bytes) != want {
		return fmt.Errorf("%w: %d bytes, want %d", ErrInvalidRegion, len(u.Bytes), want)
	}
	return nil
}

// ValidateRead checks r against a texture described by info and the length
// of the destination buffer.
func ValidateRead(info *TextureInfo, r *TextureRead, outLen int) error {
	if err := validateRegion(r.X, r.Y, r.Width, r.Height, info.Width, info.Height); err != nil {
		return err
	}
	if r.Format != info.Format {
		return fmt.Errorf("%w: read %s, texture %s", ErrFormatMismatch, r.Format, info.Format)
	}
	if outLen < r.Len() {
		return fmt.Errorf("%w: destination holds %d bytes, want %d", ErrInvalidRegion, outLen, r.Len())
	}
	return nil
}

// Texture is an owning handle to a backend texture.
// See Buffer for the ownership rules.
type Texture struct {
	handle
	info TextureInfo
}

func newTexture(id uint64, info *TextureInfo, cleaner *ResourceCleaner) *Texture {
	t := &Texture{handle: newHandle(TextureResource(id), cleaner), info: *info}
	t.info.Bytes = nil
	track(t, &t.handle)
	return t
}

// Width returns the width in texels.
func (t *Texture) Width() int { return t.info.Width }

// Height returns the height in texels.
func (t *Texture) Height() int { return t.info.Height }

// Size returns width and height.
func (t *Texture) Size() (int, int) { return t.info.Width, t.info.Height }

// Format returns the texel format.
func (t *Texture) Format() TextureFormat { return t.info.Format }

// MinFilter returns the minification filter.
func (t *Texture) MinFilter() TextureFilter { return t.info.MinFilter }

// MagFilter returns the magnification filter.
func (t *Texture) MagFilter() TextureFilter { return t.info.MagFilter }

// Info returns the creation parameters without the initial content.
func (t *Texture) Info() TextureInfo { return t.info }

// Clone returns a new owner of the same texture.
func (t *Texture) Clone() *Texture {
	c := &Texture{handle: t.clone(), info: t.info}
	track(c, &c.handle)
	return c
}

// Release drops this owner. Calling Release more than once is a no-op.
func (t *Texture) Release() { t.release() }

// Equal reports whether both handles refer to the same texture id.
func (t *Texture) Equal(other *Texture) bool {
	return other != nil && t.ID() == other.ID()
}

// RenderTexture is an owning handle to an offscreen render target. It keeps
// its color texture alive until the render texture itself is released.
type RenderTexture struct {
	handle
	texture *Texture
}

// newRenderTexture takes ownership of tex.
func newRenderTexture(id uint64, tex *Texture, cleaner *ResourceCleaner) *RenderTexture {
	rt := &RenderTexture{handle: newHandle(RenderTextureResource(id), cleaner), texture: tex}
	rt.cell.onRelease = tex.Release
	track(rt, &rt.handle)
	return rt
}

// Texture returns the color texture. The returned handle is owned by the
// render texture; Clone it to keep the texture past the render texture.
func (rt *RenderTexture) Texture() *Texture { return rt.texture }

// Size returns the size of the color texture.
func (rt *RenderTexture) Size() (int, int) { return rt.texture.Size() }

// Clone returns a new owner of the same render texture.
func (rt *RenderTexture) Clone() *RenderTexture {
	c := &RenderTexture{handle: rt.clone(), texture: rt.texture}
	track(c, &c.handle)
	return c
}

// Release drops this owner. Calling Release more than once is a no-op.
func (rt *RenderTexture) Release() { rt.release() }

// Equal reports whether both handles refer to the same render texture id.
func (rt *RenderTexture) Equal(other *RenderTexture) bool {
	return other != nil && rt.ID() == other.ID()
}
