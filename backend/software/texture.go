// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"encoding/binary"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/gogpu/gfx"
)

// texture is CPU texel storage in the packed layout of its format.
type texture struct {
	info gfx.TextureInfo
	pix  []byte
}

func newTexture(info *gfx.TextureInfo) *texture {
	t := &texture{info: *info}
	t.info.Bytes = nil
	t.pix = make([]byte, info.RowBytes()*info.Height)
	if info.Bytes != nil {
		copy(t.pix, info.Bytes)
	}
	return t
}

func (t *texture) stride() int { return t.info.RowBytes() }

func (t *texture) bounds() image.Rectangle {
	return image.Rect(0, 0, t.info.Width, t.info.Height)
}

// image returns a view sharing t.pix, or nil when the format has no
// image package equivalent.
func (t *texture) image() draw.Image {
	switch t.info.Format {
	case gfx.TextureFormatSRGBA8:
		return &image.RGBA{Pix: t.pix, Stride: t.stride(), Rect: t.bounds()}
	case gfx.TextureFormatR8:
		return &image.Gray{Pix: t.pix, Stride: t.stride(), Rect: t.bounds()}
	default:
		return nil
	}
}

func (t *texture) resize(width, height int) {
	if width == t.info.Width && height == t.info.Height {
		return
	}
	t.info.Width, t.info.Height = width, height
	t.pix = make([]byte, t.info.RowBytes()*height)
}

// clear fills r with c.
func (t *texture) clear(c gfx.Color, r image.Rectangle) {
	r = r.Intersect(t.bounds())
	if r.Empty() {
		return
	}
	rgba := c.RGBA8()
	switch t.info.Format {
	case gfx.TextureFormatSRGBA8:
		src := image.NewUniform(color.RGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]})
		draw.Draw(t.image(), r, src, image.Point{}, draw.Src)
	case gfx.TextureFormatR8:
		draw.Draw(t.image(), r, image.NewUniform(color.Gray{Y: rgba[0]}), image.Point{}, draw.Src)
	case gfx.TextureFormatRGBA32:
		var texel [16]byte
		for i, v := range [4]float32{c.R, c.G, c.B, c.A} {
			binary.LittleEndian.PutUint32(texel[i*4:], math.Float32bits(v))
		}
		t.fill(r, texel[:])
	case gfx.TextureFormatDepth16:
		t.clearDepth(c.R, r)
	}
}

func (t *texture) clearDepth(d float32, r image.Rectangle) {
	d = min(max(d, 0), 1)
	var texel [2]byte
	binary.LittleEndian.PutUint16(texel[:], uint16(d*math.MaxUint16+0.5))
	t.fill(r.Intersect(t.bounds()), texel[:])
}

func (t *texture) fill(r image.Rectangle, texel []byte) {
	bpp := len(texel)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := t.pix[y*t.stride()+r.Min.X*bpp : y*t.stride()+r.Max.X*bpp]
		for x := 0; x < len(row); x += bpp {
			copy(row[x:], texel)
		}
	}
}

// write copies a validated update into t.
func (t *texture) write(u *gfx.TextureUpdate) {
	dst := image.Rect(u.X, u.Y, u.X+u.Width, u.Y+u.Height)
	rowBytes := u.Width * u.Format.BytesPerPixel()

	switch t.info.Format {
	case gfx.TextureFormatSRGBA8:
		src := &image.RGBA{Pix: u.Bytes, Stride: rowBytes, Rect: image.Rect(0, 0, u.Width, u.Height)}
		draw.Draw(t.image(), dst, src, image.Point{}, draw.Src)
	case gfx.TextureFormatR8:
		src := &image.Gray{Pix: u.Bytes, Stride: rowBytes, Rect: image.Rect(0, 0, u.Width, u.Height)}
		draw.Draw(t.image(), dst, src, image.Point{}, draw.Src)
	default:
		bpp := t.info.Format.BytesPerPixel()
		for row := range u.Height {
			off := (u.Y+row)*t.stride() + u.X*bpp
			copy(t.pix[off:off+rowBytes], u.Bytes[row*rowBytes:])
		}
	}
}

// read copies a validated region of t into out, tightly packed.
func (t *texture) read(r *gfx.TextureRead, out []byte) {
	bpp := t.info.Format.BytesPerPixel()
	rowBytes := r.Width * bpp
	for row := range r.Height {
		off := (r.Y+row)*t.stride() + r.X*bpp
		copy(out[row*rowBytes:(row+1)*rowBytes], t.pix[off:off+rowBytes])
	}
}

// rgba returns a copy of t as an RGBA image. Non-color formats are
// expanded to gray.
func (t *texture) rgba() *image.RGBA {
	out := image.NewRGBA(t.bounds())
	if img := t.image(); img != nil {
		draw.Draw(out, out.Bounds(), img, image.Point{}, draw.Src)
		return out
	}
	bpp := t.info.Format.BytesPerPixel()
	for y := range t.info.Height {
		for x := range t.info.Width {
			off := y*t.stride() + x*bpp
			var c color.RGBA
			switch t.info.Format {
			case gfx.TextureFormatRGBA32:
				c = color.RGBA{
					R: unitByte(t.pix[off:]), G: unitByte(t.pix[off+4:]),
					B: unitByte(t.pix[off+8:]), A: unitByte(t.pix[off+12:]),
				}
			case gfx.TextureFormatDepth16:
				v := uint8(binary.LittleEndian.Uint16(t.pix[off:]) >> 8)
				c = color.RGBA{R: v, G: v, B: v, A: 0xff}
			}
			out.SetRGBA(x, y, c)
		}
	}
	return out
}

func unitByte(b []byte) uint8 {
	return gfx.Color{R: math.Float32frombits(binary.LittleEndian.Uint32(b))}.RGBA8()[0]
}
