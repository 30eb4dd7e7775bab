// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"fmt"
	"slices"
)

// BlendFactor scales a source or destination color in blending.
type BlendFactor uint8

// Blend factors.
const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrc
	BlendFactorOneMinusSrc
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
	BlendFactorDst
	BlendFactorOneMinusDst
	BlendFactorDstAlpha
	BlendFactorOneMinusDstAlpha
)

// BlendOperation combines the scaled source and destination.
type BlendOperation uint8

// Blend operations.
const (
	BlendOperationAdd BlendOperation = iota
	BlendOperationSubtract
	BlendOperationReverseSubtract
	BlendOperationMin
	BlendOperationMax
)

// BlendMode is one blend equation.
type BlendMode struct {
	Src BlendFactor
	Dst BlendFactor
	Op  BlendOperation
}

// Common blend modes for premultiplied colors.
var (
	BlendNormal   = BlendMode{Src: BlendFactorOne, Dst: BlendFactorOneMinusSrcAlpha, Op: BlendOperationAdd}
	BlendAdd      = BlendMode{Src: BlendFactorOne, Dst: BlendFactorOne, Op: BlendOperationAdd}
	BlendMultiply = BlendMode{Src: BlendFactorDst, Dst: BlendFactorOneMinusSrcAlpha, Op: BlendOperationAdd}
)

// CullMode selects which triangle faces are discarded.
type CullMode uint8

// Cull modes.
const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// String returns the mode name.
func (m CullMode) String() string {
	switch m {
	case CullNone:
		return "None"
	case CullFront:
		return "Front"
	case CullBack:
		return "Back"
	default:
		return fmt.Sprintf("CullMode(%d)", uint8(m))
	}
}

// CompareMode is a depth comparison function.
type CompareMode uint8

// Compare modes. The zero value always passes.
const (
	CompareAlways CompareMode = iota
	CompareNever
	CompareLess
	CompareLessEqual
	CompareEqual
	CompareGreaterEqual
	CompareGreater
	CompareNotEqual
)

// DepthStencil configures depth testing.
type DepthStencil struct {
	Write   bool
	Compare CompareMode
}

// ColorMask selects which channels a pipeline writes.
type ColorMask uint8

// Color mask bits.
const (
	ColorMaskRed ColorMask = 1 << iota
	ColorMaskGreen
	ColorMaskBlue
	ColorMaskAlpha

	ColorMaskNone ColorMask = 0
	ColorMaskAll            = ColorMaskRed | ColorMaskGreen | ColorMaskBlue | ColorMaskAlpha
)

// PipelineOptions is the fixed-function state of a pipeline.
//
// The zero value has blending off, no culling, no depth test and a
// ColorMask of ColorMaskNone. Use DefaultPipelineOptions for a pipeline that
// writes every channel.
type PipelineOptions struct {
	// ColorBlend and AlphaBlend enable blending when non-nil.
	ColorBlend *BlendMode
	AlphaBlend *BlendMode

	CullMode     CullMode
	DepthStencil *DepthStencil
	ColorMask    ColorMask

	// Uniforms lists the uniform buffer slots the shaders read, in binding
	// order. Textures lists the texture slots.
	Uniforms []uint32
	Textures []uint32
}

// DefaultPipelineOptions returns options with normal blending and all
// channels written.
func DefaultPipelineOptions() PipelineOptions {
	color, alpha := BlendNormal, BlendNormal
	return PipelineOptions{ColorBlend: &color, AlphaBlend: &alpha, ColorMask: ColorMaskAll}
}

// Clone returns a deep copy of o.
func (o PipelineOptions) Clone() PipelineOptions {
	c := o
	if o.ColorBlend != nil {
		b := *o.ColorBlend
		c.ColorBlend = &b
	}
	if o.AlphaBlend != nil {
		b := *o.AlphaBlend
		c.AlphaBlend = &b
	}
	if o.DepthStencil != nil {
		d := *o.DepthStencil
		c.DepthStencil = &d
	}
	c.Uniforms = slices.Clone(o.Uniforms)
	c.Textures = slices.Clone(o.Textures)
	return c
}

// Pipeline is an owning handle to a compiled shader pipeline.
// See Buffer for the ownership rules.
type Pipeline struct {
	handle
	opts  PipelineOptions
	attrs []VertexAttr
}

func newPipeline(id uint64, attrs []VertexAttr, opts PipelineOptions, cleaner *ResourceCleaner) *Pipeline {
	p := &Pipeline{handle: newHandle(PipelineResource(id), cleaner), opts: opts.Clone(), attrs: slices.Clone(attrs)}
	track(p, &p.handle)
	return p
}

// Options returns a copy of the options the pipeline was created with.
func (p *Pipeline) Options() PipelineOptions { return p.opts.Clone() }

// Attrs returns a copy of the vertex attributes the pipeline consumes.
func (p *Pipeline) Attrs() []VertexAttr { return slices.Clone(p.attrs) }

// Clone returns a new owner of the same pipeline.
func (p *Pipeline) Clone() *Pipeline {
	c := &Pipeline{handle: p.clone(), opts: p.opts, attrs: p.attrs}
	track(c, &c.handle)
	return c
}

// Release drops this owner. Calling Release more than once is a no-op.
func (p *Pipeline) Release() { p.release() }

// Equal reports whether both handles refer to the same pipeline id.
func (p *Pipeline) Equal(other *Pipeline) bool {
	return other != nil && p.ID() == other.ID()
}
