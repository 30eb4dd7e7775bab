// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gputypes"
)

// vertexFormat maps a gfx format to WebGPU. WebGPU has no single or
// three-component 8-bit formats; those are rejected.
func vertexFormat(f gfx.VertexFormat) (gputypes.VertexFormat, error) {
	switch f {
	case gfx.VertexFormatFloat32:
		return gputypes.VertexFormatFloat32, nil
	case gfx.VertexFormatFloat32x2:
		return gputypes.VertexFormatFloat32x2, nil
	case gfx.VertexFormatFloat32x3:
		return gputypes.VertexFormatFloat32x3, nil
	case gfx.VertexFormatFloat32x4:
		return gputypes.VertexFormatFloat32x4, nil
	case gfx.VertexFormatUInt8x2:
		return gputypes.VertexFormatUint8x2, nil
	case gfx.VertexFormatUInt8x2Norm:
		return gputypes.VertexFormatUnorm8x2, nil
	case gfx.VertexFormatUInt8x4:
		return gputypes.VertexFormatUint8x4, nil
	case gfx.VertexFormatUInt8x4Norm:
		return gputypes.VertexFormatUnorm8x4, nil
	default:
		return 0, fmt.Errorf("%w: %s", gfx.ErrUnsupportedVertexFormat, f)
	}
}

func vertexStepMode(m gfx.VertexStepMode) gputypes.VertexStepMode {
	if m == gfx.VertexStepModeInstance {
		return gputypes.VertexStepModeInstance
	}
	return gputypes.VertexStepModeVertex
}

// vertexLayout packs attrs into one interleaved buffer layout.
func vertexLayout(attrs []gfx.VertexAttr, step gfx.VertexStepMode) ([]gputypes.VertexBufferLayout, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	offsets := gfx.VertexOffsets(attrs)
	out := make([]gputypes.VertexAttribute, len(attrs))
	for i, a := range attrs {
		f, err := vertexFormat(a.Format)
		if err != nil {
			return nil, err
		}
		out[i] = gputypes.VertexAttribute{
			Format:         f,
			Offset:         uint64(offsets[i]),
			ShaderLocation: a.Location,
		}
	}
	return []gputypes.VertexBufferLayout{{
		ArrayStride: uint64(gfx.VertexStride(attrs)),
		StepMode:    vertexStepMode(step),
		Attributes:  out,
	}}, nil
}

func textureFormat(f gfx.TextureFormat) (gputypes.TextureFormat, error) {
	switch f {
	case gfx.TextureFormatSRGBA8:
		return gputypes.TextureFormatRGBA8UnormSrgb, nil
	case gfx.TextureFormatRGBA32:
		return gputypes.TextureFormatRGBA32Float, nil
	case gfx.TextureFormatR8:
		return gputypes.TextureFormatR8Unorm, nil
	case gfx.TextureFormatDepth16:
		return gputypes.TextureFormatDepth16Unorm, nil
	default:
		return gputypes.TextureFormatUndefined, fmt.Errorf("%w: %s", gfx.ErrUnsupportedTextureFormat, f)
	}
}

func filterMode(f gfx.TextureFilter) gputypes.FilterMode {
	if f == gfx.TextureFilterNearest {
		return gputypes.FilterModeNearest
	}
	return gputypes.FilterModeLinear
}

func blendFactor(f gfx.BlendFactor) gputypes.BlendFactor {
	switch f {
	case gfx.BlendFactorZero:
		return gputypes.BlendFactorZero
	case gfx.BlendFactorOne:
		return gputypes.BlendFactorOne
	case gfx.BlendFactorSrc:
		return gputypes.BlendFactorSrc
	case gfx.BlendFactorOneMinusSrc:
		return gputypes.BlendFactorOneMinusSrc
	case gfx.BlendFactorSrcAlpha:
		return gputypes.BlendFactorSrcAlpha
	case gfx.BlendFactorOneMinusSrcAlpha:
		return gputypes.BlendFactorOneMinusSrcAlpha
	case gfx.BlendFactorDst:
		return gputypes.BlendFactorDst
	case gfx.BlendFactorOneMinusDst:
		return gputypes.BlendFactorOneMinusDst
	case gfx.BlendFactorDstAlpha:
		return gputypes.BlendFactorDstAlpha
	default:
		return gputypes.BlendFactorOneMinusDstAlpha
	}
}

func blendOperation(op gfx.BlendOperation) gputypes.BlendOperation {
	switch op {
	case gfx.BlendOperationSubtract:
		return gputypes.BlendOperationSubtract
	case gfx.BlendOperationReverseSubtract:
		return gputypes.BlendOperationReverseSubtract
	case gfx.BlendOperationMin:
		return gputypes.BlendOperationMin
	case gfx.BlendOperationMax:
		return gputypes.BlendOperationMax
	default:
		return gputypes.BlendOperationAdd
	}
}

func blendComponent(m *gfx.BlendMode) gputypes.BlendComponent {
	if m == nil {
		return gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorZero,
			Operation: gputypes.BlendOperationAdd,
		}
	}
	return gputypes.BlendComponent{
		SrcFactor: blendFactor(m.Src),
		DstFactor: blendFactor(m.Dst),
		Operation: blendOperation(m.Op),
	}
}

// blendState returns nil when blending is off.
func blendState(o *gfx.PipelineOptions) *gputypes.BlendState {
	if o.ColorBlend == nil && o.AlphaBlend == nil {
		return nil
	}
	return &gputypes.BlendState{
		Color: blendComponent(o.ColorBlend),
		Alpha: blendComponent(o.AlphaBlend),
	}
}

func cullMode(m gfx.CullMode) gputypes.CullMode {
	switch m {
	case gfx.CullFront:
		return gputypes.CullModeFront
	case gfx.CullBack:
		return gputypes.CullModeBack
	default:
		return gputypes.CullModeNone
	}
}

func compareFunction(m gfx.CompareMode) gputypes.CompareFunction {
	switch m {
	case gfx.CompareNever:
		return gputypes.CompareFunctionNever
	case gfx.CompareLess:
		return gputypes.CompareFunctionLess
	case gfx.CompareLessEqual:
		return gputypes.CompareFunctionLessEqual
	case gfx.CompareEqual:
		return gputypes.CompareFunctionEqual
	case gfx.CompareGreaterEqual:
		return gputypes.CompareFunctionGreaterEqual
	case gfx.CompareGreater:
		return gputypes.CompareFunctionGreater
	case gfx.CompareNotEqual:
		return gputypes.CompareFunctionNotEqual
	default:
		return gputypes.CompareFunctionAlways
	}
}

func colorWriteMask(m gfx.ColorMask) gputypes.ColorWriteMask {
	if m == gfx.ColorMaskAll {
		return gputypes.ColorWriteMaskAll
	}
	mask := gputypes.ColorWriteMaskNone
	if m&gfx.ColorMaskRed != 0 {
		mask |= gputypes.ColorWriteMaskRed
	}
	if m&gfx.ColorMaskGreen != 0 {
		mask |= gputypes.ColorWriteMaskGreen
	}
	if m&gfx.ColorMaskBlue != 0 {
		mask |= gputypes.ColorWriteMaskBlue
	}
	if m&gfx.ColorMaskAlpha != 0 {
		mask |= gputypes.ColorWriteMaskAlpha
	}
	return mask
}

func limitsOf(l gputypes.Limits) gfx.Limits {
	return gfx.Limits{
		MaxTextureSize:   l.MaxTextureDimension2D,
		MaxUniformBlocks: l.MaxUniformBuffersPerShaderStage,
	}
}

func clearColor(c gfx.Color) gputypes.Color {
	return gputypes.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)}
}
