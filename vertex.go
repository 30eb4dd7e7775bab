// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import "fmt"

// VertexFormat is the encoding of one vertex attribute value.
type VertexFormat uint8

// Vertex formats. Norm variants are mapped to [0, 1] by the backend.
const (
	VertexFormatFloat32 VertexFormat = iota
	VertexFormatFloat32x2
	VertexFormatFloat32x3
	VertexFormatFloat32x4
	VertexFormatUInt8
	VertexFormatUInt8Norm
	VertexFormatUInt8x2
	VertexFormatUInt8x2Norm
	VertexFormatUInt8x3
	VertexFormatUInt8x3Norm
	VertexFormatUInt8x4
	VertexFormatUInt8x4Norm
)

var vertexFormatNames = [...]string{
	VertexFormatFloat32:     "Float32",
	VertexFormatFloat32x2:   "Float32x2",
	VertexFormatFloat32x3:   "Float32x3",
	VertexFormatFloat32x4:   "Float32x4",
	VertexFormatUInt8:       "UInt8",
	VertexFormatUInt8Norm:   "UInt8Norm",
	VertexFormatUInt8x2:     "UInt8x2",
	VertexFormatUInt8x2Norm: "UInt8x2Norm",
	VertexFormatUInt8x3:     "UInt8x3",
	VertexFormatUInt8x3Norm: "UInt8x3Norm",
	VertexFormatUInt8x4:     "UInt8x4",
	VertexFormatUInt8x4Norm: "UInt8x4Norm",
}

// String returns the format name.
func (f VertexFormat) String() string {
	if int(f) < len(vertexFormatNames) {
		return vertexFormatNames[f]
	}
	return fmt.Sprintf("VertexFormat(%d)", uint8(f))
}

// ComponentCount returns the number of scalar components (1 to 4).
func (f VertexFormat) ComponentCount() int {
	switch f {
	case VertexFormatFloat32, VertexFormatUInt8, VertexFormatUInt8Norm:
		return 1
	case VertexFormatFloat32x2, VertexFormatUInt8x2, VertexFormatUInt8x2Norm:
		return 2
	case VertexFormatFloat32x3, VertexFormatUInt8x3, VertexFormatUInt8x3Norm:
		return 3
	case VertexFormatFloat32x4, VertexFormatUInt8x4, VertexFormatUInt8x4Norm:
		return 4
	default:
		return 0
	}
}

// IsFloat reports whether the components are 32-bit floats.
func (f VertexFormat) IsFloat() bool {
	return f <= VertexFormatFloat32x4
}

// ByteSize returns the number of bytes one value occupies: one byte per
// component for the 8-bit formats, four for the float formats.
func (f VertexFormat) ByteSize() int {
	if f.IsFloat() {
		return f.ComponentCount() * 4
	}
	return f.ComponentCount()
}

// IsNormalized reports whether the backend maps the 8-bit components to
// the unit range.
func (f VertexFormat) IsNormalized() bool {
	switch f {
	case VertexFormatUInt8Norm, VertexFormatUInt8x2Norm, VertexFormatUInt8x3Norm, VertexFormatUInt8x4Norm:
		return true
	default:
		return false
	}
}

// VertexAttr binds a shader input location to a format.
type VertexAttr struct {
	Location uint32
	Format   VertexFormat
}

// NewVertexAttr returns the attribute for location and format.
func NewVertexAttr(location uint32, format VertexFormat) VertexAttr {
	return VertexAttr{Location: location, Format: format}
}

// VertexStepMode selects whether attributes advance per vertex or per instance.
type VertexStepMode uint8

// Step modes.
const (
	VertexStepModeVertex VertexStepMode = iota
	VertexStepModeInstance
)

// String returns the mode name.
func (m VertexStepMode) String() string {
	switch m {
	case VertexStepModeVertex:
		return "Vertex"
	case VertexStepModeInstance:
		return "Instance"
	default:
		return fmt.Sprintf("VertexStepMode(%d)", uint8(m))
	}
}

// VertexInfo describes the layout of one vertex buffer: its attributes in
// buffer order and its step mode.
//
// VertexInfo is a value. Attr and StepMode return a new VertexInfo and never
// modify the receiver, so a partially built layout can be shared:
//
//	base := gfx.NewVertexInfo().Attr(0, gfx.VertexFormatFloat32x2)
//	colored := base.Attr(1, gfx.VertexFormatUInt8x4Norm)
type VertexInfo struct {
	attrs []VertexAttr
	mode  VertexStepMode
}

// NewVertexInfo returns an empty per-vertex layout.
func NewVertexInfo() VertexInfo {
	return VertexInfo{}
}

// Attr returns vi with an attribute appended.
func (vi VertexInfo) Attr(location uint32, format VertexFormat) VertexInfo {
	attrs := make([]VertexAttr, len(vi.attrs), len(vi.attrs)+1)
	copy(attrs, vi.attrs)
	vi.attrs = append(attrs, NewVertexAttr(location, format))
	return vi
}

// StepMode returns vi with the step mode replaced.
func (vi VertexInfo) StepMode(mode VertexStepMode) VertexInfo {
	vi.mode = mode
	return vi
}

// Attrs returns a copy of the attributes in buffer order.
func (vi VertexInfo) Attrs() []VertexAttr {
	if len(vi.attrs) == 0 {
		return nil
	}
	out := make([]VertexAttr, len(vi.attrs))
	copy(out, vi.attrs)
	return out
}

// Mode returns the step mode.
func (vi VertexInfo) Mode() VertexStepMode {
	return vi.mode
}

// Len returns the number of attributes.
func (vi VertexInfo) Len() int {
	return len(vi.attrs)
}

// Stride returns the number of bytes between consecutive vertices.
func (vi VertexInfo) Stride() int {
	return VertexStride(vi.attrs)
}

// Offsets returns the byte offset of each attribute, in buffer order.
func (vi VertexInfo) Offsets() []int {
	return VertexOffsets(vi.attrs)
}

// VertexStride returns the tightly packed stride of attrs.
func VertexStride(attrs []VertexAttr) int {
	stride := 0
	for _, a := range attrs {
		stride += a.Format.ByteSize()
	}
	return stride
}

// VertexOffsets returns the byte offset of each attribute when attrs are
// packed in order.
func VertexOffsets(attrs []VertexAttr) []int {
	offsets := make([]int, len(attrs))
	offset := 0
	for i, a := range attrs {
		offsets[i] = offset
		offset += a.Format.ByteSize()
	}
	return offsets
}

// ValidateVertexAttrs reports ErrInvalidVertexLayout when two attributes
// share a location.
func ValidateVertexAttrs(attrs []VertexAttr) error {
	seen := make(map[uint32]struct{}, len(attrs))
	for _, a := range attrs {
		if _, dup := seen[a.Location]; dup {
			return fmt.Errorf("%w: location %d used twice", ErrInvalidVertexLayout, a.Location)
		}
		seen[a.Location] = struct{}{}
	}
	return nil
}
