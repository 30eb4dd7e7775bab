package gfx

import (
	"errors"
	"slices"
	"testing"
)

var allVertexFormats = []VertexFormat{
	VertexFormatFloat32, VertexFormatFloat32x2, VertexFormatFloat32x3, VertexFormatFloat32x4,
	VertexFormatUInt8, VertexFormatUInt8Norm, VertexFormatUInt8x2, VertexFormatUInt8x2Norm,
	VertexFormatUInt8x3, VertexFormatUInt8x3Norm, VertexFormatUInt8x4, VertexFormatUInt8x4Norm,
}

func TestVertexFormatTable(t *testing.T) {
	tests := []struct {
		format     VertexFormat
		components int
		size       int
		normalized bool
		name       string
	}{
		{VertexFormatFloat32, 1, 4, false, "Float32"},
		{VertexFormatFloat32x2, 2, 8, false, "Float32x2"},
		{VertexFormatFloat32x3, 3, 12, false, "Float32x3"},
		{VertexFormatFloat32x4, 4, 16, false, "Float32x4"},
		{VertexFormatUInt8, 1, 1, false, "UInt8"},
		{VertexFormatUInt8Norm, 1, 1, true, "UInt8Norm"},
		{VertexFormatUInt8x2, 2, 2, false, "UInt8x2"},
		{VertexFormatUInt8x2Norm, 2, 2, true, "UInt8x2Norm"},
		{VertexFormatUInt8x3, 3, 3, false, "UInt8x3"},
		{VertexFormatUInt8x3Norm, 3, 3, true, "UInt8x3Norm"},
		{VertexFormatUInt8x4, 4, 4, false, "UInt8x4"},
		{VertexFormatUInt8x4Norm, 4, 4, true, "UInt8x4Norm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.ComponentCount(); got != tt.components {
				t.Errorf("ComponentCount() = %d, want %d", got, tt.components)
			}
			if got := tt.format.ByteSize(); got != tt.size {
				t.Errorf("ByteSize() = %d, want %d", got, tt.size)
			}
			if got := tt.format.IsNormalized(); got != tt.normalized {
				t.Errorf("IsNormalized() = %v, want %v", got, tt.normalized)
			}
			if got := tt.format.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
		})
	}
}

func TestVertexFormatSizeRule(t *testing.T) {
	for _, f := range allVertexFormats {
		n := f.ComponentCount()
		if n < 1 || n > 4 {
			t.Errorf("%v: ComponentCount() = %d, want 1..4", f, n)
		}
		want := n
		if f.IsFloat() {
			want = n * 4
		}
		if f.ByteSize() != want {
			t.Errorf("%v: ByteSize() = %d, want %d", f, f.ByteSize(), want)
		}
	}
}

func TestVertexInfoBuilder(t *testing.T) {
	vi := NewVertexInfo().
		Attr(0, VertexFormatFloat32x2).
		Attr(1, VertexFormatUInt8x4Norm).
		Attr(2, VertexFormatFloat32)

	want := []VertexAttr{
		NewVertexAttr(0, VertexFormatFloat32x2),
		NewVertexAttr(1, VertexFormatUInt8x4Norm),
		NewVertexAttr(2, VertexFormatFloat32),
	}
	if got := vi.Attrs(); !slices.Equal(got, want) {
		t.Errorf("Attrs() = %v, want %v", got, want)
	}
	if vi.Mode() != VertexStepModeVertex {
		t.Errorf("Mode() = %v, want Vertex", vi.Mode())
	}
	if got := vi.Stride(); got != 16 {
		t.Errorf("Stride() = %d, want 16", got)
	}
	if got := vi.Offsets(); !slices.Equal(got, []int{0, 8, 12}) {
		t.Errorf("Offsets() = %v, want [0 8 12]", got)
	}
}

func TestVertexInfoIsImmutable(t *testing.T) {
	base := NewVertexInfo().Attr(0, VertexFormatFloat32x3)
	a := base.Attr(1, VertexFormatFloat32)
	b := base.Attr(1, VertexFormatUInt8x4)
	inst := base.StepMode(VertexStepModeInstance)

	if base.Len() != 1 {
		t.Errorf("base.Len() = %d, want 1", base.Len())
	}
	if a.Attrs()[1].Format != VertexFormatFloat32 {
		t.Errorf("a.Attrs()[1] = %v, overwritten by sibling builder", a.Attrs()[1])
	}
	if b.Attrs()[1].Format != VertexFormatUInt8x4 {
		t.Errorf("b.Attrs()[1] = %v", b.Attrs()[1])
	}
	if base.Mode() != VertexStepModeVertex || inst.Mode() != VertexStepModeInstance {
		t.Errorf("StepMode changed the receiver: base %v, inst %v", base.Mode(), inst.Mode())
	}

	attrs := a.Attrs()
	attrs[0].Location = 99
	if a.Attrs()[0].Location != 0 {
		t.Error("Attrs() exposes internal storage")
	}
}

func TestVertexStrideEmpty(t *testing.T) {
	if got := VertexStride(nil); got != 0 {
		t.Errorf("VertexStride(nil) = %d, want 0", got)
	}
	if got := NewVertexInfo().Attrs(); got != nil {
		t.Errorf("empty Attrs() = %v, want nil", got)
	}
}

func TestValidateVertexAttrs(t *testing.T) {
	ok := []VertexAttr{NewVertexAttr(0, VertexFormatFloat32), NewVertexAttr(1, VertexFormatFloat32)}
	if err := ValidateVertexAttrs(ok); err != nil {
		t.Errorf("ValidateVertexAttrs(distinct) = %v", err)
	}
	dup := []VertexAttr{NewVertexAttr(2, VertexFormatFloat32), NewVertexAttr(2, VertexFormatUInt8)}
	if err := ValidateVertexAttrs(dup); !errors.Is(err, ErrInvalidVertexLayout) {
		t.Errorf("ValidateVertexAttrs(duplicate) = %v, want ErrInvalidVertexLayout", err)
	}
}
