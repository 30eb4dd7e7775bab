package shader

import (
	"encoding/binary"
	"errors"
	"slices"
	"testing"
)

const triangleWGSL = `
@vertex
fn vs_main(@location(0) pos: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(pos, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

func TestCompileWGSL(t *testing.T) {
	words, err := Compile([]byte(triangleWGSL))
	if err != nil {
		t.Skipf("naga cannot compile the test shader: %v", err)
	}
	if len(words) < 5 {
		t.Fatalf("len(words) = %d, want a SPIR-V header", len(words))
	}
	if words[0] != SPIRVMagic {
		t.Errorf("words[0] = %#x, want %#x", words[0], SPIRVMagic)
	}
}

func TestCompileSPIRVPassthrough(t *testing.T) {
	src := make([]byte, 20)
	binary.LittleEndian.PutUint32(src, SPIRVMagic)
	binary.LittleEndian.PutUint32(src[4:], 0x00010000)

	words, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile(SPIR-V) = %v", err)
	}
	if len(words) != 5 || words[0] != SPIRVMagic || words[1] != 0x00010000 {
		t.Errorf("words = %#x", words)
	}
}

func TestCompileSPIRVKeepsTrailingZeroBytes(t *testing.T) {
	// OpFunctionEnd encodes as 38 00 01 00, so modules usually end in a
	// zero byte.
	want := []uint32{SPIRVMagic, 0x00010000, 0, 8, 0, 0x00010038}
	tests := []struct {
		name  string
		words []uint32
	}{
		{"function end", want},
		{"zero operand", append(append([]uint32(nil), want...), 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := make([]byte, 4*len(tt.words))
			for i, w := range tt.words {
				binary.LittleEndian.PutUint32(src[4*i:], w)
			}
			words, err := Compile(src)
			if err != nil {
				t.Fatalf("Compile(SPIR-V) = %v", err)
			}
			if !slices.Equal(words, tt.words) {
				t.Errorf("words = %#x, want %#x", words, tt.words)
			}
		})
	}
}

func TestCompileEmpty(t *testing.T) {
	for _, src := range [][]byte{nil, []byte("  \n"), {0, 0}} {
		if _, err := Compile(src); !errors.Is(err, ErrEmptySource) {
			t.Errorf("Compile(%q) = %v, want ErrEmptySource", src, err)
		}
	}
}

func TestCompileInvalidWGSL(t *testing.T) {
	if _, err := Compile([]byte("fn broken( {")); err == nil {
		t.Error("Compile(invalid) = nil error")
	}
}

func TestIsSPIRV(t *testing.T) {
	tests := []struct {
		name string
		src  []byte
		want bool
	}{
		{"magic", []byte{0x03, 0x02, 0x23, 0x07}, true},
		{"big endian", []byte{0x07, 0x23, 0x02, 0x03}, false},
		{"short", []byte{0x03, 0x02}, false},
		{"unaligned", []byte{0x03, 0x02, 0x23, 0x07, 0}, false},
		{"text", []byte("@vertex"), false},
	}
	for _, tt := range tests {
		if got := IsSPIRV(tt.src); got != tt.want {
			t.Errorf("%s: IsSPIRV() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
