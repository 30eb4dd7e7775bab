package gfx

import "testing"

func TestEncoderPreservesOrder(t *testing.T) {
	c := NewResourceCleaner()
	p := newPipeline(1, nil, DefaultPipelineOptions(), c)
	vb := newBuffer(2, BufferVertex, c)
	tex := newTexture(3, &TextureInfo{Width: 1, Height: 1}, c)
	defer p.Release()
	defer vb.Release()
	defer tex.Release()

	enc := NewEncoder()
	enc.Size(10, 10).
		BeginClear(Black).
		Viewport(0, 0, 10, 10).
		Scissors(&Rect{Width: 5, Height: 5}).
		SetPipeline(p).
		BindBuffer(vb).
		BindTexture(tex, 0, 1).
		Draw(0, 3).
		DrawInstanced(0, 3, 4).
		End()

	want := []string{"Size", "Begin", "Viewport", "Scissors", "SetPipeline", "BindBuffer", "BindTexture", "Draw", "DrawInstanced", "End"}
	cmds := enc.Commands()
	if len(cmds) != len(want) {
		t.Fatalf("len = %d, want %d", len(cmds), len(want))
	}
	for i, c := range cmds {
		if got := CommandName(c); got != want[i] {
			t.Errorf("cmd %d = %s, want %s", i, got, want[i])
		}
	}
	if sp := cmds[4].(SetPipeline); sp.ID != 1 || sp.Options.ColorMask != ColorMaskAll {
		t.Errorf("SetPipeline = %+v", sp)
	}
	if bt := cmds[6].(BindTexture); bt.ID != 3 || bt.Location != 1 {
		t.Errorf("BindTexture = %+v", bt)
	}
	if enc.Len() != 0 {
		t.Errorf("Len() after Commands = %d, want 0", enc.Len())
	}
}

func TestColorRGBA8(t *testing.T) {
	tests := []struct {
		c    Color
		want [4]uint8
	}{
		{White, [4]uint8{255, 255, 255, 255}},
		{Transparent, [4]uint8{}},
		{Color{R: 0.5, G: -1, B: 2, A: 1}, [4]uint8{128, 0, 255, 255}},
	}
	for _, tt := range tests {
		if got := tt.c.RGBA8(); got != tt.want {
			t.Errorf("%v.RGBA8() = %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestPipelineOptionsClone(t *testing.T) {
	o := DefaultPipelineOptions()
	o.Uniforms = []uint32{0, 1}
	o.DepthStencil = &DepthStencil{Write: true, Compare: CompareLess}

	c := o.Clone()
	c.ColorBlend.Src = BlendFactorZero
	c.Uniforms[0] = 7
	c.DepthStencil.Write = false

	if o.ColorBlend.Src != BlendFactorOne || o.Uniforms[0] != 0 || !o.DepthStencil.Write {
		t.Errorf("Clone shares state with the original: %+v", o)
	}
}
