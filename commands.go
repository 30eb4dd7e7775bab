// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import "fmt"

// Command is one entry of a render batch. The set of commands is closed;
// backends switch on the concrete type.
type Command interface {
	command()
}

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Common colors.
var (
	Transparent = Color{}
	Black       = Color{A: 1}
	White       = Color{R: 1, G: 1, B: 1, A: 1}
)

// RGBA8 returns c quantized to 8 bits per channel, clamped.
func (c Color) RGBA8() [4]uint8 {
	return [4]uint8{quantize(c.R), quantize(c.G), quantize(c.B), quantize(c.A)}
}

func quantize(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

// ClearOptions selects what Begin clears. Nil fields are loaded unchanged.
type ClearOptions struct {
	Color *Color
	Depth *float32
}

// Rect is an integer rectangle in target pixels.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Size sets the size of the default surface for the rest of the batch.
type Size struct {
	Width, Height int
}

// Viewport sets the viewport of the current pass.
type Viewport struct {
	Rect Rect
}

// Scissors restricts drawing to a rectangle. A nil Rect disables scissoring.
type Scissors struct {
	Rect *Rect
}

// Begin starts a render pass on the batch target.
type Begin struct {
	Clear *ClearOptions
}

// End finishes the current render pass.
type End struct{}

// SetPipeline binds a pipeline for the following draws.
type SetPipeline struct {
	ID      uint64
	Options PipelineOptions
}

// BindBuffer binds a vertex, index or uniform buffer.
type BindBuffer struct {
	ID   uint64
	Kind BufferKind
}

// BindTexture binds a texture to a sampler slot.
type BindTexture struct {
	ID       uint64
	Slot     uint32
	Location uint32
}

// Draw draws Count vertices, or indices when an index buffer is bound,
// starting at Offset.
type Draw struct {
	Offset, Count int
}

// DrawInstanced draws Length instances of Count vertices.
type DrawInstanced struct {
	Offset, Count, Length int
}

func (Size) command()          {}
func (Viewport) command()      {}
func (Scissors) command()      {}
func (Begin) command()         {}
func (End) command()           {}
func (SetPipeline) command()   {}
func (BindBuffer) command()    {}
func (BindTexture) command()   {}
func (Draw) command()          {}
func (DrawInstanced) command() {}

// CommandName returns a short name for logging.
func CommandName(c Command) string {
	switch c.(type) {
	case Size:
		return "Size"
	case Viewport:
		return "Viewport"
	case Scissors:
		return "Scissors"
	case Begin:
		return "Begin"
	case End:
		return "End"
	case SetPipeline:
		return "SetPipeline"
	case BindBuffer:
		return "BindBuffer"
	case BindTexture:
		return "BindTexture"
	case Draw:
		return "Draw"
	case DrawInstanced:
		return "DrawInstanced"
	default:
		return fmt.Sprintf("%T", c)
	}
}

// Encoder records a batch of commands from handles. The zero value is ready
// to use. Encoder does not own the handles; they must stay alive until the
// batch has been rendered.
type Encoder struct {
	cmds []Command
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Size records a surface resize.
func (e *Encoder) Size(width, height int) *Encoder {
	e.cmds = append(e.cmds, Size{Width: width, Height: height})
	return e
}

// Viewport records a viewport change.
func (e *Encoder) Viewport(x, y, width, height int) *Encoder {
	e.cmds = append(e.cmds, Viewport{Rect: Rect{X: x, Y: y, Width: width, Height: height}})
	return e
}

// Scissors records a scissor rectangle; nil disables it.
func (e *Encoder) Scissors(r *Rect) *Encoder {
	if r != nil {
		rc := *r
		r = &rc
	}
	e.cmds = append(e.cmds, Scissors{Rect: r})
	return e
}

// Begin starts a pass. A nil clear loads the previous content.
func (e *Encoder) Begin(clear *ClearOptions) *Encoder {
	e.cmds = append(e.cmds, Begin{Clear: clear})
	return e
}

// BeginClear starts a pass that clears the color target to c.
func (e *Encoder) BeginClear(c Color) *Encoder {
	return e.Begin(&ClearOptions{Color: &c})
}

// End finishes the pass.
func (e *Encoder) End() *Encoder {
	e.cmds = append(e.cmds, End{})
	return e
}

// SetPipeline binds p.
func (e *Encoder) SetPipeline(p *Pipeline) *Encoder {
	e.cmds = append(e.cmds, SetPipeline{ID: p.ID(), Options: p.Options()})
	return e
}

// BindBuffer binds b according to its kind.
func (e *Encoder) BindBuffer(b *Buffer) *Encoder {
	e.cmds = append(e.cmds, BindBuffer{ID: b.ID(), Kind: b.Kind()})
	return e
}

// BindTexture binds t to slot at the shader location.
func (e *Encoder) BindTexture(t *Texture, slot, location uint32) *Encoder {
	e.cmds = append(e.cmds, BindTexture{ID: t.ID(), Slot: slot, Location: location})
	return e
}

// Draw records a draw of count vertices from offset.
func (e *Encoder) Draw(offset, count int) *Encoder {
	e.cmds = append(e.cmds, Draw{Offset: offset, Count: count})
	return e
}

// DrawInstanced records an instanced draw.
func (e *Encoder) DrawInstanced(offset, count, instances int) *Encoder {
	e.cmds = append(e.cmds, DrawInstanced{Offset: offset, Count: count, Length: instances})
	return e
}

// Len returns the number of recorded commands.
func (e *Encoder) Len() int { return len(e.cmds) }

// Commands returns the recorded batch. The encoder keeps recording into a
// fresh slice afterwards.
func (e *Encoder) Commands() []Command {
	out := e.cmds
	e.cmds = nil
	return out
}
