// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"fmt"
	"image"

	"github.com/gogpu/gfx"
)

// Stats counts the work the backend has executed.
type Stats struct {
	Frames    uint64 // Render calls
	Passes    uint64 // Begin..End pairs
	Clears    uint64 // color or depth clears
	DrawCalls uint64 // accepted draws
	Vertices  uint64 // vertices across all instances of accepted draws
	Dropped   uint64 // commands rejected and skipped
	Cleaned   uint64 // objects freed by Clean
}

// String returns a one-line summary.
func (s Stats) String() string {
	return fmt.Sprintf("Software[%d frames, %d passes, %d draws, %d vertices, %d dropped, %d cleaned]",
		s.Frames, s.Passes, s.DrawCalls, s.Vertices, s.Dropped, s.Cleaned)
}

// Stats returns a snapshot of the counters.
func (b *Backend) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// frame is the state of one Render call.
type frame struct {
	b      *Backend
	color  *texture
	depth  *texture
	inPass bool

	viewport image.Rectangle
	scissor  *image.Rectangle

	pipeline *pipeline
	vertex   []*buffer
	index    *buffer
	uniforms map[uint32]*buffer
	textures map[uint32]*texture
}

// Render executes cmds on target in order. Invalid commands are logged and
// skipped; the rest of the batch still runs.
func (b *Backend) Render(cmds []gfx.Command, target uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Frames++

	f := &frame{b: b, uniforms: make(map[uint32]*buffer), textures: make(map[uint32]*texture)}
	if target == gfx.NoTarget {
		f.color = b.surface
	} else {
		rt, ok := b.targets[target]
		if !ok {
			gfx.Logger().Warn("software: render to unknown target", "target", target)
			b.stats.Dropped += uint64(len(cmds))
			return
		}
		tex, ok := b.textures[rt.textureID]
		if !ok {
			gfx.Logger().Warn("software: render target texture was cleaned", "target", target, "texture", rt.textureID)
			b.stats.Dropped += uint64(len(cmds))
			return
		}
		f.color, f.depth = tex, rt.depth
	}
	f.viewport = f.color.bounds()

	for i, cmd := range cmds {
		if err := f.exec(cmd); err != nil {
			b.stats.Dropped++
			gfx.Logger().Warn("software: command dropped", "index", i, "command", gfx.CommandName(cmd), "err", err)
		}
	}
	if f.inPass {
		gfx.Logger().Warn("software: batch ended inside a pass")
	}
}

func (f *frame) exec(cmd gfx.Command) error {
	switch c := cmd.(type) {
	case gfx.Size:
		if c.Width <= 0 || c.Height <= 0 {
			return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
		}
		f.b.surface.resize(c.Width, c.Height)
		if f.color == f.b.surface {
			f.viewport = f.color.bounds()
		}
	case gfx.Viewport:
		f.viewport = rectOf(c.Rect)
	case gfx.Scissors:
		if c.Rect == nil {
			f.scissor = nil
			return nil
		}
		r := rectOf(*c.Rect)
		f.scissor = &r
	case gfx.Begin:
		return f.begin(c.Clear)
	case gfx.End:
		if !f.inPass {
			return fmt.Errorf("end without begin")
		}
		f.inPass = false
	case gfx.SetPipeline:
		p, ok := f.b.pipelines[c.ID]
		if !ok {
			f.pipeline = nil
			return fmt.Errorf("%w: pipeline %d", gfx.ErrUnknownResource, c.ID)
		}
		f.pipeline = p
		f.vertex = f.vertex[:0]
		f.index = nil
	case gfx.BindBuffer:
		return f.bindBuffer(c)
	case gfx.BindTexture:
		t, ok := f.b.textures[c.ID]
		if !ok {
			return fmt.Errorf("%w: texture %d", gfx.ErrUnknownResource, c.ID)
		}
		f.textures[c.Slot] = t
	case gfx.Draw:
		return f.draw(c.Offset, c.Count, 1)
	case gfx.DrawInstanced:
		return f.draw(c.Offset, c.Count, c.Length)
	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
	return nil
}

func rectOf(r gfx.Rect) image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (f *frame) begin(clear *gfx.ClearOptions) error {
	if f.inPass {
		return fmt.Errorf("begin inside a pass")
	}
	f.inPass = true
	f.b.stats.Passes++
	if clear == nil {
		return nil
	}
	if clear.Color != nil {
		f.color.clear(*clear.Color, f.color.bounds())
		f.b.stats.Clears++
	}
	if clear.Depth != nil && f.depth != nil {
		f.depth.clearDepth(*clear.Depth, f.depth.bounds())
		f.b.stats.Clears++
	}
	return nil
}

func (f *frame) bindBuffer(c gfx.BindBuffer) error {
	buf, ok := f.b.buffers[c.ID]
	if !ok {
		return fmt.Errorf("%w: buffer %d", gfx.ErrUnknownResource, c.ID)
	}
	if buf.kind != c.Kind {
		return fmt.Errorf("buffer %d is a %s buffer, bound as %s", c.ID, buf.kind, c.Kind)
	}
	switch buf.kind {
	case gfx.BufferVertex:
		f.vertex = append(f.vertex, buf)
	case gfx.BufferIndex:
		f.index = buf
	case gfx.BufferUniform:
		f.uniforms[buf.slot] = buf
	}
	return nil
}

// draw checks that the draw reads only data that exists.
func (f *frame) draw(offset, count, instances int) error {
	switch {
	case !f.inPass:
		return fmt.Errorf("draw outside a pass")
	case f.pipeline == nil:
		return fmt.Errorf("draw without a pipeline")
	case offset < 0 || count < 0 || instances < 0:
		return fmt.Errorf("negative draw range %d+%d x%d", offset, count, instances)
	case f.scissor != nil && f.scissor.Intersect(f.viewport).Empty():
		// Fully clipped; counted but nothing to validate.
		f.b.stats.DrawCalls++
		return nil
	}
	if len(f.pipeline.attrs) > 0 && len(f.vertex) == 0 {
		return fmt.Errorf("draw without a vertex buffer")
	}
	for _, slot := range f.pipeline.opts.Uniforms {
		if _, ok := f.uniforms[slot]; !ok {
			return fmt.Errorf("uniform slot %d not bound", slot)
		}
	}
	for _, slot := range f.pipeline.opts.Textures {
		if _, ok := f.textures[slot]; !ok {
			return fmt.Errorf("texture slot %d not bound", slot)
		}
	}

	vertices := offset + count
	if f.index != nil {
		if n := len(f.index.data) / 2; vertices > n {
			return fmt.Errorf("index range %d exceeds %d indices", vertices, n)
		}
	} else {
		for _, vb := range f.vertex {
			need := vertices
			if vb.step == gfx.VertexStepModeInstance {
				need = instances
			}
			if vb.stride > 0 && need*vb.stride > len(vb.data) {
				return fmt.Errorf("vertex range %d exceeds %d bytes of stride %d", need, len(vb.data), vb.stride)
			}
		}
	}

	f.b.stats.DrawCalls++
	f.b.stats.Vertices += uint64(count) * uint64(instances)
	return nil
}
