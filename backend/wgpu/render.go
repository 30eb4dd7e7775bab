// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Stats counts the work submitted to the GPU.
type Stats struct {
	Frames     uint64 // Render calls
	Submits    uint64 // command buffers submitted
	Passes     uint64 // render passes recorded
	DrawCalls  uint64 // draws recorded
	BindGroups uint64 // transient bind groups created
	Dropped    uint64 // commands rejected and skipped
	Cleaned    uint64 // objects destroyed by Clean
}

// String returns a one-line summary.
func (s Stats) String() string {
	return fmt.Sprintf("WGPU[%d frames, %d submits, %d passes, %d draws, %d dropped, %d cleaned]",
		s.Frames, s.Submits, s.Passes, s.DrawCalls, s.Dropped, s.Cleaned)
}

// Stats returns a snapshot of the counters.
func (b *Backend) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

var errNoData = errors.New("buffer has no data")

type frame struct {
	b       *Backend
	target  uint64
	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder

	color     *texture // nil when drawing into a host view
	colorView hal.TextureView
	format    gputypes.TextureFormat
	depthView hal.TextureView
	width     uint32
	height    uint32

	viewport *gfx.Rect
	scissor  *gfx.Rect

	pipeline *pipeline
	bound    hal.RenderPipeline
	vertex   []*buffer
	index    *buffer
	uniforms map[uint32]*buffer
	textures map[uint32]*texture

	groups  []hal.BindGroup
	retired []*texture
	passes  int
}

// Render records cmds into one command buffer, submits it and waits for the
// GPU. Invalid commands are logged and skipped.
func (b *Backend) Render(cmds []gfx.Command, target uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Frames++

	if target != gfx.NoTarget {
		if _, ok := b.targets[target]; !ok {
			gfx.Logger().Warn("wgpu: render to unknown target", "target", target)
			b.stats.Dropped += uint64(len(cmds))
			return
		}
	}

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: b.opts.label + "_frame"})
	if err != nil {
		gfx.Logger().Error("wgpu: create command encoder", "err", err)
		return
	}
	if err := encoder.BeginEncoding(b.opts.label + "_frame"); err != nil {
		gfx.Logger().Error("wgpu: begin encoding", "err", err)
		return
	}

	f := &frame{
		b:        b,
		target:   target,
		encoder:  encoder,
		uniforms: make(map[uint32]*buffer),
		textures: make(map[uint32]*texture),
	}
	defer f.release()

	for i, cmd := range cmds {
		if err := f.exec(cmd); err != nil {
			b.stats.Dropped++
			gfx.Logger().Warn("wgpu: command dropped", "index", i, "command", gfx.CommandName(cmd), "err", err)
		}
	}
	if f.pass != nil {
		gfx.Logger().Warn("wgpu: batch ended inside a pass")
		f.endPass()
	}
	if f.passes == 0 {
		encoder.DiscardEncoding()
		return
	}
	if err := b.submit(encoder); err != nil {
		gfx.Logger().Error("wgpu: frame submit failed", "target", target, "err", err)
	}
}

// submit ends encoding, submits and waits for completion.
func (b *Backend) submit(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	b.stats.Submits++
	ok, err := b.device.Wait(fence, 1, b.opts.timeout)
	if err != nil || !ok {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}

// release destroys what the frame kept alive until submission.
func (f *frame) release() {
	for _, g := range f.groups {
		f.b.device.DestroyBindGroup(g)
	}
	f.groups = nil
	for _, t := range f.retired {
		t.destroy(f.b.device)
	}
	f.retired = nil
}

func (f *frame) exec(cmd gfx.Command) error {
	switch c := cmd.(type) {
	case gfx.Size:
		if c.Width <= 0 || c.Height <= 0 {
			return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
		}
		if f.pass != nil && f.target == gfx.NoTarget {
			return fmt.Errorf("surface resize inside a pass")
		}
		if old := f.b.resizeSurface(c.Width, c.Height); old != nil {
			f.retired = append(f.retired, old)
		}
	case gfx.Viewport:
		r := c.Rect
		f.viewport = &r
		if f.pass != nil {
			f.applyViewport()
		}
	case gfx.Scissors:
		if c.Rect == nil {
			f.scissor = nil
		} else {
			r := *c.Rect
			f.scissor = &r
		}
		if f.pass != nil {
			f.applyScissor()
		}
	case gfx.Begin:
		return f.begin(c.Clear)
	case gfx.End:
		if f.pass == nil {
			return fmt.Errorf("end without begin")
		}
		f.endPass()
	case gfx.SetPipeline:
		p, ok := f.b.pipelines[c.ID]
		if !ok {
			f.pipeline = nil
			return fmt.Errorf("%w: pipeline %d", gfx.ErrUnknownResource, c.ID)
		}
		f.pipeline = p
		f.bound = nil
		f.vertex = f.vertex[:0]
		f.index = nil
	case gfx.BindBuffer:
		return f.bindBuffer(c)
	case gfx.BindTexture:
		t, ok := f.b.textures[c.ID]
		if !ok {
			return fmt.Errorf("%w: texture %d", gfx.ErrUnknownResource, c.ID)
		}
		if t.sampler == nil {
			return fmt.Errorf("texture %d (%s) cannot be sampled", c.ID, t.info.Format)
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

// resolve picks the attachments of the pass about to begin.
func (f *frame) resolve() error {
	f.depthView = nil
	if f.target == gfx.NoTarget {
		f.width, f.height = uint32(f.b.width), uint32(f.b.height)
		if f.b.surfaceView != nil {
			f.color, f.colorView, f.format = nil, f.b.surfaceView, f.b.surfaceFmt
			return nil
		}
		t, err := f.b.surfaceTexture()
		if err != nil {
			return err
		}
		f.color, f.colorView, f.format = t, t.view, t.format
		return nil
	}
	rt, ok := f.b.targets[f.target]
	if !ok {
		return fmt.Errorf("%w: render target %d", gfx.ErrUnknownResource, f.target)
	}
	t, ok := f.b.textures[rt.textureID]
	if !ok {
		return fmt.Errorf("render target %d texture %d was cleaned", f.target, rt.textureID)
	}
	f.color, f.colorView, f.format = t, t.view, t.format
	f.depthView = rt.depthView
	f.width, f.height = uint32(t.info.Width), uint32(t.info.Height)
	return nil
}

func (f *frame) begin(clear *gfx.ClearOptions) error {
	if f.pass != nil {
		return fmt.Errorf("begin inside a pass")
	}
	if err := f.resolve(); err != nil {
		return err
	}

	color := hal.RenderPassColorAttachment{
		View:    f.colorView,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	}
	if clear != nil && clear.Color != nil {
		color.LoadOp = gputypes.LoadOpClear
		color.ClearValue = clearColor(*clear.Color)
	}
	desc := &hal.RenderPassDescriptor{
		Label:            fmt.Sprintf("%s_pass_%d", f.b.opts.label, f.passes),
		ColorAttachments: []hal.RenderPassColorAttachment{color},
	}
	if f.depthView != nil {
		ds := &hal.RenderPassDepthStencilAttachment{
			View:              f.depthView,
			DepthLoadOp:       gputypes.LoadOpLoad,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		}
		if clear != nil && clear.Depth != nil {
			ds.DepthLoadOp = gputypes.LoadOpClear
			ds.DepthClearValue = *clear.Depth
		}
		desc.DepthStencilAttachment = ds
	}

	f.pass = f.encoder.BeginRenderPass(desc)
	f.passes++
	f.b.stats.Passes++
	f.bound = nil
	f.applyViewport()
	f.applyScissor()
	return nil
}

func (f *frame) endPass() {
	f.pass.End()
	f.pass = nil
	f.bound = nil
	if f.color != nil {
		f.color.state = gputypes.TextureUsageRenderAttachment
	}
}

func (f *frame) applyViewport() {
	r := gfx.Rect{Width: int(f.width), Height: int(f.height)}
	if f.viewport != nil {
		r = *f.viewport
	}
	f.pass.SetViewport(float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), 0, 1)
}

// applyScissor clamps the scissor rectangle to the attachment.
func (f *frame) applyScissor() {
	x0, y0, x1, y1 := 0, 0, int(f.width), int(f.height)
	if s := f.scissor; s != nil {
		x0, y0 = max(x0, s.X), max(y0, s.Y)
		x1, y1 = min(x1, s.X+s.Width), min(y1, s.Y+s.Height)
	}
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	f.pass.SetScissorRect(uint32(x0), uint32(y0), uint32(x1-x0), uint32(y1-y0))
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

func (f *frame) draw(offset, count, instances int) error {
	switch {
	case f.pass == nil:
		return fmt.Errorf("draw outside a pass")
	case f.pipeline == nil:
		return fmt.Errorf("draw without a pipeline")
	case offset < 0 || count < 0 || instances < 0:
		return fmt.Errorf("negative draw range %d+%d x%d", offset, count, instances)
	}
	if len(f.pipeline.attrs) > 0 && len(f.vertex) == 0 {
		return fmt.Errorf("draw without a vertex buffer")
	}
	if err := f.checkRange(offset+count, instances); err != nil {
		return err
	}

	var layouts []gputypes.VertexBufferLayout
	for _, vb := range f.vertex {
		l, err := vertexLayout(vb.attrs, vb.step)
		if err != nil {
			return err
		}
		layouts = append(layouts, l...)
	}
	key := variantKey{format: f.format, depth: f.depthView != nil, layout: layoutKey(layouts)}
	rp, err := f.b.variant(f.pipeline, key, layouts)
	if err != nil {
		return err
	}
	if rp != f.bound {
		f.pass.SetPipeline(rp)
		f.bound = rp
	}
	if f.pipeline.bindings() > 0 {
		bg, err := f.bindGroup()
		if err != nil {
			return err
		}
		f.pass.SetBindGroup(0, bg, nil)
	}
	for i, vb := range f.vertex {
		f.pass.SetVertexBuffer(uint32(i), vb.buf, 0)
	}

	if f.index != nil {
		f.pass.SetIndexBuffer(f.index.buf, gputypes.IndexFormatUint16, 0)
		f.pass.DrawIndexed(uint32(count), uint32(instances), uint32(offset), 0, 0)
	} else {
		f.pass.Draw(uint32(count), uint32(instances), uint32(offset), 0)
	}
	f.b.stats.DrawCalls++
	return nil
}

// checkRange rejects draws that read past the uploaded data.
func (f *frame) checkRange(vertices, instances int) error {
	if f.index != nil {
		if f.index.buf == nil {
			return fmt.Errorf("index %w", errNoData)
		}
		if n := int(f.index.size / 2); vertices > n {
			return fmt.Errorf("index range %d exceeds %d indices", vertices, n)
		}
	}
	for _, vb := range f.vertex {
		if vb.buf == nil {
			return fmt.Errorf("vertex %w", errNoData)
		}
		if f.index != nil {
			continue
		}
		need := vertices
		if vb.step == gfx.VertexStepModeInstance {
			need = instances
		}
		if stride := gfx.VertexStride(vb.attrs); stride > 0 && need*stride > int(vb.size) {
			return fmt.Errorf("vertex range %d exceeds %d bytes of stride %d", need, vb.size, stride)
		}
	}
	return nil
}

// bindGroup builds group 0 from the uniforms and textures currently bound.
func (f *frame) bindGroup() (hal.BindGroup, error) {
	p := f.pipeline
	entries := make([]gputypes.BindGroupEntry, 0, p.bindings())
	for _, slot := range p.opts.Uniforms {
		u, ok := f.uniforms[slot]
		if !ok {
			return nil, fmt.Errorf("uniform slot %d not bound", slot)
		}
		if u.buf == nil {
			return nil, fmt.Errorf("uniform slot %d: %w", slot, errNoData)
		}
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  uint32(len(entries)),
			Resource: gputypes.BufferBinding{Buffer: u.buf.NativeHandle(), Offset: 0, Size: u.cap},
		})
	}
	for _, slot := range p.opts.Textures {
		t, ok := f.textures[slot]
		if !ok {
			return nil, fmt.Errorf("texture slot %d not bound", slot)
		}
		entries = append(entries,
			gputypes.BindGroupEntry{
				Binding:  uint32(len(entries)),
				Resource: gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()},
			},
			gputypes.BindGroupEntry{
				Binding:  uint32(len(entries) + 1),
				Resource: gputypes.SamplerBinding{Sampler: t.sampler.NativeHandle()},
			})
	}
	bg, err := f.b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   fmt.Sprintf("%s_group_%d", p.label, len(f.groups)),
		Layout:  p.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	f.groups = append(f.groups, bg)
	f.b.stats.BindGroups++
	return bg, nil
}
