// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// DeviceStats reports Device activity.
type DeviceStats struct {
	Frames   uint64 // Render calls
	Commands uint64 // commands passed to Render
	Cleaned  uint64 // resources passed to Backend.Clean
	Pending  int    // resources waiting for the next Clean
}

// String returns a one-line summary.
func (s DeviceStats) String() string {
	return fmt.Sprintf("Device[%d frames, %d commands, %d cleaned, %d pending]",
		s.Frames, s.Commands, s.Cleaned, s.Pending)
}

// Device drives a Backend. It hands out owning handles for the objects it
// creates and passes released objects back to Backend.Clean.
//
// Create, Render, Clean and the other driving methods must be called from
// one goroutine at a time, matching the Backend contract. The handles may be
// cloned and released from any goroutine.
type Device struct {
	backend Backend
	cleaner *ResourceCleaner
	opts    deviceOptions

	mu     sync.Mutex
	width  int
	height int
	dpi    float64
	closed bool

	frames   atomic.Uint64
	commands atomic.Uint64
	cleaned  atomic.Uint64
}

// NewDevice wraps b.
func NewDevice(b Backend, opts ...DeviceOption) (*Device, error) {
	if b == nil {
		return nil, ErrNilBackend
	}
	o := defaultDeviceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.cleaner == nil {
		o.cleaner = NewResourceCleaner()
	}
	Logger().Debug("gfx: device created", "api", b.APIName())
	return &Device{backend: b, cleaner: o.cleaner, opts: o, dpi: 1}, nil
}

// Backend returns the wrapped backend.
func (d *Device) Backend() Backend { return d.backend }

// Cleaner returns the cleaner the Device's handles enqueue into.
func (d *Device) Cleaner() *ResourceCleaner { return d.cleaner }

// APIName returns the backend API name.
func (d *Device) APIName() string { return d.backend.APIName() }

// Limits returns the backend limits.
func (d *Device) Limits() Limits { return d.backend.Limits() }

func (d *Device) checkOpen() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDeviceClosed
	}
	return nil
}

// CreatePipeline compiles a pipeline from vertex and fragment sources.
func (d *Device) CreatePipeline(vertexSource, fragmentSource []byte, attrs []VertexAttr, opts PipelineOptions) (*Pipeline, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	if err := ValidateVertexAttrs(attrs); err != nil {
		return nil, err
	}
	id, err := d.backend.CreatePipeline(vertexSource, fragmentSource, attrs, opts)
	if err != nil {
		return nil, fmt.Errorf("gfx: create pipeline: %w", err)
	}
	return newPipeline(id, attrs, opts, d.cleaner), nil
}

// CreateVertexBuffer creates an empty vertex buffer with layout.
func (d *Device) CreateVertexBuffer(layout VertexInfo) (*Buffer, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	attrs := layout.Attrs()
	if len(attrs) == 0 {
		return nil, fmt.Errorf("%w: no attributes", ErrInvalidVertexLayout)
	}
	if err := ValidateVertexAttrs(attrs); err != nil {
		return nil, err
	}
	id, err := d.backend.CreateVertexBuffer(attrs, layout.Mode())
	if err != nil {
		return nil, fmt.Errorf("gfx: create vertex buffer: %w", err)
	}
	b := newBuffer(id, BufferVertex, d.cleaner)
	b.layout = layout
	return b, nil
}

// CreateIndexBuffer creates an empty buffer of uint16 indices.
func (d *Device) CreateIndexBuffer() (*Buffer, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	id, err := d.backend.CreateIndexBuffer()
	if err != nil {
		return nil, fmt.Errorf("gfx: create index buffer: %w", err)
	}
	return newBuffer(id, BufferIndex, d.cleaner), nil
}

// CreateUniformBuffer creates an empty uniform buffer bound at slot.
func (d *Device) CreateUniformBuffer(slot uint32, name string) (*Buffer, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	if limit := d.backend.Limits().MaxUniformBlocks; d.opts.limitChecks && limit > 0 && slot >= limit {
		return nil, fmt.Errorf("gfx: uniform slot %d exceeds limit %d", slot, limit)
	}
	id, err := d.backend.CreateUniformBuffer(slot, name)
	if err != nil {
		return nil, fmt.Errorf("gfx: create uniform buffer: %w", err)
	}
	b := newBuffer(id, BufferUniform, d.cleaner)
	b.slot = slot
	b.name = name
	return b, nil
}

func (d *Device) checkTexture(info *TextureInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}
	if !d.opts.limitChecks {
		return nil
	}
	return d.backend.Limits().CheckTexture(info.Width, info.Height)
}

// CreateTexture creates a texture from info.
func (d *Device) CreateTexture(info TextureInfo) (*Texture, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	if err := d.checkTexture(&info); err != nil {
		return nil, err
	}
	id, err := d.backend.CreateTexture(&info)
	if err != nil {
		return nil, fmt.Errorf("gfx: create texture: %w", err)
	}
	return newTexture(id, &info, d.cleaner), nil
}

// CreateRenderTexture creates a texture and a render target drawing into
// it. If the render target cannot be created the texture is released.
func (d *Device) CreateRenderTexture(info TextureInfo) (*RenderTexture, error) {
	tex, err := d.CreateTexture(info)
	if err != nil {
		return nil, err
	}
	id, err := d.backend.CreateRenderTexture(tex.ID(), &info)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("gfx: create render texture: %w", err)
	}
	return newRenderTexture(id, tex, d.cleaner), nil
}

// SetBufferData replaces the content of b.
func (d *Device) SetBufferData(b *Buffer, data []byte) {
	if d.checkOpen() != nil {
		Logger().Warn("gfx: set buffer data on closed device", "buffer", b.ID())
		return
	}
	d.backend.SetBufferData(b.ID(), data)
}

// UpdateTexture replaces a region of t.
func (d *Device) UpdateTexture(t *Texture, update TextureUpdate) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	info := t.Info()
	if err := ValidateUpdate(&info, &update); err != nil {
		return err
	}
	return d.backend.UpdateTexture(t.ID(), &update)
}

// ReadPixels copies a region of t into out.
func (d *Device) ReadPixels(t *Texture, out []byte, read TextureRead) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	info := t.Info()
	if err := ValidateRead(&info, &read, len(out)); err != nil {
		return err
	}
	return d.backend.ReadPixels(t.ID(), out, &read)
}

// Render executes cmds on the default surface.
func (d *Device) Render(cmds []Command) {
	d.render(cmds, NoTarget)
}

// RenderTo executes cmds on rt.
func (d *Device) RenderTo(rt *RenderTexture, cmds []Command) {
	d.render(cmds, rt.ID())
}

func (d *Device) render(cmds []Command, target uint64) {
	if d.checkOpen() != nil {
		Logger().Warn("gfx: render on closed device", "commands", len(cmds))
		return
	}
	d.backend.Render(cmds, target)
	d.frames.Add(1)
	d.commands.Add(uint64(len(cmds)))
	if d.opts.autoClean {
		d.Clean()
	}
}

// Clean passes every released resource to Backend.Clean and returns how
// many were cleaned. Resources released while Clean runs are cleaned by the
// next call.
func (d *Device) Clean() int {
	batch := d.cleaner.Drain()
	if len(batch) == 0 {
		return 0
	}
	d.backend.Clean(batch)
	d.cleaned.Add(uint64(len(batch)))
	Logger().Debug("gfx: cleaned resources", "count", len(batch))
	return len(batch)
}

// SetSize resizes the default surface.
func (d *Device) SetSize(width, height int) {
	d.mu.Lock()
	d.width, d.height = width, height
	d.mu.Unlock()
	d.backend.SetSize(width, height)
}

// Size returns the size last passed to SetSize.
func (d *Device) Size() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

// SetDPI sets the display scale factor.
func (d *Device) SetDPI(scale float64) {
	d.mu.Lock()
	d.dpi = scale
	d.mu.Unlock()
	d.backend.SetDPI(scale)
}

// DPI returns the scale factor last passed to SetDPI, 1 by default.
func (d *Device) DPI() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dpi
}

// Stats returns a snapshot of the Device counters.
func (d *Device) Stats() DeviceStats {
	return DeviceStats{
		Frames:   d.frames.Load(),
		Commands: d.commands.Load(),
		Cleaned:  d.cleaned.Load(),
		Pending:  d.cleaner.Len(),
	}
}

// Close runs a final Clean, then closes the backend if it has a Close
// method. Create methods fail with ErrDeviceClosed afterwards. Resources
// released later stay in the cleaner. Close is idempotent.
func (d *Device) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()
	n := d.Clean()
	if c, ok := d.backend.(interface{ Close() }); ok {
		c.Close()
	}
	Logger().Debug("gfx: device closed", "cleaned", n)
}
