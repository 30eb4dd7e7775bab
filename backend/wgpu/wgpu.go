// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNilDevice is returned when a Backend is built without a device or queue.
var ErrNilDevice = errors.New("wgpu: nil device or queue")

// Backend is a gfx.Backend drawing with a hal.Device.
type Backend struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue
	opts   options

	// release tears down what Open brought up; nil when the device is borrowed.
	release func()
	info    GPUInfo
	closed  bool

	nextID atomic.Uint64

	pipelines map[uint64]*pipeline
	buffers   map[uint64]*buffer
	textures  map[uint64]*texture
	targets   map[uint64]*renderTarget

	surface     *texture
	surfaceView hal.TextureView
	surfaceFmt  gputypes.TextureFormat
	width       int
	height      int
	dpi         float64

	stats Stats
}

var _ gfx.Backend = (*Backend)(nil)

// GPUInfo describes the adapter a Backend was opened on.
type GPUInfo struct {
	Name       string
	DeviceType gputypes.DeviceType
}

// String returns a human-readable description of the GPU.
func (g GPUInfo) String() string {
	if g.Name == "" {
		return "unknown GPU"
	}
	return fmt.Sprintf("%s (%v)", g.Name, g.DeviceType)
}

// New wraps an opened device. The caller keeps ownership of device and
// queue; Close destroys only the objects the Backend created.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Backend, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	b := &Backend{
		device:    device,
		queue:     queue,
		opts:      o,
		pipelines: make(map[uint64]*pipeline),
		buffers:   make(map[uint64]*buffer),
		textures:  make(map[uint64]*texture),
		targets:   make(map[uint64]*renderTarget),
		width:     o.width,
		height:    o.height,
		dpi:       1,
	}
	b.nextID.Store(1)
	return b, nil
}

// halProvider is implemented by hosts that expose their hal objects.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// NewFromProvider builds a Backend on the device of a host application.
// The provider must expose its hal device and queue.
func NewFromProvider(p gpucontext.DeviceProvider, opts ...Option) (*Backend, error) {
	if p == nil {
		return nil, ErrNilDevice
	}
	hp, ok := p.(halProvider)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider %T does not expose hal objects", p)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider device is %T, not hal.Device", hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider queue is %T, not hal.Queue", hp.HalQueue())
	}
	b, err := New(device, queue, opts...)
	if err != nil {
		return nil, err
	}
	b.surfaceFmt = p.SurfaceFormat()
	return b, nil
}

func (b *Backend) newID() uint64 {
	return b.nextID.Add(1) - 1
}

func (b *Backend) label(kind string, id uint64) string {
	return fmt.Sprintf("%s_%s_%d", b.opts.label, kind, id)
}

// APIName returns the rendering API the device runs on.
func (b *Backend) APIName() string { return b.opts.apiName }

// Info describes the adapter. It is empty when the device was not opened by
// Open.
func (b *Backend) Info() GPUInfo { return b.info }

// Limits returns the limits of the device.
func (b *Backend) Limits() gfx.Limits { return limitsOf(b.opts.limits) }

// CreateVertexBuffer registers a vertex buffer. GPU memory is allocated by
// the first SetBufferData.
func (b *Backend) CreateVertexBuffer(attrs []gfx.VertexAttr, step gfx.VertexStepMode) (uint64, error) {
	if _, err := vertexLayout(attrs, step); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.newID()
	b.buffers[id] = &buffer{
		kind:  gfx.BufferVertex,
		attrs: append([]gfx.VertexAttr(nil), attrs...),
		step:  step,
	}
	return id, nil
}

// CreateIndexBuffer registers a buffer of uint16 indices.
func (b *Backend) CreateIndexBuffer() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.newID()
	b.buffers[id] = &buffer{kind: gfx.BufferIndex}
	return id, nil
}

// CreateUniformBuffer registers a uniform block bound at slot.
func (b *Backend) CreateUniformBuffer(slot uint32, name string) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.newID()
	b.buffers[id] = &buffer{kind: gfx.BufferUniform, slot: slot, name: name}
	return id, nil
}

// SetBufferData uploads data, growing the GPU buffer when it does not fit.
func (b *Backend) SetBufferData(id uint64, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf, ok := b.buffers[id]
	if !ok {
		gfx.Logger().Warn("wgpu: set data of unknown buffer", "id", id)
		return
	}
	if err := b.upload(id, buf, data); err != nil {
		gfx.Logger().Error("wgpu: buffer upload failed", "id", id, "err", err)
	}
}

// CreateTexture allocates a texture, a view and a sampler, then uploads
// info.Bytes when present.
func (b *Backend) CreateTexture(info *gfx.TextureInfo) (uint64, error) {
	if err := info.Validate(); err != nil {
		return 0, err
	}
	if err := b.Limits().CheckTexture(info.Width, info.Height); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID.Load()
	t, err := b.createTexture(b.label("texture", id), info)
	if err != nil {
		return 0, err
	}
	b.newID()
	b.textures[id] = t
	return id, nil
}

// CreateRenderTexture makes textureID drawable. A depth plane is allocated
// when info.Depth is set.
func (b *Backend) CreateRenderTexture(textureID uint64, info *gfx.TextureInfo) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.textures[textureID]
	if !ok {
		return 0, fmt.Errorf("%w: texture %d", gfx.ErrUnknownResource, textureID)
	}
	if t.info.Format.IsDepth() {
		return 0, fmt.Errorf("%w: %s is not a color format", gfx.ErrUnsupportedTextureFormat, t.info.Format)
	}
	if err := b.Limits().CheckTexture(t.info.Width, t.info.Height); err != nil {
		return 0, err
	}
	id := b.nextID.Load()
	rt := &renderTarget{textureID: textureID}
	if info != nil && info.Depth {
		if err := b.createDepth(rt, b.label("depth", id), t.info.Width, t.info.Height); err != nil {
			return 0, err
		}
	}
	b.newID()
	b.targets[id] = rt
	return id, nil
}

// Clean destroys the GPU objects named by resources.
func (b *Backend) Clean(resources []gfx.Resource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range resources {
		if !b.destroy(r) {
			gfx.Logger().Warn("wgpu: clean of unknown resource", "resource", r)
			continue
		}
		b.stats.Cleaned++
	}
}

func (b *Backend) destroy(r gfx.Resource) bool {
	switch r.Kind {
	case gfx.ResourcePipeline:
		p, ok := b.pipelines[r.ID]
		if ok {
			p.destroy(b.device)
			delete(b.pipelines, r.ID)
		}
		return ok
	case gfx.ResourceBuffer:
		buf, ok := b.buffers[r.ID]
		if ok {
			buf.destroy(b.device)
			delete(b.buffers, r.ID)
		}
		return ok
	case gfx.ResourceTexture:
		t, ok := b.textures[r.ID]
		if ok {
			t.destroy(b.device)
			delete(b.textures, r.ID)
		}
		return ok
	case gfx.ResourceRenderTexture:
		rt, ok := b.targets[r.ID]
		if ok {
			rt.destroy(b.device)
			delete(b.targets, r.ID)
		}
		return ok
	}
	return false
}

// SetSize resizes the offscreen surface. The texture is reallocated by the
// next frame.
func (b *Backend) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		gfx.Logger().Warn("wgpu: invalid surface size", "width", width, "height", height)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if old := b.resizeSurface(width, height); old != nil {
		old.destroy(b.device)
	}
}

// resizeSurface records the new size and detaches the surface texture,
// which the caller destroys once no pending work references it.
func (b *Backend) resizeSurface(width, height int) *texture {
	if b.width == width && b.height == height {
		return nil
	}
	b.width, b.height = width, height
	old := b.surface
	b.surface = nil
	return old
}

// SetDPI records the display scale.
func (b *Backend) SetDPI(scale float64) {
	if scale <= 0 {
		return
	}
	b.mu.Lock()
	b.dpi = scale
	b.mu.Unlock()
}

// DPI returns the display scale.
func (b *Backend) DPI() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dpi
}

// SetSurfaceView makes NoTarget draw into a view owned by the host, such as
// the current swapchain image. A nil view restores the offscreen surface.
// An undefined format keeps the format reported by the provider.
func (b *Backend) SetSurfaceView(view hal.TextureView, format gputypes.TextureFormat, width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.surfaceView = view
	if format != gputypes.TextureFormatUndefined {
		b.surfaceFmt = format
	}
	if b.surfaceFmt == gputypes.TextureFormatUndefined {
		b.surfaceFmt = gputypes.TextureFormatBGRA8Unorm
	}
	if view != nil && width > 0 && height > 0 {
		if old := b.resizeSurface(width, height); old != nil {
			old.destroy(b.device)
		}
	}
}

// Live returns the number of live objects.
func (b *Backend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pipelines) + len(b.buffers) + len(b.textures) + len(b.targets)
}

// Close destroys every object the Backend still holds. A device brought up
// by Open is destroyed as well.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, rt := range b.targets {
		rt.destroy(b.device)
		delete(b.targets, id)
	}
	for id, t := range b.textures {
		t.destroy(b.device)
		delete(b.textures, id)
	}
	for id, buf := range b.buffers {
		buf.destroy(b.device)
		delete(b.buffers, id)
	}
	for id, p := range b.pipelines {
		p.destroy(b.device)
		delete(b.pipelines, id)
	}
	if b.surface != nil {
		b.surface.destroy(b.device)
		b.surface = nil
	}
	if b.release != nil {
		b.release()
		b.release = nil
	}
}
