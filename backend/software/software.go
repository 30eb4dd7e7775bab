// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"fmt"
	"image"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/internal/shader"
)

// APIName is the value returned by Backend.APIName.
const APIName = "software"

type pipeline struct {
	attrs  []gfx.VertexAttr
	stride int
	opts   gfx.PipelineOptions
}

type buffer struct {
	kind   gfx.BufferKind
	attrs  []gfx.VertexAttr
	step   gfx.VertexStepMode
	stride int
	slot   uint32
	name   string
	data   []byte
}

// renderTarget draws into a texture owned by the backend's texture map.
type renderTarget struct {
	textureID uint64
	depth     *texture
}

// Backend is a CPU gfx.Backend.
//
// Backend is safe for concurrent use; the gfx contract still expects a
// single driving goroutine.
type Backend struct {
	mu   sync.Mutex
	opts options

	nextID atomic.Uint64

	pipelines map[uint64]*pipeline
	buffers   map[uint64]*buffer
	textures  map[uint64]*texture
	targets   map[uint64]*renderTarget

	surface *texture
	dpi     float64
	stats   Stats
}

var _ gfx.Backend = (*Backend)(nil)

// New creates a software backend.
func New(opts ...Option) *Backend {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	b := &Backend{
		opts:      o,
		pipelines: make(map[uint64]*pipeline),
		buffers:   make(map[uint64]*buffer),
		textures:  make(map[uint64]*texture),
		targets:   make(map[uint64]*renderTarget),
		surface: newTexture(&gfx.TextureInfo{
			Width:  max(o.width, 1),
			Height: max(o.height, 1),
			Format: gfx.TextureFormatSRGBA8,
		}),
		dpi: 1,
	}
	// Start ID generation at 1 (0 is gfx.NoTarget)
	b.nextID.Store(1)
	return b
}

func (b *Backend) newID() uint64 {
	return b.nextID.Add(1) - 1
}

// APIName returns "software".
func (b *Backend) APIName() string { return APIName }

// Limits returns the configured limits.
func (b *Backend) Limits() gfx.Limits { return b.opts.limits }

func checkAttrs(attrs []gfx.VertexAttr) error {
	for _, a := range attrs {
		if a.Format.ComponentCount() == 0 {
			return fmt.Errorf("%w: %s at location %d", gfx.ErrUnsupportedVertexFormat, a.Format, a.Location)
		}
	}
	return nil
}

// CreatePipeline records the pipeline layout. With shader validation
// enabled both sources must compile.
func (b *Backend) CreatePipeline(vs, fs []byte, attrs []gfx.VertexAttr, opts gfx.PipelineOptions) (uint64, error) {
	if err := checkAttrs(attrs); err != nil {
		return 0, err
	}
	if len(vs) == 0 || len(fs) == 0 {
		return 0, fmt.Errorf("%w: empty shader source", gfx.ErrShaderCompile)
	}
	if b.opts.validateShaders {
		for stage, src := range map[string][]byte{"vertex": vs, "fragment": fs} {
			if _, err := shader.Compile(src); err != nil {
				return 0, fmt.Errorf("%w: %s: %w", gfx.ErrShaderCompile, stage, err)
			}
		}
	}

	p := &pipeline{attrs: slices.Clone(attrs), stride: gfx.VertexStride(attrs), opts: opts.Clone()}
	id := b.newID()
	b.mu.Lock()
	b.pipelines[id] = p
	b.mu.Unlock()
	gfx.Logger().Debug("software: pipeline created", "id", id, "attrs", len(attrs))
	return id, nil
}

func (b *Backend) addBuffer(buf *buffer) uint64 {
	id := b.newID()
	b.mu.Lock()
	b.buffers[id] = buf
	b.mu.Unlock()
	return id
}

// CreateVertexBuffer creates an empty vertex buffer.
func (b *Backend) CreateVertexBuffer(attrs []gfx.VertexAttr, step gfx.VertexStepMode) (uint64, error) {
	if err := checkAttrs(attrs); err != nil {
		return 0, err
	}
	return b.addBuffer(&buffer{
		kind:   gfx.BufferVertex,
		attrs:  slices.Clone(attrs),
		step:   step,
		stride: gfx.VertexStride(attrs),
	}), nil
}

// CreateIndexBuffer creates an empty buffer of uint16 indices.
func (b *Backend) CreateIndexBuffer() (uint64, error) {
	return b.addBuffer(&buffer{kind: gfx.BufferIndex}), nil
}

// CreateUniformBuffer creates an empty uniform buffer.
func (b *Backend) CreateUniformBuffer(slot uint32, name string) (uint64, error) {
	return b.addBuffer(&buffer{kind: gfx.BufferUniform, slot: slot, name: name}), nil
}

// SetBufferData replaces the buffer content with a copy of data.
func (b *Backend) SetBufferData(id uint64, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf, ok := b.buffers[id]
	if !ok {
		gfx.Logger().Warn("software: SetBufferData on unknown buffer", "id", id)
		return
	}
	buf.data = append(buf.data[:0], data...)
}

// CreateTexture allocates texel storage.
func (b *Backend) CreateTexture(info *gfx.TextureInfo) (uint64, error) {
	if err := info.Validate(); err != nil {
		return 0, err
	}
	if err := b.opts.limits.CheckTexture(info.Width, info.Height); err != nil {
		return 0, err
	}
	t := newTexture(info)
	id := b.newID()
	b.mu.Lock()
	b.textures[id] = t
	b.mu.Unlock()
	return id, nil
}

// CreateRenderTexture creates a render target drawing into textureID.
func (b *Backend) CreateRenderTexture(textureID uint64, info *gfx.TextureInfo) (uint64, error) {
	b.mu.Lock()
	tex, ok := b.textures[textureID]
	b.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("%w: texture %d", gfx.ErrUnknownResource, textureID)
	}
	if tex.info.Format.IsDepth() {
		return 0, fmt.Errorf("%w: %s is not a color format", gfx.ErrUnsupportedTextureFormat, tex.info.Format)
	}
	if err := b.opts.limits.CheckTexture(tex.info.Width, tex.info.Height); err != nil {
		return 0, err
	}

	rt := &renderTarget{textureID: textureID}
	if info != nil && info.Depth {
		rt.depth = newTexture(&gfx.TextureInfo{
			Width:  tex.info.Width,
			Height: tex.info.Height,
			Format: gfx.TextureFormatDepth16,
		})
	}
	id := b.newID()
	b.mu.Lock()
	b.targets[id] = rt
	b.mu.Unlock()
	return id, nil
}

// UpdateTexture replaces a region of a texture.
func (b *Backend) UpdateTexture(id uint64, u *gfx.TextureUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	tex, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("%w: texture %d", gfx.ErrUnknownResource, id)
	}
	if err := gfx.ValidateUpdate(&tex.info, u); err != nil {
		return err
	}
	tex.write(u)
	return nil
}

// ReadPixels copies a region of a texture into out.
func (b *Backend) ReadPixels(id uint64, out []byte, r *gfx.TextureRead) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	tex, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("%w: texture %d", gfx.ErrUnknownResource, id)
	}
	if err := gfx.ValidateRead(&tex.info, r, len(out)); err != nil {
		return err
	}
	tex.read(r, out)
	return nil
}

// Clean frees the named objects. Unknown ids are logged and skipped.
func (b *Backend) Clean(resources []gfx.Resource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range resources {
		var ok bool
		switch r.Kind {
		case gfx.ResourceBuffer:
			_, ok = b.buffers[r.ID]
			delete(b.buffers, r.ID)
		case gfx.ResourceTexture:
			_, ok = b.textures[r.ID]
			delete(b.textures, r.ID)
		case gfx.ResourcePipeline:
			_, ok = b.pipelines[r.ID]
			delete(b.pipelines, r.ID)
		case gfx.ResourceRenderTexture:
			_, ok = b.targets[r.ID]
			delete(b.targets, r.ID)
		}
		if !ok {
			gfx.Logger().Warn("software: clean of unknown resource", "resource", r.String())
			continue
		}
		b.stats.Cleaned++
	}
}

// SetSize resizes the default surface. Content is discarded.
func (b *Backend) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		gfx.Logger().Warn("software: ignoring invalid surface size", "width", width, "height", height)
		return
	}
	b.mu.Lock()
	b.surface.resize(width, height)
	b.mu.Unlock()
}

// SetDPI records the display scale. The surface is sized in pixels and is
// not affected.
func (b *Backend) SetDPI(scale float64) {
	b.mu.Lock()
	b.dpi = scale
	b.mu.Unlock()
}

// DPI returns the scale last passed to SetDPI.
func (b *Backend) DPI() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dpi
}

// Surface returns a copy of the default surface.
func (b *Backend) Surface() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surface.rgba()
}

// TextureImage returns a copy of texture id as an RGBA image.
func (b *Backend) TextureImage(id uint64) (*image.RGBA, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tex, ok := b.textures[id]
	if !ok {
		return nil, fmt.Errorf("%w: texture %d", gfx.ErrUnknownResource, id)
	}
	return tex.rgba(), nil
}

// Live returns the number of objects currently held.
func (b *Backend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pipelines) + len(b.buffers) + len(b.textures) + len(b.targets)
}

// Close frees every object.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.pipelines)
	clear(b.buffers)
	clear(b.textures)
	clear(b.targets)
}
