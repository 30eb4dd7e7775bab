package wgpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

const triangleWGSL = `
@vertex
fn vs_main(@location(0) p: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(p, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

// createNoopDevice opens a device on the noop hal backend.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func newTestBackend(t *testing.T, opts ...Option) *Backend {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	b, err := New(device, queue, opts...)
	if err != nil {
		cleanup()
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		b.Close()
		cleanup()
	})
	return b
}

func pos2() []gfx.VertexAttr {
	return []gfx.VertexAttr{gfx.NewVertexAttr(0, gfx.VertexFormatFloat32x2)}
}

// newTrianglePipeline skips the test when the shader compiler rejects the
// source.
func newTrianglePipeline(t *testing.T, b *Backend, opts gfx.PipelineOptions) uint64 {
	t.Helper()
	id, err := b.CreatePipeline([]byte(triangleWGSL), []byte(triangleWGSL), pos2(), opts)
	if errors.Is(err, gfx.ErrShaderCompile) {
		t.Skipf("shader compiler unavailable: %v", err)
	}
	if err != nil {
		t.Fatalf("CreatePipeline failed: %v", err)
	}
	return id
}

func TestNewNilDevice(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("New(nil, nil) error = %v, want ErrNilDevice", err)
	}
}

type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

type mockQueue struct{}

type mockAdapter struct{}

type mockProvider struct {
	format gputypes.TextureFormat
}

func (m *mockProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (m *mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return m.format }

type halMockProvider struct {
	mockProvider
	device hal.Device
	queue  hal.Queue
}

func (m *halMockProvider) HalDevice() any { return m.device }
func (m *halMockProvider) HalQueue() any  { return m.queue }

func TestNewFromProvider(t *testing.T) {
	if _, err := NewFromProvider(&mockProvider{}); err == nil {
		t.Error("provider without hal objects accepted")
	}

	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	p := &halMockProvider{
		mockProvider: mockProvider{format: gputypes.TextureFormatBGRA8Unorm},
		device:       device,
		queue:        queue,
	}
	b, err := NewFromProvider(p)
	if err != nil {
		t.Fatalf("NewFromProvider failed: %v", err)
	}
	defer b.Close()
	if b.surfaceFmt != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("surface format = %v, want BGRA8Unorm", b.surfaceFmt)
	}
}

func TestAPINameAndLimits(t *testing.T) {
	b := newTestBackend(t, WithAPIName("noop"))
	if got := b.APIName(); got != "noop" {
		t.Errorf("APIName() = %q, want noop", got)
	}
	want := gputypes.DefaultLimits()
	l := b.Limits()
	if l.MaxTextureSize != want.MaxTextureDimension2D {
		t.Errorf("MaxTextureSize = %d, want %d", l.MaxTextureSize, want.MaxTextureDimension2D)
	}
	if l.MaxUniformBlocks != want.MaxUniformBuffersPerShaderStage {
		t.Errorf("MaxUniformBlocks = %d, want %d", l.MaxUniformBlocks, want.MaxUniformBuffersPerShaderStage)
	}
}

func TestIDsStartAtOneAndAreNotReused(t *testing.T) {
	b := newTestBackend(t)
	first, _ := b.CreateIndexBuffer()
	second, _ := b.CreateUniformBuffer(0, "u")
	if first != 1 || second != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", first, second)
	}
	b.Clean([]gfx.Resource{gfx.BufferResource(first)})
	third, _ := b.CreateVertexBuffer(pos2(), gfx.VertexStepModeVertex)
	if third != 3 {
		t.Errorf("id after Clean = %d, want 3", third)
	}
}

func TestFailedCreateIssuesNoID(t *testing.T) {
	b := newTestBackend(t)
	attrs := []gfx.VertexAttr{gfx.NewVertexAttr(0, gfx.VertexFormatUInt8x3)}
	if _, err := b.CreateVertexBuffer(attrs, gfx.VertexStepModeVertex); !errors.Is(err, gfx.ErrUnsupportedVertexFormat) {
		t.Errorf("CreateVertexBuffer(UInt8x3) error = %v, want ErrUnsupportedVertexFormat", err)
	}
	if _, err := b.CreateTexture(&gfx.TextureInfo{Width: 0, Height: 4}); !errors.Is(err, gfx.ErrInvalidTexture) {
		t.Errorf("CreateTexture(0x4) error = %v, want ErrInvalidTexture", err)
	}
	if _, err := b.CreatePipeline(nil, nil, pos2(), gfx.DefaultPipelineOptions()); !errors.Is(err, gfx.ErrShaderCompile) {
		t.Errorf("CreatePipeline(empty) error = %v, want ErrShaderCompile", err)
	}
	id, _ := b.CreateIndexBuffer()
	if id != 1 {
		t.Errorf("first successful id = %d, want 1", id)
	}
	if b.Live() != 1 {
		t.Errorf("Live() = %d, want 1", b.Live())
	}
}

func TestSetBufferDataGrows(t *testing.T) {
	b := newTestBackend(t)
	vb, _ := b.CreateVertexBuffer(pos2(), gfx.VertexStepModeVertex)
	ub, _ := b.CreateUniformBuffer(0, "transform")

	tests := []struct {
		id       uint64
		n        int
		wantCap  uint64
		wantSize uint64
	}{
		{vb, 3, 4, 4},
		{vb, 2, 4, 4},
		{vb, 100, 100, 100},
		{vb, 0, 100, 0},
		{ub, 20, 32, 32},
	}
	for _, tt := range tests {
		b.SetBufferData(tt.id, make([]byte, tt.n))
		buf := b.buffers[tt.id]
		if buf.cap != tt.wantCap || buf.size != tt.wantSize {
			t.Errorf("after %d bytes into %d: cap=%d size=%d, want cap=%d size=%d",
				tt.n, tt.id, buf.cap, buf.size, tt.wantCap, tt.wantSize)
		}
	}

	// Unknown ids are logged, not fatal.
	b.SetBufferData(999, []byte{1})
}

func TestTextureLifecycle(t *testing.T) {
	b := newTestBackend(t)
	info := &gfx.TextureInfo{
		Width:  4,
		Height: 2,
		Format: gfx.TextureFormatSRGBA8,
		Bytes:  make([]byte, 4*2*4),
		Depth:  true,
	}
	tex, err := b.CreateTexture(info)
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	if b.textures[tex].info.Bytes != nil {
		t.Error("texture kept a reference to the initial bytes")
	}
	rt, err := b.CreateRenderTexture(tex, info)
	if err != nil {
		t.Fatalf("CreateRenderTexture failed: %v", err)
	}
	if b.targets[rt].depthView == nil {
		t.Error("depth plane not allocated")
	}

	b.Clean([]gfx.Resource{gfx.RenderTextureResource(rt), gfx.TextureResource(tex), gfx.TextureResource(tex)})
	if b.Live() != 0 {
		t.Errorf("Live() = %d after Clean, want 0", b.Live())
	}
	if got := b.Stats().Cleaned; got != 2 {
		t.Errorf("Cleaned = %d, want 2", got)
	}
}

func TestCreateRenderTextureErrors(t *testing.T) {
	b := newTestBackend(t)
	if _, err := b.CreateRenderTexture(42, nil); !errors.Is(err, gfx.ErrUnknownResource) {
		t.Errorf("unknown texture error = %v, want ErrUnknownResource", err)
	}
	depth, err := b.CreateTexture(&gfx.TextureInfo{Width: 2, Height: 2, Format: gfx.TextureFormatDepth16})
	if err != nil {
		t.Fatalf("CreateTexture(Depth16) failed: %v", err)
	}
	if _, err := b.CreateRenderTexture(depth, nil); !errors.Is(err, gfx.ErrUnsupportedTextureFormat) {
		t.Errorf("depth target error = %v, want ErrUnsupportedTextureFormat", err)
	}
}

func TestTextureRegionValidation(t *testing.T) {
	b := newTestBackend(t)
	tex, err := b.CreateTexture(&gfx.TextureInfo{Width: 4, Height: 4, Format: gfx.TextureFormatR8})
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}

	tests := []struct {
		name string
		u    gfx.TextureUpdate
		want error
	}{
		{"ok", gfx.TextureUpdate{X: 1, Y: 1, Width: 2, Height: 2, Format: gfx.TextureFormatR8, Bytes: make([]byte, 4)}, nil},
		{"outside", gfx.TextureUpdate{X: 3, Y: 0, Width: 2, Height: 1, Format: gfx.TextureFormatR8, Bytes: make([]byte, 2)}, gfx.ErrInvalidRegion},
		{"format", gfx.TextureUpdate{Width: 1, Height: 1, Format: gfx.TextureFormatSRGBA8, Bytes: make([]byte, 4)}, gfx.ErrFormatMismatch},
		{"short", gfx.TextureUpdate{Width: 2, Height: 2, Format: gfx.TextureFormatR8, Bytes: make([]byte, 3)}, gfx.ErrInvalidRegion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.UpdateTexture(tex, &tt.u)
			if tt.want == nil && err != nil {
				t.Errorf("UpdateTexture() error = %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("UpdateTexture() error = %v, want %v", err, tt.want)
			}
		})
	}

	out := make([]byte, 3)
	r := &gfx.TextureRead{Width: 2, Height: 2, Format: gfx.TextureFormatR8}
	if err := b.ReadPixels(tex, out, r); !errors.Is(err, gfx.ErrInvalidRegion) {
		t.Errorf("ReadPixels into short buffer error = %v, want ErrInvalidRegion", err)
	}
	if err := b.ReadPixels(77, out, r); !errors.Is(err, gfx.ErrUnknownResource) {
		t.Errorf("ReadPixels of unknown texture error = %v, want ErrUnknownResource", err)
	}
}

func TestRenderRecordsDraws(t *testing.T) {
	b := newTestBackend(t, WithSize(8, 8))
	p := newTrianglePipeline(t, b, gfx.DefaultPipelineOptions())
	vb, _ := b.CreateVertexBuffer(pos2(), gfx.VertexStepModeVertex)
	b.SetBufferData(vb, make([]byte, 3*8))

	red := gfx.Color{R: 1, A: 1}
	cmds := []gfx.Command{
		gfx.Begin{Clear: &gfx.ClearOptions{Color: &red}},
		gfx.SetPipeline{ID: p},
		gfx.BindBuffer{ID: vb, Kind: gfx.BufferVertex},
		gfx.Draw{Offset: 0, Count: 3},
		gfx.Draw{Offset: 1, Count: 3}, // past the data
		gfx.End{},
	}
	b.Render(cmds, gfx.NoTarget)

	s := b.Stats()
	if s.Passes != 1 || s.DrawCalls != 1 || s.Dropped != 1 {
		t.Errorf("stats = %+v, want 1 pass, 1 draw, 1 dropped", s)
	}
	if b.surface == nil {
		t.Error("offscreen surface not allocated")
	}
}

func TestRenderBindsUniformsAndTextures(t *testing.T) {
	b := newTestBackend(t)
	opts := gfx.DefaultPipelineOptions()
	opts.Uniforms = []uint32{0}
	opts.Textures = []uint32{0}
	p := newTrianglePipeline(t, b, opts)
	if n := b.pipelines[p].bindings(); n != 3 {
		t.Fatalf("bindings() = %d, want 3", n)
	}

	vb, _ := b.CreateVertexBuffer(pos2(), gfx.VertexStepModeVertex)
	b.SetBufferData(vb, make([]byte, 3*8))
	ub, _ := b.CreateUniformBuffer(0, "u")
	tex, _ := b.CreateTexture(&gfx.TextureInfo{Width: 1, Height: 1, Format: gfx.TextureFormatSRGBA8})

	base := []gfx.Command{
		gfx.Begin{},
		gfx.SetPipeline{ID: p},
		gfx.BindBuffer{ID: vb, Kind: gfx.BufferVertex},
	}
	draw := []gfx.Command{gfx.Draw{Count: 3}, gfx.End{}}

	// Uniform bound but empty, texture missing.
	b.Render(append(append(append([]gfx.Command{}, base...), gfx.BindBuffer{ID: ub, Kind: gfx.BufferUniform}), draw...), gfx.NoTarget)
	if s := b.Stats(); s.DrawCalls != 0 || s.Dropped != 1 {
		t.Fatalf("stats = %+v, want the draw dropped", s)
	}

	b.SetBufferData(ub, make([]byte, 64))
	cmds := append(append([]gfx.Command{}, base...),
		gfx.BindBuffer{ID: ub, Kind: gfx.BufferUniform},
		gfx.BindTexture{ID: tex, Slot: 0},
	)
	b.Render(append(cmds, draw...), gfx.NoTarget)
	if s := b.Stats(); s.DrawCalls != 1 || s.BindGroups != 1 {
		t.Errorf("stats = %+v, want 1 draw with 1 bind group", s)
	}
}

func TestRenderDropsInvalidCommands(t *testing.T) {
	b := newTestBackend(t)
	cmds := []gfx.Command{
		gfx.Draw{Count: 3},
		gfx.End{},
		gfx.SetPipeline{ID: 9},
		gfx.BindTexture{ID: 9},
	}
	b.Render(cmds, gfx.NoTarget)
	s := b.Stats()
	if s.Dropped != 4 {
		t.Errorf("Dropped = %d, want 4", s.Dropped)
	}
	if s.Submits != 0 {
		t.Errorf("Submits = %d for a batch without passes, want 0", s.Submits)
	}

	b.Render([]gfx.Command{gfx.Begin{}, gfx.End{}}, 1234)
	if got := b.Stats().Dropped; got != 6 {
		t.Errorf("Dropped = %d after unknown target, want 6", got)
	}
}

func TestSurfaceResize(t *testing.T) {
	b := newTestBackend(t, WithSize(4, 4))
	b.Render([]gfx.Command{gfx.Begin{}, gfx.End{}}, gfx.NoTarget)
	if b.surface == nil {
		t.Fatal("surface not allocated")
	}
	b.Render([]gfx.Command{gfx.Size{Width: 16, Height: 8}, gfx.Begin{}, gfx.End{}}, gfx.NoTarget)
	if w, h := b.Surface(); w != 16 || h != 8 {
		t.Errorf("Surface() = %dx%d, want 16x8", w, h)
	}
	if got := b.surface.info.Width; got != 16 {
		t.Errorf("surface texture width = %d, want 16", got)
	}
	b.SetSize(0, 3)
	if w, _ := b.Surface(); w != 16 {
		t.Errorf("invalid SetSize changed the surface to width %d", w)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	b, err := New(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	released := 0
	b.release = func() { released++ }
	_, _ = b.CreateTexture(&gfx.TextureInfo{Width: 1, Height: 1})
	b.Close()
	b.Close()
	if released != 1 {
		t.Errorf("release ran %d times, want 1", released)
	}
	if b.Live() != 0 {
		t.Errorf("Live() = %d after Close, want 0", b.Live())
	}
}

func TestUnpad(t *testing.T) {
	src := []byte{1, 2, 0, 0, 3, 4, 0, 0}
	dst := make([]byte, 4)
	unpad(dst, src, 2, 4, 2)
	want := []byte{1, 2, 3, 4}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("unpad = %v, want %v", dst, want)
		}
	}
}
