// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"strings"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/internal/shader"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// variantKey selects a render pipeline compiled for one kind of target and
// one arrangement of vertex buffers.
type variantKey struct {
	format gputypes.TextureFormat
	depth  bool
	layout string
}

type pipeline struct {
	label  string
	attrs  []gfx.VertexAttr
	opts   gfx.PipelineOptions
	vs, fs hal.ShaderModule

	bindLayout hal.BindGroupLayout
	layout     hal.PipelineLayout
	variants   map[variantKey]hal.RenderPipeline
}

// bindings reports how many bind group entries the pipeline declares.
func (p *pipeline) bindings() int {
	return len(p.opts.Uniforms) + 2*len(p.opts.Textures)
}

func (p *pipeline) destroy(device hal.Device) {
	for k, rp := range p.variants {
		device.DestroyRenderPipeline(rp)
		delete(p.variants, k)
	}
	if p.layout != nil {
		device.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
	if p.bindLayout != nil {
		device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.fs != nil {
		device.DestroyShaderModule(p.fs)
		p.fs = nil
	}
	if p.vs != nil {
		device.DestroyShaderModule(p.vs)
		p.vs = nil
	}
}

// CreatePipeline compiles both stages and builds the pipeline for the
// offscreen surface with a single interleaved vertex buffer, so shader and
// layout errors surface here rather than at draw time.
func (b *Backend) CreatePipeline(vertexSource, fragmentSource []byte, attrs []gfx.VertexAttr, opts gfx.PipelineOptions) (uint64, error) {
	layouts, err := vertexLayout(attrs, gfx.VertexStepModeVertex)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID.Load()
	p := &pipeline{
		label:    b.label("pipeline", id),
		attrs:    append([]gfx.VertexAttr(nil), attrs...),
		opts:     opts.Clone(),
		variants: make(map[variantKey]hal.RenderPipeline),
	}
	if err := b.buildPipeline(p, vertexSource, fragmentSource); err != nil {
		p.destroy(b.device)
		return 0, err
	}
	key := variantKey{format: gputypes.TextureFormatRGBA8UnormSrgb, depth: opts.DepthStencil != nil, layout: layoutKey(layouts)}
	if _, err := b.variant(p, key, layouts); err != nil {
		p.destroy(b.device)
		return 0, err
	}
	b.newID()
	b.pipelines[id] = p
	return id, nil
}

func (b *Backend) shaderModule(label string, src []byte) (hal.ShaderModule, error) {
	words, err := shader.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", gfx.ErrShaderCompile, label, err)
	}
	m, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", gfx.ErrShaderCompile, label, err)
	}
	return m, nil
}

func (b *Backend) buildPipeline(p *pipeline, vertexSource, fragmentSource []byte) error {
	var err error
	if p.vs, err = b.shaderModule(p.label+"_vs", vertexSource); err != nil {
		return err
	}
	if p.fs, err = b.shaderModule(p.label+"_fs", fragmentSource); err != nil {
		return err
	}

	entries := make([]gputypes.BindGroupLayoutEntry, 0, p.bindings())
	stages := gputypes.ShaderStageVertex | gputypes.ShaderStageFragment
	for range p.opts.Uniforms {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    uint32(len(entries)),
			Visibility: stages,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		})
	}
	for range p.opts.Textures {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    uint32(len(entries)),
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    uint32(len(entries) + 1),
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			})
	}

	if p.bindLayout, err = b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   p.label + "_bind_layout",
		Entries: entries,
	}); err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	if p.layout, err = b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.label + "_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	}); err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	return nil
}

// layoutKey identifies an arrangement of vertex buffers.
func layoutKey(layouts []gputypes.VertexBufferLayout) string {
	var sb strings.Builder
	for _, l := range layouts {
		fmt.Fprintf(&sb, "%d/%d:", l.ArrayStride, l.StepMode)
		for _, a := range l.Attributes {
			fmt.Fprintf(&sb, "%d@%d+%d,", a.Format, a.ShaderLocation, a.Offset)
		}
		sb.WriteByte(';')
	}
	return sb.String()
}

// variant returns the render pipeline for key, building it on first use.
func (b *Backend) variant(p *pipeline, key variantKey, layouts []gputypes.VertexBufferLayout) (hal.RenderPipeline, error) {
	if rp, ok := p.variants[key]; ok {
		return rp, nil
	}
	desc := &hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("%s_%d", p.label, len(p.variants)),
		Layout: p.layout,
		Vertex: hal.VertexState{
			Module:     p.vs,
			EntryPoint: b.opts.vsEntry,
			Buffers:    layouts,
		},
		Fragment: &hal.FragmentState{
			Module:     p.fs,
			EntryPoint: b.opts.fsEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    key.format,
				Blend:     blendState(&p.opts),
				WriteMask: colorWriteMask(p.opts.ColorMask),
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: cullMode(p.opts.CullMode),
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	}
	if key.depth {
		desc.DepthStencil = b.depthState(p.opts.DepthStencil)
	}
	rp, err := b.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("create render pipeline: %w", err)
	}
	p.variants[key] = rp
	return rp, nil
}

// depthState describes the depth attachment of a target. A pipeline
// without depth testing still declares it so it can draw into targets that
// carry one.
func (b *Backend) depthState(ds *gfx.DepthStencil) *hal.DepthStencilState {
	state := &hal.DepthStencilState{
		Format:            b.opts.depthFormat,
		DepthWriteEnabled: false,
		DepthCompare:      gputypes.CompareFunctionAlways,
		StencilFront:      keepStencil(),
		StencilBack:       keepStencil(),
	}
	if ds != nil {
		state.DepthWriteEnabled = ds.Write
		state.DepthCompare = compareFunction(ds.Compare)
	}
	return state
}

func keepStencil() hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
}
