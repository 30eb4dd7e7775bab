// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"time"

	"github.com/gogpu/gputypes"
)

// Option configures a Backend.
type Option func(*options)

type options struct {
	label      string
	limits     gputypes.Limits
	vsEntry    string
	fsEntry    string
	width      int
	height     int
	timeout    time.Duration
	apiName    string
	depthFormat gputypes.TextureFormat
}

func defaultOptions() options {
	return options{
		label:      "gfx",
		limits:     gputypes.DefaultLimits(),
		vsEntry:    "vs_main",
		fsEntry:    "fs_main",
		width:      1,
		height:     1,
		timeout:    5 * time.Second,
		apiName:    "vulkan",
		depthFormat: gputypes.TextureFormatDepth24PlusStencil8,
	}
}

// WithLabel sets the prefix of every GPU object label.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

// WithLimits reports the limits the device was opened with.
func WithLimits(l gputypes.Limits) Option {
	return func(o *options) {
		o.limits = l
	}
}

// WithEntryPoints sets the shader entry points.
func WithEntryPoints(vertex, fragment string) Option {
	return func(o *options) {
		if vertex != "" {
			o.vsEntry = vertex
		}
		if fragment != "" {
			o.fsEntry = fragment
		}
	}
}

// WithSize sets the initial size of the offscreen surface.
func WithSize(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.width, o.height = width, height
		}
	}
}

// WithTimeout bounds how long a frame or readback waits for the GPU.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithAPIName overrides the name reported by APIName.
func WithAPIName(name string) Option {
	return func(o *options) {
		o.apiName = name
	}
}
