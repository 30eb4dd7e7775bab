// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import "github.com/gogpu/gfx"

// Option configures a Backend.
type Option func(*options)

type options struct {
	width, height   int
	limits          gfx.Limits
	validateShaders bool
}

func defaultOptions() options {
	return options{
		width:  1,
		height: 1,
		limits: gfx.DefaultLimits(),
	}
}

// WithSize sets the initial size of the default surface.
func WithSize(width, height int) Option {
	return func(o *options) {
		o.width, o.height = width, height
	}
}

// WithLimits overrides the limits reported by Limits.
func WithLimits(l gfx.Limits) Option {
	return func(o *options) {
		o.limits = l
	}
}

// WithShaderValidation makes CreatePipeline compile both shader stages as
// WGSL (or accept SPIR-V) and reject sources that fail.
func WithShaderValidation(enabled bool) Option {
	return func(o *options) {
		o.validateShaders = enabled
	}
}
