// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

// DeviceOption configures a Device during creation.
//
// Example:
//
//	// Clean only when asked
//	dev, err := gfx.NewDevice(b, gfx.WithAutoClean(false))
type DeviceOption func(*deviceOptions)

type deviceOptions struct {
	autoClean   bool
	cleaner     *ResourceCleaner
	limitChecks bool
}

func defaultDeviceOptions() deviceOptions {
	return deviceOptions{
		autoClean:   true,
		limitChecks: true,
	}
}

// WithAutoClean controls whether Render cleans released resources after
// every batch. Enabled by default. When disabled the application calls
// Device.Clean itself.
func WithAutoClean(enabled bool) DeviceOption {
	return func(o *deviceOptions) {
		o.autoClean = enabled
	}
}

// WithCleaner makes the Device use c instead of a private cleaner. Handles
// created by the Device enqueue into c.
func WithCleaner(c *ResourceCleaner) DeviceOption {
	return func(o *deviceOptions) {
		o.cleaner = c
	}
}

// WithLimitChecks controls whether texture creation is checked against
// Backend.Limits before reaching the backend. Enabled by default.
func WithLimitChecks(enabled bool) DeviceOption {
	return func(o *deviceOptions) {
		o.limitChecks = enabled
	}
}
