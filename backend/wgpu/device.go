// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // registers the Vulkan hal backend
)

func init() {
	gfx.Register(gfx.BackendWGPU, func() (gfx.Backend, error) {
		b, err := Open()
		if err != nil {
			return nil, err
		}
		return b, nil
	})
}

// selectAdapter prefers a discrete or integrated GPU over software adapters.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	if len(adapters) == 0 {
		return nil
	}
	return &adapters[0]
}

// Open brings up a Vulkan device and wraps it. Close destroys the device.
func Open(opts ...Option) (*Backend, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan hal backend not registered", gfx.ErrBackendNotAvailable)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", gfx.ErrBackendNotAvailable, err)
	}
	selected := selectAdapter(instance.EnumerateAdapters(nil))
	if selected == nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no GPU adapters found", gfx.ErrBackendNotAvailable)
	}
	limits := gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %w", gfx.ErrBackendNotAvailable, err)
	}

	b, err := New(openDev.Device, openDev.Queue, append([]Option{WithLimits(limits)}, opts...)...)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	b.info = GPUInfo{Name: selected.Info.Name, DeviceType: selected.Info.DeviceType}
	b.release = func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	gfx.Logger().Info("wgpu: device opened", "gpu", b.info.String())
	return b, nil
}
