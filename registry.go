// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"fmt"
	"slices"
	"sync"
)

// Backend names.
const (
	BackendWGPU     = "wgpu"
	BackendSoftware = "software"
)

// BackendFactory creates a new backend instance.
type BackendFactory func() (Backend, error)

var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)

	// First available wins.
	backendPriority = []string{BackendWGPU, BackendSoftware}
)

// Register registers a backend factory under name, replacing any previous
// factory with that name. Backend packages call it from init.
func Register(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	registryMu.RLock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	registryMu.RUnlock()
	slices.Sort(names)
	return names
}

// IsRegistered reports whether a backend is registered under name.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

func lookup(name string) (BackendFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := backends[name]
	return f, ok
}

// Get creates the backend registered under name.
func Get(name string) (Backend, error) {
	factory, ok := lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	b, err := factory()
	if err != nil {
		return nil, fmt.Errorf("gfx: open backend %q: %w", name, err)
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %q returned nil", ErrBackendNotAvailable, name)
	}
	return b, nil
}

// Default creates the best available backend. Priority: wgpu, software,
// then any other registered backend in name order. A backend whose factory
// fails is skipped.
func Default() (Backend, error) {
	order := slices.Clone(backendPriority)
	for _, name := range Available() {
		if !slices.Contains(order, name) {
			order = append(order, name)
		}
	}

	var errs []error
	for _, name := range order {
		if !IsRegistered(name) {
			continue
		}
		b, err := Get(name)
		if err != nil {
			Logger().Debug("gfx: backend unavailable", "backend", name, "err", err)
			errs = append(errs, err)
			continue
		}
		return b, nil
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrBackendNotAvailable, errs[len(errs)-1])
	}
	return nil, ErrBackendNotAvailable
}

// Open creates the backend registered under name and wraps it in a Device.
func Open(name string, opts ...DeviceOption) (*Device, error) {
	b, err := Get(name)
	if err != nil {
		return nil, err
	}
	return NewDevice(b, opts...)
}

// OpenDefault wraps Default in a Device.
func OpenDefault(opts ...DeviceOption) (*Device, error) {
	b, err := Default()
	if err != nil {
		return nil, err
	}
	return NewDevice(b, opts...)
}
