// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// ResourceKind identifies the kind of GPU object a Resource refers to.
type ResourceKind uint8

// Resource kinds.
const (
	ResourceBuffer ResourceKind = iota
	ResourceTexture
	ResourcePipeline
	ResourceRenderTexture
)

// String returns the kind name.
func (k ResourceKind) String() string {
	switch k {
	case ResourceBuffer:
		return "Buffer"
	case ResourceTexture:
		return "Texture"
	case ResourcePipeline:
		return "Pipeline"
	case ResourceRenderTexture:
		return "RenderTexture"
	default:
		return fmt.Sprintf("ResourceKind(%d)", uint8(k))
	}
}

// Resource tags a backend object by kind and id. It is a comparable value
// and can be used directly as a map key.
type Resource struct {
	Kind ResourceKind
	ID   uint64
}

// BufferResource returns the tag of buffer id.
func BufferResource(id uint64) Resource { return Resource{Kind: ResourceBuffer, ID: id} }

// TextureResource returns the tag of texture id.
func TextureResource(id uint64) Resource { return Resource{Kind: ResourceTexture, ID: id} }

// PipelineResource returns the tag of pipeline id.
func PipelineResource(id uint64) Resource { return Resource{Kind: ResourcePipeline, ID: id} }

// RenderTextureResource returns the tag of render texture id.
func RenderTextureResource(id uint64) Resource {
	return Resource{Kind: ResourceRenderTexture, ID: id}
}

// String formats the tag as Kind(id), e.g. "Buffer(7)".
func (r Resource) String() string {
	return fmt.Sprintf("%s(%d)", r.Kind, r.ID)
}

func compareResources(a, b Resource) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// ResourceCleaner collects the resources whose last handle has been released
// and that are waiting for Backend.Clean.
//
// Any number of goroutines may Add concurrently; one consumer (the Device)
// drains it. A tag is held at most once between drains, so a backend never
// sees the same id twice in one batch.
//
// ResourceCleaner is safe for concurrent use.
type ResourceCleaner struct {
	mu      sync.RWMutex
	pending map[Resource]struct{}
}

// NewResourceCleaner creates an empty cleaner.
func NewResourceCleaner() *ResourceCleaner {
	return &ResourceCleaner{pending: make(map[Resource]struct{})}
}

// Add enqueues r. Adding a tag that is already pending is a no-op.
// Add waits for the lock and never drops r.
func (c *ResourceCleaner) Add(r Resource) {
	c.mu.Lock()
	c.pending[r] = struct{}{}
	c.mu.Unlock()
}

// Len returns the number of pending resources.
func (c *ResourceCleaner) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pending)
}

// Contains reports whether r is pending.
func (c *ResourceCleaner) Contains(r Resource) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.pending[r]
	return ok
}

// Pending returns a sorted copy of the pending set. The set is not modified.
func (c *ResourceCleaner) Pending() []Resource {
	c.mu.RLock()
	out := make([]Resource, 0, len(c.pending))
	for r := range c.pending {
		out = append(out, r)
	}
	c.mu.RUnlock()
	slices.SortFunc(out, compareResources)
	return out
}

// Reset clears the pending set.
//
// A caller that reads with Pending and then calls Reset loses any tag added
// between the two calls. Drivers use Drain instead.
func (c *ResourceCleaner) Reset() {
	c.mu.Lock()
	clear(c.pending)
	c.mu.Unlock()
}

// Drain returns the pending set sorted by kind and id, and resets it, under a
// single lock acquisition. A tag added concurrently is either in the returned
// batch or stays pending for the next Drain.
func (c *ResourceCleaner) Drain() []Resource {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return nil
	}
	taken := c.pending
	c.pending = make(map[Resource]struct{}, len(taken))
	c.mu.Unlock()

	out := make([]Resource, 0, len(taken))
	for r := range taken {
		out = append(out, r)
	}
	slices.SortFunc(out, compareResources)
	return out
}
