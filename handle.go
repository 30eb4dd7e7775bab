// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

// cell is the reference-counted state shared by every owner of one id.
// When the count reaches zero the id is enqueued into the cleaner once.
type cell struct {
	res      Resource
	cleaner  *ResourceCleaner
	refs     atomic.Int64
	released atomic.Bool

	// onRelease runs before the tag is enqueued. Render textures use it to
	// drop the texture they keep alive.
	onRelease func()
}

func newCell(res Resource, cleaner *ResourceCleaner) *cell {
	c := &cell{res: res, cleaner: cleaner}
	c.refs.Store(1)
	return c
}

func (c *cell) acquire() {
	c.refs.Add(1)
}

func (c *cell) release() {
	if c.refs.Add(-1) != 0 {
		return
	}
	if !c.released.CompareAndSwap(false, true) {
		return
	}
	if c.onRelease != nil {
		c.onRelease()
	}
	c.cleaner.Add(c.res)
	Logger().Debug("gfx: resource released", "resource", c.res.String())
}

// owner is one reference to a cell. It is dropped at most once.
type owner struct {
	cell    *cell
	dropped *atomic.Bool
}

func (o owner) drop() bool {
	if !o.dropped.CompareAndSwap(false, true) {
		return false
	}
	o.cell.release()
	return true
}

// dropOwner is the garbage-collector path for owners that were never
// released explicitly.
func dropOwner(o owner) {
	o.drop()
}

// handle is embedded in every owning handle type.
type handle struct {
	owner
	cleanup runtime.Cleanup
}

func newHandle(res Resource, cleaner *ResourceCleaner) handle {
	return handle{owner: owner{cell: newCell(res, cleaner), dropped: new(atomic.Bool)}}
}

// track arms the garbage-collector fallback for the owner stored in h.
// h must point into *ptr.
func track[T any](ptr *T, h *handle) {
	h.cleanup = runtime.AddCleanup(ptr, dropOwner, h.owner)
}

func (h *handle) clone() handle {
	if h.dropped.Load() {
		panic(fmt.Sprintf("gfx: clone of released %s", h.cell.res))
	}
	h.cell.acquire()
	return handle{owner: owner{cell: h.cell, dropped: new(atomic.Bool)}}
}

func (h *handle) release() {
	if h.drop() {
		h.cleanup.Stop()
	}
}

// ID returns the backend-assigned id. Ids are opaque to everything except
// the backend that issued them.
func (h *handle) ID() uint64 {
	return h.cell.res.ID
}

// Resource returns the tag that is enqueued when the last owner is released.
func (h *handle) Resource() Resource {
	return h.cell.res
}

// Released reports whether this owner has been released. Other clones of
// the same resource are unaffected.
func (h *handle) Released() bool {
	return h.dropped.Load()
}

// String formats the handle as its resource tag, e.g. "Buffer(7)".
func (h *handle) String() string {
	return h.cell.res.String()
}
