// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import "fmt"

// BufferKind is the role a buffer was created for.
type BufferKind uint8

// Buffer kinds.
const (
	BufferVertex BufferKind = iota
	BufferIndex
	BufferUniform
)

// String returns the kind name.
func (k BufferKind) String() string {
	switch k {
	case BufferVertex:
		return "Vertex"
	case BufferIndex:
		return "Index"
	case BufferUniform:
		return "Uniform"
	default:
		return fmt.Sprintf("BufferKind(%d)", uint8(k))
	}
}

// Buffer is an owning handle to a backend buffer.
//
// Each *Buffer is one owner. Clone adds an owner for the same id; Release
// drops one. The id is queued for cleanup after the last owner is released.
// An owner that is garbage collected without Release is dropped by the
// runtime, but only Release frees resources deterministically.
//
// Buffer methods are safe for concurrent use.
type Buffer struct {
	handle
	kind   BufferKind
	layout VertexInfo
	slot   uint32
	name   string
}

func newBuffer(id uint64, kind BufferKind, cleaner *ResourceCleaner) *Buffer {
	b := &Buffer{handle: newHandle(BufferResource(id), cleaner), kind: kind}
	track(b, &b.handle)
	return b
}

// Kind returns the role of the buffer.
func (b *Buffer) Kind() BufferKind { return b.kind }

// Layout returns the vertex layout of a vertex buffer.
func (b *Buffer) Layout() VertexInfo { return b.layout }

// Slot returns the binding slot of a uniform buffer.
func (b *Buffer) Slot() uint32 { return b.slot }

// Name returns the block name of a uniform buffer.
func (b *Buffer) Name() string { return b.name }

// Clone returns a new owner of the same buffer. Cloning a released owner
// panics.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{handle: b.clone(), kind: b.kind, layout: b.layout, slot: b.slot, name: b.name}
	track(c, &c.handle)
	return c
}

// Release drops this owner. Calling Release more than once is a no-op.
func (b *Buffer) Release() { b.release() }

// Equal reports whether both handles refer to the same buffer id.
func (b *Buffer) Equal(other *Buffer) bool {
	return other != nil && b.ID() == other.ID()
}
