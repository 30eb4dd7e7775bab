// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import "errors"

// Creation failures. A create call that returns one of these allocated
// no id and changed no backend state.
var (
	// ErrUnsupportedVertexFormat is returned when a backend cannot encode
	// a vertex attribute format.
	ErrUnsupportedVertexFormat = errors.New("gfx: unsupported vertex format")

	// ErrUnsupportedTextureFormat is returned when a backend cannot store
	// or read back a texture format.
	ErrUnsupportedTextureFormat = errors.New("gfx: unsupported texture format")

	// ErrShaderCompile is returned when shader source is rejected.
	ErrShaderCompile = errors.New("gfx: shader compilation failed")

	// ErrInvalidTexture is returned for texture descriptions with zero or
	// negative dimensions, or initial data of the wrong length.
	ErrInvalidTexture = errors.New("gfx: invalid texture description")

	// ErrTextureTooLarge is returned when a texture exceeds Limits.MaxTextureSize.
	ErrTextureTooLarge = errors.New("gfx: texture exceeds device limits")

	// ErrInvalidVertexLayout is returned for duplicated attribute locations.
	ErrInvalidVertexLayout = errors.New("gfx: invalid vertex layout")
)

// Update and read failures. The target resource is left as it was.
var (
	// ErrInvalidRegion is returned when a rectangle falls outside the texture
	// or the byte slice does not match the rectangle.
	ErrInvalidRegion = errors.New("gfx: invalid texture region")

	// ErrFormatMismatch is returned when an update or read names a format
	// different from the texture's declared format.
	ErrFormatMismatch = errors.New("gfx: texture format mismatch")

	// ErrUnknownResource is returned when an id was never issued by the
	// backend or has already been cleaned.
	ErrUnknownResource = errors.New("gfx: unknown resource id")
)

// Device and registry errors.
var (
	// ErrNilBackend is returned by NewDevice when no backend is given.
	ErrNilBackend = errors.New("gfx: nil backend")

	// ErrDeviceClosed is returned by operations on a closed Device.
	ErrDeviceClosed = errors.New("gfx: device closed")

	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or failed to initialize.
	ErrBackendNotAvailable = errors.New("gfx: backend not available")
)
