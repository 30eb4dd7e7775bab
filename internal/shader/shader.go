// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shader turns shader source handed to a backend into SPIR-V words.
package shader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

// ErrEmptySource is returned for empty shader source.
var ErrEmptySource = errors.New("shader: empty source")

// IsSPIRV reports whether src starts with the little-endian SPIR-V magic
// number and is a whole number of words.
func IsSPIRV(src []byte) bool {
	return len(src) >= 4 && len(src)%4 == 0 && binary.LittleEndian.Uint32(src) == SPIRVMagic
}

// Compile converts src to SPIR-V words. SPIR-V input is passed through;
// anything else is compiled as WGSL with naga.
func Compile(src []byte) ([]uint32, error) {
	if IsSPIRV(src) {
		return Words(src), nil
	}
	// Text sources may carry C-string terminators.
	src = bytes.TrimRight(src, "\x00")
	if len(bytes.TrimSpace(src)) == 0 {
		return nil, ErrEmptySource
	}
	spirv, err := naga.Compile(string(src))
	if err != nil {
		return nil, fmt.Errorf("compile WGSL: %w", err)
	}
	if !IsSPIRV(spirv) {
		return nil, fmt.Errorf("compile WGSL: compiler produced %d bytes without SPIR-V header", len(spirv))
	}
	return Words(spirv), nil
}

// Words converts little-endian bytes to 32-bit words. Trailing bytes that do
// not fill a word are dropped.
func Words(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words
}
