// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import "github.com/gogpu/gfx"

func init() {
	gfx.Register(gfx.BackendSoftware, func() (gfx.Backend, error) {
		return New(), nil
	})
}
