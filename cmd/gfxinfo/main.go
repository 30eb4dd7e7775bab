// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command gfxinfo opens a gfx backend, prints what it reports and renders a
// cleared offscreen target to a PNG file.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/image/draw"

	"github.com/gogpu/gfx"
	_ "github.com/gogpu/gfx/backend/software"
	_ "github.com/gogpu/gfx/backend/wgpu"
)

func main() {
	var (
		backend = flag.String("backend", "", "backend name; empty picks the best available")
		width   = flag.Int("width", 256, "target width")
		height  = flag.Int("height", 256, "target height")
		color   = flag.String("color", "#3366ccff", "clear color as #rrggbb or #rrggbbaa")
		scale   = flag.Int("scale", 1, "upscale factor of the written image")
		output  = flag.String("output", "gfxinfo.png", "output file; empty skips rendering")
		list    = flag.Bool("list", false, "list registered backends and exit")
		verbose = flag.Bool("v", false, "log backend diagnostics")
	)
	flag.Parse()

	if *verbose {
		gfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if *list {
		fmt.Println(strings.Join(gfx.Available(), "\n"))
		return
	}

	bg, err := parseColor(*color)
	if err != nil {
		log.Fatalf("Invalid -color: %v", err)
	}

	var dev *gfx.Device
	if *backend == "" {
		dev, err = gfx.OpenDefault()
	} else {
		dev, err = gfx.Open(*backend)
	}
	if err != nil {
		log.Fatalf("Failed to open backend: %v", err)
	}
	defer dev.Close()

	limits := dev.Limits()
	fmt.Printf("api:                %s\n", dev.APIName())
	fmt.Printf("max texture size:   %d\n", limits.MaxTextureSize)
	fmt.Printf("max uniform blocks: %d\n", limits.MaxUniformBlocks)

	if *output == "" {
		return
	}
	img, err := render(dev, *width, *height, bg)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	if *scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx()**scale, img.Bounds().Dy()**scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}
	if err := writePNG(*output, img); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	fmt.Printf("%s\n", dev.Stats())
	log.Printf("Saved %s (%dx%d)", *output, img.Bounds().Dx(), img.Bounds().Dy())
}

// render clears an offscreen target and reads it back.
func render(dev *gfx.Device, width, height int, c gfx.Color) (*image.RGBA, error) {
	rt, err := dev.CreateRenderTexture(gfx.TextureInfo{
		Width:  width,
		Height: height,
		Format: gfx.TextureFormatSRGBA8,
	})
	if err != nil {
		return nil, err
	}
	defer rt.Release()

	dev.RenderTo(rt, gfx.NewEncoder().BeginClear(c).End().Commands())

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	read := gfx.TextureRead{Width: width, Height: height, Format: gfx.TextureFormatSRGBA8}
	if err := dev.ReadPixels(rt.Texture(), img.Pix, read); err != nil {
		return nil, err
	}
	return img, nil
}

func parseColor(s string) (gfx.Color, error) {
	s = strings.TrimPrefix(s, "#")
	var r, g, b, a uint8 = 0, 0, 0, 255
	switch len(s) {
	case 6:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
			return gfx.Color{}, err
		}
	case 8:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x%02x", &r, &g, &b, &a); err != nil {
			return gfx.Color{}, err
		}
	default:
		return gfx.Color{}, fmt.Errorf("%q: want 6 or 8 hex digits", s)
	}
	return gfx.Color{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
