// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ncclchart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Default chart sizes.
const (
	Width        = 12 * vg.Inch
	Height       = 8 * vg.Inch
	MatrixWidth  = 15 * vg.Inch
	MatrixHeight = 10 * vg.Inch
)

// Formats lists the file formats Save can write, by extension.
var Formats = []string{"png", "svg", "pdf"}

const dpi = 150

// Save draws p into a w by h image at path. The file format follows
// the extension of path and must be one of Formats.
func Save(p *plot.Plot, path string, w, h vg.Length) error {
	return save(path, w, h, p.Draw)
}

// SaveMatrix is like Save for a Grid.
func SaveMatrix(g *Grid, path string, w, h vg.Length) error {
	return save(path, w, h, g.Draw)
}

func save(path string, w, h vg.Length, drawTo func(draw.Canvas)) error {
	c, err := newCanvas(strings.TrimPrefix(filepath.Ext(path), "."), w, h)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	drawTo(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newCanvas(format string, w, h vg.Length) (vg.CanvasWriterTo, error) {
	switch strings.ToLower(format) {
	case "png":
		return vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h),
			vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(color.White))}, nil
	case "svg":
		return vgsvg.New(w, h), nil
	case "pdf":
		return vgpdf.New(w, h), nil
	}
	return nil, fmt.Errorf("unsupported chart format %q", format)
}
