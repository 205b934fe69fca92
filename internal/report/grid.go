// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
)

// gridPad is the gap between tiles in pixels.
const gridPad = 2

// GridWriter saves batches of generated CHW images in [-1, 1] as a PNG grid
// named epoch_NNN.png under Dir.
type GridWriter struct {
	Dir     string
	Size    int // tile side in pixels
	Columns int // defaults to ceil(sqrt(n))
}

// Path returns the file a snapshot for epoch is written to.
func (g *GridWriter) Path(epoch int) string {
	return filepath.Join(g.Dir, fmt.Sprintf("epoch_%03d.png", epoch))
}

// Snapshot writes n images held back to back in pixels.
func (g *GridWriter) Snapshot(epoch int, pixels []float32, n int) error {
	img, err := g.Render(pixels, n)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return fmt.Errorf("report: create %q: %w", g.Dir, err)
	}
	path := g.Path(epoch)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %q: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("report: encode %q: %w", path, err)
	}
	return f.Close()
}

// Render lays the images out row-major on a black background, mapping
// [-1, 1] to [0, 255].
func (g *GridWriter) Render(pixels []float32, n int) (*image.NRGBA, error) {
	side := g.Size
	plane := side * side
	if n <= 0 || side <= 0 || len(pixels) != n*3*plane {
		return nil, fmt.Errorf("report: %d values do not hold %d images of %dx%d", len(pixels), n, side, side)
	}
	cols := g.Columns
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(n))))
	}
	cols = min(cols, n)
	rows := (n + cols - 1) / cols

	w := cols*side + (cols+1)*gridPad
	h := rows*side + (rows+1)*gridPad
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+3] = 0xff
	}

	for k := 0; k < n; k++ {
		ox := gridPad + (k%cols)*(side+gridPad)
		oy := gridPad + (k/cols)*(side+gridPad)
		src := pixels[k*3*plane : (k+1)*3*plane]
		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				i := y*side + x
				img.SetNRGBA(ox+x, oy+y, color.NRGBA{
					R: denormalize(src[i]),
					G: denormalize(src[plane+i]),
					B: denormalize(src[2*plane+i]),
					A: 0xff,
				})
			}
		}
	}
	return img, nil
}

func denormalize(v float32) uint8 {
	u := (float64(v) + 1) / 2 * 255
	return uint8(math.Round(math.Max(0, math.Min(255, u))))
}
