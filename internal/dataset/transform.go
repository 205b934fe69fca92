// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF decoder.
	_ "image/jpeg" // JPEG decoder.
	_ "image/png"  // PNG decoder.
	"io/fs"
	"os"

	_ "golang.org/x/image/bmp" // BMP decoder.
	"golang.org/x/image/draw"
)

// Channels is the number of color channels every sample carries.
const Channels = 3

// Transform is the deterministic preprocessing applied to every image:
// force RGB, bilinear resize to Size×Size, scale to [0, 1], then
// (v - Mean[c]) / Std[c] per channel.
//
// Output layout is CHW: [3, Size, Size] flattened.
type Transform struct {
	Size int
	Mean [3]float32
	Std  [3]float32
}

// ClassifierTransform returns a transform resizing to size×size and
// normalizing each channel with the given mean and std.
func ClassifierTransform(size int, mean, std [3]float32) Transform {
	return Transform{Size: size, Mean: mean, Std: std}
}

// GANTransform returns a transform resizing to size×size that maps pixels
// to [-1, 1].
func GANTransform(size int) Transform {
	return Transform{
		Size: size,
		Mean: [3]float32{0.5, 0.5, 0.5},
		Std:  [3]float32{0.5, 0.5, 0.5},
	}
}

// Volume returns the number of float32 values Apply produces.
func (t Transform) Volume() int {
	return Channels * t.Size * t.Size
}

// Apply converts img into a normalized CHW tensor. It is a pure function of
// the image contents.
func (t Transform) Apply(img image.Image) []float32 {
	rgb := toRGB(img)

	dst := image.NewNRGBA(image.Rect(0, 0, t.Size, t.Size))
	draw.BiLinear.Scale(dst, dst.Bounds(), rgb, rgb.Bounds(), draw.Src, nil)

	plane := t.Size * t.Size
	out := make([]float32, Channels*plane)
	for y := 0; y < t.Size; y++ {
		for x := 0; x < t.Size; x++ {
			off := dst.PixOffset(x, y)
			for c := 0; c < Channels; c++ {
				v := float32(dst.Pix[off+c]) / 255
				out[c*plane+y*t.Size+x] = (v - t.Mean[c]) / t.Std[c]
			}
		}
	}
	return out
}

// Load reads, decodes and transforms the image at path.
func (t Transform) Load(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingFileError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("dataset: read %q: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	pixels := t.Apply(img)
	if len(pixels) != t.Volume() {
		return nil, &ShapeMismatchError{Path: path, Got: len(pixels), Want: t.Volume()}
	}
	return pixels, nil
}

// toRGB drops alpha and any palette so every source ends up 3-channel.
func toRGB(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			c.A = 0xff
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return dst
}
