package dataset

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 5), B: uint8((x + y) * 3), A: 0xff})
		}
	}
	return img
}

func TestTransformIsPure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.png")
	writeImage(t, path, gradient(37, 23))

	tr := ClassifierTransform(16, [3]float32{0.485, 0.456, 0.406}, [3]float32{0.229, 0.224, 0.225})
	first, err := tr.Load(path)
	require.NoError(t, err)
	second, err := tr.Load(path)
	require.NoError(t, err)

	require.Len(t, first, tr.Volume())
	assert.Equal(t, first, second, "same bytes must give bit-identical tensors")
}

func TestTransformNormalization(t *testing.T) {
	red := solid(10, 10, color.RGBA{R: 255, A: 255})

	out := GANTransform(4).Apply(red)
	require.Len(t, out, 3*4*4)

	plane := 16
	for i := 0; i < plane; i++ {
		assert.InDelta(t, 1.0, out[i], 0.02, "red channel maps to +1")
		assert.InDelta(t, -1.0, out[plane+i], 1e-6, "green channel maps to -1")
		assert.InDelta(t, -1.0, out[2*plane+i], 1e-6, "blue channel maps to -1")
	}

	imagenet := ClassifierTransform(4, [3]float32{0.485, 0.456, 0.406}, [3]float32{0.229, 0.224, 0.225})
	black := imagenet.Apply(solid(3, 3, color.Black))
	assert.InDelta(t, -0.485/0.229, black[0], 1e-5)
	assert.InDelta(t, -0.456/0.224, black[plane], 1e-5)
	assert.InDelta(t, -0.406/0.225, black[2*plane], 1e-5)
}

func TestTransformForcesRGB(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 5, 5))
	for i := range gray.Pix {
		gray.Pix[i] = 0
	}
	out := GANTransform(2).Apply(gray)
	require.Len(t, out, 3*2*2)
	for _, v := range out {
		assert.InDelta(t, -1.0, v, 1e-6)
	}

	// Fully transparent pixels keep their color channels, alpha is dropped.
	clear := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(clear.Pix); i += 4 {
		clear.Pix[i], clear.Pix[i+3] = 255, 0
	}
	out = GANTransform(2).Apply(clear)
	assert.InDelta(t, 1.0, out[0], 0.02)
}
