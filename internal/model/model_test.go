package model

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testBackend = *autodiff.Backend[*cpu.Backend]

func newBackend() testBackend {
	return autodiff.New(cpu.New())
}

func fromSlice(t *testing.T, data []float32, shape tensor.Shape, b testBackend) *tensor.Tensor[float32, testBackend] {
	t.Helper()
	out, err := tensor.FromSlice(data, shape, b)
	require.NoError(t, err)
	return out
}

func snapshot(params []*nn.Parameter[testBackend]) [][]float32 {
	out := make([][]float32, len(params))
	for i, p := range params {
		out[i] = append([]float32(nil), p.Tensor().Raw().AsFloat32()...)
	}
	return out
}

func TestLeakyReLU(t *testing.T) {
	b := newBackend()
	x := fromSlice(t, []float32{-2, -0.5, 0, 1, 3}, tensor.Shape{1, 5}, b)

	got := LeakyReLU(x, LeakySlope).Raw().AsFloat32()

	want := []float32{-0.4, -0.1, 0, 1, 3}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-6, "index %d", i)
	}
}

func TestBinaryCrossEntropy(t *testing.T) {
	b := newBackend()
	pred := fromSlice(t, []float32{0.9, 0.2}, tensor.Shape{2, 1}, b)
	target := fromSlice(t, []float32{1, 0}, tensor.Shape{2, 1}, b)

	loss := BinaryCrossEntropy(pred, target)

	assert.Equal(t, tensor.Shape{1, 1}, loss.Shape())
	want := -(math.Log(0.9) + math.Log(0.8)) / 2
	assert.InDelta(t, want, Scalar(loss), 1e-4)
}

func TestBinaryCrossEntropyShapeMismatch(t *testing.T) {
	b := newBackend()
	pred := fromSlice(t, []float32{0.5, 0.5}, tensor.Shape{2, 1}, b)
	target := fromSlice(t, []float32{1, 0, 1}, tensor.Shape{3, 1}, b)
	assert.Panics(t, func() { BinaryCrossEntropy(pred, target) })
}

func TestClassifierForward(t *testing.T) {
	b := newBackend()
	m := NewClassifier(8, b)
	x := tensor.Randn[float32](tensor.Shape{2, 3, 8, 8}, b)

	out := m.Forward(x)

	require.Equal(t, tensor.Shape{2, 1}, out.Shape())
	for _, v := range out.Raw().AsFloat32() {
		assert.Greater(t, v, float32(0))
		assert.Less(t, v, float32(1))
	}
	assert.Len(t, m.Parameters(), 10)
	assert.Contains(t, m.String(), "Linear(in=128, out=512)")
}

func TestClassifierRejectsBadInput(t *testing.T) {
	b := newBackend()
	assert.Panics(t, func() { NewClassifier(12, b) })

	m := NewClassifier(8, b)
	assert.Panics(t, func() { m.Forward(tensor.Zeros[float32](tensor.Shape{1, 3, 16, 16}, b)) })
}

func TestGeneratorAndDiscriminatorShapes(t *testing.T) {
	b := newBackend()
	g := NewGenerator(4, 16, b)
	d := NewDiscriminator(16, b)

	images := g.Forward(tensor.Randn[float32](tensor.Shape{3, 4}, b))
	require.Equal(t, tensor.Shape{3, 3, 16, 16}, images.Shape())
	for _, v := range images.Raw().AsFloat32() {
		assert.GreaterOrEqual(t, v, float32(-1))
		assert.LessOrEqual(t, v, float32(1))
	}

	scores := d.Forward(images)
	require.Equal(t, tensor.Shape{3, 1}, scores.Shape())
	assert.Len(t, g.Parameters(), 8)
	assert.Len(t, d.Parameters(), 10)
	assert.Panics(t, func() { NewDiscriminator(24, b) })
}

func TestStateDictNames(t *testing.T) {
	b := newBackend()
	sd := NewDiscriminator(16, b).StateDict()
	assert.Equal(t, []string{
		"conv1.bias", "conv1.weight",
		"conv2.bias", "conv2.weight",
		"conv3.bias", "conv3.weight",
		"conv4.bias", "conv4.weight",
		"fc.bias", "fc.weight",
	}, keys(sd))
}

func TestCheckpointRoundTrip(t *testing.T) {
	b := newBackend()
	path := filepath.Join(t.TempDir(), "clf.born")

	src := NewClassifier(8, b)
	require.NoError(t, SaveCheckpoint[testBackend](path, src, KindClassifier, map[string]string{"run": "abc"}))

	dst := NewClassifier(8, b)
	meta, err := LoadCheckpoint[testBackend](path, b, dst, KindClassifier)
	require.NoError(t, err)
	assert.Equal(t, "abc", meta["run"])
	assert.Equal(t, snapshot(src.Parameters()), snapshot(dst.Parameters()))

	_, err = LoadCheckpoint[testBackend](path, b, NewClassifier(8, b), KindGenerator)
	assert.Error(t, err)

	_, err = LoadCheckpoint[testBackend](path, b, NewClassifier(16, b), KindClassifier)
	assert.Error(t, err, "shape mismatch must be reported")
}

func TestLoadStateDictRejectsMissingKey(t *testing.T) {
	b := newBackend()
	sd := NewGenerator(4, 16, b).StateDict()
	delete(sd, "fc4.bias")
	assert.Error(t, NewGenerator(4, 16, b).LoadStateDict(sd))
}
