package dataset

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memory is an in-memory Dataset whose sample i is filled with float32(i).
type memory struct {
	n      int
	volume int
	bad    int // index returning a short sample, or -1
}

func (m *memory) Len() int { return m.n }

func (m *memory) Get(i int) (Sample, error) {
	vol := m.volume
	if i == m.bad {
		vol--
	}
	px := make([]float32, vol)
	for k := range px {
		px[k] = float32(i)
	}
	return Sample{Pixels: px, Label: i % 2, Source: fmt.Sprintf("mem/%d", i)}, nil
}

func TestSplitSizes(t *testing.T) {
	tests := []struct {
		n, train, val int
	}{
		{10, 8, 2},
		{7, 5, 2},
		{1, 0, 1},
		{0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			tr, va := Split(tt.n, 0.8, rand.New(rand.NewSource(42)))
			assert.Len(t, tr, tt.train)
			assert.Len(t, va, tt.val)

			all := append(append([]int{}, tr...), va...)
			sort.Ints(all)
			for i, v := range all {
				assert.Equal(t, i, v, "train and validation must partition [0, n)")
			}
		})
	}
}

func TestSplitIsSeeded(t *testing.T) {
	a, _ := Split(50, 0.8, rand.New(rand.NewSource(7)))
	b, _ := Split(50, 0.8, rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)
}

func TestRandomSplitMembershipIsStable(t *testing.T) {
	ds := &memory{n: 20, volume: 2, bad: -1}
	train, val := RandomSplit(ds, 0.8, rand.New(rand.NewSource(1)))
	before := append([]int{}, train.Indices...)

	s := NewSampler(train, 4, true, rand.New(rand.NewSource(3)))
	for e := 0; e < 3; e++ {
		it := s.Epoch()
		for it.Scan() {
		}
		require.NoError(t, it.Err())
	}
	assert.Equal(t, before, train.Indices)
	assert.Equal(t, 4, val.Len())

	got, err := val.Get(0)
	require.NoError(t, err)
	assert.Equal(t, float32(val.Indices[0]), got.Pixels[0])

	_, err = val.Get(4)
	assert.Error(t, err)
}

func collect(t *testing.T, s *Sampler) (sizes []int, order []int) {
	t.Helper()
	it := s.Epoch()
	for it.Scan() {
		b := it.Batch()
		sizes = append(sizes, b.Size)
		assert.Len(t, b.Pixels, b.Size*b.SampleLen)
		assert.Len(t, b.Labels, b.Size)
		for i := 0; i < b.Size; i++ {
			order = append(order, int(b.Pixels[i*b.SampleLen]))
		}
	}
	require.NoError(t, it.Err())
	return sizes, order
}

func TestSamplerCoversEpoch(t *testing.T) {
	ds := &memory{n: 10, volume: 3, bad: -1}

	s := NewSampler(ds, 4, false, nil)
	assert.Equal(t, 3, s.NumBatches())
	sizes, order := collect(t, s)
	assert.Equal(t, []int{4, 4, 2}, sizes)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)

	shuffled := NewSampler(ds, 4, true, rand.New(rand.NewSource(9)))
	sizes, first := collect(t, shuffled)
	assert.Equal(t, []int{4, 4, 2}, sizes)
	_, second := collect(t, shuffled)

	assert.ElementsMatch(t, order, first)
	assert.ElementsMatch(t, order, second)
	assert.NotEqual(t, first, second, "each epoch draws a new permutation")
}

func TestSamplerEmptyDataset(t *testing.T) {
	s := NewSampler(&memory{n: 0, volume: 3, bad: -1}, 4, true, rand.New(rand.NewSource(1)))
	assert.Equal(t, 0, s.NumBatches())
	it := s.Epoch()
	assert.False(t, it.Scan())
	assert.NoError(t, it.Err())
}

func TestSamplerShapeMismatch(t *testing.T) {
	s := NewSampler(&memory{n: 4, volume: 3, bad: 2}, 4, false, nil)
	it := s.Epoch()
	assert.False(t, it.Scan())

	var mismatch *ShapeMismatchError
	require.ErrorAs(t, it.Err(), &mismatch)
	assert.Equal(t, "mem/2", mismatch.Path)
	assert.Equal(t, 2, mismatch.Got)
	assert.Equal(t, 3, mismatch.Want)
}

func TestNewSamplerRejectsBatchSize(t *testing.T) {
	assert.Panics(t, func() { NewSampler(&memory{n: 1, volume: 1, bad: -1}, 0, false, nil) })
}
