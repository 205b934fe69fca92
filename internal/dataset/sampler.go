// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package dataset

import (
	"fmt"
	"math"
	"math/rand"
)

// Subset is a fixed view of a Dataset through an index list.
type Subset struct {
	Dataset Dataset
	Indices []int
}

// Len returns the number of indices in the view.
func (s *Subset) Len() int { return len(s.Indices) }

// Get returns the sample at Indices[i] of the underlying dataset.
func (s *Subset) Get(i int) (Sample, error) {
	if i < 0 || i >= len(s.Indices) {
		return Sample{}, fmt.Errorf("dataset: subset index %d out of range [0, %d)", i, len(s.Indices))
	}
	return s.Dataset.Get(s.Indices[i])
}

// Split partitions [0, n) into a training part of floor(trainRatio*n) indices
// and a validation part holding the rest, using one random permutation.
func Split(n int, trainRatio float64, rng *rand.Rand) (train, val []int) {
	perm := rng.Perm(n)
	k := int(math.Floor(trainRatio * float64(n)))
	if k > n {
		k = n
	}
	return perm[:k], perm[k:]
}

// RandomSplit applies Split to ds once. Membership of the returned subsets
// never changes afterwards.
func RandomSplit(ds Dataset, trainRatio float64, rng *rand.Rand) (train, val *Subset) {
	ti, vi := Split(ds.Len(), trainRatio, rng)
	return &Subset{Dataset: ds, Indices: ti}, &Subset{Dataset: ds, Indices: vi}
}

// Batch is a stack of samples. Pixels holds Size samples of SampleLen values
// each, back to back.
type Batch struct {
	Pixels    []float32
	Labels    []float32
	Sources   []string
	Size      int
	SampleLen int
}

// Sampler produces batches covering a dataset once per epoch.
type Sampler struct {
	ds        Dataset
	batchSize int
	shuffle   bool
	rng       *rand.Rand
}

// NewSampler creates a sampler. When shuffle is set, every Epoch call draws
// a fresh permutation from rng; otherwise batches follow dataset order.
func NewSampler(ds Dataset, batchSize int, shuffle bool, rng *rand.Rand) *Sampler {
	if batchSize <= 0 {
		panic(fmt.Sprintf("dataset: invalid batch size %d", batchSize))
	}
	if shuffle && rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Sampler{ds: ds, batchSize: batchSize, shuffle: shuffle, rng: rng}
}

// Len returns the number of samples per epoch.
func (s *Sampler) Len() int { return s.ds.Len() }

// BatchSize returns the configured batch size.
func (s *Sampler) BatchSize() int { return s.batchSize }

// NumBatches returns the number of batches per epoch. The last batch may be
// smaller than BatchSize.
func (s *Sampler) NumBatches() int {
	return (s.ds.Len() + s.batchSize - 1) / s.batchSize
}

// Epoch starts a new traversal.
func (s *Sampler) Epoch() *Batches {
	n := s.ds.Len()
	var order []int
	if s.shuffle {
		order = s.rng.Perm(n)
	} else {
		order = make([]int, n)
		for i := range order {
			order[i] = i
		}
	}
	return &Batches{sampler: s, order: order}
}

// Batches iterates one epoch of batches:
//
//	it := sampler.Epoch()
//	for it.Scan() {
//	    b := it.Batch()
//	}
//	if err := it.Err(); err != nil { ... }
type Batches struct {
	sampler *Sampler
	order   []int
	pos     int
	batch   *Batch
	err     error
}

// Scan loads the next batch. It returns false at the end of the epoch or on
// the first error.
func (b *Batches) Scan() bool {
	if b.err != nil || b.pos >= len(b.order) {
		b.batch = nil
		return false
	}
	end := min(b.pos+b.sampler.batchSize, len(b.order))
	batch, err := stack(b.sampler.ds, b.order[b.pos:end])
	b.pos = end
	if err != nil {
		b.err = err
		b.batch = nil
		return false
	}
	b.batch = batch
	return true
}

// Batch returns the batch loaded by the last successful Scan.
func (b *Batches) Batch() *Batch { return b.batch }

// Err returns the error that stopped the traversal, if any.
func (b *Batches) Err() error { return b.err }

func stack(ds Dataset, indices []int) (*Batch, error) {
	batch := &Batch{
		Labels:  make([]float32, 0, len(indices)),
		Sources: make([]string, 0, len(indices)),
		Size:    len(indices),
	}
	for _, idx := range indices {
		s, err := ds.Get(idx)
		if err != nil {
			return nil, err
		}
		if batch.Pixels == nil {
			batch.SampleLen = len(s.Pixels)
			batch.Pixels = make([]float32, 0, len(indices)*batch.SampleLen)
		} else if len(s.Pixels) != batch.SampleLen {
			return nil, &ShapeMismatchError{Path: s.Source, Got: len(s.Pixels), Want: batch.SampleLen}
		}
		batch.Pixels = append(batch.Pixels, s.Pixels...)
		batch.Labels = append(batch.Labels, float32(s.Label))
		batch.Sources = append(batch.Sources, s.Source)
	}
	return batch, nil
}
