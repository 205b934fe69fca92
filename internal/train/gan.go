// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/forgery/internal/config"
	"github.com/born-ml/forgery/internal/dataset"
)

// Adversary is what the GAN loop needs from a generator/discriminator pair.
type Adversary interface {
	LatentDim() int
	// DiscriminatorStep updates the discriminator on real images versus
	// G(z), with the fake batch detached from the generator.
	DiscriminatorStep(batch *dataset.Batch, z []float32) (float64, error)
	// GeneratorStep updates the generator through D(G(z)) against real
	// targets.
	GeneratorStep(z []float32) (float64, error)
	// Sample returns G(z) as CHW pixels.
	Sample(z []float32) ([]float32, error)
}

// GANReporter receives each completed epoch.
type GANReporter interface {
	GANEpoch(e GANEpoch, maxEpochs int)
}

// Snapshotter persists a grid of n generated images for a 0-based epoch.
type Snapshotter interface {
	Snapshot(epoch int, pixels []float32, n int) error
}

// EarlyStopping tracks the best generator loss. A loss counts as an
// improvement only when strictly lower than the best so far.
type EarlyStopping struct {
	Patience int

	best    float64
	counter int
}

// NewEarlyStopping returns a tracker that stops after patience consecutive
// epochs without improvement.
func NewEarlyStopping(patience int) *EarlyStopping {
	return &EarlyStopping{Patience: patience, best: math.Inf(1)}
}

// Observe records an epoch loss and reports whether training should stop.
func (e *EarlyStopping) Observe(loss float64) bool {
	if loss < e.best {
		e.best = loss
		e.counter = 0
		return false
	}
	e.counter++
	return e.counter >= e.Patience
}

// Best returns the lowest loss observed.
func (e *EarlyStopping) Best() float64 { return e.best }

// Counter returns the number of consecutive epochs without improvement.
func (e *EarlyStopping) Counter() int { return e.counter }

// StopReason tells why a GAN run ended.
type StopReason int

// Stop reasons.
const (
	StopMaxEpochs StopReason = iota
	StopEarly
)

func (r StopReason) String() string {
	if r == StopEarly {
		return "early stopping"
	}
	return "max epochs"
}

// GANResult is the outcome of a GAN run.
type GANResult struct {
	History   *History[GANEpoch]
	Reason    StopReason
	BestGLoss float64
}

// GANLoop alternates discriminator and generator updates per batch.
type GANLoop struct {
	Model         Adversary
	Data          *dataset.Sampler
	MaxEpochs     int
	Patience      int
	SnapshotEvery int // 0 disables snapshots
	SampleCount   int
	Rand          *rand.Rand

	Reporter    GANReporter // optional
	Snapshotter Snapshotter // optional
}

// Validate rejects an empty dataset and non-positive limits with a
// *config.ConfigurationError. It does not touch Model.
func (l *GANLoop) Validate() error {
	if l.Data == nil || l.Data.Len() == 0 {
		return config.Invalid("dataset", "image directory holds no usable images")
	}
	if l.MaxEpochs <= 0 {
		return config.Invalid("max_epochs", "must be positive, got %d", l.MaxEpochs)
	}
	if l.Patience <= 0 {
		return config.Invalid("patience", "must be positive, got %d", l.Patience)
	}
	return nil
}

// Run trains until MaxEpochs or until early stopping triggers. It fails with
// Validate's error before any step.
func (l *GANLoop) Run() (*GANResult, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if l.Rand == nil {
		l.Rand = rand.New(rand.NewSource(1))
	}

	stopper := NewEarlyStopping(l.Patience)
	res := &GANResult{History: &History[GANEpoch]{}, Reason: StopMaxEpochs}

	for epoch := 0; epoch < l.MaxEpochs; epoch++ {
		e, err := l.epoch(epoch)
		if err != nil {
			return res, fmt.Errorf("train: epoch %d: %w", epoch+1, err)
		}
		res.History.Append(e)
		if l.Reporter != nil {
			l.Reporter.GANEpoch(e, l.MaxEpochs)
		}

		if l.SnapshotEvery > 0 && l.Snapshotter != nil && epoch%l.SnapshotEvery == 0 {
			if err := l.snapshot(epoch); err != nil {
				return res, fmt.Errorf("train: epoch %d: snapshot: %w", epoch+1, err)
			}
		}

		if stopper.Observe(e.GLoss) {
			res.Reason = StopEarly
			break
		}
	}
	res.BestGLoss = stopper.Best()
	return res, nil
}

func (l *GANLoop) epoch(epoch int) (GANEpoch, error) {
	var dLosses, gLosses []float64

	it := l.Data.Epoch()
	for it.Scan() {
		b := it.Batch()
		// The same noise feeds both steps.
		z := l.latent(b.Size)

		dLoss, err := l.Model.DiscriminatorStep(b, z)
		if err != nil {
			return GANEpoch{}, fmt.Errorf("discriminator: %w", err)
		}
		gLoss, err := l.Model.GeneratorStep(z)
		if err != nil {
			return GANEpoch{}, fmt.Errorf("generator: %w", err)
		}
		dLosses = append(dLosses, dLoss)
		gLosses = append(gLosses, gLoss)
	}
	if err := it.Err(); err != nil {
		return GANEpoch{}, err
	}
	if len(dLosses) == 0 {
		return GANEpoch{}, ErrNoBatches
	}
	return GANEpoch{
		Epoch: epoch + 1,
		DLoss: stat.Mean(dLosses, nil),
		GLoss: stat.Mean(gLosses, nil),
	}, nil
}

func (l *GANLoop) snapshot(epoch int) error {
	n := l.SampleCount
	if n <= 0 {
		return nil
	}
	pixels, err := l.Model.Sample(l.latent(n))
	if err != nil {
		return err
	}
	return l.Snapshotter.Snapshot(epoch, pixels, n)
}

// latent draws n standard normal vectors.
func (l *GANLoop) latent(n int) []float32 {
	z := make([]float32, n*l.Model.LatentDim())
	for i := range z {
		z[i] = float32(l.Rand.NormFloat64())
	}
	return z
}
