// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train drives the classifier and GAN training loops.
//
// The loops only see the capability interfaces below; the born-backed
// implementations live in package model, so the control flow can be tested
// with stub models.
package train

import (
	"fmt"

	"github.com/born-ml/forgery/internal/config"
	"github.com/born-ml/forgery/internal/dataset"
)

// ClassifierModel is what the classifier loop needs from a model.
type ClassifierModel interface {
	// SetTraining enables (true) or disables gradient tracking.
	SetTraining(training bool)
	// Step performs one optimization step and returns the batch loss and
	// the per-sample outputs.
	Step(b *dataset.Batch) (loss float64, outputs []float32, err error)
	// Evaluate scores a batch without updating parameters.
	Evaluate(b *dataset.Batch) (loss float64, outputs []float32, err error)
}

// ClassifierReporter receives each completed epoch.
type ClassifierReporter interface {
	ClassifierEpoch(e ClassifierEpoch, epochs int)
}

// Phase is a state of the classifier loop.
type Phase int

// Classifier loop states, visited TrainPhase → ValidatePhase → ReportPhase
// once per epoch, then Done.
const (
	TrainPhase Phase = iota
	ValidatePhase
	ReportPhase
	Done
)

func (p Phase) String() string {
	switch p {
	case TrainPhase:
		return "train"
	case ValidatePhase:
		return "validate"
	case ReportPhase:
		return "report"
	case Done:
		return "done"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ClassifierLoop trains for a fixed number of epochs with no early stopping.
type ClassifierLoop struct {
	Model    ClassifierModel
	Train    *dataset.Sampler // shuffled
	Val      *dataset.Sampler // ordered
	Epochs   int
	Reporter ClassifierReporter // optional

	// OnPhase, if set, is called on entering every phase with the 1-based
	// epoch number (the last epoch for Done).
	OnPhase func(epoch int, p Phase)
}

// Validate rejects empty subsets and a non-positive epoch count with a
// *config.ConfigurationError. It does not touch Model.
func (l *ClassifierLoop) Validate() error {
	if l.Train == nil || l.Train.Len() == 0 {
		return config.Invalid("dataset", "training subset is empty")
	}
	if l.Val == nil || l.Val.Len() == 0 {
		return config.Invalid("dataset", "validation subset is empty")
	}
	if l.Epochs <= 0 {
		return config.Invalid("epochs", "must be positive, got %d", l.Epochs)
	}
	return nil
}

// Run executes the loop. It fails with Validate's error before any step is
// taken.
func (l *ClassifierLoop) Run() (*History[ClassifierEpoch], error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	history := &History[ClassifierEpoch]{}
	var trainStats, valStats EpochStats
	var err error

	epoch, phase := 1, TrainPhase
	for {
		if l.OnPhase != nil {
			l.OnPhase(epoch, phase)
		}
		switch phase {
		case TrainPhase:
			l.Model.SetTraining(true)
			if trainStats, err = runPhase(l.Train, l.Model.Step); err != nil {
				return history, fmt.Errorf("train: epoch %d: training: %w", epoch, err)
			}
			phase = ValidatePhase

		case ValidatePhase:
			l.Model.SetTraining(false)
			if valStats, err = runPhase(l.Val, l.Model.Evaluate); err != nil {
				return history, fmt.Errorf("train: epoch %d: validation: %w", epoch, err)
			}
			phase = ReportPhase

		case ReportPhase:
			e := ClassifierEpoch{
				Epoch:     epoch,
				TrainLoss: trainStats.Loss(),
				TrainAcc:  trainStats.Accuracy(),
				ValLoss:   valStats.Loss(),
				ValAcc:    valStats.Accuracy(),
			}
			history.Append(e)
			if l.Reporter != nil {
				l.Reporter.ClassifierEpoch(e, l.Epochs)
			}
			if epoch == l.Epochs {
				phase = Done
			} else {
				epoch++
				phase = TrainPhase
			}

		case Done:
			return history, nil
		}
	}
}

type stepFunc func(*dataset.Batch) (float64, []float32, error)

// runPhase folds one full traversal of s through step.
func runPhase(s *dataset.Sampler, step stepFunc) (EpochStats, error) {
	var stats EpochStats
	it := s.Epoch()
	for it.Scan() {
		b := it.Batch()
		loss, outputs, err := step(b)
		if err != nil {
			return stats, err
		}
		if len(outputs) != b.Size {
			return stats, fmt.Errorf("train: model returned %d outputs for a batch of %d", len(outputs), b.Size)
		}
		stats.Add(loss, outputs, b.Labels)
	}
	if err := it.Err(); err != nil {
		return stats, err
	}
	if stats.Batches() == 0 {
		return stats, ErrNoBatches
	}
	return stats, nil
}
