// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"gonum.org/v1/gonum/stat"
)

// Threshold separates the two classes on a sigmoid output.
const Threshold = 0.5

// Class labels.
const (
	LabelReal   = 0
	LabelForged = 1
)

// Predict maps a sigmoid output to a class label.
func Predict(output float32) int {
	if output > Threshold {
		return LabelForged
	}
	return LabelReal
}

// LabelName returns the human-readable name of a class label.
func LabelName(label int) string {
	if label == LabelForged {
		return "Forged"
	}
	return "Real"
}

// EpochStats folds per-batch results into epoch metrics. The zero value is
// an empty fold.
type EpochStats struct {
	losses  []float64
	correct int
	total   int
}

// Add folds one batch: its mean loss, the model outputs and the 0/1 labels.
func (s *EpochStats) Add(loss float64, outputs, labels []float32) {
	s.losses = append(s.losses, loss)
	for i, out := range outputs {
		if Predict(out) == int(labels[i]) {
			s.correct++
		}
	}
	s.total += len(outputs)
}

// Batches returns the number of folded batches.
func (s *EpochStats) Batches() int { return len(s.losses) }

// Samples returns the number of folded samples.
func (s *EpochStats) Samples() int { return s.total }

// Loss returns the mean batch loss, or 0 for an empty fold.
func (s *EpochStats) Loss() float64 {
	if len(s.losses) == 0 {
		return 0
	}
	return stat.Mean(s.losses, nil)
}

// Accuracy returns the percentage of correct predictions, or 0 for an empty
// fold.
func (s *EpochStats) Accuracy() float64 {
	if s.total == 0 {
		return 0
	}
	return 100 * float64(s.correct) / float64(s.total)
}
