// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

// ClassifierEpoch is one row of classifier training history. Accuracies are
// percentages.
type ClassifierEpoch struct {
	Epoch     int // 1-based
	TrainLoss float64
	TrainAcc  float64
	ValLoss   float64
	ValAcc    float64
}

// GANEpoch is one row of GAN training history.
type GANEpoch struct {
	Epoch int // 1-based
	DLoss float64
	GLoss float64
}

// History is an append-only per-epoch record.
type History[T any] struct {
	entries []T
}

// Append records the next epoch.
func (h *History[T]) Append(e T) { h.entries = append(h.entries, e) }

// Len returns the number of recorded epochs.
func (h *History[T]) Len() int { return len(h.entries) }

// Entries returns a copy of the recorded epochs in order.
func (h *History[T]) Entries() []T {
	return append([]T(nil), h.entries...)
}

// Last returns the most recent entry.
func (h *History[T]) Last() (T, bool) {
	var zero T
	if len(h.entries) == 0 {
		return zero, false
	}
	return h.entries[len(h.entries)-1], true
}
