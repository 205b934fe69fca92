// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package report renders training progress and artifacts: console tables,
// loss/accuracy plots and generated-image grids.
package report

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/forgery/internal/train"
)

// Console writes per-epoch rows and per-sample predictions to W.
type Console struct {
	W io.Writer

	header bool
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{W: w}
}

// ClassifierEpoch prints one table row, preceded by the header on first use.
func (c *Console) ClassifierEpoch(e train.ClassifierEpoch, epochs int) {
	if !c.header {
		fmt.Fprintf(c.W, "%-9s | %10s | %9s | %8s | %7s\n", "Epoch", "Train Loss", "Train Acc", "Val Loss", "Val Acc")
		fmt.Fprintln(c.W, strings.Repeat("-", 55))
		c.header = true
	}
	fmt.Fprintf(c.W, "%-9s | %10.4f | %8.2f%% | %8.4f | %6.2f%%\n",
		fmt.Sprintf("%d/%d", e.Epoch, epochs), e.TrainLoss, e.TrainAcc, e.ValLoss, e.ValAcc)
}

// GANEpoch prints the bracketed per-epoch loss line.
func (c *Console) GANEpoch(e train.GANEpoch, maxEpochs int) {
	fmt.Fprintf(c.W, "[Epoch %d/%d] [D loss: %.4f] [G loss: %.4f]\n", e.Epoch, maxEpochs, e.DLoss, e.GLoss)
}

// Prediction prints one inference verdict.
func (c *Console) Prediction(p train.Prediction) {
	PrintPrediction(c.W, p)
}

// PrintPrediction writes "<source>: Predicted: <label>, Actual: <label>".
func PrintPrediction(w io.Writer, p train.Prediction) {
	fmt.Fprintf(w, "%s: Predicted: %s, Actual: %s\n",
		p.Source, train.LabelName(p.Predicted), train.LabelName(p.Actual))
}

// ClassifierSummary prints the final epoch and the epoch with the best
// validation accuracy.
func (c *Console) ClassifierSummary(h *train.History[train.ClassifierEpoch]) {
	entries := h.Entries()
	if len(entries) == 0 {
		return
	}
	acc := make([]float64, len(entries))
	for i, e := range entries {
		acc[i] = e.ValAcc
	}
	best := entries[floats.MaxIdx(acc)]
	last := entries[len(entries)-1]
	fmt.Fprintf(c.W, "Final: val loss %.4f, val acc %.2f%%\n", last.ValLoss, last.ValAcc)
	fmt.Fprintf(c.W, "Best:  epoch %d, val acc %.2f%%\n", best.Epoch, best.ValAcc)
}

// GANSummary prints why training ended and the epoch with the lowest
// generator loss.
func (c *Console) GANSummary(res *train.GANResult) {
	entries := res.History.Entries()
	if len(entries) == 0 {
		return
	}
	g := make([]float64, len(entries))
	for i, e := range entries {
		g[i] = e.GLoss
	}
	best := entries[floats.MinIdx(g)]
	fmt.Fprintf(c.W, "Stopped after %d epochs (%s); best G loss %.4f at epoch %d\n",
		len(entries), res.Reason, best.GLoss, best.Epoch)
}

// Summary prints the accuracy of an inference pass.
func (c *Console) Summary(s train.Summary) {
	fmt.Fprintf(c.W, "%d/%d correct (%.2f%%)\n", s.Correct, s.Total, s.Accuracy())
}

// Printf writes a free-form status line.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.W, format, args...)
}
