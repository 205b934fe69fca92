// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/born-ml/forgery/internal/train"
)

// Plot dimensions.
const (
	panelWidth  = 6 * vg.Inch
	panelHeight = 4 * vg.Inch
)

type series struct {
	name string
	pts  plotter.XYs
}

func newPlot(title, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = ylabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

func addLines(p *plot.Plot, lines ...series) error {
	for i, s := range lines {
		l, err := plotter.NewLine(s.pts)
		if err != nil {
			return fmt.Errorf("report: %s: %w", s.name, err)
		}
		l.Width = vg.Points(2)
		l.Color = plotutil.Color(i)
		p.Add(l)
		p.Legend.Add(s.name, l)
	}
	return nil
}

// SavePerformancePlot writes a two-panel PNG: loss (left) and accuracy
// (right), training versus validation, per epoch.
func SavePerformancePlot(entries []train.ClassifierEpoch, path string) error {
	if len(entries) == 0 {
		return fmt.Errorf("report: no epochs to plot")
	}
	trainLoss := make(plotter.XYs, len(entries))
	valLoss := make(plotter.XYs, len(entries))
	trainAcc := make(plotter.XYs, len(entries))
	valAcc := make(plotter.XYs, len(entries))
	for i, e := range entries {
		x := float64(e.Epoch)
		trainLoss[i].X, trainLoss[i].Y = x, e.TrainLoss
		valLoss[i].X, valLoss[i].Y = x, e.ValLoss
		trainAcc[i].X, trainAcc[i].Y = x, e.TrainAcc
		valAcc[i].X, valAcc[i].Y = x, e.ValAcc
	}

	loss := newPlot("Loss", "Loss")
	if err := addLines(loss, series{"Train", trainLoss}, series{"Validation", valLoss}); err != nil {
		return err
	}
	acc := newPlot("Accuracy", "Accuracy (%)")
	if err := addLines(acc, series{"Train", trainAcc}, series{"Validation", valAcc}); err != nil {
		return err
	}

	img := vgimg.New(2*panelWidth, panelHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 1, Cols: 2, PadX: vg.Millimeter, PadY: vg.Millimeter}
	canvases := plot.Align([][]*plot.Plot{{loss, acc}}, tiles, dc)
	loss.Draw(canvases[0][0])
	acc.Draw(canvases[0][1])

	return writePNG(img, path)
}

// SaveGANLossPlot writes the discriminator and generator loss curves over
// the completed epochs as a PNG.
func SaveGANLossPlot(entries []train.GANEpoch, path string) error {
	if len(entries) == 0 {
		return fmt.Errorf("report: no epochs to plot")
	}
	d := make(plotter.XYs, len(entries))
	g := make(plotter.XYs, len(entries))
	for i, e := range entries {
		x := float64(e.Epoch)
		d[i].X, d[i].Y = x, e.DLoss
		g[i].X, g[i].Y = x, e.GLoss
	}

	p := newPlot("GAN Loss", "Loss")
	if err := addLines(p, series{"Discriminator", d}, series{"Generator", g}); err != nil {
		return err
	}
	if err := p.Save(panelWidth, panelHeight, path); err != nil {
		return fmt.Errorf("report: save %q: %w", path, err)
	}
	return nil
}

func writePNG(img *vgimg.Canvas, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %q: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("report: write %q: %w", path, err)
	}
	return f.Close()
}
