// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package config

// ClassifierOverrides carries command-line values for the classifier
// section. Zero values leave the configuration unchanged.
type ClassifierOverrides struct {
	RealDir        string
	ForgedDir      string
	Epochs         int
	BatchSize      int
	LearningRate   float64
	Seed           int64
	Device         string
	PlotPath       string
	CheckpointPath string
}

// ApplyOverrides replaces every setting o sets.
func (c *Classifier) ApplyOverrides(o ClassifierOverrides) {
	setString(&c.RealDir, o.RealDir)
	setString(&c.ForgedDir, o.ForgedDir)
	setInt(&c.Epochs, o.Epochs)
	setInt(&c.BatchSize, o.BatchSize)
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	setString(&c.Device, o.Device)
	setString(&c.PlotPath, o.PlotPath)
	setString(&c.CheckpointPath, o.CheckpointPath)
}

// GANOverrides carries command-line values for the GAN section. Zero values
// leave the configuration unchanged.
type GANOverrides struct {
	ImageDir       string
	MaxEpochs      int
	BatchSize      int
	Patience       int
	LearningRate   float64
	Seed           int64
	Device         string
	SnapshotDir    string
	PlotPath       string
	CheckpointPath string
}

// ApplyOverrides replaces every setting o sets.
func (g *GAN) ApplyOverrides(o GANOverrides) {
	setString(&g.ImageDir, o.ImageDir)
	setInt(&g.MaxEpochs, o.MaxEpochs)
	setInt(&g.BatchSize, o.BatchSize)
	setInt(&g.Patience, o.Patience)
	if o.LearningRate > 0 {
		g.LearningRate = o.LearningRate
	}
	if o.Seed != 0 {
		g.Seed = o.Seed
	}
	setString(&g.Device, o.Device)
	setString(&g.SnapshotDir, o.SnapshotDir)
	setString(&g.PlotPath, o.PlotPath)
	setString(&g.CheckpointPath, o.CheckpointPath)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}
