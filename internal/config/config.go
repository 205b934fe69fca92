// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package config holds the run configuration for the classifier and GAN
// trainers.
//
// Default holds the standard training constants. A YAML
// file may override any of them:
//
//	classifier:
//	  real_dir: data/real
//	  forged_dir: data/forged
//	  epochs: 20
//	gan:
//	  image_dir: data/faces
//	  patience: 5
//
// Validate must succeed before any model, optimizer or backend is allocated.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Supported compute devices.
const (
	DeviceCPU    = "cpu"
	DeviceWebGPU = "webgpu"
)

// Classifier configures the real/forged classifier run.
type Classifier struct {
	RealDir        string     `yaml:"real_dir"`
	ForgedDir      string     `yaml:"forged_dir"`
	ImageSize      int        `yaml:"image_size"`
	BatchSize      int        `yaml:"batch_size"`
	Epochs         int        `yaml:"epochs"`
	LearningRate   float64    `yaml:"learning_rate"`
	TrainRatio     float64    `yaml:"train_ratio"`
	Mean           [3]float32 `yaml:"mean"`
	Std            [3]float32 `yaml:"std"`
	PlotPath       string     `yaml:"plot_path"`
	CheckpointPath string     `yaml:"checkpoint_path"`
	Seed           int64      `yaml:"seed"`
	Device         string     `yaml:"device"`
}

// GAN configures the image GAN run.
type GAN struct {
	ImageDir       string  `yaml:"image_dir"`
	ImageSize      int     `yaml:"image_size"`
	LatentDim      int     `yaml:"latent_dim"`
	BatchSize      int     `yaml:"batch_size"`
	MaxEpochs      int     `yaml:"max_epochs"`
	LearningRate   float64 `yaml:"learning_rate"`
	Beta1          float64 `yaml:"beta1"`
	Beta2          float64 `yaml:"beta2"`
	Patience       int     `yaml:"patience"`
	SnapshotEvery  int     `yaml:"snapshot_every"`
	SampleCount    int     `yaml:"sample_count"`
	SnapshotDir    string  `yaml:"snapshot_dir"`
	PlotPath       string  `yaml:"plot_path"`
	CheckpointPath string  `yaml:"checkpoint_path"` // empty: generator is not persisted
	Seed           int64   `yaml:"seed"`
	Device         string  `yaml:"device"`
}

// Config is the top-level configuration document.
type Config struct {
	Classifier Classifier `yaml:"classifier"`
	GAN        GAN        `yaml:"gan"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Classifier: Classifier{
			RealDir:        "dataset/real",
			ForgedDir:      "dataset/forged",
			ImageSize:      128,
			BatchSize:      32,
			Epochs:         10,
			LearningRate:   0.001,
			TrainRatio:     0.8,
			Mean:           [3]float32{0.485, 0.456, 0.406},
			Std:            [3]float32{0.229, 0.224, 0.225},
			PlotPath:       "performance_plot.png",
			CheckpointPath: "forgery_classifier.born",
			Seed:           42,
			Device:         DeviceCPU,
		},
		GAN: GAN{
			ImageDir:      "dataset/images",
			ImageSize:     64,
			LatentDim:     100,
			BatchSize:     64,
			MaxEpochs:     200,
			LearningRate:  0.0002,
			Beta1:         0.5,
			Beta2:         0.999,
			Patience:      10,
			SnapshotEvery: 10,
			SampleCount:   16,
			SnapshotDir:   "gan_samples",
			PlotPath:      "gan_loss_plot.png",
			Seed:          42,
			Device:        DeviceCPU,
		},
	}
}

// Load reads a YAML document from path on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document on top of Default. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the classifier section, including that both input
// directories exist.
func (c *Classifier) Validate() error {
	if err := requireDir("classifier.real_dir", c.RealDir); err != nil {
		return err
	}
	if err := requireDir("classifier.forged_dir", c.ForgedDir); err != nil {
		return err
	}
	switch {
	case c.ImageSize <= 0 || c.ImageSize%8 != 0:
		return invalid("classifier.image_size", "must be a positive multiple of 8 (got %d)", c.ImageSize)
	case c.BatchSize <= 0:
		return invalid("classifier.batch_size", "must be > 0 (got %d)", c.BatchSize)
	case c.Epochs <= 0:
		return invalid("classifier.epochs", "must be > 0 (got %d)", c.Epochs)
	case c.LearningRate <= 0:
		return invalid("classifier.learning_rate", "must be > 0 (got %g)", c.LearningRate)
	case c.TrainRatio <= 0 || c.TrainRatio >= 1:
		return invalid("classifier.train_ratio", "must be in (0, 1) (got %g)", c.TrainRatio)
	}
	if err := validStd("classifier.std", c.Std); err != nil {
		return err
	}
	return validDevice("classifier.device", c.Device)
}

// ValidateForPredict checks only what the inference pass needs.
func (c *Classifier) ValidateForPredict() error {
	if err := requireDir("classifier.real_dir", c.RealDir); err != nil {
		return err
	}
	if err := requireDir("classifier.forged_dir", c.ForgedDir); err != nil {
		return err
	}
	if c.CheckpointPath == "" {
		return invalid("classifier.checkpoint_path", "must be set")
	}
	switch {
	case c.ImageSize <= 0 || c.ImageSize%8 != 0:
		return invalid("classifier.image_size", "must be a positive multiple of 8 (got %d)", c.ImageSize)
	case c.BatchSize <= 0:
		return invalid("classifier.batch_size", "must be > 0 (got %d)", c.BatchSize)
	}
	if err := validStd("classifier.std", c.Std); err != nil {
		return err
	}
	return validDevice("classifier.device", c.Device)
}

// Validate checks the GAN section, including that the image directory exists.
func (g *GAN) Validate() error {
	if err := requireDir("gan.image_dir", g.ImageDir); err != nil {
		return err
	}
	switch {
	case g.ImageSize <= 0 || g.ImageSize%16 != 0:
		return invalid("gan.image_size", "must be a positive multiple of 16 (got %d)", g.ImageSize)
	case g.LatentDim <= 0:
		return invalid("gan.latent_dim", "must be > 0 (got %d)", g.LatentDim)
	case g.BatchSize <= 0:
		return invalid("gan.batch_size", "must be > 0 (got %d)", g.BatchSize)
	case g.MaxEpochs <= 0:
		return invalid("gan.max_epochs", "must be > 0 (got %d)", g.MaxEpochs)
	case g.LearningRate <= 0:
		return invalid("gan.learning_rate", "must be > 0 (got %g)", g.LearningRate)
	case g.Beta1 < 0 || g.Beta1 >= 1 || g.Beta2 < 0 || g.Beta2 >= 1:
		return invalid("gan.beta1", "betas must be in [0, 1) (got %g, %g)", g.Beta1, g.Beta2)
	case g.Patience <= 0:
		return invalid("gan.patience", "must be > 0 (got %d)", g.Patience)
	case g.SnapshotEvery <= 0:
		return invalid("gan.snapshot_every", "must be > 0 (got %d)", g.SnapshotEvery)
	case g.SampleCount <= 0:
		return invalid("gan.sample_count", "must be > 0 (got %d)", g.SampleCount)
	}
	return validDevice("gan.device", g.Device)
}

func requireDir(field, path string) error {
	if path == "" {
		return invalid(field, "directory not set")
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return invalid(field, "directory %q does not exist", path)
		}
		return &ConfigurationError{Field: field, Reason: err.Error()}
	}
	if !info.IsDir() {
		return invalid(field, "%q is not a directory", path)
	}
	return nil
}

func validStd(field string, std [3]float32) error {
	for i, s := range std {
		if s <= 0 {
			return invalid(field, "channel %d must be > 0 (got %g)", i, s)
		}
	}
	return nil
}

func validDevice(field, device string) error {
	switch device {
	case DeviceCPU, DeviceWebGPU:
		return nil
	}
	return invalid(field, "unknown device %q (want %q or %q)", device, DeviceCPU, DeviceWebGPU)
}
