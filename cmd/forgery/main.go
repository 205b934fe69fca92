// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package main provides the forgery CLI: a real/forged image classifier and
// an image GAN trained with Born.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/google/uuid"

	"github.com/born-ml/forgery/internal/config"
	"github.com/born-ml/forgery/internal/dataset"
	"github.com/born-ml/forgery/internal/report"
	"github.com/born-ml/forgery/internal/train"
)

const version = "v0.1.0-dev"

func usage() {
	fmt.Println("forgery - image forgery detection and GAN training")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  train-classifier   Train the real/forged classifier")
	fmt.Println("  train-gan          Train the image GAN")
	fmt.Println("  predict            Score labeled images with a saved classifier")
	fmt.Println("  version            Show version")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "version":
		fmt.Printf("forgery %s\n", version)
	case "train-classifier":
		runTrainClassifier(args)
	case "train-gan":
		runTrainGAN(args)
	case "predict":
		runPredict(args)
	default:
		usage()
		os.Exit(2)
	}
}

// loadConfig reads path, or returns the defaults when path is empty.
func loadConfig(path string) *config.Config {
	if path == "" {
		cfg := config.Default()
		return &cfg
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// newRun tags the log with a short run id and returns the full id.
func newRun(cmd string) string {
	id := uuid.NewString()
	log.SetPrefix(fmt.Sprintf("forgery[%s] ", id[:8]))
	log.Printf("%s run %s", cmd, id)
	return id
}

func classifierFlags(fs *flag.FlagSet) (cfgPath *string, o *config.ClassifierOverrides) {
	o = &config.ClassifierOverrides{}
	cfgPath = fs.String("config", "", "Path to YAML config (defaults when empty)")
	fs.StringVar(&o.RealDir, "real", "", "Override directory of authentic images")
	fs.StringVar(&o.ForgedDir, "forged", "", "Override directory of forged images")
	fs.IntVar(&o.BatchSize, "batch-size", 0, "Batch size")
	fs.Int64Var(&o.Seed, "seed", 0, "PRNG seed for the split and shuffling")
	fs.StringVar(&o.Device, "device", "", "Compute device: cpu or webgpu")
	fs.StringVar(&o.CheckpointPath, "checkpoint", "", "Classifier checkpoint path")
	return cfgPath, o
}

func runTrainClassifier(args []string) {
	fs := flag.NewFlagSet("train-classifier", flag.ExitOnError)
	cfgPath, o := classifierFlags(fs)
	fs.IntVar(&o.Epochs, "epochs", 0, "Number of epochs")
	fs.Float64Var(&o.LearningRate, "lr", 0, "Adam learning rate")
	fs.StringVar(&o.PlotPath, "plot", "", "Performance plot path")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath).Classifier
	cfg.ApplyOverrides(*o)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	runID := newRun("train-classifier")

	t := dataset.ClassifierTransform(cfg.ImageSize, cfg.Mean, cfg.Std)
	ds, err := dataset.NewLabeledFolders(t, dataset.ClassifierExtensions, cfg.RealDir, cfg.ForgedDir)
	if err != nil {
		log.Fatalf("list images: %v", err)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	trainSet, valSet := dataset.RandomSplit(ds, cfg.TrainRatio, rng)
	log.Printf("images=%d train=%d val=%d", ds.Len(), trainSet.Len(), valSet.Len())

	out := report.NewConsole(os.Stdout)
	loop := &train.ClassifierLoop{
		Train:    dataset.NewSampler(trainSet, cfg.BatchSize, true, rng),
		Val:      dataset.NewSampler(valSet, cfg.BatchSize, false, rng),
		Epochs:   cfg.Epochs,
		Reporter: out,
	}
	if err := loop.Validate(); err != nil {
		log.Fatalf("invalid dataset: %v", err)
	}
	log.Printf("batch_size=%d batches=%d", loop.Train.BatchSize(), loop.Train.NumBatches())

	dev := selectDevice(cfg.Device)
	defer dev.Close()
	log.Printf("device=%s", dev.Name())

	meta := map[string]string{"run_id": runID, "device": dev.Name()}
	if err := dev.TrainClassifier(cfg, loop, out, meta); err != nil {
		dev.Close()
		log.Fatalf("training failed: %v", err)
	}
}

func runTrainGAN(args []string) {
	fs := flag.NewFlagSet("train-gan", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (defaults when empty)")
	var o config.GANOverrides
	fs.StringVar(&o.ImageDir, "images", "", "Override image directory")
	fs.IntVar(&o.MaxEpochs, "epochs", 0, "Maximum number of epochs")
	fs.IntVar(&o.BatchSize, "batch-size", 0, "Batch size")
	fs.IntVar(&o.Patience, "patience", 0, "Epochs without generator improvement before stopping")
	fs.Float64Var(&o.LearningRate, "lr", 0, "Adam learning rate")
	fs.Int64Var(&o.Seed, "seed", 0, "PRNG seed for shuffling and latent noise")
	fs.StringVar(&o.Device, "device", "", "Compute device: cpu or webgpu")
	fs.StringVar(&o.SnapshotDir, "samples", "", "Directory for generated sample grids")
	fs.StringVar(&o.PlotPath, "plot", "", "Loss plot path")
	fs.StringVar(&o.CheckpointPath, "checkpoint", "", "Generator checkpoint path (none when empty)")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath).GAN
	cfg.ApplyOverrides(o)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	runID := newRun("train-gan")

	ds, err := dataset.NewFolder(dataset.GANTransform(cfg.ImageSize), dataset.GANExtensions, cfg.ImageDir)
	if err != nil {
		log.Fatalf("list images: %v", err)
	}
	log.Printf("images=%d", ds.Len())

	rng := rand.New(rand.NewSource(cfg.Seed))
	out := report.NewConsole(os.Stdout)
	loop := &train.GANLoop{
		Data:          dataset.NewSampler(ds, cfg.BatchSize, true, rng),
		MaxEpochs:     cfg.MaxEpochs,
		Patience:      cfg.Patience,
		SnapshotEvery: cfg.SnapshotEvery,
		SampleCount:   cfg.SampleCount,
		Rand:          rng,
		Reporter:      out,
	}
	if cfg.SnapshotDir != "" {
		loop.Snapshotter = &report.GridWriter{Dir: cfg.SnapshotDir, Size: cfg.ImageSize}
	}
	if err := loop.Validate(); err != nil {
		log.Fatalf("invalid dataset: %v", err)
	}
	log.Printf("batch_size=%d batches=%d", loop.Data.BatchSize(), loop.Data.NumBatches())

	dev := selectDevice(cfg.Device)
	defer dev.Close()
	log.Printf("device=%s", dev.Name())

	meta := map[string]string{"run_id": runID, "device": dev.Name()}
	if err := dev.TrainGAN(cfg, loop, out, meta); err != nil {
		dev.Close()
		log.Fatalf("training failed: %v", err)
	}
}

func runPredict(args []string) {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	cfgPath, o := classifierFlags(fs)
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath).Classifier
	cfg.ApplyOverrides(*o)
	if err := cfg.ValidateForPredict(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	newRun("predict")

	t := dataset.ClassifierTransform(cfg.ImageSize, cfg.Mean, cfg.Std)
	ds, err := dataset.NewLabeledFolders(t, dataset.ClassifierExtensions, cfg.RealDir, cfg.ForgedDir)
	if err != nil {
		log.Fatalf("list images: %v", err)
	}
	data := dataset.NewSampler(ds, cfg.BatchSize, false, rand.New(rand.NewSource(cfg.Seed)))

	dev := selectDevice(cfg.Device)
	defer dev.Close()

	if err := dev.Predict(cfg, data, report.NewConsole(os.Stdout)); err != nil {
		dev.Close()
		log.Fatalf("predict failed: %v", err)
	}
}
