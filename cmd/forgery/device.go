// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"

	"github.com/born-ml/forgery/internal/config"
	"github.com/born-ml/forgery/internal/dataset"
	"github.com/born-ml/forgery/internal/model"
	"github.com/born-ml/forgery/internal/report"
	"github.com/born-ml/forgery/internal/train"
)

// runner executes a command on one concrete backend.
type runner interface {
	Name() string
	TrainClassifier(cfg config.Classifier, loop *train.ClassifierLoop, out *report.Console, meta map[string]string) error
	TrainGAN(cfg config.GAN, loop *train.GANLoop, out *report.Console, meta map[string]string) error
	Predict(cfg config.Classifier, data *dataset.Sampler, out *report.Console) error
	Close()
}

type deviceRunner[B model.Backend] struct {
	backend B
	name    string
	release func()
}

func (r *deviceRunner[B]) Name() string { return r.name }

func (r *deviceRunner[B]) Close() {
	if r.release != nil {
		r.release()
	}
}

func (r *deviceRunner[B]) TrainClassifier(cfg config.Classifier, loop *train.ClassifierLoop, out *report.Console, meta map[string]string) error {
	return trainClassifier(r.backend, cfg, loop, out, meta)
}

func (r *deviceRunner[B]) TrainGAN(cfg config.GAN, loop *train.GANLoop, out *report.Console, meta map[string]string) error {
	return trainGAN(r.backend, cfg, loop, out, meta)
}

func (r *deviceRunner[B]) Predict(cfg config.Classifier, data *dataset.Sampler, out *report.Console) error {
	return predict(r.backend, cfg, data, out)
}

func trainClassifier[B model.Backend](backend B, cfg config.Classifier, loop *train.ClassifierLoop, out *report.Console, meta map[string]string) error {
	ctx := model.NewClassifierContext(backend, cfg)
	loop.Model = ctx

	history, err := loop.Run()
	if err != nil {
		return err
	}
	out.ClassifierSummary(history)

	if cfg.PlotPath != "" {
		if err := report.SavePerformancePlot(history.Entries(), cfg.PlotPath); err != nil {
			return err
		}
		out.Printf("Saved %s\n", cfg.PlotPath)
	}
	if cfg.CheckpointPath != "" {
		meta["image_size"] = strconv.Itoa(cfg.ImageSize)
		meta["epochs"] = strconv.Itoa(history.Len())
		if err := ctx.Save(cfg.CheckpointPath, meta); err != nil {
			return err
		}
		out.Printf("Saved %s\n", cfg.CheckpointPath)
	}
	return nil
}

func trainGAN[B model.Backend](backend B, cfg config.GAN, loop *train.GANLoop, out *report.Console, meta map[string]string) error {
	ctx := model.NewGANContext(backend, cfg)
	loop.Model = ctx

	res, err := loop.Run()
	if err != nil {
		return err
	}
	out.GANSummary(res)

	if cfg.PlotPath != "" {
		if err := report.SaveGANLossPlot(res.History.Entries(), cfg.PlotPath); err != nil {
			return err
		}
		out.Printf("Saved %s\n", cfg.PlotPath)
	}
	if cfg.CheckpointPath != "" {
		meta["image_size"] = strconv.Itoa(cfg.ImageSize)
		meta["latent_dim"] = strconv.Itoa(cfg.LatentDim)
		meta["stop_reason"] = res.Reason.String()
		if err := ctx.Save(cfg.CheckpointPath, meta); err != nil {
			return err
		}
		out.Printf("Saved %s\n", cfg.CheckpointPath)
	}
	return nil
}

func predict[B model.Backend](backend B, cfg config.Classifier, data *dataset.Sampler, out *report.Console) error {
	ctx := model.NewClassifierContext(backend, cfg)
	meta, err := ctx.Load(cfg.CheckpointPath)
	if err != nil {
		return err
	}
	if id := meta["run_id"]; id != "" {
		out.Printf("Loaded %s (run %s)\n", cfg.CheckpointPath, id)
	}

	sum, err := train.Infer(ctx, data, out)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	out.Summary(sum)
	return nil
}
