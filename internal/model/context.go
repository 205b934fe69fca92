// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package model

import (
	"fmt"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/optim"
	"github.com/born-ml/born/tensor"

	"github.com/born-ml/forgery/internal/config"
	"github.com/born-ml/forgery/internal/dataset"
)

// Backend is a born backend that records operations on a gradient tape,
// i.e. an *autodiff.Backend over CPU or WebGPU.
type Backend = autodiff.BackwardCapable

// ClassifierContext owns everything a classifier run mutates: the model, its
// Adam optimizer and the backend tape. It performs one optimization step per
// batch for the training loop.
type ClassifierContext[B Backend] struct {
	Backend   B
	Model     *Classifier[B]
	Optimizer *optim.Adam[B]
	Config    config.Classifier
}

// NewClassifierContext builds a fresh classifier and optimizer on backend.
func NewClassifierContext[B Backend](backend B, cfg config.Classifier) *ClassifierContext[B] {
	m := NewClassifier(cfg.ImageSize, backend)
	return &ClassifierContext[B]{
		Backend: backend,
		Model:   m,
		Optimizer: optim.NewAdam(m.Parameters(), optim.AdamConfig{
			LR:    float32(cfg.LearningRate),
			Betas: [2]float32{0.9, 0.999},
			Eps:   1e-8,
		}, backend),
		Config: cfg,
	}
}

// SetTraining switches gradient recording on (training) or off (evaluation).
func (c *ClassifierContext[B]) SetTraining(training bool) {
	tape := c.Backend.GetTape()
	tape.Clear()
	if training {
		tape.StartRecording()
	} else {
		tape.StopRecording()
	}
}

// Step runs forward, BCE, backward and one Adam update on b. It returns the
// batch loss and the per-sample outputs.
func (c *ClassifierContext[B]) Step(b *dataset.Batch) (float64, []float32, error) {
	tape := c.Backend.GetTape()
	if !tape.IsRecording() {
		return 0, nil, fmt.Errorf("model: classifier step outside training mode")
	}
	images, labels, err := batchTensors(b, c.Model.ImageSize(), c.Backend)
	if err != nil {
		return 0, nil, err
	}

	tape.Clear()
	c.Optimizer.ZeroGrad()

	out := c.Model.Forward(images)
	loss := BinaryCrossEntropy(out, labels)
	grads := autodiff.Backward(loss, c.Backend)
	c.Optimizer.Step(grads)

	value, outputs := Scalar(loss), values(out)
	tape.Clear()
	return value, outputs, nil
}

// Evaluate scores b without recording gradients or updating parameters.
func (c *ClassifierContext[B]) Evaluate(b *dataset.Batch) (float64, []float32, error) {
	images, labels, err := batchTensors(b, c.Model.ImageSize(), c.Backend)
	if err != nil {
		return 0, nil, err
	}
	defer pauseTape(c.Backend)()

	out := c.Model.Forward(images)
	return Scalar(BinaryCrossEntropy(out, labels)), values(out), nil
}

// Save writes the classifier to path with the given metadata.
func (c *ClassifierContext[B]) Save(path string, metadata map[string]string) error {
	return SaveCheckpoint[B](path, c.Model, KindClassifier, metadata)
}

// Load replaces the classifier weights with a checkpoint written by Save and
// returns its metadata.
func (c *ClassifierContext[B]) Load(path string) (map[string]string, error) {
	return LoadCheckpoint[B](path, c.Backend, c.Model, KindClassifier)
}

// GANContext owns the generator, the discriminator and one Adam optimizer
// for each.
type GANContext[B Backend] struct {
	Backend       B
	Generator     *Generator[B]
	Discriminator *Discriminator[B]
	OptG          *optim.Adam[B]
	OptD          *optim.Adam[B]
	Config        config.GAN
}

// NewGANContext builds fresh networks and optimizers on backend.
func NewGANContext[B Backend](backend B, cfg config.GAN) *GANContext[B] {
	g := NewGenerator(cfg.LatentDim, cfg.ImageSize, backend)
	d := NewDiscriminator(cfg.ImageSize, backend)
	adam := optim.AdamConfig{
		LR:    float32(cfg.LearningRate),
		Betas: [2]float32{float32(cfg.Beta1), float32(cfg.Beta2)},
		Eps:   1e-8,
	}
	return &GANContext[B]{
		Backend:       backend,
		Generator:     g,
		Discriminator: d,
		OptG:          optim.NewAdam(g.Parameters(), adam, backend),
		OptD:          optim.NewAdam(d.Parameters(), adam, backend),
		Config:        cfg,
	}
}

// LatentDim returns the generator input length.
func (c *GANContext[B]) LatentDim() int { return c.Generator.LatentDim() }

// DiscriminatorStep updates the discriminator on batch versus G(z). The fake
// batch is generated with the tape stopped and detached, so no gradient
// reaches the generator. z holds batch.Size latent vectors back to back.
func (c *GANContext[B]) DiscriminatorStep(batch *dataset.Batch, z []float32) (float64, error) {
	c.OptD.ZeroGrad()
	loss, grads, err := c.discriminatorGrads(batch, z)
	if err != nil {
		return 0, err
	}
	c.OptD.Step(grads)

	value := Scalar(loss)
	c.Backend.GetTape().Clear()
	return value, nil
}

// discriminatorGrads records BCE(D(real), 1) + BCE(D(G(z)), 0) and returns the
// loss with its gradients. The tape is left holding the recorded ops.
func (c *GANContext[B]) discriminatorGrads(batch *dataset.Batch, z []float32) (*tensor.Tensor[float32, B], map[*tensor.RawTensor]*tensor.RawTensor, error) {
	images, _, err := batchTensors(batch, c.Generator.ImageSize(), c.Backend)
	if err != nil {
		return nil, nil, err
	}
	noise, err := c.latent(z, batch.Size)
	if err != nil {
		return nil, nil, err
	}
	tape := c.Backend.GetTape()
	tape.Clear()

	tape.StopRecording()
	fake := c.Generator.Forward(noise).Detach()
	tape.StartRecording()

	valid := tensor.Ones[float32](tensor.Shape{batch.Size, 1}, c.Backend)
	zeros := tensor.Zeros[float32](tensor.Shape{batch.Size, 1}, c.Backend)

	loss := BinaryCrossEntropy(c.Discriminator.Forward(images), valid).
		Add(BinaryCrossEntropy(c.Discriminator.Forward(fake), zeros))
	return loss, autodiff.Backward(loss, c.Backend), nil
}

// GeneratorStep regenerates G(z) with the tape recording and updates the
// generator so that the discriminator scores it as real. Only the
// generator's optimizer steps.
func (c *GANContext[B]) GeneratorStep(z []float32) (float64, error) {
	c.OptG.ZeroGrad()
	loss, grads, err := c.generatorGrads(z)
	if err != nil {
		return 0, err
	}
	c.OptG.Step(grads)

	value := Scalar(loss)
	c.Backend.GetTape().Clear()
	return value, nil
}

// generatorGrads records BCE(D(G(z)), 1) and returns the loss with its
// gradients, which cover both networks.
func (c *GANContext[B]) generatorGrads(z []float32) (*tensor.Tensor[float32, B], map[*tensor.RawTensor]*tensor.RawTensor, error) {
	n := len(z) / c.LatentDim()
	noise, err := c.latent(z, n)
	if err != nil {
		return nil, nil, err
	}
	tape := c.Backend.GetTape()
	tape.Clear()
	tape.StartRecording()

	valid := tensor.Ones[float32](tensor.Shape{n, 1}, c.Backend)
	loss := BinaryCrossEntropy(c.Discriminator.Forward(c.Generator.Forward(noise)), valid)
	return loss, autodiff.Backward(loss, c.Backend), nil
}

// Sample returns G(z) as CHW pixels in [-1, 1] without recording gradients.
func (c *GANContext[B]) Sample(z []float32) ([]float32, error) {
	noise, err := c.latent(z, len(z)/c.LatentDim())
	if err != nil {
		return nil, err
	}
	defer pauseTape(c.Backend)()
	return values(c.Generator.Forward(noise)), nil
}

// Save writes the generator to path with the given metadata.
func (c *GANContext[B]) Save(path string, metadata map[string]string) error {
	return SaveCheckpoint[B](path, c.Generator, KindGenerator, metadata)
}

func (c *GANContext[B]) latent(z []float32, n int) (*tensor.Tensor[float32, B], error) {
	dim := c.LatentDim()
	if n <= 0 || len(z) != n*dim {
		return nil, fmt.Errorf("model: latent batch has %d values, want %d×%d", len(z), n, dim)
	}
	return tensor.FromSlice(z, tensor.Shape{n, dim}, c.Backend)
}

func batchTensors[B tensor.Backend](b *dataset.Batch, size int, backend B) (images, labels *tensor.Tensor[float32, B], err error) {
	if b == nil || b.Size == 0 {
		return nil, nil, fmt.Errorf("model: empty batch")
	}
	if want := dataset.Channels * size * size; b.SampleLen != want {
		return nil, nil, &dataset.ShapeMismatchError{Path: b.Sources[0], Got: b.SampleLen, Want: want}
	}
	images, err = tensor.FromSlice(b.Pixels, tensor.Shape{b.Size, dataset.Channels, size, size}, backend)
	if err != nil {
		return nil, nil, fmt.Errorf("model: stack images: %w", err)
	}
	labels, err = tensor.FromSlice(b.Labels, tensor.Shape{b.Size, 1}, backend)
	if err != nil {
		return nil, nil, fmt.Errorf("model: stack labels: %w", err)
	}
	return images, labels, nil
}

// pauseTape stops recording and returns a func restoring the previous state.
func pauseTape(b Backend) func() {
	tape := b.GetTape()
	was := tape.IsRecording()
	tape.StopRecording()
	return func() {
		if was {
			tape.StartRecording()
		}
	}
}

func values[B tensor.Backend](t *tensor.Tensor[float32, B]) []float32 {
	return append([]float32(nil), t.Raw().AsFloat32()...)
}
