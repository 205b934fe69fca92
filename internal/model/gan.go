// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package model

import (
	"fmt"

	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/tensor"
)

// Generator maps latent vectors to 3-channel images in [-1, 1].
//
//	Input: [batch, latent]
//	FC1: latent → 256 -> LeakyReLU(0.2)
//	FC2: 256 → 512 -> LeakyReLU(0.2)
//	FC3: 512 → 1024 -> LeakyReLU(0.2)
//	FC4: 1024 → 3*S*S -> Tanh
//	Reshape -> [batch, 3, S, S]
type Generator[B tensor.Backend] struct {
	latentDim int
	imageSize int

	fc1  *nn.Linear[B]
	fc2  *nn.Linear[B]
	fc3  *nn.Linear[B]
	fc4  *nn.Linear[B]
	tanh *nn.Tanh[B]
}

// NewGenerator builds a generator for latentDim inputs and S×S outputs.
func NewGenerator[B tensor.Backend](latentDim, imageSize int, backend B) *Generator[B] {
	if latentDim <= 0 || imageSize <= 0 {
		panic(fmt.Sprintf("generator: invalid latent dim %d or image size %d", latentDim, imageSize))
	}
	return &Generator[B]{
		latentDim: latentDim,
		imageSize: imageSize,
		fc1:       nn.NewLinear(latentDim, 256, backend),
		fc2:       nn.NewLinear(256, 512, backend),
		fc3:       nn.NewLinear(512, 1024, backend),
		fc4:       nn.NewLinear(1024, 3*imageSize*imageSize, backend),
		tanh:      nn.NewTanh[B](),
	}
}

// LatentDim returns the length of the input vector.
func (g *Generator[B]) LatentDim() int { return g.latentDim }

// ImageSize returns the output side length.
func (g *Generator[B]) ImageSize() int { return g.imageSize }

// Forward maps [batch, latent] noise to [batch, 3, S, S] images.
func (g *Generator[B]) Forward(z *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	x := LeakyReLU(g.fc1.Forward(z), LeakySlope)
	x = LeakyReLU(g.fc2.Forward(x), LeakySlope)
	x = LeakyReLU(g.fc3.Forward(x), LeakySlope)
	x = g.tanh.Forward(g.fc4.Forward(x))
	return x.Reshape(z.Shape()[0], 3, g.imageSize, g.imageSize)
}

// Parameters returns all trainable parameters.
func (g *Generator[B]) Parameters() []*nn.Parameter[B] { return paramsOf(g.layers()) }

// StateDict returns the parameters keyed as "fc1.weight", ...
func (g *Generator[B]) StateDict() map[string]*tensor.RawTensor { return stateDict(g.layers()) }

// LoadStateDict copies a state dict produced by StateDict into the model.
func (g *Generator[B]) LoadStateDict(sd map[string]*tensor.RawTensor) error {
	return loadStateDict(g.layers(), sd)
}

func (g *Generator[B]) layers() []namedLayer[B] {
	return []namedLayer[B]{
		{"fc1", g.fc1},
		{"fc2", g.fc2},
		{"fc3", g.fc3},
		{"fc4", g.fc4},
	}
}

// Discriminator scores the probability that an image is real.
//
//	Input: [batch, 3, S, S] (S a multiple of 16)
//	Conv1: 3 → 64, 4x4, stride 2, pad 1 -> LeakyReLU(0.2) -> [batch, 64, S/2, S/2]
//	Conv2: 64 → 128 -> LeakyReLU(0.2) -> [batch, 128, S/4, S/4]
//	Conv3: 128 → 256 -> LeakyReLU(0.2) -> [batch, 256, S/8, S/8]
//	Conv4: 256 → 512 -> LeakyReLU(0.2) -> [batch, 512, S/16, S/16]
//	Flatten -> FC: → 1 -> Sigmoid
type Discriminator[B tensor.Backend] struct {
	imageSize int

	conv1 *nn.Conv2D[B]
	conv2 *nn.Conv2D[B]
	conv3 *nn.Conv2D[B]
	conv4 *nn.Conv2D[B]
	fc    *nn.Linear[B]
}

// NewDiscriminator builds a discriminator for S×S inputs.
func NewDiscriminator[B tensor.Backend](imageSize int, backend B) *Discriminator[B] {
	if imageSize <= 0 || imageSize%16 != 0 {
		panic(fmt.Sprintf("discriminator: image size %d is not a positive multiple of 16", imageSize))
	}
	side := imageSize / 16
	return &Discriminator[B]{
		imageSize: imageSize,
		conv1:     nn.NewConv2D(3, 64, 4, 4, 2, 1, true, backend),
		conv2:     nn.NewConv2D(64, 128, 4, 4, 2, 1, true, backend),
		conv3:     nn.NewConv2D(128, 256, 4, 4, 2, 1, true, backend),
		conv4:     nn.NewConv2D(256, 512, 4, 4, 2, 1, true, backend),
		fc:        nn.NewLinear(512*side*side, 1, backend),
	}
}

// Forward maps [batch, 3, S, S] images to [batch, 1] probabilities.
func (d *Discriminator[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if shape := input.Shape(); len(shape) != 4 || shape[1] != 3 || shape[2] != d.imageSize || shape[3] != d.imageSize {
		panic(fmt.Sprintf("discriminator: expected input [N, 3, %d, %d], got %v", d.imageSize, d.imageSize, shape))
	}

	x := LeakyReLU(d.conv1.Forward(input), LeakySlope)
	x = LeakyReLU(d.conv2.Forward(x), LeakySlope)
	x = LeakyReLU(d.conv3.Forward(x), LeakySlope)
	x = LeakyReLU(d.conv4.Forward(x), LeakySlope)
	return nn.SigmoidFunc(d.fc.Forward(flatten(x)))
}

// Parameters returns all trainable parameters.
func (d *Discriminator[B]) Parameters() []*nn.Parameter[B] { return paramsOf(d.layers()) }

// StateDict returns the parameters keyed as "conv1.weight", ...
func (d *Discriminator[B]) StateDict() map[string]*tensor.RawTensor { return stateDict(d.layers()) }

// LoadStateDict copies a state dict produced by StateDict into the model.
func (d *Discriminator[B]) LoadStateDict(sd map[string]*tensor.RawTensor) error {
	return loadStateDict(d.layers(), sd)
}

func (d *Discriminator[B]) layers() []namedLayer[B] {
	return []namedLayer[B]{
		{"conv1", d.conv1},
		{"conv2", d.conv2},
		{"conv3", d.conv3},
		{"conv4", d.conv4},
		{"fc", d.fc},
	}
}
