// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package model

import (
	"fmt"

	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/tensor"
)

// Classifier is a three-stage CNN scoring the probability that an image is
// forged.
//
// Architecture (S = image size, a multiple of 8):
//
//	Input: [batch, 3, S, S]
//	Conv1: 3 → 32, 3x3, pad 1 -> ReLU -> MaxPool 2x2 -> [batch, 32, S/2, S/2]
//	Conv2: 32 → 64, 3x3, pad 1 -> ReLU -> MaxPool 2x2 -> [batch, 64, S/4, S/4]
//	Conv3: 64 → 128, 3x3, pad 1 -> ReLU -> MaxPool 2x2 -> [batch, 128, S/8, S/8]
//	Flatten -> [batch, 128*(S/8)^2]
//	FC1: -> 512 -> ReLU
//	FC2: 512 → 1 -> Sigmoid
type Classifier[B tensor.Backend] struct {
	imageSize int

	conv1 *nn.Conv2D[B]
	pool1 *nn.MaxPool2D[B]
	conv2 *nn.Conv2D[B]
	pool2 *nn.MaxPool2D[B]
	conv3 *nn.Conv2D[B]
	pool3 *nn.MaxPool2D[B]
	fc1   *nn.Linear[B]
	fc2   *nn.Linear[B]
}

// NewClassifier builds the classifier for square inputs of imageSize pixels.
func NewClassifier[B tensor.Backend](imageSize int, backend B) *Classifier[B] {
	if imageSize <= 0 || imageSize%8 != 0 {
		panic(fmt.Sprintf("classifier: image size %d is not a positive multiple of 8", imageSize))
	}
	side := imageSize / 8
	return &Classifier[B]{
		imageSize: imageSize,
		conv1:     nn.NewConv2D(3, 32, 3, 3, 1, 1, true, backend),
		pool1:     nn.NewMaxPool2D(2, 2, backend),
		conv2:     nn.NewConv2D(32, 64, 3, 3, 1, 1, true, backend),
		pool2:     nn.NewMaxPool2D(2, 2, backend),
		conv3:     nn.NewConv2D(64, 128, 3, 3, 1, 1, true, backend),
		pool3:     nn.NewMaxPool2D(2, 2, backend),
		fc1:       nn.NewLinear(128*side*side, 512, backend),
		fc2:       nn.NewLinear(512, 1, backend),
	}
}

// ImageSize returns the expected input side length.
func (m *Classifier[B]) ImageSize() int { return m.imageSize }

// Forward maps [batch, 3, S, S] images to [batch, 1] probabilities.
func (m *Classifier[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if shape := input.Shape(); len(shape) != 4 || shape[1] != 3 || shape[2] != m.imageSize || shape[3] != m.imageSize {
		panic(fmt.Sprintf("classifier: expected input [N, 3, %d, %d], got %v", m.imageSize, m.imageSize, shape))
	}

	x := m.pool1.Forward(nn.ReLUFunc(m.conv1.Forward(input)))
	x = m.pool2.Forward(nn.ReLUFunc(m.conv2.Forward(x)))
	x = m.pool3.Forward(nn.ReLUFunc(m.conv3.Forward(x)))

	x = flatten(x)
	x = nn.ReLUFunc(m.fc1.Forward(x))
	return nn.SigmoidFunc(m.fc2.Forward(x))
}

// Parameters returns all trainable parameters.
func (m *Classifier[B]) Parameters() []*nn.Parameter[B] {
	return paramsOf(m.layers())
}

// StateDict returns the parameters keyed as "conv1.weight", "fc2.bias", ...
func (m *Classifier[B]) StateDict() map[string]*tensor.RawTensor {
	return stateDict(m.layers())
}

// LoadStateDict copies a state dict produced by StateDict into the model.
func (m *Classifier[B]) LoadStateDict(sd map[string]*tensor.RawTensor) error {
	return loadStateDict(m.layers(), sd)
}

func (m *Classifier[B]) layers() []namedLayer[B] {
	return []namedLayer[B]{
		{"conv1", m.conv1},
		{"conv2", m.conv2},
		{"conv3", m.conv3},
		{"fc1", m.fc1},
		{"fc2", m.fc2},
	}
}

// String returns a string representation of the model architecture.
func (m *Classifier[B]) String() string {
	side := m.imageSize / 8
	return fmt.Sprintf(`Classifier(
  %s
  ReLU()
  %s
  %s
  ReLU()
  %s
  %s
  ReLU()
  %s
  Linear(in=%d, out=512)
  ReLU()
  Linear(in=512, out=1)
  Sigmoid()
)`,
		m.conv1.String(), m.pool1.String(),
		m.conv2.String(), m.pool2.String(),
		m.conv3.String(), m.pool3.String(),
		128*side*side,
	)
}
