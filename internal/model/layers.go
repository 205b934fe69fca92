// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package model defines the classifier, generator and discriminator networks
// on top of the born tensor/autodiff stack, plus the stepper types that drive
// one optimization step per batch.
//
// Every tensor expression here is built from operations the autodiff tape
// records (Add, Sub, Mul, Log, MatMul, Reshape, Conv2D, MaxPool2D, ReLU,
// Sigmoid, Tanh), so gradients flow through the compositions below.
package model

import (
	"fmt"

	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/tensor"
)

// LeakySlope is the negative slope used by the GAN networks.
const LeakySlope = 0.2

// bceEpsilon keeps log() finite for saturated probabilities.
const bceEpsilon = 1e-7

// LeakyReLU computes max(x, 0) + slope*min(x, 0) as ReLU(x) - slope*ReLU(-x).
func LeakyReLU[B tensor.Backend](x *tensor.Tensor[float32, B], slope float32) *tensor.Tensor[float32, B] {
	b := x.Backend()
	shape := x.Shape()

	negated := tensor.Zeros[float32](shape, b).Sub(x)
	scale := tensor.Full[float32](shape, slope, b)

	return nn.ReLUFunc(x).Sub(scale.Mul(nn.ReLUFunc(negated)))
}

// BinaryCrossEntropy returns the mean of
//
//	-[y*log(p+eps) + (1-y)*log(1-p+eps)]
//
// over every element of pred as a [1, 1] tensor. pred and target must have
// the same shape.
func BinaryCrossEntropy[B tensor.Backend](pred, target *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := pred.Shape()
	if !shape.Equal(target.Shape()) {
		panic(fmt.Sprintf("bce: prediction shape %v != target shape %v", shape, target.Shape()))
	}
	b := pred.Backend()
	n := pred.NumElements()

	eps := tensor.Full[float32](shape, bceEpsilon, b)
	ones := tensor.Ones[float32](shape, b)

	pos := target.Mul(pred.Add(eps).Log())
	neg := ones.Sub(target).Mul(ones.Sub(pred).Add(eps).Log())
	ll := pos.Add(neg).Reshape(n, 1)

	// Mean as a matrix product keeps the reduction on the tape.
	weights := tensor.Full[float32](tensor.Shape{1, n}, -1/float32(n), b)
	return weights.MatMul(ll)
}

// Scalar reads the single value of a [1, 1] loss tensor.
func Scalar[B tensor.Backend](t *tensor.Tensor[float32, B]) float64 {
	return float64(t.Raw().AsFloat32()[0])
}

// flatten reshapes [N, ...] to [N, rest].
func flatten[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	return x.Reshape(shape[0], x.NumElements()/shape[0])
}
