// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package model

import (
	"fmt"
	"sort"

	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/tensor"
)

// Model kinds recorded in checkpoint headers.
const (
	KindClassifier = "ForgeryClassifier"
	KindGenerator  = "ForgeryGenerator"
)

// paramSlots names a layer's parameters in Parameters() order.
var paramSlots = []string{"weight", "bias"}

type layer[B tensor.Backend] interface {
	Parameters() []*nn.Parameter[B]
}

type namedLayer[B tensor.Backend] struct {
	name  string
	layer layer[B]
}

func paramsOf[B tensor.Backend](layers []namedLayer[B]) []*nn.Parameter[B] {
	params := make([]*nn.Parameter[B], 0, 2*len(layers))
	for _, l := range layers {
		params = append(params, l.layer.Parameters()...)
	}
	return params
}

func stateDict[B tensor.Backend](layers []namedLayer[B]) map[string]*tensor.RawTensor {
	sd := make(map[string]*tensor.RawTensor)
	for _, l := range layers {
		for i, p := range l.layer.Parameters() {
			sd[l.name+"."+paramSlots[i]] = p.Tensor().Raw()
		}
	}
	return sd
}

// loadStateDict copies values in place so optimizer state keyed by the
// parameter tensors stays valid.
func loadStateDict[B tensor.Backend](layers []namedLayer[B], sd map[string]*tensor.RawTensor) error {
	want := 0
	for _, l := range layers {
		for i, p := range l.layer.Parameters() {
			key := l.name + "." + paramSlots[i]
			want++
			src, ok := sd[key]
			if !ok {
				return fmt.Errorf("model: missing %q in state dict", key)
			}
			dst := p.Tensor().Raw()
			if !src.Shape().Equal(dst.Shape()) {
				return fmt.Errorf("model: %q has shape %v, expected %v", key, src.Shape(), dst.Shape())
			}
			copy(dst.AsFloat32(), src.AsFloat32())
		}
	}
	if len(sd) != want {
		return fmt.Errorf("model: state dict has %d entries, expected %d: %v", len(sd), want, keys(sd))
	}
	return nil
}

func keys(sd map[string]*tensor.RawTensor) []string {
	out := make([]string, 0, len(sd))
	for k := range sd {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SaveCheckpoint writes m to a .born file tagged with kind.
func SaveCheckpoint[B tensor.Backend](path string, m nn.Module[B], kind string, metadata map[string]string) error {
	if err := nn.Save(m, path, kind, metadata); err != nil {
		return fmt.Errorf("model: save %s checkpoint %q: %w", kind, path, err)
	}
	return nil
}

// LoadCheckpoint reads a .born file written by SaveCheckpoint into m. The file
// must have been saved with the same kind. It returns the stored metadata.
func LoadCheckpoint[B tensor.Backend](path string, backend B, m nn.Module[B], kind string) (map[string]string, error) {
	header, err := nn.Load(path, backend, m)
	if err != nil {
		return nil, fmt.Errorf("model: load checkpoint %q: %w", path, err)
	}
	if header.ModelType != kind {
		return nil, fmt.Errorf("model: checkpoint %q holds a %s, expected %s", path, header.ModelType, kind)
	}
	return header.Metadata, nil
}
