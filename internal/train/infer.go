// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"fmt"

	"github.com/born-ml/forgery/internal/config"
	"github.com/born-ml/forgery/internal/dataset"
)

// Prediction is the classifier verdict for one sample.
type Prediction struct {
	Source    string
	Output    float32
	Predicted int
	Actual    int
}

// Correct reports whether the predicted label matches the actual one.
func (p Prediction) Correct() bool { return p.Predicted == p.Actual }

// PredictionReporter receives each prediction as it is made.
type PredictionReporter interface {
	Prediction(p Prediction)
}

// Summary counts the predictions of an inference pass.
type Summary struct {
	Total   int
	Correct int
}

// Accuracy returns the percentage of correct predictions.
func (s Summary) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return 100 * float64(s.Correct) / float64(s.Total)
}

// Infer runs a read-only pass of model over s, reporting every sample.
func Infer(model ClassifierModel, s *dataset.Sampler, r PredictionReporter) (Summary, error) {
	var sum Summary
	if s == nil || s.Len() == 0 {
		return sum, config.Invalid("dataset", "nothing to predict")
	}
	model.SetTraining(false)

	it := s.Epoch()
	for it.Scan() {
		b := it.Batch()
		_, outputs, err := model.Evaluate(b)
		if err != nil {
			return sum, err
		}
		if len(outputs) != b.Size {
			return sum, fmt.Errorf("train: model returned %d outputs for a batch of %d", len(outputs), b.Size)
		}
		for i, out := range outputs {
			p := Prediction{
				Source:    b.Sources[i],
				Output:    out,
				Predicted: Predict(out),
				Actual:    int(b.Labels[i]),
			}
			sum.Total++
			if p.Correct() {
				sum.Correct++
			}
			if r != nil {
				r.Prediction(p)
			}
		}
	}
	return sum, it.Err()
}
