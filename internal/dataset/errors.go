// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package dataset

import "fmt"

// MissingFileError reports a file that was listed but is gone at read time.
type MissingFileError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *MissingFileError) Error() string {
	return fmt.Sprintf("dataset: missing file %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *MissingFileError) Unwrap() error { return e.Err }

// DecodeError reports a file that is not a readable image.
type DecodeError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("dataset: decode %q: %v", e.Path, e.Err)
}

// Unwrap returns the decoder error.
func (e *DecodeError) Unwrap() error { return e.Err }

// ShapeMismatchError reports a sample whose tensor volume differs from the
// expected model input volume.
type ShapeMismatchError struct {
	Path string
	Got  int
	Want int
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("dataset: sample %q has %d values, want %d", e.Path, e.Got, e.Want)
}
