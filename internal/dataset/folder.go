// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dataset adapts image directories into indexable datasets and
// batches them for training.
//
// A Folder lists its directories once at construction. Samples are decoded
// and transformed on every Get; nothing is cached.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/born-ml/forgery/internal/config"
)

// Extension allow-lists, matched case-insensitively.
var (
	ClassifierExtensions = []string{".png", ".jpg", ".jpeg"}
	GANExtensions        = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp"}
)

// Sample is one transformed image with its label and source path.
type Sample struct {
	Pixels []float32
	Label  int
	Source string
}

// Dataset is a random-access sequence of samples.
type Dataset interface {
	Len() int
	Get(i int) (Sample, error)
}

// Folder is a Dataset backed by one or more image directories.
type Folder struct {
	transform Transform
	paths     []string
	labels    []int
}

// NewLabeledFolders lists every allowed image file in dirs. Files from
// dirs[k] get label k, and all files of dirs[k] precede those of dirs[k+1].
//
// A missing or non-directory path is a *config.ConfigurationError. Empty
// directories are not an error; the resulting Folder has Len() == 0.
func NewLabeledFolders(t Transform, exts []string, dirs ...string) (*Folder, error) {
	f := &Folder{transform: t}
	for label, dir := range dirs {
		paths, err := listImages(dir, exts)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			f.paths = append(f.paths, p)
			f.labels = append(f.labels, label)
		}
	}
	return f, nil
}

// NewFolder lists a single unlabeled image directory (every label is 0).
func NewFolder(t Transform, exts []string, dir string) (*Folder, error) {
	return NewLabeledFolders(t, exts, dir)
}

// Len returns the number of listed image files.
func (f *Folder) Len() int { return len(f.paths) }

// Paths returns the listed files in dataset order.
func (f *Folder) Paths() []string { return f.paths }

// Labels returns the label of every listed file in dataset order.
func (f *Folder) Labels() []int { return f.labels }

// Get decodes and transforms the i-th file.
func (f *Folder) Get(i int) (Sample, error) {
	if i < 0 || i >= len(f.paths) {
		return Sample{}, fmt.Errorf("dataset: index %d out of range [0, %d)", i, len(f.paths))
	}
	pixels, err := f.transform.Load(f.paths[i])
	if err != nil {
		return Sample{}, err
	}
	return Sample{Pixels: pixels, Label: f.labels[i], Source: f.paths[i]}, nil
}

func listImages(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, config.Invalid("dataset", "directory %q does not exist", dir)
		}
		return nil, config.Invalid("dataset", "cannot list %q: %v", dir, err)
	}
	// os.ReadDir sorts by filename, which fixes the listing order.
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !allowed(e.Name(), exts) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

func allowed(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
