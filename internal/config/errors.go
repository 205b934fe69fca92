// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package config

import "fmt"

// ConfigurationError reports an unusable setting: a missing or empty input
// directory, an out-of-range hyperparameter, or an empty dataset.
type ConfigurationError struct {
	Field  string // Offending setting, e.g. "classifier.real_dir"
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration: " + e.Reason
	}
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Invalid builds a ConfigurationError for field.
func Invalid(field, format string, args ...any) error {
	return invalid(field, format, args...)
}
