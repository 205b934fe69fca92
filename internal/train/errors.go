// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import "errors"

// ErrNoBatches is returned when an epoch traversal yields no batch.
var ErrNoBatches = errors.New("train: epoch produced no batches")
