//go:build !windows

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"log"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/backend/cpu"

	"github.com/born-ml/forgery/internal/config"
)

// selectDevice returns the CPU backend. WebGPU is only built on Windows.
func selectDevice(device string) runner {
	if device == config.DeviceWebGPU {
		log.Printf("webgpu backend is not available on this platform, using cpu")
	}
	return &deviceRunner[*autodiff.Backend[*cpu.Backend]]{
		backend: autodiff.New(cpu.New()),
		name:    config.DeviceCPU,
	}
}
