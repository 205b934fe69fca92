//go:build windows

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"log"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/backend/webgpu"

	"github.com/born-ml/forgery/internal/config"
)

// selectDevice returns a WebGPU backend when one is requested and usable,
// and the CPU backend otherwise.
func selectDevice(device string) runner {
	if device == config.DeviceWebGPU {
		if !webgpu.IsAvailable() {
			log.Printf("webgpu not available, using cpu")
		} else if gpu, err := webgpu.New(); err != nil {
			log.Printf("webgpu init failed, using cpu: %v", err)
		} else {
			return &deviceRunner[*autodiff.Backend[*webgpu.Backend]]{
				backend: autodiff.New(gpu),
				name:    config.DeviceWebGPU,
				release: gpu.Release,
			}
		}
	}
	return &deviceRunner[*autodiff.Backend[*cpu.Backend]]{
		backend: autodiff.New(cpu.New()),
		name:    config.DeviceCPU,
	}
}
