// Copyright 2023 The Tegra BSP authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build !tamago

package se

import (
	"github.com/tegra-bsp/tegra210/mmio"
)

// heapAllocator reserves buffers from the Go heap. It serves simulated
// register backends whose bus implementation resolves the reported bus
// addresses (see the sesim package); hardware DMA requires a real DMA region
// instead.
type heapAllocator struct{}

func (heapAllocator) Reserve(size int, align int) (uint, []byte) {
	if align < 1 {
		align = 1
	}

	buf := make([]byte, size+align)
	off := 0

	if rem := uint(mmio.Address(buf)) % uint(align); rem != 0 {
		off = align - int(rem)
	}

	buf = buf[off : off+size : off+size]

	return uint(mmio.Address(buf)), buf
}

func defaultAllocator() Allocator {
	return heapAllocator{}
}
