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

//go:build tamago

package se

import (
	"github.com/usbarmory/tamago/dma"
)

// dmaAllocator reserves buffers from a TamaGo DMA region, whose memory the
// engine reads at its own addresses.
type dmaAllocator struct {
	region *dma.Region
}

func (a dmaAllocator) Reserve(size int, align int) (uint, []byte) {
	return a.region.Reserve(size, align)
}

// DMARegion returns an Allocator reserving engine visible memory from the
// given DMA region.
func DMARegion(r *dma.Region) Allocator {
	return dmaAllocator{region: r}
}

func defaultAllocator() Allocator {
	return dmaAllocator{region: dma.Default()}
}
