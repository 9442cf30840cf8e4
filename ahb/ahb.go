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

// Package ahb implements read-only access to the arbitration status of the
// Tegra X1 AMBA Advanced High-performance Bus.
//
// The AHB is a 32-bit multi-master bus, second tier behind the AXI bus used
// by the CPU. DMA masters such as the Security Engine retire their memory
// writes through the AHB memory write queue, which makes the queue status
// registers usable as a DMA completion oracle (see Chapter 19 of the Tegra X1
// Technical Reference Manual).
package ahb

import (
	"github.com/tegra-bsp/tegra210/mmio"
)

// ArbitrationBase is the AHB arbitration register block base address.
const ArbitrationBase = 0x6000c000

// AHB arbitration register offsets.
const (
	// AHB_ARBITRATION_AHB_MEM_WRQUE_MST_ID
	memWrQueMstID = 0x0fc
)

// Memory write queue master identifiers.
const (
	// write-queue entries originated by the Security Engine instances
	wrQueSecurityEngine = 0x6000
)

// Arbiter provides access to the AHB arbitration status registers.
type Arbiter struct {
	// Base is the register block base address (ArbitrationBase when zero).
	Base uint32
	// Bus provides register access (nil for direct MMIO).
	Bus mmio.Bus

	regs *mmio.RegisterFile
}

// Init initializes the arbitration status instance.
func (a *Arbiter) Init() {
	if a.Base == 0 {
		a.Base = ArbitrationBase
	}

	a.regs = mmio.NewRegisterFile(a.Bus, a.Base)
}

// Pending reports whether Security Engine originated entries are still
// queued in the AHB memory write queue.
func (a *Arbiter) Pending() bool {
	return a.regs.Read(memWrQueMstID)&wrQueSecurityEngine != 0
}
