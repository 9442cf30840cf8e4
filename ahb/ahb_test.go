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

package ahb

import (
	"testing"
)

// memBus is an mmio.Bus over a register value map.
type memBus map[uint32]uint32

func (b memBus) Read32(addr uint32) uint32 {
	return b[addr]
}

func (b memBus) Write32(addr uint32, val uint32) {
	b[addr] = val
}

func TestPending(t *testing.T) {
	bus := memBus{}

	a := &Arbiter{Bus: bus}
	a.Init()

	if a.Base != ArbitrationBase {
		t.Errorf("unexpected default base %#x", a.Base)
	}

	if a.Pending() {
		t.Error("empty write queue reported as pending")
	}

	// entries from both Security Engine instances
	bus[ArbitrationBase+memWrQueMstID] = wrQueSecurityEngine

	if !a.Pending() {
		t.Error("queued engine writes not reported as pending")
	}

	// entries from unrelated masters only
	bus[ArbitrationBase+memWrQueMstID] = 0x1

	if a.Pending() {
		t.Error("unrelated write queue entries reported as pending")
	}
}
