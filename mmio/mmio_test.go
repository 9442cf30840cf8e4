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

package mmio

import (
	"testing"
)

// memBus is a Bus over a register value map.
type memBus map[uint32]uint32

func (b memBus) Read32(addr uint32) uint32 {
	return b[addr]
}

func (b memBus) Write32(addr uint32, val uint32) {
	b[addr] = val
}

func TestRegisterFile(t *testing.T) {
	bus := memBus{}
	regs := NewRegisterFile(bus, 0x70012000)

	if base := regs.Base(); base != 0x70012000 {
		t.Errorf("unexpected base %#x", base)
	}

	regs.Write(0x14, 0xdeadbeef)

	if got := bus[0x70012014]; got != 0xdeadbeef {
		t.Errorf("write landed at wrong address, got %#x", got)
	}

	if got := regs.Read(0x14); got != 0xdeadbeef {
		t.Errorf("unexpected read %#x", got)
	}

	regs.Set(0x14, 0x00000100)

	if got := regs.Read(0x14); got != 0xdeadbfef {
		t.Errorf("unexpected value after set %#x", got)
	}

	regs.Clear(0x14, 0x0000ff00)

	if got := regs.Read(0x14); got != 0xdead00ef {
		t.Errorf("unexpected value after clear %#x", got)
	}
}

func TestAddress(t *testing.T) {
	if addr := Address(nil); addr != 0 {
		t.Errorf("unexpected nil buffer address %#x", addr)
	}

	if addr := Address([]byte{}); addr != 0 {
		t.Errorf("unexpected empty buffer address %#x", addr)
	}

	buf := make([]byte, 16)

	if Address(buf) != Address(buf[:1]) {
		t.Error("address changed with slice length")
	}

	if Address(buf) == Address(buf[8:]) {
		t.Error("address did not advance with slice offset")
	}
}
