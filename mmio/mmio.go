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

// Package mmio provides access to memory-mapped peripheral register files.
//
// All raw address arithmetic and pointer dereferencing performed by this
// module is confined to this package. A RegisterFile couples the base address
// of one peripheral register block with a Bus; on hardware the default Bus
// dereferences physical memory directly, while tests substitute a simulated
// backend.
package mmio

import (
	"unsafe"
)

// Bus provides 32-bit wide register access at absolute bus addresses.
type Bus interface {
	Read32(addr uint32) uint32
	Write32(addr uint32, val uint32)
}

// PhysMem is the default Bus, performing direct memory-mapped I/O. It is only
// meaningful when the register blocks are mapped at their physical addresses,
// as is the case under `GOOS=tamago` bare metal execution.
type PhysMem struct{}

//go:nosplit
func (PhysMem) Read32(addr uint32) uint32 {
	return *(*uint32)(unsafe.Pointer(uintptr(addr)))
}

//go:nosplit
func (PhysMem) Write32(addr uint32, val uint32) {
	*(*uint32)(unsafe.Pointer(uintptr(addr))) = val
}

// RegisterFile is an owned capability over one peripheral register block.
type RegisterFile struct {
	base uint32
	bus  Bus
}

// NewRegisterFile returns a register file handle rooted at base. A nil bus
// selects direct memory-mapped I/O.
func NewRegisterFile(bus Bus, base uint32) *RegisterFile {
	if bus == nil {
		bus = PhysMem{}
	}

	return &RegisterFile{
		base: base,
		bus:  bus,
	}
}

// Base returns the register block base address.
func (r *RegisterFile) Base() uint32 {
	return r.base
}

// Read returns the value of the 32-bit register at the given offset.
func (r *RegisterFile) Read(off uint32) uint32 {
	return r.bus.Read32(r.base + off)
}

// Write sets the 32-bit register at the given offset.
func (r *RegisterFile) Write(off uint32, val uint32) {
	r.bus.Write32(r.base+off, val)
}

// Set sets the mask bits of the register at the given offset.
func (r *RegisterFile) Set(off uint32, mask uint32) {
	r.Write(off, r.Read(off)|mask)
}

// Clear clears the mask bits of the register at the given offset.
func (r *RegisterFile) Clear(off uint32, mask uint32) {
	r.Write(off, r.Read(off)&^mask)
}

// Address returns the starting address of a buffer as seen on the 32-bit
// peripheral bus. An empty buffer has address zero.
func Address(buf []byte) uint32 {
	if len(buf) == 0 {
		return 0
	}

	return uint32(uintptr(unsafe.Pointer(&buf[0])))
}
