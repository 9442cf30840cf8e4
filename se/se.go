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

// Package se implements a driver for the NVIDIA Tegra X1 Security Engine
// (SE), the SoC hardware cryptographic accelerator for AES, SHA-1/2, RNG and
// RSA operations (see Chapter 22 of the Tegra X1 Technical Reference Manual).
//
// The engine consumes CPU-constructed DMA scatter lists rather than direct
// register I/O of payload data. Every operation is synchronous and busy-poll
// based: the driver builds the linked lists, waits for the engine to idle,
// issues an opcode and validates completion across the engine status,
// interrupt status, error status and AHB write queue signals.
//
// The engine is a single non-reentrant hardware resource. The driver performs
// no internal locking: at most one operation may be in flight per
// SecurityEngine instance and callers must serialize access themselves.
//
// This package is meant to be used with `GOOS=tamago GOARCH=arm64` as
// supported by the TamaGo framework for bare metal Go, but remains fully
// functional against a simulated register backend on any platform (see the
// sesim package).
package se

import (
	"time"

	"github.com/tegra-bsp/tegra210/mmio"
)

// Engine wait deadline applied independently to each completion signal.
const defaultTimeout = 100 * time.Millisecond

// dataCacheLineSize is the CPU data cache line granularity that DMA scratch
// buffers are aligned to.
const dataCacheLineSize = 64

// CacheOps provides the data cache maintenance bracket around DMA hand-off.
//
// On cached mappings both operations must flush (clean and invalidate) the
// covered data cache lines with a surrounding memory barrier. They may be
// left unimplemented when the buffers handed to the engine live in uncached
// memory, or when running against a simulated backend.
type CacheOps interface {
	// Publish makes CPU writes in [addr, addr+size) visible to the engine.
	Publish(addr uint32, size int)
	// Acquire makes engine writes in [addr, addr+size) visible to the CPU.
	Acquire(addr uint32, size int)
}

// WriteOracle reports whether engine originated memory writes are still
// queued on the system bus (see ahb.Arbiter).
type WriteOracle interface {
	Pending() bool
}

// Allocator reserves engine visible memory for the driver's descriptor list
// images and whole-block scratch buffers.
type Allocator interface {
	// Reserve returns a buffer of the given size and alignment along with
	// the address the engine reads it at.
	Reserve(size int, align int) (addr uint, buf []byte)
}

// SecurityEngine represents a Security Engine instance.
//
// The exported fields must be set before Init() is invoked and must not be
// changed afterwards.
type SecurityEngine struct {
	// Base is the register block base address (SE1Base when zero).
	Base uint32
	// Bus provides register access (nil for direct MMIO).
	Bus mmio.Bus
	// Oracle confirms DMA write completion on the memory bus. When nil the
	// bus drain step of operation completion is skipped.
	Oracle WriteOracle
	// Cache provides the coherency bracket around DMA hand-off. When nil
	// all engine visible buffers are assumed coherent.
	Cache CacheOps
	// Translate converts a buffer address to the physical address seen by
	// the engine, required in privileged execution contexts where the two
	// differ. When nil addresses are used as-is.
	Translate func(uint32) uint32
	// Uptime returns the monotonic time used for wait deadlines (defaults
	// to time elapsed since Init).
	Uptime func() time.Duration
	// Timeout bounds each individual completion wait (defaults to 100ms).
	Timeout time.Duration
	// Alloc reserves the descriptor list images and scratch blocks
	// (defaults to the TamaGo DMA region on bare metal builds, plain heap
	// memory elsewhere).
	Alloc Allocator

	// regs is the register file handle.
	regs *mmio.RegisterFile

	// engine visible images of the input and output linked lists
	inLL      []byte
	outLL     []byte
	inLLAddr  uint
	outLLAddr uint

	// cache line aligned whole-block staging buffers
	blockIn      []byte
	blockOut     []byte
	blockInAddr  uint
	blockOutAddr uint
}

// Init initializes the Security Engine instance, reserving its DMA scratch
// memory. On bare metal the default TamaGo DMA region must have been
// initialized beforehand (e.g. dma.Init).
func (e *SecurityEngine) Init() {
	if e.Base == 0 {
		e.Base = SE1Base
	}

	if e.Timeout == 0 {
		e.Timeout = defaultTimeout
	}

	if e.Uptime == nil {
		t0 := time.Now()

		e.Uptime = func() time.Duration {
			return time.Since(t0)
		}
	}

	if e.Alloc == nil {
		e.Alloc = defaultAllocator()
	}

	e.regs = mmio.NewRegisterFile(e.Bus, e.Base)

	e.inLLAddr, e.inLL = e.Alloc.Reserve(llSize, dataCacheLineSize)
	e.outLLAddr, e.outLL = e.Alloc.Reserve(llSize, dataCacheLineSize)
	e.blockInAddr, e.blockIn = e.Alloc.Reserve(AESBlockSize, dataCacheLineSize)
	e.blockOutAddr, e.blockOut = e.Alloc.Reserve(AESBlockSize, dataCacheLineSize)
}

// segment returns the engine visible address information for a buffer,
// applying physical address translation when configured.
func (e *SecurityEngine) segment(buf []byte) AddressInfo {
	addr := mmio.Address(buf)

	if addr != 0 && e.Translate != nil {
		addr = e.Translate(addr)
	}

	return AddressInfo{
		Address: addr,
		Length:  uint32(len(buf)),
	}
}

// LinkedListFor builds a single segment linked list describing buf.
func (e *SecurityEngine) LinkedListFor(buf []byte) LinkedList {
	return NewLinkedList(e.segment(buf))
}

// regionSegment returns address information for a buffer reserved through
// the driver allocator, whose addresses are engine visible already.
func (e *SecurityEngine) regionSegment(addr uint, size int) AddressInfo {
	return AddressInfo{
		Address: uint32(addr),
		Length:  uint32(size),
	}
}

func (e *SecurityEngine) publish(buf []byte) {
	if e.Cache == nil || len(buf) == 0 {
		return
	}

	e.Cache.Publish(mmio.Address(buf), len(buf))
}

func (e *SecurityEngine) acquire(buf []byte) {
	if e.Cache == nil || len(buf) == 0 {
		return
	}

	e.Cache.Acquire(mmio.Address(buf), len(buf))
}
