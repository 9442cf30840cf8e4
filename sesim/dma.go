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

package sesim

import (
	"encoding/binary"
	"sync"

	"github.com/tegra-bsp/tegra210/mmio"
	"github.com/tegra-bsp/tegra210/se"
)

// The simulated engine resolves the 32-bit addresses found in descriptor
// lists against a single DMA window, one heap allocated buffer that all
// engine visible memory is reserved from. Resolution subtracts the truncated
// window base in 32-bit modular arithmetic, which recovers the correct window
// offset on 64-bit hosts as long as the window is smaller than 4GB.
var (
	dmaOnce sync.Once
	dmaMu   sync.Mutex
	dmaMem  []byte
	dmaOff  int
	dmaBase uint32
)

// InitDMA allocates the DMA window, registering it for simulated engine
// access. Only the first call has any effect.
func InitDMA(size int) {
	dmaOnce.Do(func() {
		dmaMem = make([]byte, size)
		dmaBase = mmio.Address(dmaMem)
	})
}

// reserve hands out the next cache line aligned window chunk.
func reserve(size int, align int) (uint, []byte) {
	if align < 1 {
		align = 1
	}

	dmaMu.Lock()
	defer dmaMu.Unlock()

	off := dmaOff

	if rem := off % align; rem != 0 {
		off += align - rem
	}

	if off+size > len(dmaMem) {
		panic("DMA window exhausted")
	}

	dmaOff = off + size

	return uint(dmaBase) + uint(off), dmaMem[off : off+size : off+size]
}

// Buffer reserves an engine visible buffer from the DMA window, for use as
// operation payload memory.
func Buffer(size int) []byte {
	if size == 0 {
		return nil
	}

	_, buf := reserve(size, 64)

	return buf
}

// windowAllocator reserves driver scratch memory from the DMA window.
type windowAllocator struct{}

func (windowAllocator) Reserve(size int, align int) (uint, []byte) {
	return reserve(size, align)
}

// Alloc returns an allocator handing out engine visible memory from the DMA
// window, to be set as the driver allocator when driving a simulated engine.
func Alloc() se.Allocator {
	return windowAllocator{}
}

// segment is one resolved descriptor list entry.
type segment struct {
	addr   uint32
	length uint32
	buf    []byte
}

// mem resolves a bus address range to the DMA window.
func mem(addr uint32, n int) ([]byte, bool) {
	if n == 0 {
		return nil, true
	}

	off := addr - dmaBase

	if uint64(off)+uint64(n) > uint64(len(dmaMem)) {
		return nil, false
	}

	return dmaMem[off : off+uint32(n)], true
}

// parseLL resolves the linked list image at the given bus address: a count of
// additional entries followed by address/length descriptor pairs, entry 0
// always present.
func parseLL(addr uint32) ([]segment, bool) {
	buf, ok := mem(addr, 4+4*8)

	if !ok {
		return nil, false
	}

	entries := binary.LittleEndian.Uint32(buf)

	if entries > 3 {
		return nil, false
	}

	var segs []segment

	for i := uint32(0); i <= entries; i++ {
		seg := segment{
			addr:   binary.LittleEndian.Uint32(buf[4+i*8:]),
			length: binary.LittleEndian.Uint32(buf[8+i*8:]),
		}

		data, ok := mem(seg.addr, int(seg.length))

		if !ok {
			return nil, false
		}

		seg.buf = data
		segs = append(segs, seg)
	}

	return segs, true
}

// gather resolves and concatenates the source segments of the linked list at
// the given bus address.
func gather(addr uint32) ([]byte, bool) {
	segs, ok := parseLL(addr)

	if !ok {
		return nil, false
	}

	var buf []byte

	for _, seg := range segs {
		buf = append(buf, seg.buf...)
	}

	return buf, true
}

// scatter distributes data across destination segments, discarding whatever
// exceeds their total capacity.
func scatter(dst []segment, data []byte) {
	for _, seg := range dst {
		if len(data) == 0 {
			return
		}

		n := copy(seg.buf, data)
		data = data[n:]
	}
}
