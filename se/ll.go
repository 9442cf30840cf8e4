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

package se

import (
	"encoding/binary"
)

const (
	// llEntries is the fixed linked list capacity.
	llEntries = 4
	// llSize is the size of the linked list image read by the engine.
	llSize = 4 + llEntries*8
)

// AddressInfo describes one contiguous engine visible memory segment of a
// DMA buffer. The address must be physical by the time the engine reads it.
type AddressInfo struct {
	// Address is the start address of the segment.
	Address uint32
	// Length is the length of the segment in bytes.
	Length uint32
}

// LinkedList is the scatter list consumed by the Security Engine internal
// DMA unit: a count of additional entries followed by four address/length
// descriptors, of which entry 0 is always populated.
//
// The zero value is the empty list used by operations without a memory
// payload. Lists are built fresh per operation and never retained across
// operations.
type LinkedList struct {
	entries uint32
	info    [llEntries]AddressInfo
}

// NewLinkedList builds a linked list holding a single segment.
func NewLinkedList(first AddressInfo) LinkedList {
	ll := LinkedList{}
	ll.info[0] = first

	return ll
}

// Append adds one more segment to the list.
//
// The fourth and any further append fails with ErrMalformedBuffer, leaving
// the list unchanged.
func (ll *LinkedList) Append(info AddressInfo) error {
	if ll.entries >= llEntries-1 {
		return ErrMalformedBuffer
	}

	ll.entries += 1
	ll.info[ll.entries] = info

	return nil
}

// Bytes returns the linked list image read by the engine.
func (ll *LinkedList) Bytes() []byte {
	buf := make([]byte, llSize)

	binary.LittleEndian.PutUint32(buf, ll.entries)

	for i, info := range ll.info {
		binary.LittleEndian.PutUint32(buf[4+i*8:], info.Address)
		binary.LittleEndian.PutUint32(buf[8+i*8:], info.Length)
	}

	return buf
}
