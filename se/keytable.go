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

// keytableWord returns the SE_CRYPTO_KEYTABLE_ADDR packet selecting one word
// of an AES key slot quad.
func keytableWord(slot int, quad uint32, word int) uint32 {
	return uint32(slot)<<KEYTABLE_SLOT_SHIFT | quad<<KEYTABLE_QUAD_SHIFT | uint32(word)
}

// SetKey fills an AES key slot with the supplied 128, 192 or 256 bit key.
//
// The key is used by all subsequent AES operations referencing the slot,
// until the slot is cleared or overwritten.
func (e *SecurityEngine) SetKey(slot int, key []byte) error {
	switch {
	case slot < 0 || slot >= AESKeySlots:
		return ErrMalformedBuffer
	case len(key) != 16 && len(key) != 24 && len(key) != 32:
		return ErrMalformedBuffer
	}

	for i := 0; i < len(key)/4; i++ {
		e.regs.Write(SE_CRYPTO_KEYTABLE_ADDR, keytableWord(slot, uint32(i/4), i%4))
		e.regs.Write(SE_CRYPTO_KEYTABLE_DATA, binary.LittleEndian.Uint32(key[i*4:]))
	}

	return nil
}

// ReadKey copies a previously loaded AES key out of a key slot. The slot
// must not have been locked down for reading (see Disable).
func (e *SecurityEngine) ReadKey(slot int, key []byte) error {
	switch {
	case slot < 0 || slot >= AESKeySlots:
		return ErrMalformedBuffer
	case len(key) != 16 && len(key) != 24 && len(key) != 32:
		return ErrMalformedBuffer
	}

	for i := 0; i < len(key)/4; i++ {
		e.regs.Write(SE_CRYPTO_KEYTABLE_ADDR, keytableWord(slot, uint32(i/4), i%4))
		binary.LittleEndian.PutUint32(key[i*4:], e.regs.Read(SE_CRYPTO_KEYTABLE_DATA))
	}

	return nil
}

// ClearKeySlot zeroes out an AES key slot in full, key and IV quads alike.
func (e *SecurityEngine) ClearKeySlot(slot int) error {
	if slot < 0 || slot >= AESKeySlots {
		return ErrMalformedBuffer
	}

	for i := 0; i < AESBlockSize; i++ {
		e.regs.Write(SE_CRYPTO_KEYTABLE_ADDR, keytableWord(slot, uint32(i/4), i%4))
		e.regs.Write(SE_CRYPTO_KEYTABLE_DATA, 0)
	}

	return nil
}

// ClearKeyIV zeroes out both the original and the updated IV of an AES key
// slot.
func (e *SecurityEngine) ClearKeyIV(slot int) error {
	if slot < 0 || slot >= AESKeySlots {
		return ErrMalformedBuffer
	}

	for i := 0; i < AESBlockSize/4; i++ {
		e.regs.Write(SE_CRYPTO_KEYTABLE_ADDR, keytableWord(slot, QUAD_ORIGINAL_IV, i))
		e.regs.Write(SE_CRYPTO_KEYTABLE_DATA, 0)

		e.regs.Write(SE_CRYPTO_KEYTABLE_ADDR, keytableWord(slot, QUAD_UPDATED_IV, i))
		e.regs.Write(SE_CRYPTO_KEYTABLE_DATA, 0)
	}

	return nil
}

// setIV loads a 16-byte vector into the original or updated IV quad of a key
// slot.
func (e *SecurityEngine) setIV(slot int, quad uint32, iv []byte) {
	for i := 0; i < AESBlockSize/4; i++ {
		e.regs.Write(SE_CRYPTO_KEYTABLE_ADDR, keytableWord(slot, quad, i))
		e.regs.Write(SE_CRYPTO_KEYTABLE_DATA, binary.LittleEndian.Uint32(iv[i*4:]))
	}
}
