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

// KeySize selects the AES key length of an operation, its values match the
// SE_CONFIG ENC_MODE/DEC_MODE encodings.
type KeySize uint32

const (
	AES128 KeySize = MODE_KEY128
	AES192 KeySize = MODE_KEY192
	AES256 KeySize = MODE_KEY256
)

// length returns the key length in bytes.
func (k KeySize) length() int {
	switch k {
	case AES192:
		return 24
	case AES256:
		return 32
	default:
		return 16
	}
}

// chainingMode indexes the supported AES chaining modes.
type chainingMode int

const (
	ecbMode chainingMode = iota
	cbcEncryptMode
	cbcDecryptMode
	ctrMode
	cmacMode
)

// cryptoConfig holds the fixed SE_CRYPTO_CONFIG field combination of each
// chaining mode: counter chaining, vector RAM source, input source, XOR
// position and hash accumulation.
var cryptoConfig = [...]uint32{
	ecbMode:        CRYPTO_VCTRAM_MEMORY | CRYPTO_INPUT_MEMORY | CRYPTO_XOR_BYPASS,
	cbcEncryptMode: CRYPTO_VCTRAM_AESOUT | CRYPTO_INPUT_MEMORY | CRYPTO_XOR_TOP,
	cbcDecryptMode: CRYPTO_VCTRAM_PREV_MEMORY | CRYPTO_INPUT_MEMORY | CRYPTO_XOR_BOTTOM,
	ctrMode:        CRYPTO_CTR_CNTN | CRYPTO_VCTRAM_MEMORY | CRYPTO_INPUT_LINEAR_CTR | CRYPTO_XOR_BOTTOM,
	cmacMode:       CRYPTO_HASH_ENABLE | CRYPTO_VCTRAM_AESOUT | CRYPTO_INPUT_MEMORY | CRYPTO_XOR_TOP,
}

// configAES programs SE_CONFIG for an AES operation towards the given
// destination.
func (e *SecurityEngine) configAES(encrypt bool, size KeySize, dst uint32) {
	cfg := uint32(size)<<CONFIG_ENC_MODE | uint32(size)<<CONFIG_DEC_MODE
	cfg |= dst << CONFIG_DESTINATION

	if encrypt {
		cfg |= ALG_AES_ENC<<CONFIG_ENC_ALG | ALG_NOP<<CONFIG_DEC_ALG
	} else {
		cfg |= ALG_NOP<<CONFIG_ENC_ALG | ALG_AES_DEC<<CONFIG_DEC_ALG
	}

	e.regs.Write(SE_CONFIG, cfg)
}

// configCrypto programs SE_CRYPTO_CONFIG with the field combination of the
// given chaining mode.
func (e *SecurityEngine) configCrypto(mode chainingMode, slot int, encrypt bool) {
	cfg := cryptoConfig[mode]
	cfg |= CRYPTO_MEMIF_AHB | CRYPTO_IV_ORIGINAL
	cfg |= uint32(slot) << CRYPTO_KEY_INDEX_SHIFT

	if encrypt {
		cfg |= CRYPTO_CORE_ENCRYPT
	}

	e.regs.Write(SE_CRYPTO_CONFIG, cfg)
}

// selectUpdatedIV switches vector chaining to the updated IV, preserving the
// remaining crypto configuration.
func (e *SecurityEngine) selectUpdatedIV() {
	e.regs.Set(SE_CRYPTO_CONFIG, CRYPTO_IV_UPDATED)
}

// setLinearCounter loads the linear counter registers with an initial
// counter block.
func (e *SecurityEngine) setLinearCounter(ctr []byte) {
	for i := 0; i < 4; i++ {
		e.regs.Write(SE_CRYPTO_LINEAR_CTR+uint32(i*4), binary.LittleEndian.Uint32(ctr[i*4:]))
	}
}

// EncryptECB encrypts a single 16-byte block with the key in the given slot.
func (e *SecurityEngine) EncryptECB(slot int, size KeySize, src []byte, dst []byte) error {
	return e.ecb(true, slot, size, src, dst)
}

// DecryptECB decrypts a single 16-byte block with the key in the given slot.
func (e *SecurityEngine) DecryptECB(slot int, size KeySize, src []byte, dst []byte) error {
	return e.ecb(false, slot, size, src, dst)
}

func (e *SecurityEngine) ecb(encrypt bool, slot int, size KeySize, src []byte, dst []byte) error {
	switch {
	case slot < 0 || slot >= AESKeySlots:
		return ErrMalformedBuffer
	case len(src) != AESBlockSize || len(dst) != AESBlockSize:
		return ErrMalformedBuffer
	}

	e.configAES(encrypt, size, DST_MEMORY)
	e.configCrypto(ecbMode, slot, encrypt)
	e.regs.Write(SE_CRYPTO_LAST_BLOCK, 0)

	// Stage both blocks in cache line aligned DMA memory.
	copy(e.blockIn, src)
	e.publish(e.blockIn)

	srcLL := NewLinkedList(e.regionSegment(e.blockInAddr, AESBlockSize))
	dstLL := NewLinkedList(e.regionSegment(e.blockOutAddr, AESBlockSize))

	if err := e.StartNormalOperation(&srcLL, &dstLL); err != nil {
		return err
	}

	e.acquire(e.blockOut)
	copy(dst, e.blockOut)

	return nil
}

// EncryptCBC encrypts data with the key in the given slot using AES-CBC.
//
// The source length must be a multiple of the AES block size and the
// destination must match it.
func (e *SecurityEngine) EncryptCBC(slot int, size KeySize, iv []byte, src []byte, dst []byte) error {
	return e.cbc(true, slot, size, iv, src, dst)
}

// DecryptCBC decrypts data with the key in the given slot using AES-CBC.
func (e *SecurityEngine) DecryptCBC(slot int, size KeySize, iv []byte, src []byte, dst []byte) error {
	return e.cbc(false, slot, size, iv, src, dst)
}

func (e *SecurityEngine) cbc(encrypt bool, slot int, size KeySize, iv []byte, src []byte, dst []byte) error {
	switch {
	case slot < 0 || slot >= AESKeySlots:
		return ErrMalformedBuffer
	case len(iv) != AESBlockSize:
		return ErrMalformedBuffer
	case len(src)%AESBlockSize != 0 || len(dst) != len(src):
		return ErrMalformedBuffer
	}

	if len(src) == 0 {
		return nil
	}

	mode := cbcEncryptMode

	if !encrypt {
		mode = cbcDecryptMode
	}

	e.configAES(encrypt, size, DST_MEMORY)
	e.configCrypto(mode, slot, encrypt)
	e.setIV(slot, QUAD_ORIGINAL_IV, iv)

	nblocks := len(src) / AESBlockSize
	e.regs.Write(SE_CRYPTO_LAST_BLOCK, uint32(nblocks-1))

	e.publish(src)
	e.publish(dst)

	srcLL := e.LinkedListFor(src)
	dstLL := e.LinkedListFor(dst)

	err := e.StartNormalOperation(&srcLL, &dstLL)

	e.acquire(dst)

	return err
}

// EncryptCTR encrypts data with the key in the given slot using AES-CTR with
// the given initial counter block.
//
// The source length must be a multiple of the AES block size and the
// destination must match it.
func (e *SecurityEngine) EncryptCTR(slot int, size KeySize, ctr []byte, src []byte, dst []byte) error {
	return e.linearCTR(slot, size, ctr, src, dst)
}

// DecryptCTR decrypts data with the key in the given slot using AES-CTR. The
// operation is identical to EncryptCTR as the counter keystream is symmetric.
func (e *SecurityEngine) DecryptCTR(slot int, size KeySize, ctr []byte, src []byte, dst []byte) error {
	return e.linearCTR(slot, size, ctr, src, dst)
}

func (e *SecurityEngine) linearCTR(slot int, size KeySize, ctr []byte, src []byte, dst []byte) error {
	switch {
	case slot < 0 || slot >= AESKeySlots:
		return ErrMalformedBuffer
	case len(ctr) != AESBlockSize:
		return ErrMalformedBuffer
	case len(src)%AESBlockSize != 0 || len(dst) != len(src):
		return ErrMalformedBuffer
	}

	if len(src) == 0 {
		return nil
	}

	// The counter keystream always runs through the encryption core.
	e.configAES(true, size, DST_MEMORY)
	e.configCrypto(ctrMode, slot, true)
	e.setLinearCounter(ctr)

	nblocks := len(src) / AESBlockSize
	e.regs.Write(SE_CRYPTO_LAST_BLOCK, uint32(nblocks-1))

	e.publish(src)
	e.publish(dst)

	srcLL := e.LinkedListFor(src)
	dstLL := e.LinkedListFor(dst)

	err := e.StartNormalOperation(&srcLL, &dstLL)

	e.acquire(dst)

	return err
}

// expandSubkey doubles a CMAC subkey in GF(2^128) (see RFC 4493, Section
// 2.3).
func expandSubkey(subkey []byte) {
	carry := byte(0)

	for i := AESBlockSize - 1; i >= 0; i-- {
		msb := subkey[i] >> 7
		subkey[i] = subkey[i]<<1 | carry
		carry = msb
	}

	if carry != 0 {
		subkey[AESBlockSize-1] ^= 0x87
	}
}

// SumCMAC computes the AES-CMAC of src with the key in the given slot (see
// RFC 4493).
//
// The aligned head of the message is accumulated by the hardware through the
// hash registers, the final block is subkey masked in software and processed
// against the updated chaining vector.
func (e *SecurityEngine) SumCMAC(slot int, size KeySize, src []byte) (mac [16]byte, err error) {
	if slot < 0 || slot >= AESKeySlots {
		return mac, ErrMalformedBuffer
	}

	// Derive the subkey masking the final block.
	subkey := make([]byte, AESBlockSize)

	if err = e.EncryptECB(slot, size, subkey, subkey); err != nil {
		return
	}

	expandSubkey(subkey)

	complete := len(src) > 0 && len(src)%AESBlockSize == 0

	if !complete {
		expandSubkey(subkey)
	}

	nblocks := (len(src) + AESBlockSize - 1) / AESBlockSize

	if nblocks == 0 {
		nblocks = 1
	}

	head := (nblocks - 1) * AESBlockSize

	e.configAES(true, size, DST_HASH_REG)
	e.configCrypto(cmacMode, slot, true)

	zero := make([]byte, AESBlockSize)
	e.setIV(slot, QUAD_ORIGINAL_IV, zero)

	if head > 0 {
		e.regs.Write(SE_CRYPTO_LAST_BLOCK, uint32(nblocks-2))

		e.publish(src[:head])

		srcLL := e.LinkedListFor(src[:head])
		dstLL := LinkedList{}

		if err = e.StartNormalOperation(&srcLL, &dstLL); err != nil {
			return
		}

		// Continue from the accumulated chaining vector.
		e.selectUpdatedIV()
	}

	// Build the subkey masked final block.
	last := e.blockIn
	copy(last, zero)
	n := copy(last, src[head:])

	if !complete {
		last[n] = 0x80
	}

	for i := range last {
		last[i] ^= subkey[i]
	}

	e.publish(e.blockIn)
	e.regs.Write(SE_CRYPTO_LAST_BLOCK, 0)

	srcLL := NewLinkedList(e.regionSegment(e.blockInAddr, AESBlockSize))
	dstLL := LinkedList{}

	if err = e.StartNormalOperation(&srcLL, &dstLL); err != nil {
		return
	}

	for i := 0; i < len(mac)/4; i++ {
		word := e.regs.Read(SE_HASH_RESULT + uint32(i*4))
		binary.LittleEndian.PutUint32(mac[i*4:], word)
	}

	return
}
