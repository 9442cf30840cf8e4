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

// configRNG programs SE_CONFIG, SE_CRYPTO_CONFIG and SE_RNG_CONFIG for a
// random number generation towards the given destination, with the ring
// oscillator entropy source feeding the DRBG.
func (e *SecurityEngine) configRNG(dst uint32, mode uint32) {
	cfg := uint32(MODE_KEY128)<<CONFIG_ENC_MODE | uint32(MODE_KEY128)<<CONFIG_DEC_MODE
	cfg |= ALG_RNG<<CONFIG_ENC_ALG | ALG_NOP<<CONFIG_DEC_ALG
	cfg |= dst << CONFIG_DESTINATION

	e.regs.Write(SE_CONFIG, cfg)

	crypto := uint32(CRYPTO_MEMIF_AHB | CRYPTO_CORE_ENCRYPT | CRYPTO_IV_ORIGINAL)
	crypto |= CRYPTO_VCTRAM_MEMORY | CRYPTO_INPUT_RANDOM | CRYPTO_XOR_BYPASS

	e.regs.Write(SE_CRYPTO_CONFIG, crypto)
	e.regs.Write(SE_RNG_CONFIG, RNG_SRC_ENTROPY|mode)
}

// InitRNG locks the DRBG to the ring oscillator entropy source, programs the
// reseed interval and force-instantiates the DRBG by processing a single
// throwaway block.
//
// Calling this function is a prerequisite for all operations that consume
// the engine random source.
func (e *SecurityEngine) InitRNG() error {
	e.regs.Write(SE_RNG_SRC_CONFIG, RNG_SRC_RO_ENTROPY_ENABLE|RNG_SRC_RO_ENTROPY_LOCK)
	e.regs.Write(SE_RNG_RESEED_INTERVAL, reseedInterval)

	e.configRNG(DST_MEMORY, RNG_MODE_INSTANTIATE)
	e.regs.Write(SE_CRYPTO_LAST_BLOCK, 0)

	// The instantiation output is discarded.
	clear(e.blockIn)
	e.publish(e.blockIn)

	srcLL := NewLinkedList(e.regionSegment(e.blockInAddr, AESBlockSize))
	dstLL := LinkedList{}

	return e.StartNormalOperation(&srcLL, &dstLL)
}

// GenerateRandom fills buf with random bytes from the DRBG.
//
// The engine only transfers whole aligned blocks: one single block operation
// is issued per complete 16-byte chunk directly into buf, any remaining tail
// is generated through a cache line aligned scratch block.
func (e *SecurityEngine) GenerateRandom(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	e.configRNG(DST_MEMORY, RNG_MODE_NORMAL)
	e.regs.Write(SE_CRYPTO_LAST_BLOCK, 0)

	srcLL := LinkedList{}
	aligned := len(buf) &^ (AESBlockSize - 1)

	for off := 0; off < aligned; off += AESBlockSize {
		block := buf[off : off+AESBlockSize]

		e.publish(block)

		dstLL := e.LinkedListFor(block)

		if err := e.StartNormalOperation(&srcLL, &dstLL); err != nil {
			return err
		}

		e.acquire(block)
	}

	if aligned == len(buf) {
		return nil
	}

	// Pad the trailing fractional block through the scratch buffer.
	dstLL := NewLinkedList(e.regionSegment(e.blockOutAddr, AESBlockSize))

	if err := e.StartNormalOperation(&srcLL, &dstLL); err != nil {
		return err
	}

	e.acquire(e.blockOut)
	copy(buf[aligned:], e.blockOut)

	return nil
}

// SetRandomKey fills a 256-bit AES key slot with fresh DRBG output.
//
// The key table destination register accepts a single 128-bit quad per
// operation, the key is deposited as two halves, low quad first.
func (e *SecurityEngine) SetRandomKey(slot int) error {
	if slot < 0 || slot >= AESKeySlots {
		return ErrMalformedBuffer
	}

	e.configRNG(DST_KEYTABLE, RNG_MODE_NORMAL)
	e.regs.Write(SE_CRYPTO_LAST_BLOCK, 0)

	srcLL := LinkedList{}
	dstLL := LinkedList{}

	dst := uint32(slot) << KEYTABLE_DST_KEY_INDEX_SHIFT

	e.regs.Write(SE_CRYPTO_KEYTABLE_DST, dst|DST_QUAD_KEYS_03)

	if err := e.StartNormalOperation(&srcLL, &dstLL); err != nil {
		return err
	}

	e.regs.Write(SE_CRYPTO_KEYTABLE_DST, dst|DST_QUAD_KEYS_47)

	return e.StartNormalOperation(&srcLL, &dstLL)
}

// GenerateSRK derives a fresh Secret Root Key into protected hardware
// storage, forcing a DRBG reseed in the process. The key is never exposed to
// software.
//
// Different entropy states lead to different results.
func (e *SecurityEngine) GenerateSRK() error {
	e.configRNG(DST_SRK, RNG_MODE_RESEED)
	e.regs.Write(SE_CRYPTO_LAST_BLOCK, 0)

	srcLL := LinkedList{}
	dstLL := LinkedList{}

	return e.StartNormalOperation(&srcLL, &dstLL)
}
