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

// HashMode selects a SHA algorithm, its values match the SE_CONFIG HASH_MODE
// encodings.
type HashMode uint32

const (
	SHA1   HashMode = MODE_SHA1
	SHA224 HashMode = MODE_SHA224
	SHA256 HashMode = MODE_SHA256
	SHA384 HashMode = MODE_SHA384
	SHA512 HashMode = MODE_SHA512
)

// Size returns the digest length in bytes.
func (m HashMode) Size() int {
	switch m {
	case SHA1:
		return 20
	case SHA224:
		return 28
	case SHA256:
		return 32
	case SHA384:
		return 48
	case SHA512:
		return 64
	default:
		return 0
	}
}

// SHA_CONFIG fields.
const shaHWInitHash = 1 << 0

// Only the low word of the message length registers is programmed, messages
// whose bit length exceeds 32 bits are not supported.
const maxHashLength = (1<<32 - 1) / 8

// setMessageSize programs the message length and message left registers with
// the size, in bits, of the data to be hashed.
func (e *SecurityEngine) setMessageSize(size int) {
	bits := uint32(size) << 3

	e.regs.Write(SE_SHA_MSG_LENGTH, bits)
	e.regs.Write(SE_SHA_MSG_LEFT, bits)

	for i := 1; i < 4; i++ {
		e.regs.Write(SE_SHA_MSG_LENGTH+uint32(i*4), 0)
		e.regs.Write(SE_SHA_MSG_LEFT+uint32(i*4), 0)
	}
}

// readHashResult decodes a digest from the hash result registers, optionally
// byte swapping each word. Swapping yields the published big-endian digest
// byte order.
func (e *SecurityEngine) readHashResult(out []byte, swap bool) {
	for i := 0; i < len(out)/4; i++ {
		word := e.regs.Read(SE_HASH_RESULT + uint32(i*4))

		if swap {
			binary.BigEndian.PutUint32(out[i*4:], word)
		} else {
			binary.LittleEndian.PutUint32(out[i*4:], word)
		}
	}
}

// CalculateDigest computes the digest of buf with the given hash algorithm,
// in the published byte order.
//
// The hash lands in the dedicated result registers rather than memory, so no
// destination buffer is handed to the engine.
func (e *SecurityEngine) CalculateDigest(mode HashMode, buf []byte) ([]byte, error) {
	size := mode.Size()

	if size == 0 || len(buf) > maxHashLength {
		return nil, ErrMalformedBuffer
	}

	cfg := uint32(mode)<<CONFIG_ENC_MODE | ALG_SHA<<CONFIG_ENC_ALG
	cfg |= ALG_NOP<<CONFIG_DEC_ALG | DST_HASH_REG<<CONFIG_DESTINATION

	e.regs.Write(SE_CONFIG, cfg)
	e.regs.Write(SE_SHA_CONFIG, shaHWInitHash)
	e.setMessageSize(len(buf))

	e.publish(buf)

	srcLL := e.LinkedListFor(buf)
	dstLL := LinkedList{}

	if err := e.StartNormalOperation(&srcLL, &dstLL); err != nil {
		return nil, err
	}

	digest := make([]byte, size)
	e.readHashResult(digest, true)

	return digest, nil
}

// CalculateSHA1 computes the SHA1 digest of buf.
func (e *SecurityEngine) CalculateSHA1(buf []byte) ([]byte, error) {
	return e.CalculateDigest(SHA1, buf)
}

// CalculateSHA224 computes the SHA224 digest of buf.
func (e *SecurityEngine) CalculateSHA224(buf []byte) ([]byte, error) {
	return e.CalculateDigest(SHA224, buf)
}

// CalculateSHA256 computes the SHA256 digest of buf.
func (e *SecurityEngine) CalculateSHA256(buf []byte) ([]byte, error) {
	return e.CalculateDigest(SHA256, buf)
}

// CalculateSHA384 computes the SHA384 digest of buf.
func (e *SecurityEngine) CalculateSHA384(buf []byte) ([]byte, error) {
	return e.CalculateDigest(SHA384, buf)
}

// CalculateSHA512 computes the SHA512 digest of buf.
func (e *SecurityEngine) CalculateSHA512(buf []byte) ([]byte, error) {
	return e.CalculateDigest(SHA512, buf)
}
