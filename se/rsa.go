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

// RSAKeyInfo caches the modulus and exponent size register encodings of a
// provisioned RSA key.
type RSAKeyInfo struct {
	modulusSize  uint32
	exponentSize uint32
}

// NewRSAKeyInfo derives the size encodings from the modulus and exponent
// byte lengths. The modulus must be 512, 1024, 1536 or 2048 bits long, the
// exponent a non-zero multiple of 4 bytes up to the modulus size.
func NewRSAKeyInfo(modulusBytes int, exponentBytes int) (RSAKeyInfo, error) {
	switch modulusBytes {
	case 64, 128, 192, 256:
	default:
		return RSAKeyInfo{}, ErrMalformedBuffer
	}

	if exponentBytes <= 0 || exponentBytes%4 != 0 || exponentBytes > RSAMaxKeyBytes {
		return RSAKeyInfo{}, ErrMalformedBuffer
	}

	return RSAKeyInfo{
		modulusSize:  uint32(modulusBytes/64 - 1),
		exponentSize: uint32(exponentBytes / 4),
	}, nil
}

// rsaKeytableWord returns the SE_RSA_KEYTABLE_ADDR packet selecting one
// modulus or exponent word of an RSA key slot for register input.
func rsaKeytableWord(slot int, expmod uint32, word int) uint32 {
	return RSA_INPUT_MODE_REGISTER | uint32(slot)<<RSA_KEYTABLE_SLOT_SHIFT | expmod | uint32(word)
}

// fillRSAKey loads key material into the modulus or exponent part of a key
// slot, reversing the word order to match the engine big-endian internal
// layout.
func (e *SecurityEngine) fillRSAKey(slot int, expmod uint32, key []byte) {
	nwords := len(key) / 4

	for i := 0; i < nwords; i++ {
		e.regs.Write(SE_RSA_KEYTABLE_ADDR, rsaKeytableWord(slot, expmod, i))
		e.regs.Write(SE_RSA_KEYTABLE_DATA, binary.BigEndian.Uint32(key[(nwords-1-i)*4:]))
	}
}

// FillKeySlot provisions an RSA key slot with the given big-endian modulus
// and exponent.
func (e *SecurityEngine) FillKeySlot(slot int, modulus []byte, exponent []byte) error {
	switch {
	case slot < 0 || slot >= RSAKeySlots:
		return ErrMalformedBuffer
	case len(modulus)%4 != 0 || len(modulus) == 0 || len(modulus) > RSAMaxKeyBytes:
		return ErrMalformedBuffer
	case len(exponent)%4 != 0 || len(exponent) == 0 || len(exponent) > RSAMaxKeyBytes:
		return ErrMalformedBuffer
	}

	e.fillRSAKey(slot, RSA_EXPMOD_MODULUS, modulus)
	e.fillRSAKey(slot, RSA_EXPMOD_EXPONENT, exponent)

	return nil
}

// ClearKeySlot zeroes out the modulus and exponent of an RSA key slot.
func (e *SecurityEngine) ClearRSAKeySlot(slot int) error {
	if slot < 0 || slot >= RSAKeySlots {
		return ErrMalformedBuffer
	}

	for _, expmod := range []uint32{RSA_EXPMOD_MODULUS, RSA_EXPMOD_EXPONENT} {
		for i := 0; i < RSAMaxKeyBytes/4; i++ {
			e.regs.Write(SE_RSA_KEYTABLE_ADDR, rsaKeytableWord(slot, expmod, i))
			e.regs.Write(SE_RSA_KEYTABLE_DATA, 0)
		}
	}

	return nil
}

// RSAEncrypt performs the modular exponentiation of src with the key in the
// given slot, writing the big-endian result to dst. Depending on the
// provisioned exponent this implements either RSA encryption or signing.
//
// The result lands in the dedicated RSA output registers rather than memory,
// so no destination buffer is handed to the engine.
func (e *SecurityEngine) RSAEncrypt(info RSAKeyInfo, slot int, src []byte, dst []byte) error {
	switch {
	case slot < 0 || slot >= RSAKeySlots:
		return ErrMalformedBuffer
	case len(src) == 0 || len(src) > RSAMaxKeyBytes:
		return ErrMalformedBuffer
	case len(dst)%4 != 0 || len(dst) == 0 || len(dst) > RSAMaxKeyBytes:
		return ErrMalformedBuffer
	}

	e.regs.Write(SE_RSA_KEY_SIZE, info.modulusSize)
	e.regs.Write(SE_RSA_EXP_SIZE, info.exponentSize)

	cfg := uint32(ALG_RSA)<<CONFIG_ENC_ALG | ALG_NOP<<CONFIG_DEC_ALG
	cfg |= DST_RSA_REG << CONFIG_DESTINATION

	e.regs.Write(SE_CONFIG, cfg)
	e.regs.Write(SE_RSA_CONFIG, uint32(slot)<<RSA_CONFIG_SLOT_SHIFT)

	e.publish(src)

	srcLL := e.LinkedListFor(src)
	dstLL := LinkedList{}

	if err := e.StartNormalOperation(&srcLL, &dstLL); err != nil {
		return err
	}

	// Reverse the output words back into a big-endian byte buffer.
	nwords := len(dst) / 4

	for i := 0; i < nwords; i++ {
		word := e.regs.Read(SE_RSA_OUTPUT + uint32(i*4))
		binary.BigEndian.PutUint32(dst[(nwords-1-i)*4:], word)
	}

	return nil
}
