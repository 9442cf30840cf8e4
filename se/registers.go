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

// Security Engine instance base addresses.
const (
	// SE1Base is the base address of the first Security Engine instance.
	SE1Base = 0x70012000
	// SE2Base is the base address of the second Security Engine instance
	// (T210B01 only).
	SE2Base = 0x70412000
)

// Security Engine register offsets, ~0x2000 bytes from the instance base.
const (
	SE_SE_SECURITY            = 0x000
	SE_TZRAM_SECURITY         = 0x004
	SE_OPERATION              = 0x008
	SE_INT_ENABLE             = 0x00c
	SE_INT_STATUS             = 0x010
	SE_CONFIG                 = 0x014
	SE_IN_LL_ADDR             = 0x018
	SE_IN_CUR_BYTE_ADDR       = 0x01c
	SE_IN_CUR_LL_ID           = 0x020
	SE_OUT_LL_ADDR            = 0x024
	SE_OUT_CUR_BYTE_ADDR      = 0x028
	SE_OUT_CUR_LL_ID          = 0x02c
	SE_HASH_RESULT            = 0x030 // 16 words
	SE_CTX_SAVE_CONFIG        = 0x070
	SE_SHA_CONFIG             = 0x200
	SE_SHA_MSG_LENGTH         = 0x204 // 4 words
	SE_SHA_MSG_LEFT           = 0x214 // 4 words
	SE_CRYPTO_SECURITY_PERKEY = 0x280
	SE_CRYPTO_KEYTABLE_ACCESS = 0x284 // 16 words
	SE_CRYPTO_CONFIG          = 0x304
	SE_CRYPTO_LINEAR_CTR      = 0x308 // 4 words
	SE_CRYPTO_LAST_BLOCK      = 0x318
	SE_CRYPTO_KEYTABLE_ADDR   = 0x31c
	SE_CRYPTO_KEYTABLE_DATA   = 0x320
	SE_CRYPTO_KEYTABLE_DST    = 0x330
	SE_RNG_CONFIG             = 0x340
	SE_RNG_SRC_CONFIG         = 0x344
	SE_RNG_RESEED_INTERVAL    = 0x348
	SE_RSA_CONFIG             = 0x400
	SE_RSA_KEY_SIZE           = 0x404
	SE_RSA_EXP_SIZE           = 0x408
	SE_RSA_SECURITY_PERKEY    = 0x40c
	SE_RSA_KEYTABLE_ACCESS    = 0x410 // 2 words
	SE_RSA_KEYTABLE_ADDR      = 0x420
	SE_RSA_KEYTABLE_DATA      = 0x424
	SE_RSA_OUTPUT             = 0x428 // 64 words
	SE_STATUS                 = 0x800
	SE_ERR_STATUS             = 0x804
	SE_MISC                   = 0x808
	SE_SPARE                  = 0x80c
	SE_ENTROPY_DEBUG_COUNTER  = 0x810
)

// SE_OPERATION opcodes.
const (
	OP_ABORT       = 0
	OP_START       = 1
	OP_RESTART_OUT = 2
	OP_CTX_SAVE    = 3
	OP_RESTART_IN  = 4
)

// SE_INT_STATUS bits, write-1-to-clear.
const (
	INT_IN_LL_BUF_RD  = 1 << 0
	INT_IN_DONE       = 1 << 1
	INT_OUT_LL_BUF_WR = 1 << 2
	INT_OUT_DONE      = 1 << 3
	INT_OP_DONE       = 1 << 4
	INT_RESEED_NEEDED = 1 << 5
	INT_ERR_STAT      = 1 << 16
)

// SE_STATUS engine states.
const (
	STATE_IDLE     = 0
	STATE_BUSY     = 1
	STATE_WAIT_OUT = 2
	STATE_WAIT_IN  = 3
)

// SE_CONFIG field shifts.
const (
	CONFIG_ENC_MODE    = 24
	CONFIG_DEC_MODE    = 16
	CONFIG_ENC_ALG     = 12
	CONFIG_DEC_ALG     = 8
	CONFIG_DESTINATION = 2
)

// SE_CONFIG algorithm selectors (ENC_ALG, DEC_ALG).
const (
	ALG_NOP     = 0
	ALG_AES_ENC = 1
	ALG_RNG     = 2
	ALG_SHA     = 3
	ALG_RSA     = 4
	ALG_AES_DEC = 1
)

// SE_CONFIG mode selectors (ENC_MODE, DEC_MODE). The AES encodings double as
// the key size selectors, the SHA encodings as the hash mode selectors.
const (
	MODE_KEY128 = 0
	MODE_KEY192 = 1
	MODE_KEY256 = 2
	MODE_SHA1   = 1
	MODE_SHA224 = 4
	MODE_SHA256 = 5
	MODE_SHA384 = 6
	MODE_SHA512 = 7
)

// SE_CONFIG destinations.
const (
	DST_MEMORY   = 0
	DST_HASH_REG = 1
	DST_KEYTABLE = 2
	DST_SRK      = 3
	DST_RSA_REG  = 4
)

// SE_CRYPTO_CONFIG fields, expressed as in-place values.
const (
	CRYPTO_HASH_ENABLE = 1 << 0

	CRYPTO_XOR_BYPASS = 0 << 1
	CRYPTO_XOR_TOP    = 2 << 1
	CRYPTO_XOR_BOTTOM = 3 << 1

	CRYPTO_INPUT_MEMORY     = 0 << 3
	CRYPTO_INPUT_RANDOM     = 1 << 3
	CRYPTO_INPUT_AESOUT     = 2 << 3
	CRYPTO_INPUT_LINEAR_CTR = 3 << 3

	CRYPTO_VCTRAM_MEMORY      = 0 << 5
	CRYPTO_VCTRAM_AESOUT      = 2 << 5
	CRYPTO_VCTRAM_PREV_MEMORY = 3 << 5

	CRYPTO_IV_ORIGINAL = 0 << 7
	CRYPTO_IV_UPDATED  = 1 << 7

	CRYPTO_CORE_DECRYPT = 0 << 8
	CRYPTO_CORE_ENCRYPT = 1 << 8

	CRYPTO_KEYSCH_BYPASS = 1 << 10
	CRYPTO_CTR_CNTN      = 1 << 11

	CRYPTO_KEY_INDEX_SHIFT = 24

	CRYPTO_MEMIF_AHB = 0 << 31
)

// SE_CRYPTO_KEYTABLE_ADDR packet layout: slot, quad and word selectors.
const (
	KEYTABLE_SLOT_SHIFT = 4
	KEYTABLE_QUAD_SHIFT = 2

	QUAD_KEYS_03     = 0
	QUAD_KEYS_47     = 1
	QUAD_ORIGINAL_IV = 2
	QUAD_UPDATED_IV  = 3
)

// SE_CRYPTO_KEYTABLE_DST fields.
const (
	KEYTABLE_DST_KEY_INDEX_SHIFT = 8

	DST_QUAD_KEYS_03     = 0
	DST_QUAD_KEYS_47     = 1
	DST_QUAD_ORIGINAL_IV = 2
	DST_QUAD_UPDATED_IV  = 3
)

// SE_RNG_CONFIG fields.
const (
	RNG_MODE_NORMAL      = 0
	RNG_MODE_INSTANTIATE = 1
	RNG_MODE_RESEED      = 2

	RNG_SRC_NONE    = 0 << 2
	RNG_SRC_ENTROPY = 1 << 2
	RNG_SRC_LFSR    = 2 << 2
)

// SE_RNG_SRC_CONFIG fields.
const (
	RNG_SRC_RO_ENTROPY_LOCK   = 1 << 0
	RNG_SRC_RO_ENTROPY_ENABLE = 1 << 1
)

// reseedInterval forces a DRBG reseed every 70000 blocks.
const reseedInterval = 70001

// SE_RSA_CONFIG fields.
const (
	RSA_CONFIG_SLOT_SHIFT = 24
)

// SE_RSA_KEYTABLE_ADDR fields.
const (
	RSA_EXPMOD_EXPONENT = 0 << 6
	RSA_EXPMOD_MODULUS  = 1 << 6

	RSA_KEYTABLE_SLOT_SHIFT = 7
	RSA_INPUT_MODE_REGISTER = 1 << 8
)

// SE_SE_SECURITY fields, a set bit leaves the corresponding arbitration open
// to Non-Secure World clients.
const (
	SECURITY_HARD_SETTING   = 1 << 0
	SECURITY_ENGINE_DISABLE = 1 << 1
	SECURITY_PERKEY_SETTING = 1 << 2
	SECURITY_SOFT_SETTING   = 1 << 16
)

// SE_TZRAM_SECURITY fields.
const (
	TZRAM_SETTING = 1 << 0
)

// Fixed hardware dimensions.
const (
	// AESBlockSize is the AES block size in bytes.
	AESBlockSize = 16
	// AESKeySlots is the number of AES key table slots.
	AESKeySlots = 16
	// RSAKeySlots is the number of RSA key table slots.
	RSAKeySlots = 2
	// RSAMaxKeyBytes is the largest supported RSA modulus or exponent size.
	RSAMaxKeyBytes = 256
	// RSAOutputWords is the size of the RSA output register array.
	RSAOutputWords = 64
	// HashResultWords is the size of the hash result register array.
	HashResultWords = 16
)
