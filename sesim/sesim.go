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

// Package sesim simulates the Tegra X1 Security Engine register interface
// accurately enough to drive the se package without hardware: operations are
// decoded from the configuration registers, DMA linked lists are resolved
// against a registered DMA window, data paths are reproduced with standard
// library crypto primitives and completion signalling follows the hardware
// protocol, including write-1-to-clear interrupt status semantics.
//
// The simulator stands in for both the engine register block and the AHB
// write queue oracle, and provides fault injection knobs plus operation
// counters for driver testing.
package sesim

import (
	"crypto/aes"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"math/big"

	"github.com/tegra-bsp/tegra210/se"
)

// aesSlot mirrors one AES key table slot: 8 key words followed by the
// original and updated IV quads.
type aesSlot struct {
	words [16]uint32
}

// rsaSlot mirrors one RSA key table slot, modulus and exponent stored least
// significant word first.
type rsaSlot struct {
	modulus  [64]uint32
	exponent [64]uint32
}

// Engine is a register-level Security Engine simulator implementing mmio.Bus
// for the engine register block, and the write queue oracle consumed by the
// operation controller.
//
// The zero knob state simulates a healthy engine.
type Engine struct {
	// Base is the simulated register block base address.
	Base uint32

	// NeverIdle makes the status register permanently report busy.
	NeverIdle bool
	// NeverDone starts operations that never assert the done interrupt.
	NeverDone bool
	// StickyWriteQueue keeps engine writes pending on the bus forever.
	StickyWriteQueue bool
	// FailOp completes operations with the error interrupt asserted.
	FailOp bool
	// FailStatus completes operations with a poisoned error status
	// register but no error interrupt.
	FailStatus bool

	// Ops counts triggered operations.
	Ops int
	// RNGOps counts triggered random number generations.
	RNGOps int
	// RNGDests records the destination address of every random number
	// generation towards memory.
	RNGDests []uint32
	// SRKCount counts SRK generations.
	SRKCount int

	regs map[uint32]uint32

	aesKeys [se.AESKeySlots]aesSlot
	rsaKeys [se.RSAKeySlots]rsaSlot
	drbgUp  bool
}

// New returns a simulated engine mapped at the given base address.
func New(base uint32) *Engine {
	return &Engine{
		Base: base,
		regs: make(map[uint32]uint32),
	}
}

// Pending implements the AHB write queue oracle.
func (s *Engine) Pending() bool {
	return s.StickyWriteQueue
}

// Read32 implements mmio.Bus.
func (s *Engine) Read32(addr uint32) uint32 {
	off := addr - s.Base

	switch off {
	case se.SE_STATUS:
		if s.NeverIdle {
			return se.STATE_BUSY
		}

		return se.STATE_IDLE
	case se.SE_CRYPTO_KEYTABLE_DATA:
		sel := s.regs[se.SE_CRYPTO_KEYTABLE_ADDR]
		return s.aesKeys[(sel>>se.KEYTABLE_SLOT_SHIFT)&0xf].words[sel&0xf]
	}

	return s.regs[off]
}

// Write32 implements mmio.Bus.
func (s *Engine) Write32(addr uint32, val uint32) {
	off := addr - s.Base

	switch off {
	case se.SE_INT_STATUS, se.SE_ERR_STATUS:
		// write-1-to-clear
		s.regs[off] &^= val
	case se.SE_CRYPTO_KEYTABLE_DATA:
		sel := s.regs[se.SE_CRYPTO_KEYTABLE_ADDR]
		s.aesKeys[(sel>>se.KEYTABLE_SLOT_SHIFT)&0xf].words[sel&0xf] = val
	case se.SE_RSA_KEYTABLE_DATA:
		sel := s.regs[se.SE_RSA_KEYTABLE_ADDR]
		slot := &s.rsaKeys[(sel>>se.RSA_KEYTABLE_SLOT_SHIFT)&0x1]

		if sel&se.RSA_EXPMOD_MODULUS != 0 {
			slot.modulus[sel&0x3f] = val
		} else {
			slot.exponent[sel&0x3f] = val
		}
	case se.SE_OPERATION:
		s.regs[off] = val

		if val == se.OP_START || val == se.OP_CTX_SAVE {
			s.operate()
		}
	default:
		s.regs[off] = val
	}
}

// RSAKey returns the provisioned modulus and exponent of an RSA key slot as
// big-endian buffers of the given sizes, for key table round-trip testing.
func (s *Engine) RSAKey(slot int, modulusBytes int, exponentBytes int) (modulus []byte, exponent []byte) {
	modulus = wordsToBytes(s.rsaKeys[slot].modulus[:modulusBytes/4])
	exponent = wordsToBytes(s.rsaKeys[slot].exponent[:exponentBytes/4])

	return
}

// done flags successful completion of an operation.
func (s *Engine) done() {
	s.regs[se.SE_INT_STATUS] |= se.INT_OP_DONE | se.INT_IN_DONE | se.INT_OUT_DONE
}

// fail flags an operation exception.
func (s *Engine) fail() {
	s.regs[se.SE_INT_STATUS] |= se.INT_OP_DONE | se.INT_ERR_STAT
	s.regs[se.SE_ERR_STATUS] = 0x1
}

// operate executes one triggered operation.
func (s *Engine) operate() {
	if s.NeverDone {
		return
	}

	s.Ops++

	if s.FailOp {
		s.fail()
		return
	}

	src, srcOK := gather(s.regs[se.SE_IN_LL_ADDR])
	dst, dstOK := parseLL(s.regs[se.SE_OUT_LL_ADDR])

	if !srcOK || !dstOK {
		s.fail()
		return
	}

	cfg := s.regs[se.SE_CONFIG]

	encAlg := cfg >> se.CONFIG_ENC_ALG & 0xf
	decAlg := cfg >> se.CONFIG_DEC_ALG & 0xf

	var err bool

	switch {
	case encAlg == se.ALG_SHA:
		err = s.sha(cfg, src)
	case encAlg == se.ALG_RNG:
		err = s.rng(cfg, dst)
	case encAlg == se.ALG_RSA:
		err = s.rsa(src)
	case encAlg == se.ALG_AES_ENC || decAlg == se.ALG_AES_DEC:
		err = s.aes(cfg, encAlg == se.ALG_AES_ENC, src, dst)
	default:
		err = true
	}

	if err {
		s.fail()
		return
	}

	if s.FailStatus {
		s.regs[se.SE_ERR_STATUS] = 0x10
	}

	s.done()
}

// sha reproduces a SHA hashing operation towards the hash result registers.
func (s *Engine) sha(cfg uint32, src []byte) bool {
	if cfg>>se.CONFIG_DESTINATION&0x7 != se.DST_HASH_REG {
		return true
	}

	if s.regs[se.SE_SHA_MSG_LENGTH] != uint32(len(src))<<3 {
		return true
	}

	var digest []byte

	switch cfg >> se.CONFIG_ENC_MODE & 0xff {
	case se.MODE_SHA1:
		sum := sha1.Sum(src)
		digest = sum[:]
	case se.MODE_SHA224:
		sum := sha256.Sum224(src)
		digest = sum[:]
	case se.MODE_SHA256:
		sum := sha256.Sum256(src)
		digest = sum[:]
	case se.MODE_SHA384:
		sum := sha512.Sum384(src)
		digest = sum[:]
	case se.MODE_SHA512:
		sum := sha512.Sum512(src)
		digest = sum[:]
	default:
		return true
	}

	// The hash result registers hold big-endian words.
	for i := 0; i < len(digest)/4; i++ {
		s.regs[se.SE_HASH_RESULT+uint32(i*4)] = binary.BigEndian.Uint32(digest[i*4:])
	}

	return false
}

// rng reproduces a DRBG operation, enforcing the instantiation lifecycle.
func (s *Engine) rng(cfg uint32, dst []segment) bool {
	mode := s.regs[se.SE_RNG_CONFIG] & 0x3
	nblocks := int(s.regs[se.SE_CRYPTO_LAST_BLOCK]) + 1

	if mode == se.RNG_MODE_INSTANTIATE {
		s.drbgUp = true
	} else if !s.drbgUp {
		return true
	}

	s.RNGOps++

	out := make([]byte, nblocks*16)

	if _, err := rand.Read(out); err != nil {
		return true
	}

	switch cfg >> se.CONFIG_DESTINATION & 0x7 {
	case se.DST_MEMORY:
		for _, seg := range dst {
			if seg.length > 0 {
				s.RNGDests = append(s.RNGDests, seg.addr)
			}
		}

		scatter(dst, out)
	case se.DST_KEYTABLE:
		if nblocks != 1 {
			return true
		}

		sel := s.regs[se.SE_CRYPTO_KEYTABLE_DST]
		slot := &s.aesKeys[(sel>>se.KEYTABLE_DST_KEY_INDEX_SHIFT)&0xf]
		quad := sel & 0x3

		for i := 0; i < 4; i++ {
			slot.words[int(quad)*4+i] = binary.LittleEndian.Uint32(out[i*4:])
		}
	case se.DST_SRK:
		if mode != se.RNG_MODE_RESEED {
			return true
		}

		s.SRKCount++
	default:
		return true
	}

	return false
}

// rsa reproduces a modular exponentiation towards the RSA output registers.
func (s *Engine) rsa(src []byte) bool {
	slot := &s.rsaKeys[s.regs[se.SE_RSA_CONFIG]>>se.RSA_CONFIG_SLOT_SHIFT&0x1]

	modWords := (int(s.regs[se.SE_RSA_KEY_SIZE]) + 1) * 16
	expWords := int(s.regs[se.SE_RSA_EXP_SIZE])

	if modWords > se.RSAOutputWords || expWords > se.RSAOutputWords || expWords == 0 {
		return true
	}

	n := new(big.Int).SetBytes(wordsToBytes(slot.modulus[:modWords]))
	exp := new(big.Int).SetBytes(wordsToBytes(slot.exponent[:expWords]))

	if n.Sign() == 0 {
		return true
	}

	res := new(big.Int).Exp(new(big.Int).SetBytes(src), exp, n)

	out := make([]byte, modWords*4)
	res.FillBytes(out)

	// least significant word first
	for i := 0; i < modWords; i++ {
		s.regs[se.SE_RSA_OUTPUT+uint32(i*4)] = binary.BigEndian.Uint32(out[(modWords-1-i)*4:])
	}

	return false
}

// aes reproduces an AES operation with the configured chaining fields.
func (s *Engine) aes(cfg uint32, encrypt bool, src []byte, dst []segment) bool {
	ccfg := s.regs[se.SE_CRYPTO_CONFIG]

	hashEnb := ccfg&se.CRYPTO_HASH_ENABLE != 0
	xorPos := ccfg >> 1 & 0x3
	inputSel := ccfg >> 3 & 0x3
	vctram := ccfg >> 5 & 0x3
	updatedIV := ccfg>>7&0x1 != 0
	coreEncrypt := ccfg>>8&0x1 != 0
	keySlot := &s.aesKeys[ccfg>>se.CRYPTO_KEY_INDEX_SHIFT&0xf]

	mode := cfg >> se.CONFIG_ENC_MODE & 0xff

	if !encrypt {
		mode = cfg >> se.CONFIG_DEC_MODE & 0xff
	}

	if mode > se.MODE_KEY256 {
		return true
	}

	keyLen := 16 + int(mode)*8
	block, err := aes.NewCipher(wordsToLE(keySlot.words[:keyLen/4]))

	if err != nil {
		return true
	}

	nblocks := int(s.regs[se.SE_CRYPTO_LAST_BLOCK]) + 1

	// chaining vector
	iv := se.QUAD_ORIGINAL_IV

	if updatedIV {
		iv = se.QUAD_UPDATED_IV
	}

	v := wordsToLE(keySlot.words[iv*4 : iv*4+4])
	out := make([]byte, nblocks*16)

	switch {
	case inputSel == 0x3: // linear counter keystream
		if len(src) != nblocks*16 || xorPos != 0x3 || !coreEncrypt {
			return true
		}

		ctr := make([]byte, 16)

		for i := 0; i < 4; i++ {
			binary.LittleEndian.PutUint32(ctr[i*4:], s.regs[se.SE_CRYPTO_LINEAR_CTR+uint32(i*4)])
		}

		ks := make([]byte, 16)

		for i := 0; i < nblocks; i++ {
			block.Encrypt(ks, ctr)

			for j := 0; j < 16; j++ {
				out[i*16+j] = src[i*16+j] ^ ks[j]
			}

			increment(ctr)
		}

		for i := 0; i < 4; i++ {
			s.regs[se.SE_CRYPTO_LINEAR_CTR+uint32(i*4)] = binary.LittleEndian.Uint32(ctr[i*4:])
		}
	case hashEnb: // CBC-MAC accumulation
		if len(src) != nblocks*16 || xorPos != 0x2 || vctram != 0x2 || !coreEncrypt {
			return true
		}

		in := make([]byte, 16)

		for i := 0; i < nblocks; i++ {
			for j := 0; j < 16; j++ {
				in[j] = src[i*16+j] ^ v[j]
			}

			block.Encrypt(v, in)
		}

		// MAC result words are little-endian, unlike SHA digests.
		for i := 0; i < 4; i++ {
			s.regs[se.SE_HASH_RESULT+uint32(i*4)] = binary.LittleEndian.Uint32(v[i*4:])
		}

		s.storeIV(keySlot, v)

		return false
	case vctram == 0x2 && xorPos == 0x2: // CBC encrypt
		if !coreEncrypt || len(src) != nblocks*16 {
			return true
		}

		in := make([]byte, 16)

		for i := 0; i < nblocks; i++ {
			for j := 0; j < 16; j++ {
				in[j] = src[i*16+j] ^ v[j]
			}

			block.Encrypt(v, in)
			copy(out[i*16:], v)
		}

		s.storeIV(keySlot, v)
	case vctram == 0x3 && xorPos == 0x3: // CBC decrypt
		if coreEncrypt || len(src) != nblocks*16 {
			return true
		}

		p := make([]byte, 16)

		for i := 0; i < nblocks; i++ {
			block.Decrypt(p, src[i*16:i*16+16])

			for j := 0; j < 16; j++ {
				out[i*16+j] = p[j] ^ v[j]
			}

			copy(v, src[i*16:i*16+16])
		}

		s.storeIV(keySlot, v)
	case xorPos == 0x0 && vctram == 0x0: // ECB
		if len(src) != nblocks*16 {
			return true
		}

		for i := 0; i < nblocks; i++ {
			if coreEncrypt {
				block.Encrypt(out[i*16:], src[i*16:])
			} else {
				block.Decrypt(out[i*16:], src[i*16:])
			}
		}
	default:
		return true
	}

	scatter(dst, out)

	return false
}

// storeIV deposits a chaining vector into the updated IV quad of a key slot.
func (s *Engine) storeIV(slot *aesSlot, v []byte) {
	for i := 0; i < 4; i++ {
		slot.words[se.QUAD_UPDATED_IV*4+i] = binary.LittleEndian.Uint32(v[i*4:])
	}
}

// increment advances a counter block as a big-endian 128-bit integer.
func increment(ctr []byte) {
	for i := len(ctr) - 1; i >= 0; i-- {
		ctr[i]++

		if ctr[i] != 0 {
			break
		}
	}
}

// wordsToBytes packs words into a big-endian buffer, least significant word
// last.
func wordsToBytes(words []uint32) []byte {
	n := len(words)
	buf := make([]byte, n*4)

	for i, w := range words {
		binary.BigEndian.PutUint32(buf[(n-1-i)*4:], w)
	}

	return buf
}

// wordsToLE packs words into a little-endian byte buffer.
func wordsToLE(words []uint32) []byte {
	buf := make([]byte, len(words)*4)

	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}

	return buf
}
