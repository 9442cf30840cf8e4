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

// Lock restricts Security Engine access to Secure World clients.
func (e *SecurityEngine) Lock() {
	e.regs.Clear(SE_SE_SECURITY, SECURITY_SOFT_SETTING)
	e.regs.Read(SE_SE_SECURITY) // confirm the write
}

// Unlock extends Security Engine access to all clients.
func (e *SecurityEngine) Unlock() {
	e.regs.Set(SE_SE_SECURITY, SECURITY_SOFT_SETTING)
	e.regs.Read(SE_SE_SECURITY) // confirm the write
}

// LockPerKey locks down the per-key security arbitration of both the AES and
// RSA key tables.
func (e *SecurityEngine) LockPerKey() {
	e.regs.Write(SE_CRYPTO_SECURITY_PERKEY, 0)
	e.regs.Read(SE_CRYPTO_SECURITY_PERKEY)

	e.regs.Write(SE_RSA_SECURITY_PERKEY, 0)
	e.regs.Read(SE_RSA_SECURITY_PERKEY)

	e.regs.Clear(SE_SE_SECURITY, SECURITY_PERKEY_SETTING)
	e.regs.Read(SE_SE_SECURITY)
}

// LockTZRAM restricts TZRAM access to Secure World clients.
func (e *SecurityEngine) LockTZRAM() {
	e.regs.Clear(SE_TZRAM_SECURITY, TZRAM_SETTING)
	e.regs.Read(SE_TZRAM_SECURITY)
}

// Disable locks all key slots and shuts the Security Engine down until the
// next cold boot.
func (e *SecurityEngine) Disable() {
	for i := 0; i < AESKeySlots; i++ {
		e.regs.Write(SE_CRYPTO_KEYTABLE_ACCESS+uint32(i*4), 0)
	}

	for i := 0; i < RSAKeySlots; i++ {
		e.regs.Write(SE_RSA_KEYTABLE_ACCESS+uint32(i*4), 0)
	}

	e.LockPerKey()

	e.regs.Clear(SE_SE_SECURITY, SECURITY_HARD_SETTING|SECURITY_PERKEY_SETTING|SECURITY_SOFT_SETTING)
	e.regs.Set(SE_SE_SECURITY, SECURITY_ENGINE_DISABLE)
}
