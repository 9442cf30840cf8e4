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

package se_test

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/tegra-bsp/tegra210/se"
	"github.com/tegra-bsp/tegra210/sesim"
)

// testModulus returns a deterministic 512-bit odd modulus and a matching
// message below it.
func testModulus() (modulus []byte, msg []byte) {
	modulus = make([]byte, 64)
	msg = make([]byte, 64)

	for i := range modulus {
		modulus[i] = byte(0xc3 - i)
		msg[i] = byte(i * 7)
	}

	modulus[63] |= 1
	msg[0] = 0

	return
}

func TestRSAKeySlotRoundTrip(t *testing.T) {
	sim := sesim.New(se.SE1Base)
	eng := newTestEngine(sim)

	modulus, _ := testModulus()
	exponent := []byte{0x00, 0x01, 0x00, 0x01}

	require.NoError(t, eng.FillKeySlot(1, modulus, exponent))

	gotMod, gotExp := sim.RSAKey(1, len(modulus), len(exponent))

	if diff := cmp.Diff(modulus, gotMod); diff != "" {
		t.Errorf("modulus diff (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(exponent, gotExp); diff != "" {
		t.Errorf("exponent diff (-want +got):\n%s", diff)
	}

	// Clearing is idempotent: the hardware visible state is all zeroes
	// after either pass.
	require.NoError(t, eng.ClearRSAKeySlot(1))
	require.NoError(t, eng.ClearRSAKeySlot(1))

	gotMod, gotExp = sim.RSAKey(1, len(modulus), len(exponent))

	if diff := cmp.Diff(make([]byte, len(modulus)), gotMod); diff != "" {
		t.Errorf("cleared modulus diff (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(make([]byte, len(exponent)), gotExp); diff != "" {
		t.Errorf("cleared exponent diff (-want +got):\n%s", diff)
	}
}

func TestRSAEncrypt(t *testing.T) {
	sim := sesim.New(se.SE1Base)
	eng := newTestEngine(sim)

	modulus, msg := testModulus()
	exponent := []byte{0x00, 0x01, 0x00, 0x01}

	info, err := se.NewRSAKeyInfo(len(modulus), len(exponent))
	require.NoError(t, err)

	require.NoError(t, eng.FillKeySlot(0, modulus, exponent))

	src := payload(msg)
	dst := make([]byte, len(modulus))

	require.NoError(t, eng.RSAEncrypt(info, 0, src, dst))

	n := new(big.Int).SetBytes(modulus)
	e := new(big.Int).SetBytes(exponent)

	want := make([]byte, len(modulus))
	new(big.Int).Exp(new(big.Int).SetBytes(msg), e, n).FillBytes(want)

	if diff := cmp.Diff(want, dst); diff != "" {
		t.Errorf("exponentiation result diff (-want +got):\n%s", diff)
	}
}

// Exponentiation against a cleared key slot is rejected by the engine.
func TestRSAEncryptClearedSlot(t *testing.T) {
	sim := sesim.New(se.SE1Base)
	eng := newTestEngine(sim)

	modulus, msg := testModulus()

	info, err := se.NewRSAKeyInfo(len(modulus), 4)
	require.NoError(t, err)

	require.NoError(t, eng.ClearRSAKeySlot(0))
	require.ErrorIs(t, eng.RSAEncrypt(info, 0, payload(msg), make([]byte, 64)), se.ErrException)
}

func TestRSAMalformed(t *testing.T) {
	sim := sesim.New(se.SE1Base)
	eng := newTestEngine(sim)

	_, err := se.NewRSAKeyInfo(100, 4)
	require.ErrorIs(t, err, se.ErrMalformedBuffer)

	_, err = se.NewRSAKeyInfo(256, 0)
	require.ErrorIs(t, err, se.ErrMalformedBuffer)

	_, err = se.NewRSAKeyInfo(256, 7)
	require.ErrorIs(t, err, se.ErrMalformedBuffer)

	modulus, _ := testModulus()

	require.ErrorIs(t, eng.FillKeySlot(se.RSAKeySlots, modulus, []byte{0, 1, 0, 1}), se.ErrMalformedBuffer)
	require.ErrorIs(t, eng.FillKeySlot(0, nil, []byte{0, 1, 0, 1}), se.ErrMalformedBuffer)
	require.ErrorIs(t, eng.ClearRSAKeySlot(-1), se.ErrMalformedBuffer)

	info, err := se.NewRSAKeyInfo(64, 4)
	require.NoError(t, err)

	require.ErrorIs(t, eng.RSAEncrypt(info, 0, nil, make([]byte, 64)), se.ErrMalformedBuffer)
	require.ErrorIs(t, eng.RSAEncrypt(info, 0, make([]byte, 64), make([]byte, 63)), se.ErrMalformedBuffer)
}
