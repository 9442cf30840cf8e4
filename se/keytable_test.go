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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/tegra-bsp/tegra210/se"
	"github.com/tegra-bsp/tegra210/sesim"
)

func TestKeyTableRoundTrip(t *testing.T) {
	for _, size := range []int{16, 24, 32} {
		sim := sesim.New(se.SE1Base)
		eng := newTestEngine(sim)

		key := make([]byte, size)

		for i := range key {
			key[i] = byte(i + 1)
		}

		require.NoError(t, eng.SetKey(3, key))

		got := make([]byte, size)
		require.NoError(t, eng.ReadKey(3, got))

		if diff := cmp.Diff(key, got); diff != "" {
			t.Errorf("%d-byte key diff (-want +got):\n%s", size, diff)
		}
	}
}

func TestClearKeySlot(t *testing.T) {
	sim := sesim.New(se.SE1Base)
	eng := newTestEngine(sim)

	key := make([]byte, 32)

	for i := range key {
		key[i] = 0xff
	}

	require.NoError(t, eng.SetKey(7, key))

	// Clearing is idempotent: the hardware visible state is all zeroes
	// after either pass.
	for i := 0; i < 2; i++ {
		require.NoError(t, eng.ClearKeySlot(7))

		got := make([]byte, 32)
		require.NoError(t, eng.ReadKey(7, got))

		if diff := cmp.Diff(make([]byte, 32), got); diff != "" {
			t.Errorf("cleared key slot diff (-want +got):\n%s", diff)
		}
	}
}

func TestKeyTableMalformed(t *testing.T) {
	sim := sesim.New(se.SE1Base)
	eng := newTestEngine(sim)

	key := make([]byte, 16)

	require.ErrorIs(t, eng.SetKey(-1, key), se.ErrMalformedBuffer)
	require.ErrorIs(t, eng.SetKey(se.AESKeySlots, key), se.ErrMalformedBuffer)
	require.ErrorIs(t, eng.SetKey(0, key[:15]), se.ErrMalformedBuffer)
	require.ErrorIs(t, eng.ReadKey(0, key[:15]), se.ErrMalformedBuffer)
	require.ErrorIs(t, eng.ClearKeySlot(se.AESKeySlots), se.ErrMalformedBuffer)
	require.ErrorIs(t, eng.ClearKeyIV(-1), se.ErrMalformedBuffer)
}
