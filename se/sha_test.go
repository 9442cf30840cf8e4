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
	"encoding/hex"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/tegra-bsp/tegra210/se"
	"github.com/tegra-bsp/tegra210/sesim"
)

func TestCalculateDigest(t *testing.T) {
	for _, tc := range []struct {
		name string
		mode se.HashMode
		msg  string
		want string
	}{
		{"SHA1", se.SHA1, "abc",
			"a9993e364706816aba3e25717850c26c9cd0d89d"},
		{"SHA224", se.SHA224, "abc",
			"23097d223405d8228642a477bda255b32aadbce4bda0b3f7e36c9da7"},
		{"SHA256", se.SHA256, "abc",
			"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"SHA256 empty message", se.SHA256, "",
			"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"SHA384", se.SHA384, "abc",
			"cb00753f45a35e8bb5a03d699ac65007272c32ab0eded1631a8b605a43ff5bed8086072ba1e7cc2358baeca134c825a7"},
		{"SHA512", se.SHA512, "abc",
			"ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sim := sesim.New(se.SE1Base)
			eng := newTestEngine(sim)

			digest, err := eng.CalculateDigest(tc.mode, payload([]byte(tc.msg)))
			require.NoError(t, err)

			want, err := hex.DecodeString(tc.want)
			require.NoError(t, err)

			if diff := cmp.Diff(want, digest); diff != "" {
				t.Errorf("digest diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCalculateDigestInvalidMode(t *testing.T) {
	sim := sesim.New(se.SE1Base)
	eng := newTestEngine(sim)

	_, err := eng.CalculateDigest(se.HashMode(0), []byte("abc"))
	require.ErrorIs(t, err, se.ErrMalformedBuffer)
}
