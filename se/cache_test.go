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
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tegra-bsp/tegra210/mmio"
	"github.com/tegra-bsp/tegra210/se"
	"github.com/tegra-bsp/tegra210/sesim"
)

// span is one recorded cache maintenance range.
type span struct {
	addr uint32
	size int
}

// cacheSpy records the cache maintenance bracket applied around DMA hand-off.
type cacheSpy struct {
	published []span
	acquired  []span
}

func (c *cacheSpy) Publish(addr uint32, size int) {
	c.published = append(c.published, span{addr, size})
}

func (c *cacheSpy) Acquire(addr uint32, size int) {
	c.acquired = append(c.acquired, span{addr, size})
}

func (c *cacheSpy) reset() {
	c.published = nil
	c.acquired = nil
}

// spansOf filters the recorded spans of the given size.
func spansOf(spans []span, size int) (out []span) {
	for _, s := range spans {
		if s.size == size {
			out = append(out, s)
		}
	}

	return
}

func newSpiedEngine(sim *sesim.Engine) (*se.SecurityEngine, *cacheSpy) {
	sesim.InitDMA(testDMASize)

	spy := &cacheSpy{}
	clk := &sesim.Clock{Step: time.Millisecond}

	eng := &se.SecurityEngine{
		Base:   se.SE1Base,
		Bus:    sim,
		Oracle: sim,
		Alloc:  sesim.Alloc(),
		Cache:  spy,
		Uptime: clk.Uptime,
	}
	eng.Init()

	return eng, spy
}

// The whole-block scratch buffers must receive the same cache maintenance
// bracket as caller buffers: published before the operation is triggered,
// acquired before engine output is copied out.
func TestScratchBlockCacheBracket(t *testing.T) {
	sim := sesim.New(se.SE1Base)
	eng, spy := newSpiedEngine(sim)

	require.NoError(t, eng.SetKey(0, mustHex(t, testKey128)))

	t.Run("ECB staging blocks", func(t *testing.T) {
		spy.reset()

		block := make([]byte, se.AESBlockSize)
		require.NoError(t, eng.EncryptECB(0, se.AES128, block, block))

		require.Len(t, spansOf(spy.published, se.AESBlockSize), 1)
		require.Len(t, spansOf(spy.acquired, se.AESBlockSize), 1)
	})

	t.Run("CMAC subkey and final block", func(t *testing.T) {
		spy.reset()

		_, err := eng.SumCMAC(0, se.AES128, nil)
		require.NoError(t, err)

		require.Len(t, spansOf(spy.published, se.AESBlockSize), 2)
	})

	t.Run("DRBG instantiation block", func(t *testing.T) {
		spy.reset()

		require.NoError(t, eng.InitRNG())
		require.Len(t, spansOf(spy.published, se.AESBlockSize), 1)
	})

	t.Run("random stream tail block", func(t *testing.T) {
		spy.reset()

		buf := sesim.Buffer(se.AESBlockSize + 1)
		require.NoError(t, eng.GenerateRandom(buf))

		acquired := spansOf(spy.acquired, se.AESBlockSize)
		require.Len(t, acquired, 2)

		// One full block lands in the caller buffer, the tail goes
		// through the scratch block.
		require.Equal(t, mmio.Address(buf), acquired[0].addr)
		require.NotEqual(t, mmio.Address(buf), acquired[1].addr)
	})
}
