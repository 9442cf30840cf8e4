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
	"time"

	"github.com/tegra-bsp/tegra210/se"
	"github.com/tegra-bsp/tegra210/sesim"
)

const testDMASize = 8 * 1024 * 1024

// newTestEngine returns a driver instance backed by a simulated engine, with
// a fake clock so that deadline expiry does not consume real time.
func newTestEngine(sim *sesim.Engine) *se.SecurityEngine {
	eng, _ := newTestEngineClock(sim)

	return eng
}

// newTestEngineClock additionally exposes the fake clock driving the engine
// wait deadlines.
func newTestEngineClock(sim *sesim.Engine) (*se.SecurityEngine, *sesim.Clock) {
	sesim.InitDMA(testDMASize)

	clk := &sesim.Clock{Step: time.Millisecond}

	eng := &se.SecurityEngine{
		Base:   se.SE1Base,
		Bus:    sim,
		Oracle: sim,
		Alloc:  sesim.Alloc(),
		Uptime: clk.Uptime,
	}
	eng.Init()

	return eng, clk
}

// payload copies buf into engine visible DMA memory.
func payload(buf []byte) []byte {
	if len(buf) == 0 {
		return nil
	}

	p := sesim.Buffer(len(buf))
	copy(p, buf)

	return p
}
