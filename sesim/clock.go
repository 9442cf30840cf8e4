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

package sesim

import (
	"time"
)

// Clock is a fake monotonic clock advancing by a fixed step on every reading,
// letting deadline expiry be exercised without real waits.
type Clock struct {
	// Step is the amount of simulated time each Uptime reading advances.
	Step time.Duration

	now time.Duration
}

// Uptime returns the simulated monotonic time.
func (c *Clock) Uptime() time.Duration {
	c.now += c.Step
	return c.now
}

// Elapsed returns the simulated time consumed so far, without advancing the
// clock.
func (c *Clock) Elapsed() time.Duration {
	return c.now
}
