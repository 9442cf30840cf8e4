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
	"errors"
	"runtime"

	"k8s.io/klog/v2"
)

// Operation outcomes, shared across all front-ends.
var (
	// ErrTimeout indicates that an engine wait loop exceeded its deadline.
	// The hardware operation may still be outstanding: buffers handed to
	// the engine must not be reused until a later operation observes the
	// engine idle again.
	ErrTimeout = errors.New("SE operation timeout")
	// ErrAHBTimeout indicates that engine originated writes did not drain
	// from the AHB memory write queue within the deadline.
	ErrAHBTimeout = errors.New("AHB transfer timeout")
	// ErrException indicates that the engine flagged an error while
	// processing the operation.
	ErrException = errors.New("SE operation exception")
	// ErrMalformedBuffer indicates an invalid buffer or descriptor list,
	// detected before any register write.
	ErrMalformedBuffer = errors.New("malformed DMA buffer")
)

// wait polls done until it returns true, bounded by the configured per-wait
// deadline, yielding the processor between polls.
func (e *SecurityEngine) wait(done func() bool) bool {
	deadline := e.Uptime() + e.Timeout

	for !done() {
		if e.Uptime() > deadline {
			return false
		}

		runtime.Gosched()
	}

	return true
}

// prepare waits for the engine to be fully idle, then clears stale interrupt
// and error status left behind by the previous operation.
func (e *SecurityEngine) prepare() error {
	idle := func() bool {
		return e.regs.Read(SE_STATUS) == STATE_IDLE
	}

	if !e.wait(idle) {
		return ErrTimeout
	}

	// write-1-to-clear
	e.regs.Write(SE_ERR_STATUS, e.regs.Read(SE_ERR_STATUS))
	e.regs.Write(SE_INT_STATUS, e.regs.Read(SE_INT_STATUS))

	return nil
}

// complete validates that an issued operation has fully terminated: the
// operation done interrupt fired, no error interrupt is flagged, the engine
// returned to idle, all engine writes drained from the memory write queue
// and the error status register is clear. Each wait carries an independent
// deadline.
func (e *SecurityEngine) complete() error {
	done := func() bool {
		return e.regs.Read(SE_INT_STATUS)&INT_OP_DONE != 0
	}

	if !e.wait(done) {
		return ErrTimeout
	}

	if e.regs.Read(SE_INT_STATUS)&INT_ERR_STAT != 0 {
		return ErrException
	}

	idle := func() bool {
		return e.regs.Read(SE_STATUS) == STATE_IDLE
	}

	if !e.wait(idle) {
		return ErrTimeout
	}

	if e.Oracle != nil {
		drained := func() bool {
			return !e.Oracle.Pending()
		}

		if !e.wait(drained) {
			return ErrAHBTimeout
		}
	}

	if status := e.regs.Read(SE_ERR_STATUS); status != 0 {
		klog.V(2).Infof("SE error status %#x", status)
		return ErrException
	}

	return nil
}

// triggerOperation launches a Security Engine operation described by the two
// linked lists, blocking until its completion has been validated.
func (e *SecurityEngine) triggerOperation(opcode uint32, src *LinkedList, dst *LinkedList) error {
	copy(e.inLL, src.Bytes())
	copy(e.outLL, dst.Bytes())

	e.regs.Write(SE_IN_LL_ADDR, uint32(e.inLLAddr))
	e.regs.Write(SE_OUT_LL_ADDR, uint32(e.outLLAddr))

	if err := e.prepare(); err != nil {
		return err
	}

	// The engine must observe both list images before the opcode lands.
	e.publish(e.inLL)
	e.publish(e.outLL)

	klog.V(3).Infof("SE operation %d in:%#x out:%#x", opcode, e.inLLAddr, e.outLLAddr)

	e.regs.Write(SE_OPERATION, opcode)

	return e.complete()
}

// StartNormalOperation triggers a regular Security Engine operation.
//
// This is the low-level operation interface, to be used only alongside the
// front-end register configuration entry points.
func (e *SecurityEngine) StartNormalOperation(src *LinkedList, dst *LinkedList) error {
	return e.triggerOperation(OP_START, src, dst)
}

// StartContextSaveOperation triggers a Security Engine operation that saves
// the crypto context afterwards.
func (e *SecurityEngine) StartContextSaveOperation(src *LinkedList, dst *LinkedList) error {
	return e.triggerOperation(OP_CTX_SAVE, src, dst)
}
