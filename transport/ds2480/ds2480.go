// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package ds2480 drives a 1-Wire bus through a DS2480B serial line
// driver. The DS2480B sits on a UART and translates byte commands
// into 1-Wire time slots, including the search accelerator used for
// ROM enumeration and the strong pullup used for programming power.
package ds2480

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/onewirelab/dallasmem/internal/config"
	"github.com/onewirelab/dallasmem/onewire"
)

// Bus implements onewire.Bus over a DS2480B.
//
// The onewire.Bus surface carries no errors, so serial failures are
// recorded and exposed through Err. While an error is pending every
// operation is a no-op and reads answer 0xFF; the next Reset retries
// the port, which is the natural recovery point since every protocol
// transaction starts with one.
type Bus struct {
	serialPort

	err        error
	dataMode   bool
	calibrated bool

	searchLast onewire.Address
	searchDisc int
	searchDone bool
}

// NewBus allocates a DS2480B bus on the configured serial device. The
// port is opened lazily on first use.
func NewBus(cfg config.SerialConfig) *Bus {
	b := &Bus{searchDisc: -1}

	b.serialPort.Config.Address = cfg.Device
	b.serialPort.Config.BaudRate = cfg.BaudRate
	b.serialPort.Config.DataBits = cfg.DataBits
	b.serialPort.Config.StopBits = cfg.StopBits
	b.serialPort.Config.Parity = cfg.Parity
	b.serialPort.Config.Timeout = cfg.Timeout

	b.IdleTimeout = serialIdleTimeout
	return b
}

// Err returns the first serial failure since the last successful
// Reset, or nil.
func (b *Bus) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// fail records a sticky error. Caller must hold the mutex.
func (b *Bus) fail(err error) {
	if b.err == nil {
		slog.Error("ds2480: bus fault", "err", err)
		b.err = err
	}
}

// exchangeLogged wraps serialPort.exchange with hex tracing and sticky
// error capture. Caller must hold the mutex.
func (b *Bus) exchangeLogged(out, in []byte) bool {
	if b.err != nil {
		return false
	}
	if err := b.exchange(out, in); err != nil {
		b.fail(err)
		// A failed port is stale; reopen on the next Reset.
		b.close()
		b.dataMode = false
		b.calibrated = false
		return false
	}
	slog.Debug("ds2480: exchange",
		"out", hex.EncodeToString(out),
		"in", hex.EncodeToString(in))
	return true
}

// enterCommandMode and enterDataMode switch the chip's input
// interpretation. Neither transition produces a response byte.
// Caller must hold the mutex.
func (b *Bus) enterCommandMode() {
	if b.dataMode && b.exchangeLogged([]byte{cmdCommandMode}, nil) {
		b.dataMode = false
	}
}

func (b *Bus) enterDataMode() {
	if !b.dataMode && b.exchangeLogged([]byte{cmdDataMode}, nil) {
		b.dataMode = true
	}
}

// Reset issues a 1-Wire reset and reports device presence. It is also
// the recovery point: a pending serial error is cleared and the port
// retried.
func (b *Bus) Reset() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.err = nil
	return b.reset()
}

// reset runs the reset command. Caller must hold the mutex.
func (b *Bus) reset() bool {
	if !b.calibrated {
		// The first reset byte after power-up only calibrates the
		// chip's internal timing and is answered like any other, but
		// its presence result is not trustworthy. Spend one.
		if !b.exchangeLogged([]byte{cmdReset}, make([]byte, 1)) {
			return false
		}
		b.calibrated = true
	}

	b.enterCommandMode()
	var status [1]byte
	if !b.exchangeLogged([]byte{cmdReset}, status[:]) {
		return false
	}
	switch status[0] & 0x03 {
	case resetPresence, resetAlarming:
		return true
	case resetShorted:
		b.fail(errors.New("ds2480: bus shorted"))
		return false
	default:
		return false
	}
}

// writeDataByte shifts one byte onto the wire in data mode and returns
// what the bus sampled. Caller must hold the mutex.
func (b *Bus) writeDataByte(v byte) byte {
	b.enterDataMode()
	out := []byte{v}
	if v == dataEscape {
		out = []byte{dataEscape, dataEscape}
	}
	var echo [1]byte
	if !b.exchangeLogged(out, echo[:]) {
		return 0xFF
	}
	return echo[0]
}

// Write transmits one byte. The bus echo must match what was sent; a
// mismatch means slots were lost and the transaction is unsound.
func (b *Bus) Write(v byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.write(v)
}

func (b *Bus) write(v byte) {
	if echo := b.writeDataByte(v); echo != v && b.err == nil {
		b.fail(fmt.Errorf("ds2480: write echo %#02x, sent %#02x", echo, v))
	}
}

// WritePower transmits one byte and leaves the strong pullup applied
// after its last time slot.
func (b *Bus) WritePower(v byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.enterCommandMode()
	b.exchangeLogged([]byte{cmdPulseArm}, nil)
	b.write(v)
}

// Depower terminates the strong pullup.
func (b *Bus) Depower() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.enterCommandMode()
	var resp [1]byte
	b.exchangeLogged([]byte{cmdPulseTerminate}, resp[:])
}

// Read samples one byte by releasing all eight slots.
func (b *Bus) Read() byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writeDataByte(readSlot)
}

// ReadBytes fills buf with consecutive reads.
func (b *Bus) ReadBytes(buf []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range buf {
		buf[i] = b.writeDataByte(readSlot)
	}
}

// Select addresses a single device with MATCH ROM.
func (b *Bus) Select(addr onewire.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.write(onewire.CmdMatchROM)
	for _, v := range addr {
		b.write(v)
	}
}
