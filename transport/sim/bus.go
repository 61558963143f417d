// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package sim provides an in-memory 1-Wire bus with simulated
// Dallas/Maxim memory devices behind it. The simulator answers at the
// byte level with the same framing, CRC echoes and success markers the
// real chips produce, so protocol engines run against it unchanged.
package sim

import (
	"log/slog"

	"github.com/onewirelab/dallasmem/onewire"
)

// Bus implements onewire.Bus over a set of simulated devices.
//
// Like a physical segment, every attached device sees each written
// byte, but only the device matched by the last Select answers reads.
// Not safe for concurrent use.
type Bus struct {
	// NoPresence, when set, makes Reset report an empty bus.
	NoPresence bool

	devices   []*Device
	selected  *Device
	searchIdx int
}

// NewBus creates a bus with the given devices attached.
func NewBus(devices ...*Device) *Bus {
	return &Bus{devices: devices}
}

// Attach adds a device to the segment.
func (b *Bus) Attach(d *Device) { b.devices = append(b.devices, d) }

// Close releases the storage of every attached device.
func (b *Bus) Close() error {
	var first error
	for _, d := range b.devices {
		if err := d.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (b *Bus) Reset() bool {
	b.selected = nil
	for _, d := range b.devices {
		d.reset()
	}
	return !b.NoPresence && len(b.devices) > 0
}

func (b *Bus) ResetSearch() { b.searchIdx = 0 }

func (b *Bus) Search(addr *onewire.Address) bool {
	if b.NoPresence || b.searchIdx >= len(b.devices) {
		return false
	}
	*addr = b.devices[b.searchIdx].ROM()
	b.searchIdx++
	return true
}

func (b *Bus) Select(addr onewire.Address) {
	b.selected = nil
	for _, d := range b.devices {
		if d.ROM() == addr {
			b.selected = d
			return
		}
	}
	slog.Debug("sim: select missed", "addr", addr.String())
}

func (b *Bus) Write(v byte) {
	if b.selected != nil {
		b.selected.write(v)
	}
}

// WritePower behaves as Write; the simulator has no pullup to model,
// the programming energy is assumed available.
func (b *Bus) WritePower(v byte) { b.Write(v) }

func (b *Bus) Read() byte {
	if b.selected == nil {
		return 0xFF
	}
	return b.selected.read()
}

func (b *Bus) ReadBytes(buf []byte) {
	for i := range buf {
		buf[i] = b.Read()
	}
}

func (b *Bus) Depower() {}
