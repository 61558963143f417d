// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package onewire defines the 1-Wire bus transport boundary and the
// ROM addressing shared by every device driver in this module.
//
// The Bus interface mirrors the classic 1-Wire master surface: reset,
// ROM search, device selection and blocking byte exchange. Transports
// (a DS2480B line driver over a serial port, or the in-memory
// simulator) implement it; the protocol engines consume it.
package onewire

// Memory-function command bytes shared by the Dallas/Maxim EPROM and
// EEPROM families. The same code can mean different things per
// technology: 0xAA reads the status fields on an EPROM but the
// scratchpad on an EEPROM.
const (
	CmdReadStatus    = 0xAA // read status fields [EPROM] / scratchpad [EEPROM]
	CmdVerifyResume  = 0xA5 // verify or resume, technology dependent
	CmdWriteStatus   = 0x55 // write status fields [EPROM] / copy scratchpad [EEPROM]
	CmdReadMemory    = 0xF0
	CmdReadMemoryCRC = 0xC3
	CmdWriteMemory   = 0x0F // program EPROM / write scratchpad [EEPROM]

	CmdSearchROM = 0xF0 // ROM-level search, used by transports
	CmdMatchROM  = 0x55
)

// Bus is the byte-level 1-Wire master a protocol engine talks through.
//
// The interface is deliberately error-free: the wire protocol itself
// has no error channel, and the engines re-synchronize through the
// mandatory bus reset at the start of every operation. Transports that
// can genuinely fail (serial I/O) expose a sticky error accessor of
// their own and answer reads with 0xFF, which is what an idle bus
// samples as.
//
// A Bus instance is not safe for concurrent use; callers needing to
// share one physical bus must serialize whole operations externally.
type Bus interface {
	// Reset issues a bus reset and reports whether any device
	// answered with a presence pulse.
	Reset() bool

	// ResetSearch restarts ROM enumeration from the beginning.
	ResetSearch()

	// Search advances the ROM enumeration, storing the next
	// responding device address. It returns false once the search
	// is exhausted.
	Search(addr *Address) bool

	// Select addresses a single device (MATCH ROM).
	Select(addr Address)

	// Write transmits one byte.
	Write(b byte)

	// WritePower transmits one byte and leaves the strong pullup
	// applied so the selected device can draw programming current.
	WritePower(b byte)

	// Read samples one byte from the bus.
	Read() byte

	// ReadBytes fills buf with consecutive byte reads.
	ReadBytes(buf []byte)

	// Depower releases the strong pullup.
	Depower()
}
