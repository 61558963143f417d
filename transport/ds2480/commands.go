// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package ds2480

// DS2480B command bytes, flexible speed variants.
//
// The chip boots in command mode. Data mode passes bytes to the wire
// verbatim and echoes back what the bus sampled; the command-mode
// escape byte must be doubled when it occurs as data.
const (
	cmdReset       = 0xC1 // generate a bus reset, answers one status byte
	cmdDataMode    = 0xE1
	cmdCommandMode = 0xE3
	dataEscape     = 0xE3 // doubled in data mode

	cmdSearchAccelOn  = 0xB1
	cmdSearchAccelOff = 0xA1

	cmdPulseArm       = 0xED // strong pullup follows the next data byte
	cmdPulseTerminate = 0xF1
)

// Reset status byte, low two bits.
const (
	resetShorted    = 0x00
	resetPresence   = 0x01
	resetAlarming   = 0x02
	resetNoPresence = 0x03
)

// readSlot is what a data-mode byte write samples as when the master
// only listens: all time slots released.
const readSlot = 0xFF
