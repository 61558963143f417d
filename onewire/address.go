// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package onewire

import (
	"encoding/hex"
	"fmt"

	"github.com/onewirelab/dallasmem/onewire/crc"
)

// Address is the unique 64-bit ROM code of a 1-Wire device, stored in
// wire order (LSB first):
//
//	+---------------------+------------------------+-------------+
//	|  8-bit family code  |  48-bit serial number  |  8-bit CRC  |
//	+---------------------+------------------------+-------------+
//	 byte 0                bytes 1..6               byte 7
type Address [8]byte

// Family returns the device family code.
func (a Address) Family() byte {
	return a[0]
}

// Serial returns the 48-bit serial number portion.
func (a Address) Serial() [6]byte {
	var s [6]byte
	copy(s[:], a[1:7])
	return s
}

// Valid reports whether the trailing CRC byte matches the CRC8 of the
// family code and serial number.
func (a Address) Valid() bool {
	return crc.Checksum(a[:7]) == a[7]
}

// String renders the address as family.serial.crc, e.g.
// "2d.0000019a23f1.6c".
func (a Address) String() string {
	return fmt.Sprintf("%02x.%012x.%02x",
		a[0],
		uint64(a[6])<<40|uint64(a[5])<<32|uint64(a[4])<<24|
			uint64(a[3])<<16|uint64(a[2])<<8|uint64(a[1]),
		a[7])
}

// MakeAddress assembles an address from a family code and serial
// number, computing the trailing CRC byte.
func MakeAddress(family byte, serial [6]byte) Address {
	var a Address
	a[0] = family
	copy(a[1:7], serial[:])
	a[7] = crc.Checksum(a[:7])
	return a
}

// ParseSerial decodes a 12-digit hex serial number as used in
// configuration files.
func ParseSerial(s string) ([6]byte, error) {
	var serial [6]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return serial, fmt.Errorf("onewire: invalid serial %q: %w", s, err)
	}
	if len(raw) != 6 {
		return serial, fmt.Errorf("onewire: serial %q must be 6 bytes, got %d", s, len(raw))
	}
	copy(serial[:], raw)
	return serial, nil
}
