// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package crc

import (
	"testing"
)

func TestCRC(t *testing.T) {
	// Worked example from Maxim application note 27: the ROM code
	// 02 1C B8 01 00 00 00 (family + serial, wire order) carries
	// the CRC byte A2.
	var crc CRC
	crc.Reset()
	crc.PushBytes([]byte{0x02, 0x1C, 0xB8, 0x01, 0x00, 0x00, 0x00})

	if crc.Value() != 0xA2 {
		t.Fatalf("crc expected %#02x, actual %#02x", 0xA2, crc.Value())
	}
}

func TestCRCReset(t *testing.T) {
	var crc CRC
	crc.PushBytes([]byte{0xDE, 0xAD})
	if got := crc.Reset().Value(); got != 0 {
		t.Fatalf("crc after reset expected 0, actual %#02x", got)
	}
}

func TestChecksum(t *testing.T) {
	if Checksum(nil) != 0 {
		t.Fatalf("checksum of no data must be 0")
	}
	if got, want := Checksum([]byte{0x02, 0x1C, 0xB8, 0x01, 0x00, 0x00, 0x00}), byte(0xA2); got != want {
		t.Fatalf("checksum expected %#02x, actual %#02x", want, got)
	}
}
