// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package eprom

import (
	"testing"

	"github.com/onewirelab/dallasmem/onewire"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		family  byte
		name    string
		pages   int
		isEPROM bool
	}{
		{0x09, "DS2502", 4, true},
		{0x0B, "DS2505", 64, true},
		{0x14, "DS2430", 1, false},
		{0x2D, "DS2431", 4, false},
		{0x23, "DS2433", 16, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Lookup(tt.family)
			if !ok {
				t.Fatalf("Lookup(%#02x) missed", tt.family)
			}
			if m.Name != tt.name || m.Pages != tt.pages || m.IsEPROM != tt.isEPROM {
				t.Fatalf("Lookup(%#02x) = %+v", tt.family, m)
			}
		})
	}
}

func TestLookupMiss(t *testing.T) {
	for _, family := range []byte{0x00, 0x01, 0x10, 0x28, 0xFF} {
		if _, ok := Lookup(family); ok {
			t.Errorf("Lookup(%#02x) resolved; family is not in the registry", family)
		}
	}
}

func TestLookupName(t *testing.T) {
	m, ok := LookupName("DS2505")
	if !ok || m.Family != 0x0B {
		t.Fatalf("LookupName(DS2505) = %+v/%v", m, ok)
	}
	if _, ok := LookupName("DS9999"); ok {
		t.Fatalf("LookupName must miss for unknown part numbers")
	}
}

func TestIsSupported(t *testing.T) {
	supported := map[byte]bool{0x09: true, 0x0B: true, 0x14: true, 0x2D: true, 0x23: true}
	for family := 0; family < 256; family++ {
		addr := onewire.MakeAddress(byte(family), [6]byte{1, 2, 3, 4, 5, 6})
		if got := IsSupported(addr); got != supported[byte(family)] {
			t.Errorf("IsSupported(family %#02x) = %v, want %v", family, got, supported[byte(family)])
		}
	}
}

func TestValidAddress(t *testing.T) {
	addr := onewire.MakeAddress(0x09, [6]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01})
	if !ValidAddress(addr) {
		t.Fatalf("constructed address must validate")
	}
	addr[7] ^= 0xFF
	if ValidAddress(addr) {
		t.Fatalf("address with corrupted CRC must not validate")
	}
}
