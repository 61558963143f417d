// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package eprom

import "github.com/onewirelab/dallasmem/onewire"

// PageSize is the logical page length shared by every supported chip.
const PageSize = 32

// Model describes one supported chip type.
type Model struct {
	Family  byte   // 1-Wire family code
	Name    string // part number, e.g. "DS2502"
	Pages   int    // number of 32-byte pages
	IsEPROM bool   // one-time-programmable EPROM, not an EEPROM
}

// familyDS2430 marks the one EEPROM whose scratchpad commit carries no
// auth bytes and signals success without the trailing 0xAA.
const familyDS2430 = 0x14

// models is the fixed registry of supported chips. Lookups take the
// first match.
var models = []Model{
	// EPROMs
	{0x09, "DS2502", 4, true},
	{0x0B, "DS2505", 64, true},
	// EEPROMs
	{familyDS2430, "DS2430", 1, false},
	{0x2D, "DS2431", 4, false},
	{0x23, "DS2433", 16, false},
}

// Lookup resolves a family code against the registry.
func Lookup(family byte) (Model, bool) {
	for _, m := range models {
		if m.Family == family {
			return m, true
		}
	}
	return Model{}, false
}

// LookupName resolves a part number (e.g. from a config file) against
// the registry.
func LookupName(name string) (Model, bool) {
	for _, m := range models {
		if m.Name == name {
			return m, true
		}
	}
	return Model{}, false
}

// Models returns a copy of the registry, in lookup order.
func Models() []Model {
	out := make([]Model, len(models))
	copy(out, models)
	return out
}

// ValidAddress reports whether the address carries a correct CRC byte.
func ValidAddress(addr onewire.Address) bool {
	return addr.Valid()
}

// IsSupported reports whether the address belongs to a chip family in
// the registry.
func IsSupported(addr onewire.Address) bool {
	_, ok := Lookup(addr.Family())
	return ok
}
