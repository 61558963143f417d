// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package sim

import "github.com/onewirelab/dallasmem/eprom"

// Image layout of a simulated device, sliced out of one flat backing
// array so a persistence backend can map it as a single blob.
//
// EPROM:  [ main: pages*32 ][ status: 1 lock byte + pages redirects ]
// EEPROM: [ main: pages*32 + pages lock sentinels ]
//
// The EEPROM lock bytes live inside the main address space because the
// protocol reads them with a plain memory-read at offset pages*32+page;
// the EPROM status fields are a separate address space reached only
// through the status commands.
type image struct {
	main   []byte
	status []byte // empty for EEPROMs
}

func mainSize(m eprom.Model) int {
	if m.IsEPROM {
		return m.Pages * eprom.PageSize
	}
	return m.Pages*eprom.PageSize + m.Pages
}

func statusSize(m eprom.Model) int {
	if m.IsEPROM {
		return 1 + m.Pages
	}
	return 0
}

// ImageSize returns the backing size of a device image for the model.
func ImageSize(m eprom.Model) int {
	return mainSize(m) + statusSize(m)
}

func mapImage(m eprom.Model, data []byte) image {
	return image{
		main:   data[:mainSize(m)],
		status: data[mainSize(m):ImageSize(m)],
	}
}

// initialize puts a freshly created image into its erased state: EPROM
// fuses and redirection bytes read as all ones, the lock byte and
// EEPROM arrays as zeros.
func (img image) initialize(m eprom.Model) {
	if !m.IsEPROM {
		for i := range img.main {
			img.main[i] = 0x00
		}
		return
	}
	for i := range img.main {
		img.main[i] = 0xFF
	}
	img.status[0] = 0x00
	for i := 1; i < len(img.status); i++ {
		img.status[i] = 0xFF
	}
}
