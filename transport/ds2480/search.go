// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package ds2480

import "github.com/onewirelab/dallasmem/onewire"

// searchFrameLen is the accelerator exchange size: 64 ROM bits at two
// bits apiece.
const searchFrameLen = 16

// ResetSearch restarts ROM enumeration from the beginning.
func (b *Bus) ResetSearch() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.searchLast = onewire.Address{}
	b.searchDisc = -1
	b.searchDone = false
}

// Search advances the ROM enumeration using the DS2480B search
// accelerator: one 16-byte exchange resolves a whole ROM instead of
// 64 bit-triplet exchanges.
//
// Each ROM bit occupies a bit pair in the frame. On the way out the
// high bit of the pair carries the direction to take at a known
// discrepancy; on the way back the low bit flags a discrepancy and the
// high bit carries the bit the accelerator chose.
func (b *Bus) Search(addr *onewire.Address) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.searchDone || !b.reset() {
		return false
	}

	b.write(onewire.CmdSearchROM)

	var frame [searchFrameLen]byte
	for i := 0; i < 64; i++ {
		dir := false
		switch {
		case i < b.searchDisc:
			dir = b.searchLast[i/8]>>uint(i%8)&1 == 1
		case i == b.searchDisc:
			dir = true
		}
		if dir {
			frame[i/4] |= 1 << uint(2*(i%4)+1)
		}
	}

	b.enterCommandMode()
	b.exchangeLogged([]byte{cmdSearchAccelOn}, nil)
	b.enterDataMode()
	var resp [searchFrameLen]byte
	b.exchangeLogged(frame[:], resp[:])
	b.enterCommandMode()
	b.exchangeLogged([]byte{cmdSearchAccelOff}, nil)
	if b.err != nil {
		return false
	}

	var rom onewire.Address
	lastZero := -1
	for i := 0; i < 64; i++ {
		pair := resp[i/4] >> uint(2*(i%4))
		disc := pair&0x01 == 1
		bit := pair&0x02 == 0x02
		if bit {
			rom[i/8] |= 1 << uint(i%8)
		} else if disc {
			lastZero = i
		}
	}

	if rom == (onewire.Address{}) || !rom.Valid() {
		return false
	}

	b.searchLast = rom
	if lastZero == -1 {
		b.searchDone = true
	} else {
		b.searchDisc = lastZero
	}
	*addr = rom
	return true
}
