// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package sim

import (
	"fmt"

	"github.com/onewirelab/dallasmem/eprom"
	"github.com/onewirelab/dallasmem/onewire"
	"github.com/onewirelab/dallasmem/onewire/crc"
	"github.com/onewirelab/dallasmem/transport/sim/persistence"
)

// Device emulates one Dallas/Maxim memory chip at the byte level: it
// consumes the bytes a master writes after selecting it and queues the
// bytes the chip would answer with, per its technology's command set.
type Device struct {
	rom   onewire.Address
	model eprom.Model
	img   image
	store persistence.Storage

	// Fault injection for exercising the engine's failure paths.
	CorruptCommandCRC  bool // answer command frames with a wrong CRC echo
	CorruptScratchEcho bool // flip a bit in the scratchpad echo

	state       devState
	cmd         byte
	frame       []byte
	addr        int
	burnCursor  int
	scratch     []byte
	scratchAddr int
	auth        [3]byte
	authSent    bool
	commitBuf   []byte
	out         []byte
}

type devState int

const (
	stIdle devState = iota
	stAddrLo
	stAddrHi
	stEpromFirstByte
	stEpromBurn
	stEpromStatusByte
	stScratchData
	stCommitAuth
)

// NewDevice creates a simulated device of the given model. A nil
// storage means a volatile in-memory image. The image is initialized
// to the erased state when the backing store is fresh.
func NewDevice(model eprom.Model, serial [6]byte, store persistence.Storage) (*Device, error) {
	if store == nil {
		store = persistence.NewMemoryStorage(ImageSize(model))
	}
	data, created, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("sim: loading %s image: %w", model.Name, err)
	}
	if len(data) != ImageSize(model) {
		return nil, fmt.Errorf("sim: %s image is %d bytes, want %d", model.Name, len(data), ImageSize(model))
	}

	d := &Device{
		rom:   onewire.MakeAddress(model.Family, serial),
		model: model,
		img:   mapImage(model, data),
		store: store,
	}
	if created {
		d.img.initialize(model)
		if err := store.Save(); err != nil {
			return nil, fmt.Errorf("sim: saving fresh %s image: %w", model.Name, err)
		}
	}
	return d, nil
}

// ROM returns the device's 1-Wire address.
func (d *Device) ROM() onewire.Address { return d.rom }

// Model returns the emulated chip model.
func (d *Device) Model() eprom.Model { return d.model }

// Snapshot returns a copy of the device's main memory, for tests.
func (d *Device) Snapshot() []byte {
	out := make([]byte, len(d.img.main))
	copy(out, d.img.main)
	return out
}

// Close releases the backing storage.
func (d *Device) Close() error { return d.store.Close() }

// reset aborts any in-flight transaction, as a bus reset would.
func (d *Device) reset() {
	d.state = stIdle
	d.frame = nil
	d.out = nil
}

// read pops the next response byte; an idle device leaves the bus
// pulled up, which samples as 0xFF.
func (d *Device) read() byte {
	if len(d.out) == 0 {
		return 0xFF
	}
	b := d.out[0]
	d.out = d.out[1:]
	return b
}

func (d *Device) emit(data ...byte) { d.out = append(d.out, data...) }

// emitFrameCRC answers the accumulated command frame with its CRC8,
// optionally corrupted for fault injection.
func (d *Device) emitFrameCRC() {
	c := crc.Checksum(d.frame)
	if d.CorruptCommandCRC {
		c ^= 0x01
	}
	d.emit(c)
}

// write consumes one byte from the master.
func (d *Device) write(b byte) {
	switch d.state {
	case stIdle:
		d.startCommand(b)
	case stAddrLo:
		d.frame = append(d.frame, b)
		d.addr = int(b)
		d.state = stAddrHi
	case stAddrHi:
		d.frame = append(d.frame, b)
		d.addr |= int(b) << 8
		d.dispatch()
	case stEpromFirstByte:
		d.frame = append(d.frame, b)
		d.emitFrameCRC()
		d.burnCursor = d.addr
		d.burn(b)
	case stEpromBurn:
		// Each follow-up byte answers with the device's 9-bit CRC
		// (opaque to the master, which discards it) and then the
		// post-pulse readback of the burned cell.
		d.emit(0x00)
		d.burn(b)
	case stEpromStatusByte:
		d.frame = append(d.frame, b)
		d.emitFrameCRC()
		if d.addr < len(d.img.status) {
			d.img.status[d.addr] |= b
			d.store.OnWrite(len(d.img.main)+d.addr, 1)
		}
		d.state = stIdle
	case stScratchData:
		d.scratch = append(d.scratch, b)
	case stCommitAuth:
		d.commitBuf = append(d.commitBuf, b)
		d.finishCommit()
	}
}

func (d *Device) startCommand(b byte) {
	d.cmd = b
	d.frame = []byte{b}
	switch b {
	case onewire.CmdReadMemory, onewire.CmdWriteMemory:
		d.state = stAddrLo
	case onewire.CmdReadStatus:
		if d.model.IsEPROM {
			d.state = stAddrLo
			return
		}
		// EEPROM: read scratchpad. Answer the auth record followed by
		// the staged data.
		d.auth = [3]byte{byte(d.scratchAddr), byte(d.scratchAddr >> 8), d.endingOffset()}
		d.authSent = true
		d.emit(d.auth[:]...)
		echo := append([]byte(nil), d.scratch...)
		if d.CorruptScratchEcho && len(echo) > 0 {
			echo[0] ^= 0x20
		}
		d.emit(echo...)
	case onewire.CmdWriteStatus:
		if d.model.IsEPROM {
			d.state = stAddrLo
			return
		}
		d.commitBuf = nil
		d.state = stCommitAuth
	}
}

// dispatch runs once the two address bytes of a command are in.
func (d *Device) dispatch() {
	switch d.cmd {
	case onewire.CmdReadMemory:
		if d.model.IsEPROM {
			d.emitFrameCRC()
		}
		if d.addr < len(d.img.main) {
			d.emit(d.img.main[d.addr:]...)
		}
		d.state = stIdle
	case onewire.CmdReadStatus: // EPROM only here
		d.emitFrameCRC()
		if d.addr < len(d.img.status) {
			d.emit(d.img.status[d.addr:]...)
		}
		d.state = stIdle
	case onewire.CmdWriteMemory:
		if d.model.IsEPROM {
			d.state = stEpromFirstByte
			return
		}
		d.scratch = nil
		d.scratchAddr = d.addr
		d.authSent = false
		d.state = stScratchData
	case onewire.CmdWriteStatus: // EPROM only here
		d.state = stEpromStatusByte
	}
}

// burn programs one EPROM cell. Fuses only clear bits, so the cell
// takes the AND of old and new; a bit that needs raising simply fails,
// which the master sees on readback.
func (d *Device) burn(b byte) {
	if d.burnCursor < len(d.img.main) {
		d.img.main[d.burnCursor] &= b
		d.store.OnWrite(d.burnCursor, 1)
		d.emit(d.img.main[d.burnCursor])
	} else {
		d.emit(0xFF)
	}
	d.burnCursor++
	d.state = stEpromBurn
}

// endingOffset models the E/S register: the offset of the last staged
// byte within its 8-byte row.
func (d *Device) endingOffset() byte {
	if len(d.scratch) == 0 {
		return 0
	}
	return byte((d.scratchAddr + len(d.scratch) - 1) & 0x07)
}

// finishCommit completes a copy-scratchpad command once enough auth
// bytes arrived. The DS2430 variant takes a single verify/resume byte
// and emits no success marker; every other EEPROM requires the three
// auth bytes previously read back and answers 0xAA on success.
func (d *Device) finishCommit() {
	if d.model.Family == 0x14 { // DS2430
		if len(d.commitBuf) < 1 {
			return
		}
		if d.commitBuf[0] == onewire.CmdVerifyResume {
			d.commit()
		}
		d.state = stIdle
		return
	}

	if len(d.commitBuf) < 3 {
		return
	}
	if d.authSent &&
		d.commitBuf[0] == d.auth[0] &&
		d.commitBuf[1] == d.auth[1] &&
		d.commitBuf[2] == d.auth[2] {
		d.commit()
		d.emit(0xAA)
	} else {
		d.emit(0x00)
	}
	d.state = stIdle
}

func (d *Device) commit() {
	end := d.scratchAddr + len(d.scratch)
	if end > len(d.img.main) {
		end = len(d.img.main)
	}
	copy(d.img.main[d.scratchAddr:end], d.scratch)
	d.store.OnWrite(d.scratchAddr, end-d.scratchAddr)
}
