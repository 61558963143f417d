// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package persistence stores simulated device images so a simulated
// EPROM keeps its burned fuses across runs.
package persistence

// Storage persists the raw image of one simulated device.
type Storage interface {
	// Load returns the image backing slice. created reports that the
	// backing store did not exist before (or had the wrong size), in
	// which case the caller must initialize the image to its erased
	// state and Save it.
	Load() (data []byte, created bool, err error)

	// Save writes the whole image out.
	Save() error

	// OnWrite is a hook called whenever the device mutates its image,
	// allowing the storage to persist in real time.
	OnWrite(offset, length int)

	// Close releases the backing store.
	Close() error
}
