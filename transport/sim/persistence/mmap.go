// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/edsrzf/mmap-go"
)

// MmapStorage implements persistence using a memory-mapped file. The
// device mutates the mapped slice directly; OnWrite flushes it.
type MmapStorage struct {
	path string
	size int
	file *os.File
	data mmap.MMap
}

// NewMmapStorage creates an MmapStorage for an image of the given size.
func NewMmapStorage(path string, size int) *MmapStorage {
	return &MmapStorage{path: path, size: size}
}

// Load maps the image file into memory, creating it if necessary.
func (ms *MmapStorage) Load() ([]byte, bool, error) {
	f, err := os.OpenFile(ms.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open mmap file: %w", err)
	}
	ms.file = f

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, false, err
	}

	created := fi.Size() != int64(ms.size)
	if created {
		if err := f.Truncate(int64(ms.size)); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("failed to resize mmap file: %w", err)
		}
	}

	data, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("mmap failed: %w", err)
	}
	ms.data = data
	return data, created, nil
}

// Save flushes the mapping to disk.
func (ms *MmapStorage) Save() error {
	if ms.data == nil {
		return fmt.Errorf("mmap data is nil")
	}
	return ms.data.Flush()
}

// OnWrite flushes the dirty mapping.
func (ms *MmapStorage) OnWrite(offset, length int) {
	if ms.data == nil {
		return
	}
	if err := ms.data.Flush(); err != nil {
		slog.Error("Failed to flush mmap", "path", ms.path, "err", err)
	}
}

// Close unmaps and closes the file.
func (ms *MmapStorage) Close() error {
	var err error
	if ms.data != nil {
		if e := ms.data.Unmap(); e != nil {
			err = e
		}
		ms.data = nil
	}
	if ms.file != nil {
		if e := ms.file.Close(); e != nil {
			err = e
		}
		ms.file = nil
	}
	return err
}
