// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// FileStorage implements persistence using plain file operations. The
// image is held in memory and written back whole on every device
// write; device images are at most a few kilobytes, so the sync cost
// stays negligible.
type FileStorage struct {
	path string
	size int
	file *os.File
	data []byte
}

// NewFileStorage creates a FileStorage for an image of the given size.
func NewFileStorage(path string, size int) *FileStorage {
	return &FileStorage{path: path, size: size}
}

// Load opens (creating if necessary) and reads the image file.
func (fs *FileStorage) Load() ([]byte, bool, error) {
	f, err := os.OpenFile(fs.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open image file: %w", err)
	}
	fs.file = f

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, false, err
	}

	created := fi.Size() != int64(fs.size)
	if created {
		if err := f.Truncate(int64(fs.size)); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("failed to resize image file: %w", err)
		}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("failed to read image file: %w", err)
	}
	fs.data = data
	return data, created, nil
}

// Save flushes the image to disk.
func (fs *FileStorage) Save() error {
	return fs.sync()
}

// OnWrite triggers a sync so a burned fuse survives a crash.
func (fs *FileStorage) OnWrite(offset, length int) {
	if err := fs.sync(); err != nil {
		slog.Error("Failed to sync image file", "path", fs.path, "err", err)
	}
}

func (fs *FileStorage) sync() error {
	if fs.data == nil || fs.file == nil {
		return nil
	}
	if _, err := fs.file.WriteAt(fs.data, 0); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	if err := fs.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync image file: %w", err)
	}
	return nil
}

// Close the file.
func (fs *FileStorage) Close() error {
	if fs.file == nil {
		return nil
	}
	return fs.file.Close()
}
