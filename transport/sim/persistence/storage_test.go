// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const testImageSize = 4*32 + 1 + 4 // DS2502-shaped image

func TestMemoryStorage(t *testing.T) {
	ms := NewMemoryStorage(testImageSize)
	data, created, err := ms.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !created {
		t.Fatalf("memory storage is always fresh")
	}
	if len(data) != testImageSize {
		t.Fatalf("image size = %d, want %d", len(data), testImageSize)
	}
	data[0] = 0xAB
	ms.OnWrite(0, 1)
	if err := ms.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ds2502.img")

	fs := NewFileStorage(path, testImageSize)
	data, created, err := fs.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !created {
		t.Fatalf("first load must report a created image")
	}
	copy(data, []byte{0x01, 0x02, 0x03})
	fs.OnWrite(0, 3)
	if err := fs.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Reopen: image must come back with the same content.
	fs = NewFileStorage(path, testImageSize)
	data, created, err = fs.Load()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if created {
		t.Fatalf("second load must find the existing image")
	}
	if !bytes.Equal(data[:3], []byte{0x01, 0x02, 0x03}) {
		t.Fatalf("image content lost: %X", data[:3])
	}
	fs.Close()
}

func TestFileStorageResizesWrongImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.img")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	fs := NewFileStorage(path, testImageSize)
	data, created, err := fs.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !created {
		t.Fatalf("size mismatch must report a created image")
	}
	if len(data) != testImageSize {
		t.Fatalf("image size = %d, want %d", len(data), testImageSize)
	}
	fs.Close()
}

func TestMmapStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ds2431.img")

	ms := NewMmapStorage(path, testImageSize)
	data, created, err := ms.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !created {
		t.Fatalf("first load must report a created image")
	}
	data[10] = 0x5A
	ms.OnWrite(10, 1)
	if err := ms.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	ms = NewMmapStorage(path, testImageSize)
	data, created, err = ms.Load()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if created {
		t.Fatalf("second load must find the existing image")
	}
	if data[10] != 0x5A {
		t.Fatalf("image content lost: %#02x", data[10])
	}
	ms.Close()
}
