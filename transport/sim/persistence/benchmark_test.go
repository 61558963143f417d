// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"path/filepath"
	"testing"
)

// BenchmarkMemoryStorage_OnWrite benchmarks the OnWrite hook for MemoryStorage.
func BenchmarkMemoryStorage_OnWrite(b *testing.B) {
	ms := NewMemoryStorage(testImageSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ms.OnWrite(10, 1)
	}
}

func BenchmarkFileStorage_OnWrite(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench_file.img")
	fs := NewFileStorage(path, testImageSize)
	data, _, err := fs.Load()
	if err != nil {
		b.Fatalf("Failed to load file storage: %v", err)
	}
	defer fs.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data[10] = byte(i)
		fs.OnWrite(10, 1)
	}
}

// BenchmarkMmapStorage_OnWrite benchmarks the OnWrite hook for MmapStorage (msync).
func BenchmarkMmapStorage_OnWrite(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench_mmap.img")
	ms := NewMmapStorage(path, testImageSize)
	data, _, err := ms.Load()
	if err != nil {
		b.Fatalf("Failed to load mmap storage: %v", err)
	}
	defer ms.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data[10] = byte(i)
		ms.OnWrite(10, 1)
	}
}
