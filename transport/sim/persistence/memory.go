// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

// MemoryStorage is a no-op storage (non-persistent).
type MemoryStorage struct {
	size int
}

func NewMemoryStorage(size int) *MemoryStorage {
	return &MemoryStorage{size: size}
}

func (ms *MemoryStorage) Load() ([]byte, bool, error) {
	return make([]byte, ms.size), true, nil
}

func (ms *MemoryStorage) Save() error {
	return nil
}

func (ms *MemoryStorage) OnWrite(offset, length int) {
	// No-op
}

func (ms *MemoryStorage) Close() error {
	return nil
}
