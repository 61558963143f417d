// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package crc implements the Dallas/Maxim CRC8 used to protect 1-Wire
// ROM codes and memory-function command frames (polynomial
// X^8 + X^5 + X^4 + 1, reflected, zero initial value).
package crc

// CRC is a running Dallas CRC8 accumulator.
type CRC struct {
	value byte
}

// Reset clears the accumulator. It returns the receiver so pushes can
// be chained.
func (c *CRC) Reset() *CRC {
	c.value = 0
	return c
}

// PushByte folds one byte into the accumulator.
func (c *CRC) PushByte(b byte) *CRC {
	v := c.value ^ b
	for i := 0; i < 8; i++ {
		if v&0x01 != 0 {
			v = (v >> 1) ^ 0x8C
		} else {
			v >>= 1
		}
	}
	c.value = v
	return c
}

// PushBytes folds a byte sequence into the accumulator.
func (c *CRC) PushBytes(data []byte) *CRC {
	for _, b := range data {
		c.PushByte(b)
	}
	return c
}

// Value returns the current CRC8.
func (c *CRC) Value() byte {
	return c.value
}

// Checksum computes the CRC8 of data in one call.
func Checksum(data []byte) byte {
	var c CRC
	return c.Reset().PushBytes(data).Value()
}
