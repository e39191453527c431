// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package layout

// crcInit is the CRC-16/MCRF4XX seed.
const crcInit = 0xFFFF

// CRC16 is a CRC-16/MCRF4XX (X.25) accumulator, the checksum MAVLink uses
// for frames and for CRC-EXTRA. The zero value is not seeded; use NewCRC16.
type CRC16 uint16

// NewCRC16 returns a seeded accumulator.
func NewCRC16() CRC16 {
	return crcInit
}

// Accumulate feeds one byte.
func (c *CRC16) Accumulate(b byte) {
	crc := uint16(*c)
	b ^= uint8(crc & 0xFF)
	b ^= b << 4
	b16 := uint16(b)
	*c = CRC16(b16<<8 ^ crc>>8 ^ b16<<3 ^ b16>>4)
}

// AccumulateString feeds the bytes of s.
func (c *CRC16) AccumulateString(s string) {
	for i := 0; i < len(s); i++ {
		c.Accumulate(s[i])
	}
}

// Sum returns the accumulated value.
func (c CRC16) Sum() uint16 {
	return uint16(c)
}

// Fold returns the one-byte CRC-EXTRA form of the accumulator.
func (c CRC16) Fold() uint8 {
	return uint8(c&0xFF) ^ uint8(c>>8)
}
