// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package layout

import "testing"

func TestCRC16(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected uint16
	}{
		{name: "empty", input: "", expected: 0xFFFF},
		{name: "check value", input: "123456789", expected: 0x6F91},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			crc := NewCRC16()
			crc.AccumulateString(tc.input)
			if got := crc.Sum(); got != tc.expected {
				t.Errorf("CRC16(%q) = 0x%04X, want 0x%04X", tc.input, got, tc.expected)
			}
		})
	}
}

func TestCRC16_ByteAndString(t *testing.T) {
	a, b := NewCRC16(), NewCRC16()
	a.AccumulateString("HEARTBEAT ")
	for _, c := range []byte("HEARTBEAT ") {
		b.Accumulate(c)
	}
	if a != b {
		t.Errorf("AccumulateString = 0x%04X, Accumulate = 0x%04X", a.Sum(), b.Sum())
	}
}

func TestCRC16_Fold(t *testing.T) {
	if got := CRC16(0x1234).Fold(); got != 0x34^0x12 {
		t.Errorf("Fold() = 0x%02X, want 0x%02X", got, 0x34^0x12)
	}
}
