// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package mavlink

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// sample has the shape of generated code: one uint8 base field and one
// uint16 extension field.
type sample struct {
	Base uint8
	Ext  uint16
}

func (*sample) ID() MessageID { return 7 }
func (*sample) Name() string { return "SAMPLE" }
func (*sample) MinPayloadLen() int { return 1 }
func (*sample) MaxPayloadLen() int { return 3 }
func (*sample) CRCExtra() uint8 { return 216 }

func (m *sample) Encode(buf []byte, v Version) (int, error) {
	n, err := CheckEncode(m, buf, v)
	if err != nil {
		return 0, err
	}
	buf[0] = m.Base
	if v == V1 {
		return n, nil
	}
	binary.LittleEndian.PutUint16(buf[1:], m.Ext)
	return TrimExtensions(buf[:n], 1), nil
}

func (m *sample) Decode(payload []byte) error {
	if len(payload) < 1 {
		return ShortPayload(m, len(payload))
	}
	var b [3]byte
	copy(b[:], payload)
	m.Base = b[0]
	m.Ext = binary.LittleEndian.Uint16(b[1:])
	return nil
}

// wide has an id that does not fit MAVLink 1.
type wide struct{ sample }

func (*wide) ID() MessageID { return 300 }

func TestTrimExtensions(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		offsets  []int
		expected int
	}{
		{name: "no extensions", payload: []byte{0, 0, 0}, expected: 3},
		{name: "all zero extensions", payload: []byte{1, 0, 0, 0}, offsets: []int{1, 2}, expected: 1},
		{name: "last extension set", payload: []byte{1, 0, 0, 5}, offsets: []int{1, 2}, expected: 4},
		{name: "first extension set", payload: []byte{1, 0, 9, 0, 0}, offsets: []int{1, 3}, expected: 3},
		{name: "zero base kept", payload: []byte{0, 0}, offsets: []int{1}, expected: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TrimExtensions(tc.payload, tc.offsets...); got != tc.expected {
				t.Errorf("TrimExtensions(%v, %v) = %d, want %d", tc.payload, tc.offsets, got, tc.expected)
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	t.Run("v2 round trip", func(t *testing.T) {
		in := &sample{Base: 3, Ext: 0x0102}
		b, err := Marshal(in, V2)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]byte{3, 2, 1}, b); diff != "" {
			t.Errorf("payload mismatch (-want +got):\n%s", diff)
		}
		var out sample
		if err := out.Decode(b); err != nil {
			t.Fatal(err)
		}
		if out != *in {
			t.Errorf("Decode() = %+v, want %+v", out, *in)
		}
	})

	t.Run("v2 trims zero extension", func(t *testing.T) {
		b, err := Marshal(&sample{Base: 3}, V2)
		if err != nil {
			t.Fatal(err)
		}
		if len(b) != 1 {
			t.Errorf("len = %d, want 1", len(b))
		}
	})

	t.Run("v1 drops extensions", func(t *testing.T) {
		b, err := Marshal(&sample{Base: 3, Ext: 9}, V1)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]byte{3}, b); diff != "" {
			t.Errorf("payload mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("truncated decode zero fills", func(t *testing.T) {
		out := sample{Ext: 77}
		if err := out.Decode([]byte{5}); err != nil {
			t.Fatal(err)
		}
		if out.Base != 5 || out.Ext != 0 {
			t.Errorf("Decode() = %+v", out)
		}
	})

	t.Run("short base fails", func(t *testing.T) {
		var out sample
		err := out.Decode(nil)
		if !errors.Is(err, ErrShortPayload) {
			t.Errorf("Decode(nil) = %v, want ErrShortPayload", err)
		}
	})

	t.Run("small buffer", func(t *testing.T) {
		_, err := (&sample{}).Encode(make([]byte, 2), V2)
		if !errors.Is(err, ErrBufferTooSmall) {
			t.Errorf("Encode() = %v, want ErrBufferTooSmall", err)
		}
	})

	t.Run("v1 rejects wide id", func(t *testing.T) {
		_, err := CheckEncode(&wide{}, make([]byte, 3), V1)
		if !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("CheckEncode() = %v, want ErrUnsupportedVersion", err)
		}
	})

	t.Run("unknown version", func(t *testing.T) {
		_, err := CheckEncode(&sample{}, make([]byte, 3), Version(9))
		if !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("CheckEncode() = %v, want ErrUnsupportedVersion", err)
		}
	})
}

func TestDialect(t *testing.T) {
	d := NewDialect("test",
		MessageInfo{ID: 300, Name: "WIDE", New: func() Message { return &wide{} }},
		MessageInfo{ID: 7, Name: "SAMPLE", CRCExtra: 216, MinPayloadLen: 1, MaxPayloadLen: 3, New: func() Message { return &sample{} }},
	)

	if d.Name() != "test" {
		t.Errorf("Name() = %q", d.Name())
	}
	if diff := cmp.Diff([]MessageID{7, 300}, d.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}
	if info, ok := d.Message(7); !ok || info.CRCExtra != 216 {
		t.Errorf("Message(7) = %+v, %v", info, ok)
	}

	m, err := d.Decode(7, []byte{4, 1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if got := m.(*sample); got.Base != 4 || got.Ext != 1 {
		t.Errorf("Decode() = %+v", got)
	}

	if _, err := d.New(1); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("New(1) = %v, want ErrUnknownMessage", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewDialect("dup", MessageInfo{ID: 1}, MessageInfo{ID: 1})
}

func TestUnknownEnumError(t *testing.T) {
	err := error(&UnknownEnumError{Enum: "MAV_TYPE", Value: 99})
	if got := err.Error(); got != "unknown MAV_TYPE value 99" {
		t.Errorf("Error() = %q", got)
	}
	if V1.String() != "v1" || V2.String() != "v2" || Version(0).String() != "unknown" {
		t.Error("Version.String mismatch")
	}
}

func TestCString(t *testing.T) {
	tests := []struct {
		input    []byte
		expected string
	}{
		{input: []byte("hello\x00\x00\x00"), expected: "hello"},
		{input: []byte("full"), expected: "full"},
		{input: []byte("a\x00b"), expected: "a"},
		{input: nil, expected: ""},
	}
	for _, tc := range tests {
		if got := CString(tc.input); got != tc.expected {
			t.Errorf("CString(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
