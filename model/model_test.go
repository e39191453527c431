// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.

package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		expected MavType
		size     int
		wantErr  bool
	}{
		{input: "uint8_t", expected: MavType{Base: Uint8}, size: 1},
		{input: "int16_t", expected: MavType{Base: Int16}, size: 2},
		{input: "float", expected: MavType{Base: Float}, size: 4},
		{input: "double", expected: MavType{Base: Double}, size: 8},
		{input: "char[16]", expected: MavType{Base: Char, ArrayLen: 16}, size: 16},
		{input: "uint16_t[40]", expected: MavType{Base: Uint16, ArrayLen: 40}, size: 80},
		{input: "uint8_t_mavlink_version", expected: MavType{Base: Uint8MavlinkVersion}, size: 1},
		{input: " uint32_t ", expected: MavType{Base: Uint32}, size: 4},
		{input: "uint8_t[255]", expected: MavType{Base: Uint8, ArrayLen: 255}, size: 255},
		{input: "uint8_t[256]", wantErr: true},
		{input: "uint8_t[0]", wantErr: true},
		{input: "uint8_t[4", wantErr: true},
		{input: "int128_t", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseType(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseType(%q) = %v, want error", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseType(%q): %v", tc.input, err)
			}
			if got != tc.expected {
				t.Errorf("ParseType(%q) = %+v, want %+v", tc.input, got, tc.expected)
			}
			if got.Size() != tc.size {
				t.Errorf("ParseType(%q).Size() = %d, want %d", tc.input, got.Size(), tc.size)
			}
		})
	}
}

func TestMavType_String(t *testing.T) {
	for _, s := range []string{"uint8_t", "char[16]", "double", "int32_t[3]", "uint8_t_mavlink_version"} {
		if got := MustParseType(s).String(); got != s {
			t.Errorf("String() = %q, want %q", got, s)
		}
	}
}

func TestPrimitive_DefinitionName(t *testing.T) {
	if got := Uint8MavlinkVersion.DefinitionName(); got != "uint8_t" {
		t.Errorf("DefinitionName() = %q, want uint8_t", got)
	}
	if got := Char.DefinitionName(); got != "char" {
		t.Errorf("DefinitionName() = %q, want char", got)
	}
}

func TestPrimitive_Classification(t *testing.T) {
	tests := []struct {
		p                 Primitive
		integer, signed   bool
		unsigned, signedT Primitive
	}{
		{p: Int8, integer: true, signed: true, unsigned: Uint8, signedT: Int8},
		{p: Uint16, integer: true, unsigned: Uint16, signedT: Int16},
		{p: Int64, integer: true, signed: true, unsigned: Uint64, signedT: Int64},
		{p: Char, integer: true, unsigned: Uint8, signedT: Int8},
		{p: Float, unsigned: Uint32, signedT: Int32},
		{p: Double, unsigned: Uint64, signedT: Int64},
	}
	for _, tc := range tests {
		t.Run(tc.p.String(), func(t *testing.T) {
			if got := tc.p.IsInteger(); got != tc.integer {
				t.Errorf("IsInteger() = %v, want %v", got, tc.integer)
			}
			if got := tc.p.IsSigned(); got != tc.signed {
				t.Errorf("IsSigned() = %v, want %v", got, tc.signed)
			}
			if got := tc.p.Unsigned(); got != tc.unsigned {
				t.Errorf("Unsigned() = %v, want %v", got, tc.unsigned)
			}
			if got := tc.p.Signed(); got != tc.signedT {
				t.Errorf("Signed() = %v, want %v", got, tc.signedT)
			}
		})
	}
}

func testDialect() *Dialect {
	d := &Dialect{
		Name: "test",
		Messages: []*Message{
			{
				ID:   300,
				Name: "EXTENDED",
				Fields: []*Field{
					{Name: "a", Type: MustParseType("uint8_t")},
					{Name: "b", Type: MustParseType("uint8_t"), Extension: true},
				},
			},
			{
				ID:   0,
				Name: "HEARTBEAT",
				Fields: []*Field{
					{Name: "type", Type: MustParseType("uint8_t"), Enum: "MAV_TYPE"},
					{Name: "custom_mode", Type: MustParseType("uint32_t")},
				},
			},
		},
		Enums: []*Enum{
			{Name: "MAV_TYPE", Entries: []*Entry{{Name: "MAV_TYPE_GENERIC", Value: 0}, {Name: "MAV_TYPE_GCS", Value: 6}}},
			{Name: "MAV_MODE_FLAG", Bitmask: true, Entries: []*Entry{{Name: "MAV_MODE_FLAG_SAFETY_ARMED", Value: 128}}},
		},
	}
	d.Sort()
	return d
}

func TestDialect_Lookup(t *testing.T) {
	d := testDialect()

	var ids []uint32
	for _, m := range d.Messages {
		ids = append(ids, m.ID)
	}
	if diff := cmp.Diff([]uint32{0, 300}, ids); diff != "" {
		t.Errorf("message order mismatch (-want +got):\n%s", diff)
	}
	if d.Enums[0].Name != "MAV_MODE_FLAG" {
		t.Errorf("enums not sorted: first is %s", d.Enums[0].Name)
	}

	if m := d.Message(300); m == nil || m.Name != "EXTENDED" {
		t.Errorf("Message(300) = %v", m)
	}
	if m := d.Message(7); m != nil {
		t.Errorf("Message(7) = %v, want nil", m)
	}
	if m := d.MessageByName("HEARTBEAT"); m == nil || m.ID != 0 {
		t.Errorf("MessageByName(HEARTBEAT) = %v", m)
	}
	if e := d.Enum("MAV_TYPE"); e == nil || e.MaxValue() != 6 {
		t.Errorf("Enum(MAV_TYPE) = %v", e)
	}
	if e := d.Enum("MISSING"); e != nil {
		t.Errorf("Enum(MISSING) = %v, want nil", e)
	}
}

func TestMessage_Fields(t *testing.T) {
	m := testDialect().Message(300)

	if got := len(m.BaseFields()); got != 1 {
		t.Errorf("BaseFields() has %d fields, want 1", got)
	}
	if got := len(m.ExtensionFields()); got != 1 {
		t.Errorf("ExtensionFields() has %d fields, want 1", got)
	}
	if !m.HasExtensions() {
		t.Error("HasExtensions() = false, want true")
	}
	if m.IsV1Compatible() {
		t.Error("IsV1Compatible() = true for id 300")
	}
}

func TestDialect_Validate(t *testing.T) {
	if err := testDialect().Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(d *Dialect)
		reason string
	}{
		{
			name: "duplicate id",
			mutate: func(d *Dialect) {
				d.Messages = append(d.Messages, &Message{ID: 0, Name: "OTHER", Fields: []*Field{{Name: "x", Type: MustParseType("uint8_t")}}})
			},
			reason: "already used by HEARTBEAT",
		},
		{
			name: "base after extension",
			mutate: func(d *Dialect) {
				m := d.Message(300)
				m.Fields = append(m.Fields, &Field{Name: "c", Type: MustParseType("uint8_t")})
			},
			reason: "base field declared after extension fields",
		},
		{
			name: "oversized array",
			mutate: func(d *Dialect) {
				m := d.Message(0)
				m.Fields = append(m.Fields, &Field{Name: "big", Type: MavType{Base: Uint8, ArrayLen: 300}})
			},
			reason: "array length 300 exceeds 255",
		},
		{
			name: "oversized payload",
			mutate: func(d *Dialect) {
				m := d.Message(0)
				m.Fields = append(m.Fields, &Field{Name: "big", Type: MavType{Base: Uint64, ArrayLen: 40}})
			},
			reason: "payload of 325 bytes exceeds 255",
		},
		{
			name: "unknown enum",
			mutate: func(d *Dialect) {
				d.Message(0).Fields[1].Enum = "NOPE"
			},
			reason: "unknown enum NOPE",
		},
		{
			name: "duplicate field",
			mutate: func(d *Dialect) {
				m := d.Message(0)
				m.Fields = append(m.Fields, &Field{Name: "type", Type: MustParseType("uint8_t")})
			},
			reason: "duplicate field name",
		},
		{
			name: "float container",
			mutate: func(d *Dialect) {
				p := Float
				d.Message(0).Fields[0].Container = &p
			},
			reason: "is not an integer type",
		},
		{
			name: "id too large",
			mutate: func(d *Dialect) {
				d.Message(300).ID = MaxMessageID + 1
			},
			reason: "exceeds 16777215",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := testDialect()
			tc.mutate(d)
			err := d.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !IsDefinitionError(err) {
				t.Errorf("error %v is not a *DefinitionError", err)
			}
			if !strings.Contains(err.Error(), tc.reason) {
				t.Errorf("error %q does not mention %q", err, tc.reason)
			}
		})
	}
}

func TestProtocol_Validate(t *testing.T) {
	p := &Protocol{Dialects: []*Dialect{testDialect(), testDialect()}}
	err := p.Validate()
	var de *DefinitionError
	if !errors.As(err, &de) || de.Reason != "duplicate dialect" {
		t.Errorf("Validate() = %v, want duplicate dialect error", err)
	}
	if got := p.DialectNames(); len(got) != 2 {
		t.Errorf("DialectNames() = %v", got)
	}
	if p.Dialect("test") == nil {
		t.Error("Dialect(test) = nil")
	}
}

func TestDeprecated_String(t *testing.T) {
	tests := []struct {
		d        Deprecated
		expected string
	}{
		{d: Deprecated{Since: "2019-04", ReplacedBy: "COMMAND_INT"}, expected: "since 2019-04, replaced by COMMAND_INT"},
		{d: Deprecated{Note: "do not use"}, expected: "do not use"},
		{d: Deprecated{Since: "2020-01", Note: "gone"}, expected: "since 2020-01. gone"},
	}
	for _, tc := range tests {
		if got := tc.d.String(); got != tc.expected {
			t.Errorf("String() = %q, want %q", got, tc.expected)
		}
	}
}
