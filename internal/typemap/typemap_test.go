// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package typemap

import (
	"math"
	"strings"
	"testing"

	"github.com/albertocavalcante/mavgen/model"
)

func enum(name string, bitmask bool, values ...uint64) *model.Enum {
	e := &model.Enum{Name: name, Bitmask: bitmask}
	for i, v := range values {
		e.Entries = append(e.Entries, &model.Entry{Name: name + "_" + string(rune('A'+i)), Value: v})
	}
	return e
}

func testDialect() *model.Dialect {
	d := &model.Dialect{
		Name: "test",
		Enums: []*model.Enum{
			enum("SMALL", false, 0, 1, 3),
			enum("WIDE", false, 0, math.MaxUint32),
			enum("MEDIUM", false, 1, 300),
			enum("HUGE", false, 1, math.MaxUint32+1),
			enum("FLAGS", true, 1, 2, 4, 128),
		},
	}
	d.Sort()
	return d
}

func prim(p model.Primitive) *model.Primitive {
	return &p
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		field     *model.Field
		kind      Kind
		container model.Primitive
		arrayLen  int
		scaled    bool
		signed    bool
		goType    string
	}{
		{
			name:      "plain scalar",
			field:     &model.Field{Name: "x", Type: model.MustParseType("int32_t")},
			kind:      Plain,
			container: model.Int32,
			goType:    "int32",
		},
		{
			name:      "plain char array",
			field:     &model.Field{Name: "x", Type: model.MustParseType("char[16]")},
			kind:      Plain,
			container: model.Char,
			arrayLen:  16,
			goType:    "byte",
		},
		{
			name:      "max uint32 enum in uint32_t",
			field:     &model.Field{Name: "x", Type: model.MustParseType("uint32_t"), Enum: "WIDE"},
			kind:      Enum,
			container: model.Uint32,
			goType:    "Wide",
		},
		{
			name:      "array of small enum",
			field:     &model.Field{Name: "x", Type: model.MustParseType("uint8_t[2]"), Enum: "SMALL"},
			kind:      Enum,
			container: model.Uint8,
			arrayLen:  2,
			goType:    "Small",
		},
		{
			name:      "scaled container",
			field:     &model.Field{Name: "x", Type: model.MustParseType("uint32_t"), Enum: "SMALL"},
			kind:      Enum,
			container: model.Uint32,
			scaled:    true,
			goType:    "uint32",
		},
		{
			name:      "signed container",
			field:     &model.Field{Name: "x", Type: model.MustParseType("int8_t"), Enum: "SMALL"},
			kind:      Enum,
			container: model.Int8,
			signed:    true,
			goType:    "int8",
		},
		{
			name:      "signed and scaled",
			field:     &model.Field{Name: "x", Type: model.MustParseType("int32_t"), Enum: "MEDIUM"},
			kind:      Enum,
			container: model.Int32,
			scaled:    true,
			signed:    true,
			goType:    "int32",
		},
		{
			name:      "bitmask",
			field:     &model.Field{Name: "x", Type: model.MustParseType("uint8_t"), Enum: "FLAGS"},
			kind:      Bitmask,
			container: model.Uint8,
			goType:    "Flags",
		},
		{
			name:      "explicit override",
			field:     &model.Field{Name: "x", Type: model.MustParseType("uint8_t"), Enum: "SMALL", Container: prim(model.Uint16)},
			kind:      Enum,
			container: model.Uint16,
			scaled:    true,
			goType:    "uint16",
		},
		{
			name:      "float keeps default container",
			field:     &model.Field{Name: "x", Type: model.MustParseType("float"), Enum: "MEDIUM"},
			kind:      Enum,
			container: model.Uint16,
			goType:    "Medium",
		},
		{
			name:      "uint64 enum",
			field:     &model.Field{Name: "x", Type: model.MustParseType("uint64_t"), Enum: "HUGE"},
			kind:      Enum,
			container: model.Uint64,
			goType:    "Huge",
		},
	}

	m := NewMapper(testDialect())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := m.Resolve(tc.field)
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if r.Kind != tc.kind {
				t.Errorf("Kind = %v, want %v", r.Kind, tc.kind)
			}
			if r.Container != tc.container {
				t.Errorf("Container = %v, want %v", r.Container, tc.container)
			}
			if r.Wire != tc.field.Type.Base {
				t.Errorf("Wire = %v, want %v", r.Wire, tc.field.Type.Base)
			}
			if r.ArrayLen != tc.arrayLen || r.IsArray() != (tc.arrayLen > 0) {
				t.Errorf("ArrayLen = %d, want %d", r.ArrayLen, tc.arrayLen)
			}
			if r.Scaled != tc.scaled {
				t.Errorf("Scaled = %v, want %v", r.Scaled, tc.scaled)
			}
			if r.Signed != tc.signed {
				t.Errorf("Signed = %v, want %v", r.Signed, tc.signed)
			}
			ident := ""
			if r.Enum != nil {
				ident = strings.ToUpper(r.Enum.Name[:1]) + strings.ToLower(r.Enum.Name[1:])
			}
			if got := r.ElemGoType(ident); got != tc.goType {
				t.Errorf("ElemGoType() = %q, want %q", got, tc.goType)
			}
		})
	}
}

func TestResolve_ContainerSufficiency(t *testing.T) {
	d := testDialect()
	m := NewMapper(d)
	for _, e := range d.Enums {
		for _, typ := range []string{"uint8_t", "uint16_t", "uint32_t", "uint64_t", "int8_t", "int16_t", "int32_t", "int64_t"} {
			f := &model.Field{Name: "x", Type: model.MustParseType(typ), Enum: e.Name}
			r, err := m.Resolve(f)
			if err != nil {
				continue
			}
			bits := uint(r.Container.Size() * 8)
			if bits < 64 && e.MaxValue() >= 1<<bits {
				t.Errorf("%s in %s: container %v cannot hold %d", e.Name, typ, r.Container, e.MaxValue())
			}
		}
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name   string
		field  *model.Field
		reason string
	}{
		{
			name:   "unknown enum",
			field:  &model.Field{Name: "x", Type: model.MustParseType("uint8_t"), Enum: "NOPE"},
			reason: "unknown enum NOPE",
		},
		{
			name:   "declared type too narrow",
			field:  &model.Field{Name: "x", Type: model.MustParseType("uint8_t"), Enum: "MEDIUM"},
			reason: "uint8_t cannot hold enum MEDIUM: maximum value 300 needs uint16_t",
		},
		{
			name:   "override too narrow",
			field:  &model.Field{Name: "x", Type: model.MustParseType("uint32_t"), Enum: "WIDE", Container: prim(model.Uint16)},
			reason: "uint16_t cannot hold enum WIDE",
		},
		{
			name:   "signed too narrow",
			field:  &model.Field{Name: "x", Type: model.MustParseType("int32_t"), Enum: "HUGE"},
			reason: "int32_t cannot hold enum HUGE",
		},
	}

	m := NewMapper(testDialect())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Resolve(tc.field)
			if err == nil {
				t.Fatal("Resolve() = nil error")
			}
			if !model.IsDefinitionError(err) {
				t.Errorf("error %v is not a definition error", err)
			}
			if !strings.Contains(err.Error(), tc.reason) {
				t.Errorf("error %q does not mention %q", err, tc.reason)
			}
		})
	}
}

func TestMinContainer(t *testing.T) {
	tests := []struct {
		v    uint64
		want model.Primitive
	}{
		{v: 0, want: model.Uint8},
		{v: 255, want: model.Uint8},
		{v: 256, want: model.Uint16},
		{v: 65535, want: model.Uint16},
		{v: 65536, want: model.Uint32},
		{v: math.MaxUint32, want: model.Uint32},
		{v: math.MaxUint32 + 1, want: model.Uint64},
		{v: math.MaxUint64, want: model.Uint64},
	}
	for _, tc := range tests {
		if got := MinContainer(tc.v); got != tc.want {
			t.Errorf("MinContainer(%d) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestKind_String(t *testing.T) {
	for k, want := range map[Kind]string{Plain: "plain", Enum: "enum", Bitmask: "bitmask"} {
		if got := k.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
