// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Primitive is a MAVLink scalar type.
type Primitive uint8

// MAVLink primitive types.
const (
	Invalid Primitive = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float
	Double
	Char
	// Uint8MavlinkVersion is the uint8_t_mavlink_version pseudo-type used by
	// HEARTBEAT. It is a uint8_t on the wire.
	Uint8MavlinkVersion
)

var primitiveNames = [...]string{
	Invalid:             "invalid",
	Int8:                "int8_t",
	Int16:               "int16_t",
	Int32:               "int32_t",
	Int64:               "int64_t",
	Uint8:               "uint8_t",
	Uint16:              "uint16_t",
	Uint32:              "uint32_t",
	Uint64:              "uint64_t",
	Float:               "float",
	Double:              "double",
	Char:                "char",
	Uint8MavlinkVersion: "uint8_t_mavlink_version",
}

var primitiveSizes = [...]int{
	Int8: 1, Int16: 2, Int32: 4, Int64: 8,
	Uint8: 1, Uint16: 2, Uint32: 4, Uint64: 8,
	Float: 4, Double: 8, Char: 1, Uint8MavlinkVersion: 1,
}

// ParsePrimitive parses a primitive type name as written in definitions.
func ParsePrimitive(s string) (Primitive, error) {
	for p, name := range primitiveNames {
		if p != int(Invalid) && name == s {
			return Primitive(p), nil
		}
	}
	return Invalid, fmt.Errorf("unknown primitive type %q", s)
}

// String returns the definition name (e.g., "uint16_t").
func (p Primitive) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return "Primitive(" + strconv.Itoa(int(p)) + ")"
}

// DefinitionName returns the name fed into the CRC-EXTRA computation.
// uint8_t_mavlink_version is reported as uint8_t.
func (p Primitive) DefinitionName() string {
	if p == Uint8MavlinkVersion {
		return Uint8.String()
	}
	return p.String()
}

// Size returns the width in bytes, or zero for Invalid.
func (p Primitive) Size() int {
	if int(p) < len(primitiveSizes) {
		return primitiveSizes[p]
	}
	return 0
}

// IsInteger reports whether p is an integer type (char included).
func (p Primitive) IsInteger() bool {
	switch p {
	case Float, Double, Invalid:
		return false
	}
	return true
}

// IsSigned reports whether p is a signed integer type.
func (p Primitive) IsSigned() bool {
	switch p {
	case Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

// IsFloat reports whether p is float or double.
func (p Primitive) IsFloat() bool {
	return p == Float || p == Double
}

// Unsigned returns the unsigned integer type of the same width.
func (p Primitive) Unsigned() Primitive {
	switch p.Size() {
	case 1:
		return Uint8
	case 2:
		return Uint16
	case 4:
		return Uint32
	case 8:
		return Uint64
	}
	return Invalid
}

// Signed returns the signed integer type of the same width.
func (p Primitive) Signed() Primitive {
	switch p.Size() {
	case 1:
		return Int8
	case 2:
		return Int16
	case 4:
		return Int32
	case 8:
		return Int64
	}
	return Invalid
}

// MaxArrayLen is the longest array a definition may declare; the length is
// fed into CRC-EXTRA as a single byte.
const MaxArrayLen = 255

// MavType is a declared field type: a primitive, optionally a fixed-length
// array of it.
type MavType struct {
	Base Primitive

	// ArrayLen is the declared array length, zero for scalars.
	ArrayLen int
}

// ParseType parses a declared field type such as "uint16_t" or "char[16]".
func ParseType(s string) (MavType, error) {
	s = strings.TrimSpace(s)
	base, rest, isArray := strings.Cut(s, "[")
	p, err := ParsePrimitive(base)
	if err != nil {
		return MavType{}, err
	}
	if !isArray {
		return MavType{Base: p}, nil
	}
	lenStr, ok := strings.CutSuffix(rest, "]")
	if !ok {
		return MavType{}, fmt.Errorf("malformed array type %q", s)
	}
	n, err := strconv.Atoi(lenStr)
	if err != nil || n <= 0 {
		return MavType{}, fmt.Errorf("malformed array length in %q", s)
	}
	if n > MaxArrayLen {
		return MavType{}, fmt.Errorf("array length %d in %q exceeds %d", n, s, MaxArrayLen)
	}
	return MavType{Base: p, ArrayLen: n}, nil
}

// MustParseType is like ParseType but panics on error. It is intended for
// tests and static tables.
func MustParseType(s string) MavType {
	t, err := ParseType(s)
	if err != nil {
		panic(err)
	}
	return t
}

// IsArray reports whether t is an array type.
func (t MavType) IsArray() bool {
	return t.ArrayLen > 0
}

// ElemSize returns the width of one element in bytes.
func (t MavType) ElemSize() int {
	return t.Base.Size()
}

// Size returns the total width in bytes.
func (t MavType) Size() int {
	if t.IsArray() {
		return t.Base.Size() * t.ArrayLen
	}
	return t.Base.Size()
}

// DefinitionName returns the element type name used in CRC-EXTRA.
func (t MavType) DefinitionName() string {
	return t.Base.DefinitionName()
}

// String formats t as written in definitions.
func (t MavType) String() string {
	if t.IsArray() {
		return fmt.Sprintf("%s[%d]", t.Base, t.ArrayLen)
	}
	return t.Base.String()
}
