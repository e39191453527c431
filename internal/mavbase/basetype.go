// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package mavbase provides the Go-side classification of MAVLink primitive
// types and the name transformations shared by the sanitizer and the
// emitter.
package mavbase

import "github.com/albertocavalcante/mavgen/model"

// Go type names for MAVLink primitives.
const (
	TypeInt8    = "int8"
	TypeInt16   = "int16"
	TypeInt32   = "int32"
	TypeInt64   = "int64"
	TypeUint8   = "uint8"
	TypeUint16  = "uint16"
	TypeUint32  = "uint32"
	TypeUint64  = "uint64"
	TypeFloat32 = "float32"
	TypeFloat64 = "float64"
	TypeByte    = "byte"
)

var goTypes = map[model.Primitive]string{
	model.Int8:                TypeInt8,
	model.Int16:               TypeInt16,
	model.Int32:               TypeInt32,
	model.Int64:               TypeInt64,
	model.Uint8:               TypeUint8,
	model.Uint16:              TypeUint16,
	model.Uint32:              TypeUint32,
	model.Uint64:              TypeUint64,
	model.Float:               TypeFloat32,
	model.Double:              TypeFloat64,
	model.Char:                TypeByte,
	model.Uint8MavlinkVersion: TypeUint8,
}

// GoType returns the Go type for a primitive, or "" for Invalid.
func GoType(p model.Primitive) string {
	return goTypes[p]
}

// BinaryName returns the encoding/binary accessor suffix for the unsigned
// integer of p's width ("Uint16", "Uint32", "Uint64"). Single-byte
// primitives return "" since they are read and written directly.
func BinaryName(p model.Primitive) string {
	switch p.Size() {
	case 2:
		return "Uint16"
	case 4:
		return "Uint32"
	case 8:
		return "Uint64"
	}
	return ""
}

// IsByteLike reports whether p maps to a Go byte-sized unsigned type that
// can be copied with copy() into and out of a payload.
func IsByteLike(p model.Primitive) bool {
	switch p {
	case model.Uint8, model.Char, model.Uint8MavlinkVersion:
		return true
	}
	return false
}
