// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package typemap resolves MAVLink field declarations to the Go types the
// emitter uses, including the integer containers of enum and bitmask
// fields.
package typemap

import (
	"fmt"

	"github.com/albertocavalcante/mavgen/internal/mavbase"
	"github.com/albertocavalcante/mavgen/model"
)

// Kind classifies a resolved field.
type Kind uint8

const (
	Plain Kind = iota
	Enum
	Bitmask
)

func (k Kind) String() string {
	switch k {
	case Enum:
		return "enum"
	case Bitmask:
		return "bitmask"
	}
	return "plain"
}

// Resolution is the emitted type of one field.
type Resolution struct {
	Kind Kind

	// Wire is the declared element primitive, which governs the bytes on
	// the wire.
	Wire model.Primitive

	// Container is the element type held in Go. For plain fields it equals
	// Wire.
	Container model.Primitive

	// Enum is the referenced enum for Enum and Bitmask kinds.
	Enum *model.Enum

	// ArrayLen is the declared array length, zero for scalars.
	ArrayLen int

	// Scaled is set when the container is wider than the enum's default
	// container.
	Scaled bool

	// Signed is set when the container is a signed integer for an enum.
	Signed bool
}

// IsArray reports whether the field is an array.
func (r Resolution) IsArray() bool {
	return r.ArrayLen > 0
}

// UsesEnumType reports whether the Go element type is the enum's own named
// type. This holds when the container is the enum's default container.
func (r Resolution) UsesEnumType() bool {
	return r.Kind != Plain && !r.Scaled && !r.Signed
}

// ElemGoType returns the Go element type. enumIdent is the generated name of
// the referenced enum and is used when UsesEnumType reports true.
func (r Resolution) ElemGoType(enumIdent string) string {
	if r.UsesEnumType() {
		return enumIdent
	}
	if r.Kind == Plain {
		return mavbase.GoType(r.Wire)
	}
	return mavbase.GoType(r.Container)
}

// Mapper resolves fields against the enums of one dialect.
type Mapper struct {
	dialect *model.Dialect
}

// NewMapper returns a mapper for d.
func NewMapper(d *model.Dialect) *Mapper {
	return &Mapper{dialect: d}
}

// Resolve returns the emitted type of f. Failures are *model.DefinitionError.
func (m *Mapper) Resolve(f *model.Field) (Resolution, error) {
	r := Resolution{
		Kind:      Plain,
		Wire:      f.Type.Base,
		Container: f.Type.Base,
		ArrayLen:  f.Type.ArrayLen,
	}
	if f.Enum == "" {
		return r, nil
	}

	fail := func(format string, args ...any) (Resolution, error) {
		return Resolution{}, &model.DefinitionError{
			Dialect: m.dialect.Name,
			Element: "field " + f.Name,
			Reason:  fmt.Sprintf(format, args...),
		}
	}

	e := m.dialect.Enum(f.Enum)
	if e == nil {
		return fail("unknown enum %s", f.Enum)
	}
	r.Enum = e
	r.Kind = Enum
	if e.Bitmask {
		r.Kind = Bitmask
	}

	def, err := EnumContainer(e)
	if err != nil {
		return fail("%v", err)
	}

	declared := f.Type.Base
	if f.Container != nil {
		declared = *f.Container
	}
	switch {
	case declared.IsFloat():
		r.Container = def
		return r, nil
	case !declared.IsInteger():
		return fail("%s cannot hold enum %s", declared, e.Name)
	case declared.Size() < def.Size():
		return fail("%s cannot hold enum %s: maximum value %d needs %s", declared, e.Name, e.MaxValue(), def)
	}

	if declared.IsSigned() {
		r.Container = declared.Signed()
		r.Signed = true
	} else {
		r.Container = declared.Unsigned()
	}
	r.Scaled = r.Container.Size() > def.Size()
	return r, nil
}

// MinContainer returns the smallest unsigned integer holding v.
func MinContainer(v uint64) model.Primitive {
	switch {
	case v <= 0xFF:
		return model.Uint8
	case v <= 0xFFFF:
		return model.Uint16
	case v <= 0xFFFFFFFF:
		return model.Uint32
	}
	return model.Uint64
}

// EnumContainer returns the default container of e: the smallest unsigned
// integer holding its maximum entry value.
func EnumContainer(e *model.Enum) (model.Primitive, error) {
	p := MinContainer(e.MaxValue())
	if p.Size() == 0 {
		return model.Invalid, fmt.Errorf("enum %s: no container holds %d", e.Name, e.MaxValue())
	}
	return p, nil
}
