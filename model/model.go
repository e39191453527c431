// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package model defines the in-memory representation of MAVLink protocol
// definitions: dialects, messages, fields, enums and bitmasks.
//
// A Protocol is built once by a definition parser (see internal/definitions)
// and is read-only afterwards. Every later stage of the generator derives its
// own artifacts (wire layouts, checksums, identifiers, source code) without
// mutating the model.
package model

import (
	"slices"
	"strings"
)

// MaxMessageID is the largest message id representable in a MAVLink 2 frame.
const MaxMessageID = 1<<24 - 1

// MaxPayloadLen is the largest MAVLink payload in bytes.
const MaxPayloadLen = 255

// Protocol is a set of dialects loaded together.
type Protocol struct {
	// Dialects is sorted by name.
	Dialects []*Dialect
}

// Dialect returns the dialect with the given name, or nil.
func (p *Protocol) Dialect(name string) *Dialect {
	for _, d := range p.Dialects {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// DialectNames returns the names of all dialects in order.
func (p *Protocol) DialectNames() []string {
	names := make([]string, 0, len(p.Dialects))
	for _, d := range p.Dialects {
		names = append(names, d.Name)
	}
	return names
}

// Dialect is a named collection of messages and enums.
type Dialect struct {
	// Name is the dialect name, usually the definition file name without
	// extension (e.g., "common", "ardupilotmega").
	Name string

	// Version is the declared dialect version, zero when undeclared.
	Version uint32

	// ID is the declared dialect number, zero when undeclared.
	ID uint32

	// Includes lists the names of directly included dialects.
	Includes []string

	// Messages is sorted by id. Ids are unique.
	Messages []*Message

	// Enums is sorted by name. Names are unique.
	Enums []*Enum

	// Source is the path of the definition file, for diagnostics.
	Source string
}

// Message returns the message with the given id, or nil.
func (d *Dialect) Message(id uint32) *Message {
	i, ok := slices.BinarySearchFunc(d.Messages, id, func(m *Message, id uint32) int {
		switch {
		case m.ID < id:
			return -1
		case m.ID > id:
			return 1
		}
		return 0
	})
	if !ok {
		return nil
	}
	return d.Messages[i]
}

// MessageByName returns the message with the given name, or nil.
func (d *Dialect) MessageByName(name string) *Message {
	for _, m := range d.Messages {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Enum returns the enum with the given name, or nil.
func (d *Dialect) Enum(name string) *Enum {
	i, ok := slices.BinarySearchFunc(d.Enums, name, func(e *Enum, name string) int {
		return strings.Compare(e.Name, name)
	})
	if !ok {
		return nil
	}
	return d.Enums[i]
}

// Sort orders messages by id and enums by name. Parsers call it once after
// construction.
func (d *Dialect) Sort() {
	slices.SortStableFunc(d.Messages, func(a, b *Message) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	slices.SortStableFunc(d.Enums, func(a, b *Enum) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// Message is a MAVLink message definition.
type Message struct {
	// ID is the numeric message id (0..2^24-1).
	ID uint32

	// Name is the raw message name (e.g., "HEARTBEAT").
	Name string

	// Description is the message documentation.
	Description string

	// Fields are in declaration order. Extension fields follow base fields.
	Fields []*Field

	// WIP marks a work-in-progress message.
	WIP bool

	// Deprecated is non-nil for deprecated messages.
	Deprecated *Deprecated

	// DefinedIn is the dialect that declares the message. Empty when the
	// message belongs to the dialect that holds it.
	DefinedIn string
}

// BaseFields returns the non-extension fields in declaration order.
func (m *Message) BaseFields() []*Field {
	var fields []*Field
	for _, f := range m.Fields {
		if !f.Extension {
			fields = append(fields, f)
		}
	}
	return fields
}

// ExtensionFields returns the extension fields in declaration order.
func (m *Message) ExtensionFields() []*Field {
	var fields []*Field
	for _, f := range m.Fields {
		if f.Extension {
			fields = append(fields, f)
		}
	}
	return fields
}

// HasExtensions reports whether the message declares extension fields.
func (m *Message) HasExtensions() bool {
	return slices.ContainsFunc(m.Fields, func(f *Field) bool { return f.Extension })
}

// IsV1Compatible reports whether the message id fits a MAVLink 1 frame.
func (m *Message) IsV1Compatible() bool {
	return m.ID <= 255
}

// Field is a message field.
type Field struct {
	// Name is the raw field name (e.g., "base_mode").
	Name string

	// Type is the declared wire type.
	Type MavType

	// Enum names the enum or bitmask backing this field, if any.
	Enum string

	// Container overrides the integer container used for an enum-backed
	// field. Nil means the container is derived from Type and the enum.
	Container *Primitive

	// Extension marks fields declared after the extensions marker.
	Extension bool

	// Description is the field documentation.
	Description string

	// Units is the declared unit (e.g., "cm/s"), if any.
	Units string

	// Display is the declared display hint (e.g., "bitmask"), if any.
	Display string
}

// Enum is a MAVLink enum or bitmask definition.
type Enum struct {
	Name        string
	Description string

	// Entries are in declaration order. Values need not be unique.
	Entries []*Entry

	// Bitmask marks enums whose entries are composable flags.
	Bitmask bool

	Deprecated *Deprecated

	// DefinedIn is the dialect that first declares the enum, empty when it
	// is the holding dialect.
	DefinedIn string
}

// MaxValue returns the largest entry value, or zero for an empty enum.
func (e *Enum) MaxValue() uint64 {
	var hi uint64
	for _, entry := range e.Entries {
		hi = max(hi, entry.Value)
	}
	return hi
}

// Entry returns the entry with the given name, or nil.
func (e *Enum) Entry(name string) *Entry {
	for _, entry := range e.Entries {
		if entry.Name == name {
			return entry
		}
	}
	return nil
}

// Entry is an enum entry.
type Entry struct {
	Name        string
	Value       uint64
	Description string
	Deprecated  *Deprecated
}

// Deprecated describes a deprecation notice.
type Deprecated struct {
	// Since is the date or version of deprecation (e.g., "2019-04").
	Since string

	// ReplacedBy names the replacement, if any.
	ReplacedBy string

	// Note is free-form text.
	Note string
}

// String formats the notice for documentation.
func (d *Deprecated) String() string {
	var parts []string
	if d.Since != "" {
		parts = append(parts, "since "+d.Since)
	}
	if d.ReplacedBy != "" {
		parts = append(parts, "replaced by "+d.ReplacedBy)
	}
	s := strings.Join(parts, ", ")
	if d.Note != "" {
		if s != "" {
			s += ". "
		}
		s += d.Note
	}
	return s
}
