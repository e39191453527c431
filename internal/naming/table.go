// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package naming

import (
	"github.com/albertocavalcante/mavgen/internal/mavbase"
	"github.com/albertocavalcante/mavgen/model"
)

// MessageReserved lists the method names every generated message carries.
var MessageReserved = []string{
	"ID", "Name", "MinPayloadLen", "MaxPayloadLen", "CRCExtra",
	"Encode", "Decode", "MarshalPayload",
	"Clone", "Reset", "String", "GoString",
	"MarshalJSON", "UnmarshalJSON", "MarshalText", "UnmarshalText",
}

// DialectReserved lists package-level names every generated dialect
// package declares.
var DialectReserved = []string{"Dialect"}

// PackageReserved lists package names generated code imports alongside
// dialect packages.
var PackageReserved = []string{"mavlink"}

// FromRawSuffix names the checked conversion function of an enum.
const FromRawSuffix = "FromRaw"

// Table holds the identifiers of one dialect. It is built once and only
// read afterwards.
type Table struct {
	dialect  string
	enums    map[string]string
	entries  map[string]map[string]string
	fromRaw  map[string]string
	messages map[uint32]string
	fields   map[uint32]map[string]string
}

// NewTable binds every name in d. Enums are bound by name, then messages by
// id, then enum entries and fields in declaration order, then derived
// function names.
func NewTable(d *model.Dialect) (*Table, error) {
	t := &Table{
		dialect:  d.Name,
		enums:    make(map[string]string, len(d.Enums)),
		entries:  make(map[string]map[string]string, len(d.Enums)),
		fromRaw:  make(map[string]string, len(d.Enums)),
		messages: make(map[uint32]string, len(d.Messages)),
		fields:   make(map[uint32]map[string]string, len(d.Messages)),
	}
	ns := NewNamespace("dialect "+d.Name, DialectReserved...)

	for _, e := range d.Enums {
		id, err := ns.Bind("enum "+e.Name, mavbase.UpperCamel(e.Name))
		if err != nil {
			return nil, err
		}
		t.enums[e.Name] = id
	}

	for _, m := range d.Messages {
		id, err := ns.Bind("message "+m.Name, mavbase.UpperCamel(m.Name))
		if err != nil {
			return nil, err
		}
		t.messages[m.ID] = id

		fields := NewNamespace("message "+m.Name, MessageReserved...)
		t.fields[m.ID] = make(map[string]string, len(m.Fields))
		for _, f := range m.Fields {
			fid, err := fields.Bind(f.Name, mavbase.UpperCamel(f.Name))
			if err != nil {
				return nil, err
			}
			t.fields[m.ID][f.Name] = fid
		}
	}

	for _, e := range d.Enums {
		t.entries[e.Name] = make(map[string]string, len(e.Entries))
		for _, entry := range e.Entries {
			if _, dup := t.entries[e.Name][entry.Name]; dup {
				continue
			}
			candidate := t.enums[e.Name] + mavbase.UpperCamel(mavbase.StripPrefix(entry.Name, e.Name))
			id, err := ns.Bind("entry "+e.Name+"."+entry.Name, candidate)
			if err != nil {
				return nil, err
			}
			t.entries[e.Name][entry.Name] = id
		}
	}

	for _, e := range d.Enums {
		id, err := ns.Bind("function "+e.Name+" "+FromRawSuffix, t.enums[e.Name]+FromRawSuffix)
		if err != nil {
			return nil, err
		}
		t.fromRaw[e.Name] = id
	}
	return t, nil
}

// Dialect returns the raw dialect name.
func (t *Table) Dialect() string {
	return t.dialect
}

// Enum returns the type name of an enum or bitmask.
func (t *Table) Enum(name string) string {
	return t.enums[name]
}

// Entry returns the constant name of an enum entry.
func (t *Table) Entry(enum, entry string) string {
	return t.entries[enum][entry]
}

// FromRaw returns the checked conversion function name of an enum.
func (t *Table) FromRaw(enum string) string {
	return t.fromRaw[enum]
}

// Message returns the type name of a message.
func (t *Table) Message(id uint32) string {
	return t.messages[id]
}

// Field returns the struct field name of a message field.
func (t *Table) Field(msgID uint32, field string) string {
	return t.fields[msgID][field]
}

// PackageNames assigns a package name to every dialect of p, keyed by
// dialect name. Dialects are bound in name order.
func PackageNames(p *model.Protocol) (map[string]string, error) {
	ns := NewPackageNamespace("packages", PackageReserved...)
	names := make(map[string]string, len(p.Dialects))
	for _, d := range p.Dialects {
		id, err := ns.Bind(d.Name, mavbase.PackageName(d.Name))
		if err != nil {
			return nil, err
		}
		names[d.Name] = id
	}
	return names, nil
}
