// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package layout computes MAVLink wire layouts: the order in which fields
// are serialized, their byte offsets, payload lengths, and the CRC-EXTRA
// compatibility checksum.
//
// The planner never reorders the fields of a model.Message; it returns a
// derived order.
package layout

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/albertocavalcante/mavgen/model"
)

// Ordering selects the sort key for base fields.
type Ordering uint8

const (
	// ElementWidth sorts base fields by the width of their primitive
	// element, as deployed MAVLink implementations do.
	ElementWidth Ordering = iota

	// FieldWidth sorts base fields by their total width (element width
	// times array length).
	FieldWidth
)

// ParseOrdering parses "element-width" or "field-width". The empty string
// selects ElementWidth.
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case "", "element-width":
		return ElementWidth, nil
	case "field-width":
		return FieldWidth, nil
	}
	return 0, fmt.Errorf("unknown field ordering %q (want element-width or field-width)", s)
}

func (o Ordering) String() string {
	if o == FieldWidth {
		return "field-width"
	}
	return "element-width"
}

func (o Ordering) key(f *model.Field) int {
	if o == FieldWidth {
		return f.Type.Size()
	}
	return f.Type.ElemSize()
}

// Slot is one field placed on the wire.
type Slot struct {
	Field *model.Field

	// Index is the field's position in declaration order.
	Index int

	// Offset is the byte offset in the payload.
	Offset int

	// Size is the total width in bytes.
	Size int

	// Truncatable marks extension fields, which may be absent from a
	// payload and decode as zero.
	Truncatable bool
}

// End returns the offset just past the slot.
func (s Slot) End() int {
	return s.Offset + s.Size
}

// Plan is the wire layout of one message.
type Plan struct {
	Message *model.Message

	// Slots are in wire order.
	Slots []Slot

	// MinLen is the total width of the base fields.
	MinLen int

	// MaxLen is the total width of all fields.
	MaxLen int

	// CRCExtra is the compatibility checksum.
	CRCExtra uint8
}

// Base returns the base-field slots in wire order.
func (p *Plan) Base() []Slot {
	i := slices.IndexFunc(p.Slots, func(s Slot) bool { return s.Truncatable })
	if i < 0 {
		return p.Slots
	}
	return p.Slots[:i]
}

// Extensions returns the extension-field slots in wire order.
func (p *Plan) Extensions() []Slot {
	return p.Slots[len(p.Base()):]
}

// WireOrder returns the fields of m in wire order: base fields stably sorted
// by descending width, then extension fields in declaration order.
func WireOrder(m *model.Message, order Ordering) []*model.Field {
	base := m.BaseFields()
	slices.SortStableFunc(base, func(a, b *model.Field) int {
		return cmp.Compare(order.key(b), order.key(a))
	})
	return append(base, m.ExtensionFields()...)
}

// PlanMessage lays out m. It fails with a *model.DefinitionError when an
// array length cannot be represented in the CRC-EXTRA input or the payload
// exceeds the MAVLink limit.
func PlanMessage(m *model.Message, order Ordering) (*Plan, error) {
	if err := check(m); err != nil {
		return nil, err
	}

	index := make(map[*model.Field]int, len(m.Fields))
	for i, f := range m.Fields {
		index[f] = i
	}

	p := &Plan{Message: m}
	offset := 0
	for _, f := range WireOrder(m, order) {
		size := f.Type.Size()
		p.Slots = append(p.Slots, Slot{
			Field:       f,
			Index:       index[f],
			Offset:      offset,
			Size:        size,
			Truncatable: f.Extension,
		})
		offset += size
		if !f.Extension {
			p.MinLen = offset
		}
	}
	p.MaxLen = offset
	p.CRCExtra = crcExtra(m.Name, p.Base())
	return p, nil
}

// CRCExtra computes the compatibility checksum of m. The input is the
// message name and, for each base field in wire order, its type name, its
// name and its array length; extension fields do not contribute.
func CRCExtra(m *model.Message, order Ordering) (uint8, error) {
	p, err := PlanMessage(m, order)
	if err != nil {
		return 0, err
	}
	return p.CRCExtra, nil
}

func crcExtra(name string, base []Slot) uint8 {
	crc := NewCRC16()
	crc.AccumulateString(name + " ")
	for _, s := range base {
		f := s.Field
		crc.AccumulateString(f.Type.DefinitionName() + " ")
		crc.AccumulateString(f.Name + " ")
		if f.Type.IsArray() {
			crc.Accumulate(uint8(f.Type.ArrayLen))
		}
	}
	return crc.Fold()
}

func check(m *model.Message) error {
	size := 0
	for _, f := range m.Fields {
		if f.Type.Base.Size() == 0 {
			return &model.DefinitionError{
				Element: "message " + m.Name + " field " + f.Name,
				Reason:  fmt.Sprintf("invalid type %s", f.Type),
			}
		}
		if f.Type.ArrayLen < 0 || f.Type.ArrayLen > model.MaxArrayLen {
			return &model.DefinitionError{
				Element: "message " + m.Name + " field " + f.Name,
				Reason:  fmt.Sprintf("array length %d exceeds %d", f.Type.ArrayLen, model.MaxArrayLen),
			}
		}
		size += f.Type.Size()
	}
	if size > model.MaxPayloadLen {
		return &model.DefinitionError{
			Element: "message " + m.Name,
			Reason:  fmt.Sprintf("payload of %d bytes exceeds %d", size, model.MaxPayloadLen),
		}
	}
	return nil
}

// PlanDialect lays out every message of d, keyed by message id.
func PlanDialect(d *model.Dialect, order Ordering) (map[uint32]*Plan, error) {
	plans := make(map[uint32]*Plan, len(d.Messages))
	for _, m := range d.Messages {
		p, err := PlanMessage(m, order)
		if err != nil {
			var de *model.DefinitionError
			if errors.As(err, &de) && de.Dialect == "" {
				de.Dialect = d.Name
			}
			return nil, err
		}
		plans[m.ID] = p
	}
	return plans, nil
}
