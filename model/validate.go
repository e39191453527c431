// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package model

import (
	"errors"
	"fmt"
)

// DefinitionError reports a malformed definition. It is always fatal for a
// generation run.
type DefinitionError struct {
	// Dialect is the dialect holding the offending element.
	Dialect string

	// Element locates the element, e.g. "message HEARTBEAT" or
	// "message HEARTBEAT field type".
	Element string

	// Reason describes the problem.
	Reason string
}

func (e *DefinitionError) Error() string {
	switch {
	case e.Dialect != "" && e.Element != "":
		return fmt.Sprintf("dialect %s: %s: %s", e.Dialect, e.Element, e.Reason)
	case e.Element != "":
		return fmt.Sprintf("%s: %s", e.Element, e.Reason)
	}
	return e.Reason
}

// IsDefinitionError reports whether err wraps a *DefinitionError.
func IsDefinitionError(err error) bool {
	var de *DefinitionError
	return errors.As(err, &de)
}

// Validate checks every dialect of p and returns all problems joined.
func (p *Protocol) Validate() error {
	var errs []error
	seen := make(map[string]bool)
	for _, d := range p.Dialects {
		if seen[d.Name] {
			errs = append(errs, &DefinitionError{Dialect: d.Name, Reason: "duplicate dialect"})
			continue
		}
		seen[d.Name] = true
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Validate checks the structural invariants of d: unique ids and names,
// extension fields trailing base fields, representable arrays and payloads,
// and resolvable enum references.
func (d *Dialect) Validate() error {
	var errs []error
	fail := func(element, format string, args ...any) {
		errs = append(errs, &DefinitionError{
			Dialect: d.Name,
			Element: element,
			Reason:  fmt.Sprintf(format, args...),
		})
	}

	enums := make(map[string]bool, len(d.Enums))
	for _, e := range d.Enums {
		if enums[e.Name] {
			fail("enum "+e.Name, "duplicate enum name")
		}
		enums[e.Name] = true
		if e.Name == "" {
			fail("enum", "empty name")
		}
	}

	ids := make(map[uint32]string, len(d.Messages))
	names := make(map[string]bool, len(d.Messages))
	for _, m := range d.Messages {
		elem := "message " + m.Name
		if prev, ok := ids[m.ID]; ok {
			fail(elem, "id %d already used by %s", m.ID, prev)
		}
		ids[m.ID] = m.Name
		if names[m.Name] {
			fail(elem, "duplicate message name")
		}
		names[m.Name] = true
		if m.ID > MaxMessageID {
			fail(elem, "id %d exceeds %d", m.ID, MaxMessageID)
		}
		if len(m.BaseFields()) == 0 {
			fail(elem, "no base fields")
		}

		fieldNames := make(map[string]bool, len(m.Fields))
		inExtensions := false
		size := 0
		for _, f := range m.Fields {
			felem := elem + " field " + f.Name
			if fieldNames[f.Name] {
				fail(felem, "duplicate field name")
			}
			fieldNames[f.Name] = true
			if f.Extension {
				inExtensions = true
			} else if inExtensions {
				fail(felem, "base field declared after extension fields")
			}
			if f.Type.Base.Size() == 0 {
				fail(felem, "invalid type %s", f.Type)
			}
			if f.Type.ArrayLen < 0 || f.Type.ArrayLen > MaxArrayLen {
				fail(felem, "array length %d exceeds %d", f.Type.ArrayLen, MaxArrayLen)
			}
			if f.Enum != "" && !enums[f.Enum] {
				fail(felem, "unknown enum %s", f.Enum)
			}
			if f.Container != nil && !f.Container.IsInteger() {
				fail(felem, "container override %s is not an integer type", *f.Container)
			}
			size += f.Type.Size()
		}
		if size > MaxPayloadLen {
			fail(elem, "payload of %d bytes exceeds %d", size, MaxPayloadLen)
		}
	}
	return errors.Join(errs...)
}
