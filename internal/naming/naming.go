// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package naming maps raw MAVLink names to Go identifiers that are valid,
// avoid reserved names, and are unique within their namespace.
//
// Names are first converted (see mavbase.UpperCamel and mavbase.PackageName),
// then fixed up: a leading digit gets an "X" prefix, an empty name becomes
// "X", and a reserved name gets a "_" suffix. A converted name already bound
// to a different raw name gets one more "_" until it is free, at most
// MaxEscapes times; beyond that the binding fails with a *CollisionError.
package naming

import (
	"fmt"
	"go/token"
	"unicode"
	"unicode/utf8"

	"github.com/albertocavalcante/mavgen/internal/mavbase"
)

// Escape is appended to reserved or colliding identifiers.
const Escape = "_"

// MaxEscapes bounds the collision escapes appended to one identifier.
const MaxEscapes = 3

// CollisionError reports two raw names that cannot be given distinct
// identifiers.
type CollisionError struct {
	Namespace string
	Ident     string
	First     string
	Second    string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: %s and %s both map to identifier %s", e.Namespace, e.First, e.Second, e.Ident)
}

// Namespace binds raw names to unique identifiers.
type Namespace struct {
	name     string
	reserved map[string]bool
	fix      func(string) string
	byIdent  map[string]string
	byRaw    map[string]string
}

// NewNamespace returns a namespace of exported Go identifiers. reserved
// names are never handed out unescaped.
func NewNamespace(name string, reserved ...string) *Namespace {
	return newNamespace(name, exported, reserved)
}

// NewPackageNamespace returns a namespace of Go package names. Go keywords
// are always reserved.
func NewPackageNamespace(name string, reserved ...string) *Namespace {
	return newNamespace(name, packageName, append(reserved, keywords()...))
}

func newNamespace(name string, fix func(string) string, reserved []string) *Namespace {
	ns := &Namespace{
		name:     name,
		reserved: make(map[string]bool, len(reserved)),
		fix:      fix,
		byIdent:  make(map[string]string),
		byRaw:    make(map[string]string),
	}
	for _, r := range reserved {
		ns.reserved[r] = true
	}
	return ns
}

// Bind returns the identifier for raw. candidate is raw already converted to
// the namespace's naming convention. Binding the same raw name twice returns
// the first identifier.
func (ns *Namespace) Bind(raw, candidate string) (string, error) {
	if id, ok := ns.byRaw[raw]; ok {
		return id, nil
	}
	id := ns.fix(candidate)
	if ns.reserved[id] {
		id += Escape
	}
	base := id
	for n := 0; ns.taken(id); n++ {
		if n == MaxEscapes {
			first := ns.byIdent[base]
			if first == "" {
				first = base
			}
			return "", &CollisionError{Namespace: ns.name, Ident: base, First: first, Second: raw}
		}
		id += Escape
	}
	ns.byIdent[id] = raw
	ns.byRaw[raw] = id
	return id, nil
}

func (ns *Namespace) taken(id string) bool {
	_, bound := ns.byIdent[id]
	return bound || ns.reserved[id]
}

// Lookup returns the identifier bound to raw.
func (ns *Namespace) Lookup(raw string) (string, bool) {
	id, ok := ns.byRaw[raw]
	return id, ok
}

// Len returns the number of bindings.
func (ns *Namespace) Len() int {
	return len(ns.byRaw)
}

// Sanitize converts an already-cased name into an exported identifier.
func Sanitize(name string) string {
	return exported(name)
}

func exported(name string) string {
	id := mavbase.ExportName(name)
	if r, _ := utf8.DecodeRuneInString(id); !unicode.IsUpper(r) {
		id = "X" + id
	}
	return id
}

func packageName(name string) string {
	if name == "" {
		return "x"
	}
	if r, _ := utf8.DecodeRuneInString(name); !unicode.IsLetter(r) {
		return "x" + name
	}
	return name
}

func keywords() []string {
	var kw []string
	for tok := token.BREAK; tok <= token.VAR; tok++ {
		if token.IsKeyword(tok.String()) {
			kw = append(kw, tok.String())
		}
	}
	return kw
}
