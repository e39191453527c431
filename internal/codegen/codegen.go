// SPDX-License-Identifier: MIT AND BSD-3-Clause
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.
//
// Code generation logic inspired by golang.org/x/tools/gopls:
// https://github.com/golang/tools/blob/master/gopls/internal/protocol/generate/output.go
// Copyright 2022 The Go Authors. All rights reserved.

// Package codegen generates Go source code for one MAVLink dialect.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"slices"
	"strings"

	"github.com/albertocavalcante/mavgen/internal/layout"
	"github.com/albertocavalcante/mavgen/internal/mavbase"
	"github.com/albertocavalcante/mavgen/internal/naming"
	"github.com/albertocavalcante/mavgen/internal/typemap"
	"github.com/albertocavalcante/mavgen/model"
)

// RuntimeImport is the import path of the package generated code depends
// on.
const RuntimeImport = "github.com/albertocavalcante/mavgen/mavlink"

// Features selects the shape of generated code. Features never change the
// wire layout or CRC-EXTRA of a message.
type Features struct {
	// Alloc turns array fields into slices and adds MarshalPayload.
	Alloc bool

	// Std adds fmt.Stringer implementations. Std implies Alloc.
	Std bool

	// Serde adds json tags with raw field names and text marshaling for
	// enums and bitmasks.
	Serde bool

	// Tests adds a codec_test.go exercising every message.
	Tests bool
}

// Normalize returns f with implied features set.
func (f Features) Normalize() Features {
	if f.Std {
		f.Alloc = true
	}
	return f
}

// String lists the enabled features, e.g. "alloc,std".
func (f Features) String() string {
	var names []string
	for _, x := range []struct {
		on   bool
		name string
	}{{f.Alloc, "alloc"}, {f.Std, "std"}, {f.Serde, "serde"}, {f.Tests, "tests"}} {
		if x.on {
			names = append(names, x.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// Config controls code generation behavior.
type Config struct {
	// PackageName is the Go package name for generated code.
	PackageName string

	// Features selects optional generated code.
	Features Features

	// Ordering selects the wire ordering of base fields.
	Ordering layout.Ordering

	// Source describes where the definitions came from (for header comment).
	Source string

	// Version is the generator version (for header comment).
	Version string
}

// Output contains the generated code files. Nil entries are not produced.
type Output struct {
	Messages []byte // Message types and codecs
	Enums    []byte // Enum and bitmask types
	Dialect  []byte // Package doc and the Dialect registry
	Tests    []byte // Codec tests
}

// Generator produces Go code for one dialect.
type Generator struct {
	dialect *model.Dialect
	config  Config
	names   *naming.Table
	plans   map[uint32]*layout.Plan

	// fields holds the resolved fields of each message in declaration
	// order.
	fields map[uint32][]*fieldInfo
}

// fieldInfo is a message field with everything needed to emit it.
type fieldInfo struct {
	field *model.Field
	slot  layout.Slot
	res   typemap.Resolution
	ident string // Go field name
	elem  string // Go element type
	typ   string // Go field type
}

func (fi *fieldInfo) byteCopy() bool {
	return fi.res.Wire.Size() == 1 && (fi.elem == mavbase.TypeByte || fi.elem == mavbase.TypeUint8)
}

// New plans and names every element of d. It fails with a
// *model.DefinitionError or *naming.CollisionError before any code is
// produced.
func New(d *model.Dialect, cfg Config) (*Generator, error) {
	cfg.Features = cfg.Features.Normalize()
	if cfg.PackageName == "" {
		cfg.PackageName = mavbase.PackageName(d.Name)
	}

	names, err := naming.NewTable(d)
	if err != nil {
		return nil, err
	}
	plans, err := layout.PlanDialect(d, cfg.Ordering)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		dialect: d,
		config:  cfg,
		names:   names,
		plans:   plans,
		fields:  make(map[uint32][]*fieldInfo, len(d.Messages)),
	}
	mapper := typemap.NewMapper(d)
	for _, m := range d.Messages {
		infos := make([]*fieldInfo, len(m.Fields))
		for _, s := range plans[m.ID].Slots {
			res, err := mapper.Resolve(s.Field)
			if err != nil {
				return nil, fmt.Errorf("message %s: %w", m.Name, err)
			}
			fi := &fieldInfo{
				field: s.Field,
				slot:  s,
				res:   res,
				ident: names.Field(m.ID, s.Field.Name),
			}
			enumIdent := ""
			if res.Enum != nil {
				enumIdent = names.Enum(res.Enum.Name)
			}
			fi.elem = res.ElemGoType(enumIdent)
			switch {
			case !res.IsArray():
				fi.typ = fi.elem
			case cfg.Features.Alloc:
				fi.typ = "[]" + fi.elem
			default:
				fi.typ = fmt.Sprintf("[%d]%s", res.ArrayLen, fi.elem)
			}
			infos[s.Index] = fi
		}
		g.fields[m.ID] = infos
	}
	return g, nil
}

// Generate produces all output files.
func (g *Generator) Generate() (*Output, error) {
	out := &Output{}
	var err error

	if len(g.dialect.Messages) > 0 {
		out.Messages, err = g.generateMessagesFile()
		if err != nil {
			return nil, fmt.Errorf("generate messages: %w", err)
		}
	}
	if len(g.dialect.Enums) > 0 {
		out.Enums, err = g.generateEnumsFile()
		if err != nil {
			return nil, fmt.Errorf("generate enums: %w", err)
		}
	}
	out.Dialect, err = g.generateDialectFile()
	if err != nil {
		return nil, fmt.Errorf("generate dialect: %w", err)
	}
	if g.config.Features.Tests {
		out.Tests, err = g.generateTestsFile()
		if err != nil {
			return nil, fmt.Errorf("generate tests: %w", err)
		}
	}
	return out, nil
}

// Plans returns the wire layouts of the dialect's messages, keyed by id.
func (g *Generator) Plans() map[uint32]*layout.Plan {
	return g.plans
}

func (g *Generator) generateDialectFile() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(g.fileHeader())

	d := g.dialect
	doc := fmt.Sprintf("Package %s implements the messages and enums of the MAVLink %s dialect", g.config.PackageName, d.Name)
	if d.Version != 0 {
		doc += fmt.Sprintf(" (version %d)", d.Version)
	}
	doc += "."
	if len(d.Includes) > 0 {
		doc += " It includes the definitions of " + strings.Join(d.Includes, ", ") + "."
	}
	writeDocComment(&buf, "", doc)
	fmt.Fprintf(&buf, "package %s\n\n", g.config.PackageName)
	fmt.Fprintf(&buf, "import %q\n\n", RuntimeImport)

	fmt.Fprintf(&buf, "// Dialect maps the message ids of %s to their types.\n", d.Name)
	fmt.Fprintf(&buf, "var Dialect = mavlink.NewDialect(%q,\n", d.Name)
	for _, m := range d.Messages {
		p := g.plans[m.ID]
		ident := g.names.Message(m.ID)
		fmt.Fprintf(&buf, "\tmavlink.MessageInfo{ID: %d, Name: %q, CRCExtra: %d, MinPayloadLen: %d, MaxPayloadLen: %d, New: func() mavlink.Message { return new(%s) }},\n",
			m.ID, m.Name, p.CRCExtra, p.MinLen, p.MaxLen, ident)
	}
	buf.WriteString(")\n")

	return format.Source(buf.Bytes())
}

func (g *Generator) fileHeader() string {
	var lines []string
	lines = append(lines, "// Code generated by mavgen. DO NOT EDIT.")
	if g.config.Version != "" {
		lines = append(lines, fmt.Sprintf("// Generator: mavgen %s", g.config.Version))
	}
	if g.config.Source != "" {
		lines = append(lines, fmt.Sprintf("// Source: %s", g.config.Source))
	}
	lines = append(lines, fmt.Sprintf("// Dialect: %s", g.dialect.Name))
	lines = append(lines, fmt.Sprintf("// Features: %s", g.config.Features))
	lines = append(lines, "", "")
	return strings.Join(lines, "\n")
}

// importSet collects the imports a file needs.
type importSet map[string]bool

func (im importSet) use(path string) {
	im[path] = true
}

func (im importSet) write(buf *bytes.Buffer) {
	if len(im) == 0 {
		return
	}
	var std, other []string
	for path := range im {
		if strings.Contains(strings.Split(path, "/")[0], ".") {
			other = append(other, path)
		} else {
			std = append(std, path)
		}
	}
	slices.Sort(std)
	slices.Sort(other)

	buf.WriteString("import (\n")
	for _, p := range std {
		fmt.Fprintf(buf, "\t%q\n", p)
	}
	if len(std) > 0 && len(other) > 0 {
		buf.WriteString("\n")
	}
	for _, p := range other {
		fmt.Fprintf(buf, "\t%q\n", p)
	}
	buf.WriteString(")\n\n")
}

// assemble joins header, package clause, imports and body.
func (g *Generator) assemble(pkg string, im importSet, body *bytes.Buffer) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(g.fileHeader())
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	im.write(&buf)
	buf.Write(body.Bytes())
	return format.Source(buf.Bytes())
}

// docWidth is the column limit for generated doc comments.
const docWidth = 80

// writeDocComment writes doc as a comment block wrapped at docWidth.
func writeDocComment(buf *bytes.Buffer, indent, doc string) {
	doc = strings.ReplaceAll(doc, "\r", "")
	width := docWidth - len(indent) - 3
	for _, line := range mavbase.WrapText(doc, width) {
		if line == "" {
			fmt.Fprintf(buf, "%s//\n", indent)
			continue
		}
		fmt.Fprintf(buf, "%s// %s\n", indent, line)
	}
}

// writeDeprecated appends a Deprecated paragraph when d is set.
func writeDeprecated(buf *bytes.Buffer, indent string, d *model.Deprecated, hasDoc bool) {
	if d == nil {
		return
	}
	if hasDoc {
		fmt.Fprintf(buf, "%s//\n", indent)
	}
	writeDocComment(buf, indent, "Deprecated: "+d.String())
}

// orderedMap maintains insertion order for deterministic output.
type orderedMap[T any] struct {
	m     map[string]T
	order []string
}

func newOrderedMap[T any]() *orderedMap[T] {
	return &orderedMap[T]{
		m: make(map[string]T),
	}
}

func (m *orderedMap[T]) set(key string, value T) {
	if _, exists := m.m[key]; !exists {
		m.order = append(m.order, key)
	}
	m.m[key] = value
}

func (m *orderedMap[T]) get(key string) T {
	return m.m[key]
}

func (m *orderedMap[T]) has(key string) bool {
	_, ok := m.m[key]
	return ok
}

// keys returns keys in insertion order.
func (m *orderedMap[T]) keys() []string {
	return slices.Clone(m.order)
}
