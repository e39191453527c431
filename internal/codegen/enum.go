// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package codegen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/albertocavalcante/mavgen/internal/mavbase"
	"github.com/albertocavalcante/mavgen/internal/typemap"
	"github.com/albertocavalcante/mavgen/model"
)

// enumInfo is an enum with its generated names.
type enumInfo struct {
	enum      *model.Enum
	ident     string
	container string

	// entries holds the entries with distinct names in declaration order.
	entries []*model.Entry

	// byValue holds the first entry of every distinct value, keyed by the
	// decimal value, in declaration order.
	byValue *orderedMap[*model.Entry]
}

func (g *Generator) enumInfo(e *model.Enum) (*enumInfo, error) {
	container, err := typemap.EnumContainer(e)
	if err != nil {
		return nil, &model.DefinitionError{Dialect: g.dialect.Name, Element: "enum " + e.Name, Reason: err.Error()}
	}
	info := &enumInfo{
		enum:      e,
		ident:     g.names.Enum(e.Name),
		container: mavbase.GoType(container),
		byValue:   newOrderedMap[*model.Entry](),
	}
	names := newOrderedMap[bool]()
	for _, entry := range e.Entries {
		if names.has(entry.Name) {
			continue
		}
		names.set(entry.Name, true)
		info.entries = append(info.entries, entry)

		key := strconv.FormatUint(entry.Value, 10)
		if !info.byValue.has(key) {
			info.byValue.set(key, entry)
		}
	}
	return info, nil
}

// distinct returns the entries with distinct values, in declaration order.
func (info *enumInfo) distinct() []*model.Entry {
	var out []*model.Entry
	for _, k := range info.byValue.keys() {
		out = append(out, info.byValue.get(k))
	}
	return out
}

func (g *Generator) generateEnumsFile() ([]byte, error) {
	im := importSet{}
	var body bytes.Buffer
	for _, e := range g.dialect.Enums {
		info, err := g.enumInfo(e)
		if err != nil {
			return nil, err
		}
		g.generateEnum(&body, im, info)
	}
	return g.assemble(g.config.PackageName, im, &body)
}

func (g *Generator) generateEnum(buf *bytes.Buffer, im importSet, info *enumInfo) {
	e := info.enum
	kind := "enum"
	if e.Bitmask {
		kind = "bitmask"
	}
	writeDocComment(buf, "", fmt.Sprintf("%s is the MAVLink %s %s.", info.ident, kind, e.Name))
	if desc := strings.TrimSpace(e.Description); desc != "" {
		buf.WriteString("//\n")
		writeDocComment(buf, "", desc)
	}
	if e.DefinedIn != "" {
		buf.WriteString("//\n")
		writeDocComment(buf, "", "Defined in the "+e.DefinedIn+" dialect.")
	}
	writeDeprecated(buf, "", e.Deprecated, true)
	fmt.Fprintf(buf, "type %s %s\n\n", info.ident, info.container)

	if len(info.entries) > 0 {
		buf.WriteString("const (\n")
		for _, entry := range info.entries {
			doc := strings.TrimSpace(entry.Description)
			if doc != "" {
				writeDocComment(buf, "\t", doc)
			}
			writeDeprecated(buf, "\t", entry.Deprecated, doc != "")
			fmt.Fprintf(buf, "\t%s %s = %d\n", g.names.Entry(e.Name, entry.Name), info.ident, entry.Value)
		}
		buf.WriteString(")\n\n")
	}

	if e.Bitmask {
		g.generateBitmaskMethods(buf, im, info)
	} else {
		g.generateEnumMethods(buf, im, info)
	}
}

func (g *Generator) generateEnumMethods(buf *bytes.Buffer, im importSet, info *enumInfo) {
	e := info.enum
	distinct := info.distinct()

	fmt.Fprintf(buf, "// Valid reports whether e is a declared %s value.\n", e.Name)
	fmt.Fprintf(buf, "func (e %s) Valid() bool {\n", info.ident)
	if len(distinct) > 0 {
		buf.WriteString("\tswitch e {\n\tcase ")
		buf.WriteString(strings.Join(g.entryIdents(e, distinct), ", "))
		buf.WriteString(":\n\t\treturn true\n\t}\n")
	}
	buf.WriteString("\treturn false\n}\n\n")

	im.use(RuntimeImport)
	fromRaw := g.names.FromRaw(e.Name)
	fmt.Fprintf(buf, "// %s converts a raw value to %s. It fails with\n// *mavlink.UnknownEnumError for undeclared values.\n", fromRaw, info.ident)
	fmt.Fprintf(buf, "func %s(v uint64) (%s, error) {\n", fromRaw, info.ident)
	fmt.Fprintf(buf, "\te := %s(v)\n", info.ident)
	buf.WriteString("\tif uint64(e) != v || !e.Valid() {\n")
	fmt.Fprintf(buf, "\t\treturn 0, &mavlink.UnknownEnumError{Enum: %q, Value: v}\n\t}\n", e.Name)
	buf.WriteString("\treturn e, nil\n}\n\n")

	if g.config.Features.Std {
		im.use("fmt")
		fmt.Fprintf(buf, "func (e %s) String() string {\n", info.ident)
		g.writeNameSwitch(buf, e, distinct, "\t\treturn %q\n")
		fmt.Fprintf(buf, "\treturn fmt.Sprintf(\"%s(%%d)\", uint64(e))\n}\n\n", e.Name)
	}

	if g.config.Features.Serde {
		im.use("fmt")
		im.use("strconv")
		fmt.Fprintf(buf, "// MarshalText returns the entry name of e, or its decimal value when e is\n// undeclared.\n")
		fmt.Fprintf(buf, "func (e %s) MarshalText() ([]byte, error) {\n", info.ident)
		g.writeNameSwitch(buf, e, distinct, "\t\treturn []byte(%q), nil\n")
		buf.WriteString("\treturn strconv.AppendUint(nil, uint64(e), 10), nil\n}\n\n")

		fmt.Fprintf(buf, "// UnmarshalText accepts an entry name or a decimal value.\n")
		fmt.Fprintf(buf, "func (e *%s) UnmarshalText(text []byte) error {\n", info.ident)
		if len(info.entries) > 0 {
			buf.WriteString("\tswitch string(text) {\n")
			for _, entry := range info.entries {
				fmt.Fprintf(buf, "\tcase %q:\n\t\t*e = %s\n\t\treturn nil\n", entry.Name, g.names.Entry(e.Name, entry.Name))
			}
			buf.WriteString("\t}\n")
		}
		fmt.Fprintf(buf, "\tv, err := strconv.ParseUint(string(text), 10, %d)\n", bitSize(info.container))
		buf.WriteString("\tif err != nil {\n")
		fmt.Fprintf(buf, "\t\treturn fmt.Errorf(\"unknown %s name %%q\", text)\n\t}\n", e.Name)
		fmt.Fprintf(buf, "\t*e = %s(v)\n\treturn nil\n}\n\n", info.ident)
	}
}

func (g *Generator) generateBitmaskMethods(buf *bytes.Buffer, im importSet, info *enumInfo) {
	e := info.enum
	var flags []*model.Entry
	for _, entry := range info.distinct() {
		if entry.Value != 0 {
			flags = append(flags, entry)
		}
	}

	fmt.Fprintf(buf, "// Valid reports whether every bit set in b belongs to a declared %s flag.\n", e.Name)
	fmt.Fprintf(buf, "func (b %s) Valid() bool {\n", info.ident)
	if len(flags) > 0 {
		fmt.Fprintf(buf, "\treturn b&^(%s) == 0\n}\n\n", strings.Join(g.entryIdents(e, flags), " | "))
	} else {
		buf.WriteString("\treturn b == 0\n}\n\n")
	}

	fmt.Fprintf(buf, "// Has reports whether every bit of flag is set in b.\n")
	fmt.Fprintf(buf, "func (b %s) Has(flag %s) bool { return b&flag == flag }\n\n", info.ident, info.ident)

	fromRaw := g.names.FromRaw(e.Name)
	fmt.Fprintf(buf, "// %s converts a raw value to %s. Undeclared bits are kept.\n", fromRaw, info.ident)
	fmt.Fprintf(buf, "func %s(v uint64) %s { return %s(v) }\n\n", fromRaw, info.ident, info.ident)

	if !g.config.Features.Std && !g.config.Features.Serde {
		return
	}

	im.use("strings")
	fmt.Fprintf(buf, "// names returns the names of the declared flags set in b and the\n// remaining undeclared bits.\n")
	fmt.Fprintf(buf, "func (b %s) names() ([]string, %s) {\n", info.ident, info.ident)
	buf.WriteString("\tvar names []string\n\trest := b\n")
	buf.WriteString("\tfor _, f := range [...]struct {\n")
	fmt.Fprintf(buf, "\t\tv    %s\n\t\tname string\n\t}{\n", info.ident)
	for _, entry := range flags {
		fmt.Fprintf(buf, "\t\t{%s, %q},\n", g.names.Entry(e.Name, entry.Name), entry.Name)
	}
	buf.WriteString("\t} {\n")
	buf.WriteString("\t\tif b&f.v == f.v {\n\t\t\tnames = append(names, f.name)\n\t\t\trest &^= f.v\n\t\t}\n\t}\n")
	buf.WriteString("\treturn names, rest\n}\n\n")

	if g.config.Features.Std {
		im.use("fmt")
		fmt.Fprintf(buf, "func (b %s) String() string {\n", info.ident)
		buf.WriteString("\tnames, rest := b.names()\n")
		buf.WriteString("\tif rest != 0 || len(names) == 0 {\n")
		buf.WriteString("\t\tnames = append(names, fmt.Sprintf(\"%#x\", uint64(rest)))\n\t}\n")
		buf.WriteString("\treturn strings.Join(names, \"|\")\n}\n\n")
	}

	if g.config.Features.Serde {
		im.use("fmt")
		im.use("strconv")
		buf.WriteString("// MarshalText returns the set flags joined by \"|\". Undeclared bits are\n// written as one decimal value.\n")
		fmt.Fprintf(buf, "func (b %s) MarshalText() ([]byte, error) {\n", info.ident)
		buf.WriteString("\tnames, rest := b.names()\n")
		buf.WriteString("\tif rest != 0 || len(names) == 0 {\n")
		buf.WriteString("\t\tnames = append(names, strconv.FormatUint(uint64(rest), 10))\n\t}\n")
		buf.WriteString("\treturn []byte(strings.Join(names, \"|\")), nil\n}\n\n")

		buf.WriteString("// UnmarshalText accepts flag names and decimal values joined by \"|\".\n")
		fmt.Fprintf(buf, "func (b *%s) UnmarshalText(text []byte) error {\n", info.ident)
		fmt.Fprintf(buf, "\tvar v %s\n", info.ident)
		buf.WriteString("\tfor _, part := range strings.Split(string(text), \"|\") {\n")
		buf.WriteString("\t\tswitch part {\n")
		for _, entry := range info.entries {
			fmt.Fprintf(buf, "\t\tcase %q:\n\t\t\tv |= %s\n", entry.Name, g.names.Entry(e.Name, entry.Name))
		}
		buf.WriteString("\t\tdefault:\n")
		fmt.Fprintf(buf, "\t\t\tn, err := strconv.ParseUint(part, 10, %d)\n", bitSize(info.container))
		buf.WriteString("\t\t\tif err != nil {\n")
		fmt.Fprintf(buf, "\t\t\t\treturn fmt.Errorf(\"unknown %s flag %%q\", part)\n\t\t\t}\n", e.Name)
		fmt.Fprintf(buf, "\t\t\tv |= %s(n)\n\t\t}\n\t}\n", info.ident)
		buf.WriteString("\t*b = v\n\treturn nil\n}\n\n")
	}
}

// writeNameSwitch writes a switch over the distinct values of e; format
// receives the raw entry name.
func (g *Generator) writeNameSwitch(buf *bytes.Buffer, e *model.Enum, distinct []*model.Entry, format string) {
	if len(distinct) == 0 {
		return
	}
	buf.WriteString("\tswitch e {\n")
	for _, entry := range distinct {
		fmt.Fprintf(buf, "\tcase %s:\n", g.names.Entry(e.Name, entry.Name))
		fmt.Fprintf(buf, format, entry.Name)
	}
	buf.WriteString("\t}\n")
}

func (g *Generator) entryIdents(e *model.Enum, entries []*model.Entry) []string {
	idents := make([]string, len(entries))
	for i, entry := range entries {
		idents[i] = g.names.Entry(e.Name, entry.Name)
	}
	return idents
}

// bitSize returns the bit size of an unsigned Go integer type.
func bitSize(goType string) int {
	switch goType {
	case mavbase.TypeUint8:
		return 8
	case mavbase.TypeUint16:
		return 16
	case mavbase.TypeUint32:
		return 32
	}
	return 64
}
