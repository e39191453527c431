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

func (g *Generator) generateMessagesFile() ([]byte, error) {
	im := importSet{}
	im.use(RuntimeImport)

	var body bytes.Buffer
	for _, m := range g.dialect.Messages {
		g.generateMessage(&body, im, m)
	}
	return g.assemble(g.config.PackageName, im, &body)
}

func (g *Generator) generateMessage(buf *bytes.Buffer, im importSet, m *model.Message) {
	ident := g.names.Message(m.ID)
	fields := g.fields[m.ID]

	g.generateMessageStruct(buf, m, ident, fields)

	fmt.Fprintf(buf, "var _ mavlink.Message = (*%s)(nil)\n\n", ident)

	p := g.plans[m.ID]
	fmt.Fprintf(buf, "// ID returns %d.\n", m.ID)
	fmt.Fprintf(buf, "func (*%s) ID() mavlink.MessageID { return %d }\n\n", ident, m.ID)
	fmt.Fprintf(buf, "// Name returns %q.\n", m.Name)
	fmt.Fprintf(buf, "func (*%s) Name() string { return %q }\n\n", ident, m.Name)
	fmt.Fprintf(buf, "func (*%s) MinPayloadLen() int { return %d }\n\n", ident, p.MinLen)
	fmt.Fprintf(buf, "func (*%s) MaxPayloadLen() int { return %d }\n\n", ident, p.MaxLen)
	fmt.Fprintf(buf, "func (*%s) CRCExtra() uint8 { return %d }\n\n", ident, p.CRCExtra)

	g.generateEncode(buf, im, m, ident)
	g.generateDecode(buf, im, m, ident)
	g.generateClone(buf, im, ident, fields)

	fmt.Fprintf(buf, "// Reset sets every field of m to its zero value.\n")
	fmt.Fprintf(buf, "func (m *%s) Reset() { *m = %s{} }\n\n", ident, ident)

	if g.config.Features.Alloc {
		fmt.Fprintf(buf, "// MarshalPayload encodes m into a new buffer.\n")
		fmt.Fprintf(buf, "func (m *%s) MarshalPayload(v mavlink.Version) ([]byte, error) {\n", ident)
		buf.WriteString("\treturn mavlink.Marshal(m, v)\n}\n\n")
	}
	if g.config.Features.Std {
		g.generateMessageString(buf, im, m, ident, fields)
	}
}

func (g *Generator) generateMessageStruct(buf *bytes.Buffer, m *model.Message, ident string, fields []*fieldInfo) {
	doc := fmt.Sprintf("%s is the MAVLink message %s (#%d).", ident, m.Name, m.ID)
	writeDocComment(buf, "", doc)
	if desc := strings.TrimSpace(m.Description); desc != "" {
		buf.WriteString("//\n")
		writeDocComment(buf, "", desc)
	}
	if m.DefinedIn != "" {
		buf.WriteString("//\n")
		writeDocComment(buf, "", "Defined in the "+m.DefinedIn+" dialect.")
	}
	if m.WIP {
		buf.WriteString("//\n")
		writeDocComment(buf, "", "Work in progress: the definition may change without notice.")
	}
	writeDeprecated(buf, "", m.Deprecated, true)

	fmt.Fprintf(buf, "type %s struct {\n", ident)
	for i, fi := range fields {
		if i > 0 && fi.field.Extension && !fields[i-1].field.Extension {
			buf.WriteString("\n\t// Extension fields.\n\n")
		}
		g.generateField(buf, fi)
	}
	buf.WriteString("}\n\n")
}

func (g *Generator) generateField(buf *bytes.Buffer, fi *fieldInfo) {
	f := fi.field
	doc := strings.TrimSpace(f.Description)
	if f.Units != "" {
		doc = strings.TrimSpace(doc + " [" + f.Units + "]")
	}
	if doc != "" {
		writeDocComment(buf, "\t", doc)
	}

	if g.config.Features.Serde {
		fmt.Fprintf(buf, "\t%s %s `json:\"%s\"`\n", fi.ident, fi.typ, f.Name)
		return
	}
	fmt.Fprintf(buf, "\t%s %s\n", fi.ident, fi.typ)
}

func (g *Generator) generateEncode(buf *bytes.Buffer, im importSet, m *model.Message, ident string) {
	p := g.plans[m.ID]

	fmt.Fprintf(buf, "// Encode writes m to buf in wire order.")
	if m.HasExtensions() {
		buf.WriteString(" Version 1 payloads omit extension fields;\n// version 2 payloads drop trailing all-zero extension fields.")
	}
	buf.WriteString("\n")
	fmt.Fprintf(buf, "func (m *%s) Encode(buf []byte, v mavlink.Version) (int, error) {\n", ident)
	buf.WriteString("\tn, err := mavlink.CheckEncode(m, buf, v)\n")
	buf.WriteString("\tif err != nil {\n\t\treturn 0, err\n\t}\n")

	for _, s := range p.Base() {
		g.encodeField(buf, im, g.fields[m.ID][s.Index])
	}
	exts := p.Extensions()
	if len(exts) == 0 {
		buf.WriteString("\treturn n, nil\n}\n\n")
		return
	}

	buf.WriteString("\tif v == mavlink.V1 {\n\t\treturn n, nil\n\t}\n")
	offsets := make([]string, len(exts))
	for i, s := range exts {
		g.encodeField(buf, im, g.fields[m.ID][s.Index])
		offsets[i] = strconv.Itoa(s.Offset)
	}
	fmt.Fprintf(buf, "\treturn mavlink.TrimExtensions(buf[:n], %s), nil\n}\n\n", strings.Join(offsets, ", "))
}

func (g *Generator) encodeField(buf *bytes.Buffer, im importSet, fi *fieldInfo) {
	x := "m." + fi.ident
	lo, hi := fi.slot.Offset, fi.slot.End()
	wire := fi.res.Wire

	if !fi.res.IsArray() {
		fmt.Fprintf(buf, "\t%s\n", putElem(im, wire, fi.elem, x, strconv.Itoa(lo)))
		return
	}

	n := fi.res.ArrayLen
	at := elemOffset(lo, wire.Size())
	switch {
	case fi.byteCopy() && g.config.Features.Alloc:
		fmt.Fprintf(buf, "\tclear(buf[%d:%d])\n", lo, hi)
		fmt.Fprintf(buf, "\tcopy(buf[%d:%d], %s)\n", lo, hi, x)
	case fi.byteCopy():
		fmt.Fprintf(buf, "\tcopy(buf[%d:%d], %s[:])\n", lo, hi, x)
	case g.config.Features.Alloc:
		fmt.Fprintf(buf, "\tclear(buf[%d:%d])\n", lo, hi)
		fmt.Fprintf(buf, "\tfor i, x := range %s[:min(len(%s), %d)] {\n", x, x, n)
		fmt.Fprintf(buf, "\t\t%s\n\t}\n", putElem(im, wire, fi.elem, "x", at))
	default:
		fmt.Fprintf(buf, "\tfor i, x := range %s {\n", x)
		fmt.Fprintf(buf, "\t\t%s\n\t}\n", putElem(im, wire, fi.elem, "x", at))
	}
}

func (g *Generator) generateDecode(buf *bytes.Buffer, im importSet, m *model.Message, ident string) {
	p := g.plans[m.ID]

	buf.WriteString("// Decode reads m from payload.")
	if m.HasExtensions() {
		buf.WriteString(" Extension fields missing from a short payload\n// are set to zero.")
	}
	buf.WriteString("\n")
	fmt.Fprintf(buf, "func (m *%s) Decode(p []byte) error {\n", ident)
	fmt.Fprintf(buf, "\tif len(p) < %d {\n\t\treturn mavlink.ShortPayload(m, len(p))\n\t}\n", p.MinLen)
	if p.MaxLen > p.MinLen {
		fmt.Fprintf(buf, "\tif len(p) < %d {\n", p.MaxLen)
		fmt.Fprintf(buf, "\t\tvar full [%d]byte\n", p.MaxLen)
		buf.WriteString("\t\tcopy(full[:], p)\n\t\tp = full[:]\n\t}\n")
	}
	for _, s := range p.Slots {
		g.decodeField(buf, im, g.fields[m.ID][s.Index])
	}
	buf.WriteString("\treturn nil\n}\n\n")
}

func (g *Generator) decodeField(buf *bytes.Buffer, im importSet, fi *fieldInfo) {
	x := "m." + fi.ident
	lo, hi := fi.slot.Offset, fi.slot.End()
	wire := fi.res.Wire

	if !fi.res.IsArray() {
		fmt.Fprintf(buf, "\t%s = %s\n", x, getElem(im, wire, fi.elem, strconv.Itoa(lo)))
		return
	}

	n := fi.res.ArrayLen
	at := elemOffset(lo, wire.Size())
	switch {
	case fi.byteCopy() && g.config.Features.Alloc:
		fmt.Fprintf(buf, "\t%s = make([]%s, %d)\n", x, fi.elem, n)
		fmt.Fprintf(buf, "\tcopy(%s, p[%d:%d])\n", x, lo, hi)
	case fi.byteCopy():
		fmt.Fprintf(buf, "\tcopy(%s[:], p[%d:%d])\n", x, lo, hi)
	case g.config.Features.Alloc:
		fmt.Fprintf(buf, "\t%s = make([]%s, %d)\n", x, fi.elem, n)
		fmt.Fprintf(buf, "\tfor i := range %s {\n", x)
		fmt.Fprintf(buf, "\t\t%s[i] = %s\n\t}\n", x, getElem(im, wire, fi.elem, at))
	default:
		fmt.Fprintf(buf, "\tfor i := range %s {\n", x)
		fmt.Fprintf(buf, "\t\t%s[i] = %s\n\t}\n", x, getElem(im, wire, fi.elem, at))
	}
}

func (g *Generator) generateClone(buf *bytes.Buffer, im importSet, ident string, fields []*fieldInfo) {
	buf.WriteString("// Clone returns a deep copy of m.\n")
	fmt.Fprintf(buf, "func (m *%s) Clone() *%s {\n", ident, ident)
	buf.WriteString("\tc := *m\n")
	if g.config.Features.Alloc {
		for _, fi := range fields {
			if fi.res.IsArray() {
				im.use("slices")
				fmt.Fprintf(buf, "\tc.%s = slices.Clone(m.%s)\n", fi.ident, fi.ident)
			}
		}
	}
	buf.WriteString("\treturn &c\n}\n\n")
}

func (g *Generator) generateMessageString(buf *bytes.Buffer, im importSet, m *model.Message, ident string, fields []*fieldInfo) {
	im.use("fmt")

	var verbs, args []string
	for _, fi := range fields {
		name := strings.ReplaceAll(fi.field.Name, "%", "%%")
		x := "m." + fi.ident
		if fi.res.Wire == model.Char && fi.res.IsArray() && fi.res.Kind == typemap.Plain {
			if !g.config.Features.Alloc {
				x += "[:]"
			}
			verbs = append(verbs, name+":%q")
			args = append(args, "mavlink.CString("+x+")")
			continue
		}
		verbs = append(verbs, name+":%v")
		args = append(args, x)
	}

	format := strings.ReplaceAll(m.Name, "%", "%%") + "{" + strings.Join(verbs, " ") + "}"
	fmt.Fprintf(buf, "func (m *%s) String() string {\n", ident)
	fmt.Fprintf(buf, "\treturn fmt.Sprintf(%q, %s)\n}\n\n", format, strings.Join(args, ", "))
}

// elemOffset returns the byte offset expression of element i of an array
// that starts at off.
func elemOffset(off, width int) string {
	elem := "i"
	if width > 1 {
		elem = strconv.Itoa(width) + "*i"
	}
	if off == 0 {
		return elem
	}
	return strconv.Itoa(off) + "+" + elem
}

// convert returns x converted from Go type from to Go type to, or x itself
// when the types are identical.
func convert(to, from, x string) string {
	if to == from || isByte(to) && isByte(from) {
		return x
	}
	return to + "(" + x + ")"
}

func isByte(t string) bool {
	return t == mavbase.TypeByte || t == mavbase.TypeUint8
}

// putElem returns the statement writing element x of Go type elem at
// buf[off:] as wire type w.
func putElem(im importSet, w model.Primitive, elem, x, off string) string {
	switch {
	case w.Size() == 1:
		return fmt.Sprintf("buf[%s] = %s", off, convert(mavbase.TypeByte, elem, x))
	case w == model.Float:
		im.use("encoding/binary")
		im.use("math")
		return fmt.Sprintf("binary.LittleEndian.PutUint32(buf[%s:], math.Float32bits(%s))", off, convert(mavbase.TypeFloat32, elem, x))
	case w == model.Double:
		im.use("encoding/binary")
		im.use("math")
		return fmt.Sprintf("binary.LittleEndian.PutUint64(buf[%s:], math.Float64bits(%s))", off, convert(mavbase.TypeFloat64, elem, x))
	}
	im.use("encoding/binary")
	accessor := mavbase.BinaryName(w)
	return fmt.Sprintf("binary.LittleEndian.Put%s(buf[%s:], %s)", accessor, off, convert(strings.ToLower(accessor), elem, x))
}

// getElem returns the expression reading an element of Go type elem from
// p[off:] as wire type w.
func getElem(im importSet, w model.Primitive, elem, off string) string {
	switch {
	case w.Size() == 1:
		return convert(elem, mavbase.TypeByte, "p["+off+"]")
	case w == model.Float:
		im.use("encoding/binary")
		im.use("math")
		return convert(elem, mavbase.TypeFloat32, "math.Float32frombits(binary.LittleEndian.Uint32(p["+off+":]))")
	case w == model.Double:
		im.use("encoding/binary")
		im.use("math")
		return convert(elem, mavbase.TypeFloat64, "math.Float64frombits(binary.LittleEndian.Uint64(p["+off+":]))")
	}
	im.use("encoding/binary")
	accessor := mavbase.BinaryName(w)
	return convert(elem, strings.ToLower(accessor), "binary.LittleEndian."+accessor+"(p["+off+":])")
}
