// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package codegen

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/albertocavalcante/mavgen/internal/typemap"
	"github.com/albertocavalcante/mavgen/model"
)

// Generated test functions use "Test_" names, which the sanitizer never
// produces, so they cannot clash with package identifiers.

func (g *Generator) generateTestsFile() ([]byte, error) {
	im := importSet{}
	im.use("errors")
	im.use("reflect")
	im.use("testing")
	im.use(RuntimeImport)
	if len(g.dialect.Messages) > 0 {
		im.use("bytes")
	}

	var body bytes.Buffer
	g.generateRoundTripTest(&body)
	if err := g.generateBoundaryTest(&body); err != nil {
		return nil, err
	}
	g.generateTruncationTest(&body)
	body.WriteString(testShortPayload)
	body.WriteString(testVersions)
	g.generateEnumTest(&body)
	return g.assemble(g.config.PackageName, im, &body)
}

const testCaseType = `struct {
		name string
		msg  mavlink.Message
		zero func() mavlink.Message
	}`

const testDecodeLoop = `	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := make([]byte, mavlink.PayloadMaxLen)
			n, err := tc.msg.Encode(buf, mavlink.V2)
			if err != nil {
				t.Fatalf("Encode() error: %%v", err)
			}
			if n != tc.msg.%s() {
				t.Errorf("Encode() wrote %%d bytes, want %%d", n, tc.msg.%s())
			}
			got := tc.zero()
			if err := got.Decode(buf[:n]); err != nil {
				t.Fatalf("Decode() error: %%v", err)
			}
			if !reflect.DeepEqual(got, tc.msg) {
				t.Errorf("Decode(Encode(m)) = %%+v, want %%+v", got, tc.msg)
			}
		})
	}
}

`

func (g *Generator) generateRoundTripTest(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "func Test_roundTrip(t *testing.T) {\n\ttests := []%s{\n", testCaseType)
	for _, m := range g.dialect.Messages {
		g.writeTestCase(buf, m, true)
	}
	buf.WriteString("\t}\n\n")
	fmt.Fprintf(buf, testDecodeLoop, "MaxPayloadLen", "MaxPayloadLen")
}

// generateTruncationTest checks that a payload holding only base fields
// decodes with zero extension fields.
func (g *Generator) generateTruncationTest(buf *bytes.Buffer) {
	var withExt []*model.Message
	for _, m := range g.dialect.Messages {
		if m.HasExtensions() {
			withExt = append(withExt, m)
		}
	}
	if len(withExt) == 0 {
		return
	}
	fmt.Fprintf(buf, "func Test_truncatedExtensions(t *testing.T) {\n\ttests := []%s{\n", testCaseType)
	for _, m := range withExt {
		g.writeTestCase(buf, m, false)
	}
	buf.WriteString("\t}\n\n")
	fmt.Fprintf(buf, testDecodeLoop, "MinPayloadLen", "MinPayloadLen")
}

// writeTestCase writes one table entry holding a message with sample
// values. Extension fields are left zero unless withExt is set.
func (g *Generator) writeTestCase(buf *bytes.Buffer, m *model.Message, withExt bool) {
	ident := g.names.Message(m.ID)
	var values []string
	seed := int(m.ID % 100)
	for _, fi := range g.fields[m.ID] {
		switch {
		case !fi.field.Extension || withExt:
			values = append(values, fi.ident+": "+g.sampleValue(fi, &seed))
		case fi.res.IsArray() && g.config.Features.Alloc:
			values = append(values, fmt.Sprintf("%s: make(%s, %d)", fi.ident, fi.typ, fi.res.ArrayLen))
		}
	}
	fmt.Fprintf(buf, "\t\t{\n\t\t\tname: %q,\n", m.Name)
	fmt.Fprintf(buf, "\t\t\tmsg:  &%s{%s},\n", ident, strings.Join(values, ", "))
	fmt.Fprintf(buf, "\t\t\tzero: func() mavlink.Message { return new(%s) },\n\t\t},\n", ident)
}

// sampleValue returns a non-zero literal for fi. Values stay within
// 1..100 so that they fit every wire type and container.
func (g *Generator) sampleValue(fi *fieldInfo, seed *int) string {
	next := func() string {
		*seed = *seed%100 + 1
		if fi.res.Kind == typemap.Plain && fi.res.Wire.IsFloat() {
			return strconv.Itoa(*seed) + ".5"
		}
		return strconv.Itoa(*seed)
	}
	if !fi.res.IsArray() {
		return next()
	}
	elems := make([]string, fi.res.ArrayLen)
	for i := range elems {
		elems[i] = next()
	}
	return fi.typ + "{" + strings.Join(elems, ", ") + "}"
}

// generateBoundaryTest emits one case per message with every element set to
// an extreme or multi-byte value. The expected payload is computed here from
// the layout plan, not by the generated codec.
func (g *Generator) generateBoundaryTest(buf *bytes.Buffer) error {
	if len(g.dialect.Messages) == 0 {
		return nil
	}
	buf.WriteString("func Test_boundaryValues(t *testing.T) {\n\ttests := []struct {\n")
	buf.WriteString("\t\tname string\n\t\tmsg  mavlink.Message\n\t\tzero func() mavlink.Message\n\t\twant []byte\n\t}{\n")
	for _, m := range g.dialect.Messages {
		payload := make([]byte, g.plans[m.ID].MaxLen)
		var values []string
		k := 0
		for _, fi := range g.fields[m.ID] {
			n := max(fi.res.ArrayLen, 1)
			elems := make([]string, n)
			for i := range elems {
				lit := boundaryValue(fi, k)
				k++
				bits, err := literalBits(lit, fi.res.Wire)
				if err != nil {
					return fmt.Errorf("message %s field %s: %w", m.Name, fi.field.Name, err)
				}
				putBits(payload[fi.slot.Offset+i*fi.res.Wire.Size():], fi.res.Wire.Size(), bits)
				elems[i] = lit
			}
			v := elems[0]
			if fi.res.IsArray() {
				v = fi.typ + "{" + strings.Join(elems, ", ") + "}"
			}
			values = append(values, fi.ident+": "+v)
		}
		ident := g.names.Message(m.ID)
		fmt.Fprintf(buf, "\t\t{\n\t\t\tname: %q,\n", m.Name)
		fmt.Fprintf(buf, "\t\t\tmsg:  &%s{%s},\n", ident, strings.Join(values, ", "))
		fmt.Fprintf(buf, "\t\t\tzero: func() mavlink.Message { return new(%s) },\n", ident)
		fmt.Fprintf(buf, "\t\t\twant: %s,\n\t\t},\n", byteSliceLiteral(payload))
	}
	buf.WriteString(`	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := mavlink.Marshal(tc.msg, mavlink.V2)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			if !bytes.Equal(got, tc.want) {
				t.Errorf("Marshal() = % x, want % x", got, tc.want)
			}
			m := tc.zero()
			if err := m.Decode(tc.want); err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if !reflect.DeepEqual(m, tc.msg) {
				t.Errorf("Decode(want) = %+v, want %+v", m, tc.msg)
			}
		})
	}
}

`)
	return nil
}

// boundaryValue returns the k-th extreme literal for an element of fi.
// Enum containers that differ from the wire type get small values, since
// only the wire width is guaranteed to hold the whole container range.
func boundaryValue(fi *fieldInfo, k int) string {
	p := fi.res.Wire
	if fi.res.Kind != typemap.Plain {
		if fi.res.Wire.IsFloat() || fi.res.Container.Size() != fi.res.Wire.Size() {
			return strconv.Itoa(k%100 + 1)
		}
		p = fi.res.Container
	}
	lits := boundaryLiterals(p)
	return lits[k%len(lits)]
}

func boundaryLiterals(p model.Primitive) []string {
	switch {
	case p == model.Float:
		return []string{"-3.4028234e+38", "1.5e+38", "-1.25"}
	case p == model.Double:
		return []string{"-1.7976931348623157e+308", "1e+300", "-0.375"}
	case p.IsSigned():
		switch p.Size() {
		case 1:
			return []string{"-128", "-1", "127"}
		case 2:
			return []string{"-32768", "-1", "0x0102"}
		case 4:
			return []string{"-2147483648", "-1", "0x01020304"}
		}
		return []string{"-9223372036854775808", "-1", "0x0102030405060708"}
	}
	switch p.Size() {
	case 1:
		return []string{"0xFF", "0x80"}
	case 2:
		return []string{"0xFFFF", "0x0102"}
	case 4:
		return []string{"0xFFFFFFFF", "0x01020304"}
	}
	return []string{"0xFFFFFFFFFFFFFFFF", "0x0102030405060708"}
}

// literalBits returns the wire bits of lit stored as an element of wire.
func literalBits(lit string, wire model.Primitive) (uint64, error) {
	switch wire {
	case model.Float:
		f, err := strconv.ParseFloat(lit, 32)
		return uint64(math.Float32bits(float32(f))), err
	case model.Double:
		f, err := strconv.ParseFloat(lit, 64)
		return math.Float64bits(f), err
	}
	if strings.HasPrefix(lit, "-") {
		v, err := strconv.ParseInt(lit, 0, 64)
		return uint64(v), err
	}
	return strconv.ParseUint(lit, 0, 64)
}

// putBits stores the low size bytes of bits little-endian.
func putBits(b []byte, size int, bits uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], bits)
	copy(b[:size], tmp[:size])
}

func byteSliceLiteral(b []byte) string {
	var sb strings.Builder
	sb.WriteString("[]byte{")
	for i, c := range b {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "0x%02x", c)
	}
	sb.WriteString("}")
	return sb.String()
}

const testShortPayload = `func Test_shortPayload(t *testing.T) {
	for _, id := range Dialect.IDs() {
		info, _ := Dialect.Message(id)
		m := info.New()
		if m.ID() != id || m.CRCExtra() != info.CRCExtra || m.MinPayloadLen() != info.MinPayloadLen || m.MaxPayloadLen() != info.MaxPayloadLen {
			t.Errorf("%s: registry entry %+v does not match the message", info.Name, info)
		}
		err := m.Decode(make([]byte, info.MinPayloadLen-1))
		if !errors.Is(err, mavlink.ErrShortPayload) {
			t.Errorf("%s: Decode(short) = %v, want ErrShortPayload", info.Name, err)
		}
	}
}

`

const testVersions = `func Test_versions(t *testing.T) {
	buf := make([]byte, mavlink.PayloadMaxLen)
	for _, id := range Dialect.IDs() {
		m, err := Dialect.New(id)
		if err != nil {
			t.Fatal(err)
		}
		n, err := m.Encode(buf, mavlink.V1)
		switch {
		case id > 255 && !errors.Is(err, mavlink.ErrUnsupportedVersion):
			t.Errorf("%s: Encode(V1) = %v, want ErrUnsupportedVersion", m.Name(), err)
		case id <= 255 && (err != nil || n != m.MinPayloadLen()):
			t.Errorf("%s: Encode(V1) = %d, %v, want %d bytes", m.Name(), n, err, m.MinPayloadLen())
		}
		n, err = m.Encode(buf, mavlink.V2)
		if err != nil || n != m.MinPayloadLen() {
			t.Errorf("%s: Encode(V2) of zero message = %d, %v, want %d bytes", m.Name(), n, err, m.MinPayloadLen())
		}
		_, err = m.Encode(buf[:m.MinPayloadLen()-1], mavlink.V2)
		if !errors.Is(err, mavlink.ErrBufferTooSmall) {
			t.Errorf("%s: Encode(short buffer) = %v, want ErrBufferTooSmall", m.Name(), err)
		}
	}
}

`

func (g *Generator) generateEnumTest(buf *bytes.Buffer) {
	var cases []string
	for _, e := range g.dialect.Enums {
		if e.Bitmask || len(e.Entries) == 0 {
			continue
		}
		fromRaw := g.names.FromRaw(e.Name)
		conv := fmt.Sprintf("func(v uint64) error { _, err := %s(v); return err }", fromRaw)
		first := e.Entries[0]
		cases = append(cases, fmt.Sprintf("{name: %q, raw: %d, ok: true, conv: %s}", first.Name, first.Value, conv))
		if hi := e.MaxValue(); hi < 1<<64-1 {
			cases = append(cases, fmt.Sprintf("{name: %q, raw: %d, ok: false, conv: %s}", e.Name+" unknown", hi+1, conv))
		}
	}
	if len(cases) == 0 {
		return
	}

	buf.WriteString("func Test_enumFromRaw(t *testing.T) {\n\ttests := []struct {\n")
	buf.WriteString("\t\tname string\n\t\traw  uint64\n\t\tok   bool\n\t\tconv func(uint64) error\n\t}{\n")
	for _, c := range cases {
		fmt.Fprintf(buf, "\t\t%s,\n", c)
	}
	buf.WriteString(`	}
	for _, tc := range tests {
		err := tc.conv(tc.raw)
		var unknown *mavlink.UnknownEnumError
		if tc.ok != (err == nil) || !tc.ok && !errors.As(err, &unknown) {
			t.Errorf("%s: FromRaw(%d) = %v", tc.name, tc.raw, err)
		}
	}
}
`)
}
