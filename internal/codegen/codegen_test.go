// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package codegen

import (
	"errors"
	"go/parser"
	"go/token"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/albertocavalcante/mavgen/internal/layout"
	"github.com/albertocavalcante/mavgen/internal/naming"
	"github.com/albertocavalcante/mavgen/model"
)

func field(name, typ string) *model.Field {
	return &model.Field{Name: name, Type: model.MustParseType(typ)}
}

func enumField(name, typ, enum string) *model.Field {
	f := field(name, typ)
	f.Enum = enum
	return f
}

func ext(f *model.Field) *model.Field {
	f.Extension = true
	return f
}

// testDialect covers plain, enum, bitmask, array, extension and wide-id
// messages.
func testDialect() *model.Dialect {
	int16Type := model.Int16
	d := &model.Dialect{
		Name:    "test",
		Version: 3,
		Enums: []*model.Enum{
			{Name: "MAV_TYPE", Description: "Vehicle type.", Entries: []*model.Entry{
				{Name: "MAV_TYPE_GENERIC", Value: 0, Description: "Generic micro air vehicle."},
				{Name: "MAV_TYPE_GCS", Value: 6},
				{Name: "MAV_TYPE_GROUND", Value: 6, Deprecated: &model.Deprecated{Since: "2020-01", ReplacedBy: "MAV_TYPE_GCS"}},
			}},
			{Name: "MAV_MODE_FLAG", Bitmask: true, Entries: []*model.Entry{
				{Name: "MAV_MODE_FLAG_NONE", Value: 0},
				{Name: "MAV_MODE_FLAG_TEST_ENABLED", Value: 2},
				{Name: "MAV_MODE_FLAG_SAFETY_ARMED", Value: 128},
			}},
			{Name: "WIDE_ENUM", Entries: []*model.Entry{
				{Name: "WIDE_ENUM_MAX", Value: 4294967295},
			}},
		},
		Messages: []*model.Message{
			{ID: 0, Name: "HEARTBEAT", Description: "The heartbeat message shows that a system is present.", Fields: []*model.Field{
				enumField("type", "uint8_t", "MAV_TYPE"),
				field("autopilot", "uint8_t"),
				enumField("base_mode", "uint8_t", "MAV_MODE_FLAG"),
				field("custom_mode", "uint32_t"),
				field("system_status", "uint8_t"),
				field("mavlink_version", "uint8_t_mavlink_version"),
			}},
			{ID: 22, Name: "PARAM_VALUE", Fields: []*model.Field{
				field("param_id", "char[16]"),
				field("param_value", "float"),
				field("param_type", "uint8_t"),
				field("param_count", "uint16_t"),
				field("param_index", "uint16_t"),
			}},
			{ID: 42, Name: "CONTAINERS", Fields: []*model.Field{
				enumField("scaled", "uint32_t", "MAV_TYPE"),
				enumField("signed", "int8_t", "MAV_TYPE"),
				enumField("wide", "uint32_t", "WIDE_ENUM"),
				enumField("pair", "uint8_t[2]", "MAV_TYPE"),
				enumField("as_float", "float", "MAV_TYPE"),
				{Name: "override", Type: model.MustParseType("uint8_t"), Enum: "MAV_TYPE", Container: &int16Type},
			}},
			{ID: 300, Name: "WITH_EXT", Fields: []*model.Field{
				field("a", "uint8_t"),
				field("type", "int16_t"),
				field("Type", "int16_t"),
				field("string", "double"),
				ext(field("b", "uint16_t")),
				ext(field("c", "int32_t[3]")),
			}},
		},
	}
	d.Sort()
	return d
}

func generate(t *testing.T, d *model.Dialect, f Features) *Output {
	t.Helper()
	g, err := New(d, Config{Features: f, Source: "test.xml", Version: "v0.0.0-test"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	out, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	return out
}

func files(out *Output) map[string][]byte {
	m := map[string][]byte{}
	for name, content := range map[string][]byte{
		"messages.go":   out.Messages,
		"enums.go":      out.Enums,
		"dialect.go":    out.Dialect,
		"codec_test.go": out.Tests,
	} {
		if content != nil {
			m[name] = content
		}
	}
	return m
}

var featureSets = []struct {
	name     string
	features Features
}{
	{name: "fixed", features: Features{}},
	{name: "alloc", features: Features{Alloc: true}},
	{name: "std", features: Features{Std: true}},
	{name: "serde", features: Features{Serde: true}},
	{name: "all", features: Features{Std: true, Serde: true, Tests: true}},
}

func TestGenerate_Parses(t *testing.T) {
	for _, fs := range featureSets {
		t.Run(fs.name, func(t *testing.T) {
			out := generate(t, testDialect(), fs.features)
			for name, content := range files(out) {
				if _, err := parser.ParseFile(token.NewFileSet(), name, content, parser.ParseComments); err != nil {
					t.Errorf("%s does not parse: %v\n%s", name, err, content)
				}
				if !strings.HasPrefix(string(content), "// Code generated by mavgen. DO NOT EDIT.\n") {
					t.Errorf("%s lacks the generated-code header", name)
				}
			}
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	f := Features{Std: true, Serde: true, Tests: true}
	first := files(generate(t, testDialect(), f))
	second := files(generate(t, testDialect(), f))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("output differs between runs (-first +second):\n%s", diff)
	}
}

func TestGenerate_Messages(t *testing.T) {
	out := string(generate(t, testDialect(), Features{}).Messages)

	tests := []struct {
		name    string
		pattern string
	}{
		{name: "capability assertion", pattern: `var _ mavlink\.Message = \(\*Heartbeat\)\(nil\)`},
		{name: "id", pattern: `func \(\*Heartbeat\) ID\(\) mavlink\.MessageID \{ return 0 \}`},
		{name: "crc extra", pattern: `func \(\*Heartbeat\) CRCExtra\(\) uint8 \{ return 50 \}`},
		{name: "min length", pattern: `func \(\*Heartbeat\) MinPayloadLen\(\) int \{ return 9 \}`},
		{name: "param value crc", pattern: `func \(\*ParamValue\) CRCExtra\(\) uint8 \{ return 220 \}`},
		{name: "enum typed field", pattern: `\tType\s+MavType\n`},
		{name: "bitmask typed field", pattern: `\tBaseMode\s+MavModeFlag\n`},
		{name: "char array", pattern: `\tParamId\s+\[16\]byte\n`},
		{name: "scaled container", pattern: `\tScaled\s+uint32\n`},
		{name: "signed container", pattern: `\tSigned\s+int8\n`},
		{name: "wide enum", pattern: `\tWide\s+WideEnum\n`},
		{name: "enum array", pattern: `\tPair\s+\[2\]MavType\n`},
		{name: "float enum", pattern: `\tAsFloat\s+MavType\n`},
		{name: "override container", pattern: `\tOverride\s+int16\n`},
		{name: "case collision", pattern: `\tType\s+int16\n\tType_\s+int16\n`},
		{name: "reserved field", pattern: `\tString_\s+float64\n`},
		{name: "wire order", pattern: `binary\.LittleEndian\.PutUint32\(buf\[0:\], m\.CustomMode\)\n\tbuf\[4\] = byte\(m\.Type\)`},
		{name: "byte copy", pattern: `copy\(buf\[8:24\], m\.ParamId\[:\]\)`},
		{name: "float encode", pattern: `math\.Float32bits\(float32\(m\.AsFloat\)\)`},
		{name: "float decode", pattern: `m\.AsFloat = MavType\(math\.Float32frombits`},
		{name: "signed decode", pattern: `m\.Signed = int8\(p\[\d+\]\)`},
		{name: "v1 cutoff", pattern: `if v == mavlink\.V1 \{\n\t\treturn n, nil\n\t\}`},
		{name: "trim", pattern: `return mavlink\.TrimExtensions\(buf\[:n\], 13, 15\), nil`},
		{name: "zero fill", pattern: `if len\(p\) < 27 \{\n\t\tvar full \[27\]byte`},
		{name: "short base", pattern: `if len\(p\) < 13 \{\n\t\treturn mavlink\.ShortPayload\(m, len\(p\)\)`},
		{name: "clone", pattern: `func \(m \*Heartbeat\) Clone\(\) \*Heartbeat \{`},
		{name: "reset", pattern: `func \(m \*Heartbeat\) Reset\(\) \{ \*m = Heartbeat\{\} \}`},
		{name: "description", pattern: `The heartbeat message shows that a system is present\.`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !regexp.MustCompile(tc.pattern).MatchString(out) {
				t.Errorf("messages.go does not match %s", tc.pattern)
			}
		})
	}

	for _, absent := range []string{"MarshalPayload", "String() string", "json:", `"slices"`} {
		if strings.Contains(out, absent) {
			t.Errorf("fixed output contains %q", absent)
		}
	}
}

func TestGenerate_Enums(t *testing.T) {
	out := string(generate(t, testDialect(), Features{}).Enums)

	tests := []struct {
		name    string
		pattern string
	}{
		{name: "enum type", pattern: `type MavType uint8\n`},
		{name: "wide enum type", pattern: `type WideEnum uint32\n`},
		{name: "entry", pattern: `MavTypeGcs\s+MavType = 6\n`},
		{name: "duplicate value entry", pattern: `MavTypeGround\s+MavType = 6\n`},
		{name: "deprecated entry", pattern: `// Deprecated: since 2020-01, replaced by MAV_TYPE_GCS`},
		{name: "valid dedupes values", pattern: `case MavTypeGeneric, MavTypeGcs:\n`},
		{name: "from raw", pattern: `func MavTypeFromRaw\(v uint64\) \(MavType, error\) \{`},
		{name: "unknown enum error", pattern: `&mavlink\.UnknownEnumError\{Enum: "MAV_TYPE", Value: v\}`},
		{name: "bitmask valid", pattern: `return b&\^\(MavModeFlagTestEnabled\|MavModeFlagSafetyArmed\) == 0`},
		{name: "bitmask has", pattern: `func \(b MavModeFlag\) Has\(flag MavModeFlag\) bool \{ return b&flag == flag \}`},
		{name: "bitmask from raw", pattern: `func MavModeFlagFromRaw\(v uint64\) MavModeFlag \{ return MavModeFlag\(v\) \}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !regexp.MustCompile(tc.pattern).MatchString(out) {
				t.Errorf("enums.go does not match %s", tc.pattern)
			}
		})
	}
}

func TestGenerate_Features(t *testing.T) {
	tests := []struct {
		name     string
		features Features
		file     func(*Output) []byte
		present  []string
		absent   []string
	}{
		{
			name:     "alloc",
			features: Features{Alloc: true},
			file:     func(o *Output) []byte { return o.Messages },
			present:  []string{"ParamId []byte", "m.Pair = make([]MavType, 2)", "clear(buf[8:24])", "slices.Clone(m.Pair)", "func (m *Heartbeat) MarshalPayload(v mavlink.Version) ([]byte, error)"},
			absent:   []string{"String() string"},
		},
		{
			name:     "std implies alloc",
			features: Features{Std: true},
			file:     func(o *Output) []byte { return o.Messages },
			present:  []string{"ParamId []byte", "func (m *Heartbeat) String() string", `mavlink.CString(m.ParamId)`},
		},
		{
			name:     "std enums",
			features: Features{Std: true},
			file:     func(o *Output) []byte { return o.Enums },
			present:  []string{"func (e MavType) String() string", `return "MAV_TYPE_GCS"`, "func (b MavModeFlag) String() string"},
			absent:   []string{"MarshalText"},
		},
		{
			name:     "serde messages",
			features: Features{Serde: true},
			file:     func(o *Output) []byte { return o.Messages },
			present:  []string{"`json:\"custom_mode\"`", "`json:\"Type\"`", "`json:\"string\"`"},
			absent:   []string{"String() string"},
		},
		{
			name:     "serde enums",
			features: Features{Serde: true},
			file:     func(o *Output) []byte { return o.Enums },
			present:  []string{"func (e MavType) MarshalText() ([]byte, error)", "func (e *MavType) UnmarshalText(text []byte) error", "func (b *MavModeFlag) UnmarshalText(text []byte) error"},
			absent:   []string{"String() string"},
		},
		{
			name:     "tests",
			features: Features{Tests: true},
			file:     func(o *Output) []byte { return o.Tests },
			present: []string{
				"func Test_roundTrip(t *testing.T)", "func Test_truncatedExtensions(t *testing.T)", "func Test_enumFromRaw(t *testing.T)", `name: "WITH_EXT"`,
				"func Test_boundaryValues(t *testing.T)",
				"msg: &Heartbeat{Type: 0xFF, Autopilot: 0x80, BaseMode: 0xFF, CustomMode: 0x01020304, SystemStatus: 0xFF, MavlinkVersion: 0x80},",
				"want: []byte{0x04, 0x03, 0x02, 0x01, 0xff, 0x80, 0xff, 0xff, 0x80},",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := string(tc.file(generate(t, testDialect(), tc.features)))
			for _, s := range tc.present {
				if !strings.Contains(normalizeSpace(out), s) {
					t.Errorf("output lacks %q", s)
				}
			}
			for _, s := range tc.absent {
				if strings.Contains(out, s) {
					t.Errorf("output contains %q", s)
				}
			}
		})
	}
}

var spaceRun = regexp.MustCompile(`[ \t]+`)

// normalizeSpace collapses the alignment gofmt adds.
func normalizeSpace(s string) string {
	return spaceRun.ReplaceAllString(s, " ")
}

func TestGenerate_FeaturesKeepLayout(t *testing.T) {
	registry := func(f Features) []string {
		var lines []string
		for line := range strings.SplitSeq(string(generate(t, testDialect(), f).Dialect), "\n") {
			if strings.Contains(line, "mavlink.MessageInfo{") {
				lines = append(lines, strings.TrimSpace(line))
			}
		}
		return lines
	}
	want := registry(Features{})
	if len(want) != 4 {
		t.Fatalf("registry has %d entries, want 4", len(want))
	}
	for _, fs := range featureSets[1:] {
		if diff := cmp.Diff(want, registry(fs.features)); diff != "" {
			t.Errorf("%s changed the registry (-fixed +%s):\n%s", fs.name, fs.name, diff)
		}
	}
}

func TestGenerate_Dialect(t *testing.T) {
	out := string(generate(t, testDialect(), Features{}).Dialect)
	for _, s := range []string{
		"// Package test implements the messages and enums of the MAVLink test dialect\n// (version 3).\npackage test\n",
		`var Dialect = mavlink.NewDialect("test",`,
		`mavlink.MessageInfo{ID: 0, Name: "HEARTBEAT", CRCExtra: 50, MinPayloadLen: 9, MaxPayloadLen: 9, New: func() mavlink.Message { return new(Heartbeat) }},`,
		`mavlink.MessageInfo{ID: 300, Name: "WITH_EXT", CRCExtra: `,
		"// Source: test.xml",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("dialect.go lacks %q", s)
		}
	}
}

func TestGenerate_FieldWidthOrdering(t *testing.T) {
	d := &model.Dialect{Name: "scenario", Messages: []*model.Message{
		{ID: 1, Name: "SCENARIO", Fields: []*model.Field{
			field("a", "uint8_t"),
			field("b", "int16_t"),
			field("c", "uint16_t[4]"),
			field("d", "uint16_t[40]"),
		}},
	}}
	g, err := New(d, Config{Ordering: layout.FieldWidth})
	if err != nil {
		t.Fatal(err)
	}
	out, err := g.Generate()
	if err != nil {
		t.Fatal(err)
	}
	s := string(out.Messages)
	for _, want := range []string{
		"binary.LittleEndian.PutUint16(buf[2*i:], x)",
		"binary.LittleEndian.PutUint16(buf[80+2*i:], x)",
		"binary.LittleEndian.PutUint16(buf[88:], uint16(m.B))",
		"buf[90] = m.A",
		"func (*Scenario) MaxPayloadLen() int { return 91 }",
		"func (*Scenario) CRCExtra() uint8 { return 7 }",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("messages.go lacks %q", want)
		}
	}
	if g.Plans()[1].MinLen != 91 {
		t.Errorf("MinLen = %d, want 91", g.Plans()[1].MinLen)
	}
}

func TestNew_Errors(t *testing.T) {
	t.Run("collision", func(t *testing.T) {
		d := &model.Dialect{Name: "bad", Messages: []*model.Message{
			{ID: 1, Name: "M", Fields: []*model.Field{field("value", "uint8_t"), field("Value", "uint8_t"), field("VALUE", "uint8_t"), field("value_", "uint8_t"), field("_value", "uint8_t")}},
		}}
		_, err := New(d, Config{})
		var ce *naming.CollisionError
		if !errors.As(err, &ce) {
			t.Fatalf("New() = %v, want *naming.CollisionError", err)
		}
	})

	t.Run("narrow container", func(t *testing.T) {
		d := &model.Dialect{
			Name:  "bad",
			Enums: []*model.Enum{{Name: "BIG", Entries: []*model.Entry{{Name: "BIG_A", Value: 1000}}}},
			Messages: []*model.Message{
				{ID: 1, Name: "M", Fields: []*model.Field{enumField("v", "uint8_t", "BIG")}},
			},
		}
		_, err := New(d, Config{})
		if !model.IsDefinitionError(err) || !strings.Contains(err.Error(), "message M") {
			t.Fatalf("New() = %v, want definition error for message M", err)
		}
	})

	t.Run("oversized payload", func(t *testing.T) {
		d := &model.Dialect{Name: "bad", Messages: []*model.Message{
			{ID: 1, Name: "M", Fields: []*model.Field{field("a", "uint64_t[32]"), field("b", "uint8_t")}},
		}}
		_, err := New(d, Config{})
		if !model.IsDefinitionError(err) {
			t.Fatalf("New() = %v, want definition error", err)
		}
	})
}

func TestGenerate_EmptyDialect(t *testing.T) {
	out := generate(t, &model.Dialect{Name: "empty"}, Features{Tests: true})
	if out.Messages != nil || out.Enums != nil {
		t.Error("empty dialect produced messages or enums")
	}
	if !strings.Contains(string(out.Dialect), `mavlink.NewDialect("empty")`) {
		t.Errorf("dialect.go = %s", out.Dialect)
	}
	if out.Tests == nil {
		t.Error("tests not generated")
	}
}

func TestGenerateIndex(t *testing.T) {
	out, err := GenerateIndex(IndexConfig{
		PackageName:  "dialects",
		ImportPrefix: "example.com/drone/dialects",
		Dialects: []IndexEntry{
			{Name: "minimal", Package: "minimal"},
			{Name: "common", Package: "common"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	for _, want := range []string{
		"package dialects",
		`"example.com/drone/dialects/common"`,
		`"example.com/drone/dialects/minimal"`,
		`return []string{"common", "minimal"}`,
		"return []*mavlink.Dialect{common.Dialect, minimal.Dialect}",
		"func Lookup(name string) (*mavlink.Dialect, bool) {",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("index lacks %q", want)
		}
	}
	if _, err := parser.ParseFile(token.NewFileSet(), "index.go", out, 0); err != nil {
		t.Errorf("index does not parse: %v", err)
	}

	if _, err := GenerateIndex(IndexConfig{PackageName: "dialects"}); err == nil {
		t.Error("GenerateIndex without import prefix = nil error")
	}
}
