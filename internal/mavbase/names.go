// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package mavbase

import (
	"strings"
	"unicode"
)

// Capitalize returns name with the first letter uppercased.
// Returns empty string for empty input.
func Capitalize(name string) string {
	if name == "" {
		return ""
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Words splits a raw MAVLink name into words. Separators are any
// non-alphanumeric runes; a lowercase-to-uppercase transition also starts a
// new word ("targetSystem" -> "target", "System").
func Words(name string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	var prev rune
	for _, r := range name {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return words
}

// UpperCamel converts a raw MAVLink name to UpperCamelCase.
// Single-case words are capitalized ("MAV_TYPE" -> "MavType",
// "base_mode" -> "BaseMode"); mixed-case words keep their inner casing
// ("MAVLink" -> "MAVLink").
func UpperCamel(name string) string {
	var b strings.Builder
	for _, w := range Words(name) {
		if w == strings.ToUpper(w) || w == strings.ToLower(w) {
			w = strings.ToLower(w)
		}
		b.WriteString(Capitalize(w))
	}
	return b.String()
}

// PackageName converts a raw dialect name to a Go package name: lowercase
// letters and digits only ("ASLUAV" -> "asluav", "python_array_test" ->
// "pythonarraytest").
func PackageName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// StripPrefix removes the enum name prefix from an entry name
// ("MAV_TYPE_GCS" in MAV_TYPE -> "GCS"). The name is returned unchanged when
// it does not carry the prefix or nothing would remain.
func StripPrefix(entry, enum string) string {
	rest, ok := strings.CutPrefix(entry, enum+"_")
	if !ok || rest == "" {
		return entry
	}
	return rest
}

// ExportName returns a Go-safe exported identifier for an already converted
// name. Names starting with "_" or a digit are prefixed with "X"
// ("_foo" -> "Xfoo", "3D" -> "X3D"); the empty name becomes "X".
func ExportName(name string) string {
	if name == "" {
		return "X"
	}
	if name[0] == '_' {
		return "X" + name[1:]
	}
	if name[0] >= '0' && name[0] <= '9' {
		return "X" + name
	}
	return Capitalize(name)
}

// WrapText splits text into lines of at most width columns at spaces.
// Tabs become spaces and existing line breaks are kept. Words longer than
// width are not broken.
func WrapText(text string, width int) []string {
	text = strings.ReplaceAll(text, "\t", " ")
	var lines []string
	for para := range strings.SplitSeq(strings.TrimSpace(text), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if len(line)+1+len(w) > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line += " " + w
		}
		lines = append(lines, line)
	}
	return lines
}
