// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package codegen

import (
	"bytes"
	"cmp"
	"fmt"
	"go/format"
	"path"
	"slices"
)

// IndexConfig describes the package that aggregates generated dialects.
type IndexConfig struct {
	// PackageName is the Go package name of the index.
	PackageName string

	// ImportPrefix is the import path of the index package. Dialect
	// packages live in its subdirectories.
	ImportPrefix string

	// Dialects lists every generated dialect.
	Dialects []IndexEntry

	// Version is the generator version (for header comment).
	Version string
}

// IndexEntry is one dialect package.
type IndexEntry struct {
	// Name is the raw dialect name.
	Name string

	// Package is the package name, which is also its directory.
	Package string
}

// GenerateIndex returns the source of the index package.
func GenerateIndex(cfg IndexConfig) ([]byte, error) {
	if cfg.ImportPrefix == "" {
		return nil, fmt.Errorf("index package %s: import prefix is required", cfg.PackageName)
	}
	entries := slices.Clone(cfg.Dialects)
	slices.SortFunc(entries, func(a, b IndexEntry) int {
		return cmp.Compare(a.Name, b.Name)
	})

	var buf bytes.Buffer
	buf.WriteString("// Code generated by mavgen. DO NOT EDIT.\n")
	if cfg.Version != "" {
		fmt.Fprintf(&buf, "// Generator: mavgen %s\n", cfg.Version)
	}
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "// Package %s lists the generated MAVLink dialect packages.\n", cfg.PackageName)
	fmt.Fprintf(&buf, "package %s\n\n", cfg.PackageName)

	buf.WriteString("import (\n")
	fmt.Fprintf(&buf, "\t%q\n", RuntimeImport)
	if len(entries) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&buf, "\t%q\n", path.Join(cfg.ImportPrefix, e.Package))
	}
	buf.WriteString(")\n\n")

	buf.WriteString("// Names returns the dialect names in order.\n")
	buf.WriteString("func Names() []string {\n\treturn []string{")
	for i, e := range entries {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%q", e.Name)
	}
	buf.WriteString("}\n}\n\n")

	buf.WriteString("// Lookup returns the dialect with the given name.\n")
	buf.WriteString("func Lookup(name string) (*mavlink.Dialect, bool) {\n")
	buf.WriteString("\tfor _, d := range All() {\n\t\tif d.Name() == name {\n\t\t\treturn d, true\n\t\t}\n\t}\n")
	buf.WriteString("\treturn nil, false\n}\n\n")

	buf.WriteString("// All returns every dialect in name order.\n")
	buf.WriteString("func All() []*mavlink.Dialect {\n\treturn []*mavlink.Dialect{")
	for i, e := range entries {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s.Dialect", e.Package)
	}
	buf.WriteString("}\n}\n")

	return format.Source(buf.Bytes())
}
