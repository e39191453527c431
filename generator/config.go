// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package generator

import "slices"

// Config is the per-run configuration handed to a Generator.
type Config struct {
	// ImportPrefix is the import path of the output directory. Dialect
	// packages are imported as ImportPrefix/<package>.
	ImportPrefix string

	// IndexPackage is the package name of the index. Empty derives it
	// from the last element of ImportPrefix.
	IndexPackage string

	// Dialects limits generation to the named dialects. Nil generates every
	// dialect; an empty non-nil slice generates none. The index always
	// lists every dialect of the protocol.
	Dialects []string

	// Alloc turns array fields into slices.
	Alloc bool

	// Std adds fmt.Stringer implementations. Std implies Alloc.
	Std bool

	// Serde adds json tags and text marshaling.
	Serde bool

	// GenerateTests adds codec tests to every dialect package.
	GenerateTests bool

	// Ordering is the base-field ordering policy ("element-width" or
	// "field-width"). Empty selects element-width.
	Ordering string

	// Source is the definitions source (for headers).
	Source string

	// Version is the generator version (for headers).
	Version string
}

// Features returns the Feature* switches c enables, in a fixed order.
// An import prefix enables FeatureIndex.
func (c Config) Features() []string {
	var out []string
	for _, f := range []struct {
		name string
		on   bool
	}{
		{FeatureAlloc, c.Alloc || c.Std},
		{FeatureStd, c.Std},
		{FeatureSerde, c.Serde},
		{FeatureTests, c.GenerateTests},
		{FeatureIndex, c.ImportPrefix != ""},
	} {
		if f.on {
			out = append(out, f.name)
		}
	}
	return out
}

// Wants reports whether the dialect is requested.
func (c Config) Wants(dialect string) bool {
	if c.Dialects == nil {
		return true
	}
	return slices.Contains(c.Dialects, dialect)
}
