// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package generator

import "slices"

// Output is the result of one Generate call.
type Output struct {
	// Files maps slash-separated paths, relative to the output
	// directory, to content.
	Files map[string][]byte

	// Groups maps a dialect name to the paths it produced, sorted.
	Groups map[string][]string
}

// NewOutput returns an empty Output.
func NewOutput() *Output {
	return &Output{
		Files:  make(map[string][]byte),
		Groups: make(map[string][]string),
	}
}

// Add adds a file that belongs to no dialect, such as the index.
func (o *Output) Add(name string, content []byte) {
	o.Files[name] = content
}

// AddTo adds a file produced by the named dialect.
func (o *Output) AddTo(group, name string, content []byte) {
	o.Add(name, content)
	i, found := slices.BinarySearch(o.Groups[group], name)
	if !found {
		o.Groups[group] = slices.Insert(o.Groups[group], i, name)
	}
}

// Merge adds every file and group of other to o.
func (o *Output) Merge(other *Output) {
	for name, content := range other.Files {
		o.Add(name, content)
	}
	for group, names := range other.Groups {
		for _, name := range names {
			o.AddTo(group, name, other.Files[name])
		}
	}
}

// Group returns the dialect that produced path, if any.
func (o *Output) Group(path string) (string, bool) {
	for group, names := range o.Groups {
		if _, found := slices.BinarySearch(names, path); found {
			return group, true
		}
	}
	return "", false
}
