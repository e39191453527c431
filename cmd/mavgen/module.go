// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

var errNoModule = errors.New("no enclosing go.mod")

// modulePrefix derives the import path of dir from the nearest go.mod in dir
// or one of its parents. dir need not exist.
func modulePrefix(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for d := abs; ; {
		gomod := filepath.Join(d, "go.mod")
		data, err := os.ReadFile(gomod)
		switch {
		case err == nil:
			mod := modfile.ModulePath(data)
			if mod == "" {
				return "", fmt.Errorf("%s: no module directive", gomod)
			}
			rel, err := filepath.Rel(d, abs)
			if err != nil {
				return "", err
			}
			prefix := path.Join(mod, filepath.ToSlash(rel))
			if err := module.CheckImportPath(prefix); err != nil {
				return "", fmt.Errorf("output directory %s: %w", dir, err)
			}
			return prefix, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", err
		}
		parent := filepath.Dir(d)
		if parent == d {
			return "", fmt.Errorf("%s: %w", dir, errNoModule)
		}
		d = parent
	}
}
