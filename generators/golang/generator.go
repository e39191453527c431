// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package golang generates Go packages from MAVLink definitions: one
// package per dialect plus an index package listing them.
package golang

import (
	"context"
	"fmt"
	"go/token"
	"path"
	"path/filepath"
	"runtime"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/mavgen/generator"
	"github.com/albertocavalcante/mavgen/internal/codegen"
	"github.com/albertocavalcante/mavgen/internal/layout"
	"github.com/albertocavalcante/mavgen/internal/mavbase"
	"github.com/albertocavalcante/mavgen/internal/naming"
	"github.com/albertocavalcante/mavgen/model"
)

// IndexFile is the name of the index package source file.
const IndexFile = "index.go"

// GoGenerator implements [generator.Generator] for Go code generation.
type GoGenerator struct{}

// NewGenerator creates a new Go generator.
func NewGenerator() *GoGenerator {
	return &GoGenerator{}
}

// Metadata returns information about this generator.
func (g *GoGenerator) Metadata() generator.Metadata {
	return generator.Metadata{
		Name:        "go",
		Version:     "1.0.0",
		Description: "Go packages with allocation-free MAVLink codecs",
		Features: []string{
			generator.FeatureAlloc,
			generator.FeatureStd,
			generator.FeatureSerde,
			generator.FeatureTests,
			generator.FeatureIndex,
		},
	}
}

// Generate produces one package per requested dialect and, when
// cfg.ImportPrefix is set, the index package. Dialects are generated in
// parallel; any error aborts the whole run and no output is returned.
func (g *GoGenerator) Generate(ctx context.Context, p *model.Protocol, cfg generator.Config) (*generator.Output, error) {
	order, err := layout.ParseOrdering(cfg.Ordering)
	if err != nil {
		return nil, err
	}
	pkgs, err := naming.PackageNames(p)
	if err != nil {
		return nil, err
	}
	features := codegen.Features{
		Alloc: cfg.Alloc,
		Std:   cfg.Std,
		Serde: cfg.Serde,
		Tests: cfg.GenerateTests,
	}

	results := make([]*generator.Output, len(p.Dialects))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, d := range p.Dialects {
		if !cfg.Wants(d.Name) {
			continue
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := generateDialect(d, pkgs[d.Name], codegen.Config{
				PackageName: pkgs[d.Name],
				Features:    features,
				Ordering:    order,
				Source:      sourceOf(d, cfg.Source),
				Version:     cfg.Version,
			})
			if err != nil {
				return fmt.Errorf("dialect %s: %w", d.Name, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result := generator.NewOutput()
	for _, out := range results {
		if out != nil {
			result.Merge(out)
		}
	}

	if cfg.ImportPrefix != "" {
		entries := make([]codegen.IndexEntry, 0, len(p.Dialects))
		for _, d := range p.Dialects {
			entries = append(entries, codegen.IndexEntry{Name: d.Name, Package: pkgs[d.Name]})
		}
		index, err := codegen.GenerateIndex(codegen.IndexConfig{
			PackageName:  IndexPackage(cfg),
			ImportPrefix: cfg.ImportPrefix,
			Dialects:     entries,
			Version:      cfg.Version,
		})
		if err != nil {
			return nil, err
		}
		result.Add(IndexFile, index)
	}
	return result, nil
}

// generateDialect emits the files of one dialect under dir.
func generateDialect(d *model.Dialect, dir string, cfg codegen.Config) (*generator.Output, error) {
	gen, err := codegen.New(d, cfg)
	if err != nil {
		return nil, err
	}
	files, err := gen.Generate()
	if err != nil {
		return nil, err
	}

	out := generator.NewOutput()
	for _, f := range []struct {
		name    string
		content []byte
	}{
		{"messages.go", files.Messages},
		{"enums.go", files.Enums},
		{"dialect.go", files.Dialect},
		{"codec_test.go", files.Tests},
	} {
		if f.content != nil {
			out.AddTo(d.Name, path.Join(dir, f.name), f.content)
		}
	}
	return out, nil
}

// IndexPackage returns the package name of the index: cfg.IndexPackage,
// or one derived from the last element of cfg.ImportPrefix.
func IndexPackage(cfg generator.Config) string {
	if cfg.IndexPackage != "" {
		return cfg.IndexPackage
	}
	name := mavbase.PackageName(path.Base(cfg.ImportPrefix))
	r, _ := utf8.DecodeRuneInString(name)
	if name == "" || !unicode.IsLetter(r) || token.IsKeyword(name) {
		return "dialects"
	}
	return name
}

// sourceOf names the definition file of d without its directory, so that
// output does not depend on where the definitions are checked out.
func sourceOf(d *model.Dialect, fallback string) string {
	if d.Source != "" {
		return filepath.Base(d.Source)
	}
	return fallback
}
