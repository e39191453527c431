// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package definitions loads MAVLink XML definition files into a
// model.Protocol.
package definitions

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/mavgen/model"
)

// Options configures how definitions are loaded.
type Options struct {
	// Dirs are the directories scanned for *.xml files. Files are not
	// searched recursively.
	Dirs []string

	// Include keeps only the named dialects in the result. Included
	// dialects they depend on are still loaded and merged. Empty keeps
	// every dialect.
	Include []string

	// Exclude drops the named dialects from the result.
	Exclude []string

	// Logger receives diagnostics. The zero value discards them.
	Logger zerolog.Logger
}

// Result contains the loaded protocol and metadata.
type Result struct {
	// Protocol holds the requested dialects, validated.
	Protocol *model.Protocol

	// Files maps every scanned dialect name to its definition file.
	Files map[string]string

	// Source describes where the definitions were loaded from.
	Source string
}

// source is one parsed definition file.
type source struct {
	name string
	path string
	doc  *xmlFile
}

// Load reads every definition file in opts.Dirs, resolves includes and
// returns the requested dialects. Malformed documents and unknown includes
// are reported as errors; malformed definitions as *model.DefinitionError.
func Load(ctx context.Context, opts Options) (*Result, error) {
	if len(opts.Dirs) == 0 {
		return nil, fmt.Errorf("no definition directories")
	}
	log := opts.Logger

	files, err := scan(opts.Dirs)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no definition files in %s", strings.Join(opts.Dirs, ", "))
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	sources := make([]*source, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := parseFile(files[name])
			if err != nil {
				return err
			}
			sources[i] = &source{name: name, path: files[name], doc: doc}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byName := make(map[string]*source, len(sources))
	for _, s := range sources {
		byName[s.name] = s
	}

	selected := selectNames(names, opts.Include, opts.Exclude, log)
	p := &model.Protocol{}
	for _, name := range selected {
		d, err := build(byName[name], byName, log)
		if err != nil {
			return nil, err
		}
		log.Debug().
			Str("dialect", d.Name).
			Int("messages", len(d.Messages)).
			Int("enums", len(d.Enums)).
			Msg("loaded dialect")
		p.Dialects = append(p.Dialects, d)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &Result{
		Protocol: p,
		Files:    files,
		Source:   strings.Join(opts.Dirs, ", "),
	}, nil
}

// scan maps dialect names to definition files. A dialect name is the file
// name without its extension.
func scan(dirs []string) (map[string]string, error) {
	files := make(map[string]string)
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		matches, err := filepath.Glob(filepath.Join(dir, "*.xml"))
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		for _, path := range matches {
			name := dialectName(path)
			if prev, ok := files[name]; ok {
				return nil, fmt.Errorf("dialect %s defined by both %s and %s", name, prev, path)
			}
			files[name] = path
		}
	}
	return files, nil
}

func dialectName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func parseFile(path string) (*xmlFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var doc xmlFile
	if err := xml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &doc, nil
}

func selectNames(names, include, exclude []string, log zerolog.Logger) []string {
	for _, name := range slices.Concat(include, exclude) {
		if !slices.Contains(names, name) {
			log.Warn().Str("dialect", name).Msg("unknown dialect in include/exclude list")
		}
	}
	var out []string
	for _, name := range names {
		if len(include) > 0 && !slices.Contains(include, name) {
			continue
		}
		if slices.Contains(exclude, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// closure returns the dialects src depends on, depth first, followed by src
// itself. Each dialect appears once; include cycles are cut.
func closure(src *source, byName map[string]*source) ([]*source, error) {
	var order []*source
	visited := make(map[string]bool)
	var visit func(s *source) error
	visit = func(s *source) error {
		if visited[s.name] {
			return nil
		}
		visited[s.name] = true
		for _, inc := range s.doc.Includes {
			name := dialectName(strings.TrimSpace(inc))
			dep, ok := byName[name]
			if !ok {
				return fmt.Errorf("%s: unknown include %q", s.path, inc)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		order = append(order, s)
		return nil
	}
	if err := visit(src); err != nil {
		return nil, err
	}
	return order, nil
}

// build merges src with everything it includes.
func build(src *source, byName map[string]*source, log zerolog.Logger) (*model.Dialect, error) {
	deps, err := closure(src, byName)
	if err != nil {
		return nil, err
	}

	d := &model.Dialect{Name: src.name, Source: src.path}
	fail := func(element, format string, args ...any) error {
		return &model.DefinitionError{Dialect: src.name, Element: element, Reason: fmt.Sprintf(format, args...)}
	}

	version, err := parseUint(src.doc.Version, 32)
	if err != nil {
		return nil, fail("version", "%v", err)
	}
	id, err := parseUint(src.doc.Dialect, 32)
	if err != nil {
		return nil, fail("dialect", "%v", err)
	}
	d.Version, d.ID = uint32(version), uint32(id)
	for _, inc := range src.doc.Includes {
		d.Includes = append(d.Includes, dialectName(strings.TrimSpace(inc)))
	}

	enums := make(map[string]*model.Enum)
	messages := make(map[uint32]*model.Message)
	for _, s := range deps {
		definedIn := ""
		if s != src {
			definedIn = s.name
		}
		for _, xe := range s.doc.Enums {
			e, err := convertEnum(xe, definedIn)
			if err != nil {
				return nil, fail("enum "+xe.Name, "%v", err)
			}
			if prev, ok := enums[e.Name]; ok {
				mergeEnum(prev, e, log)
				continue
			}
			enums[e.Name] = e
			d.Enums = append(d.Enums, e)
		}
		for _, xm := range s.doc.Messages {
			m, err := convertMessage(xm, definedIn)
			if err != nil {
				return nil, fail("message "+xm.Name, "%v", err)
			}
			if prev, ok := messages[m.ID]; ok {
				if prev.Name == m.Name {
					continue
				}
				return nil, fail("message "+m.Name, "id %d already used by %s", m.ID, prev.Name)
			}
			messages[m.ID] = m
			d.Messages = append(d.Messages, m)
		}
	}
	d.Sort()
	return d, nil
}

// mergeEnum adds the entries of next to prev. An entry redefined with the
// same name replaces the earlier one in place.
func mergeEnum(prev, next *model.Enum, log zerolog.Logger) {
	for _, entry := range next.Entries {
		i := slices.IndexFunc(prev.Entries, func(e *model.Entry) bool { return e.Name == entry.Name })
		if i < 0 {
			prev.Entries = append(prev.Entries, entry)
			continue
		}
		if prev.Entries[i].Value != entry.Value {
			log.Warn().
				Str("enum", prev.Name).
				Str("entry", entry.Name).
				Uint64("was", prev.Entries[i].Value).
				Uint64("now", entry.Value).
				Msg("enum entry redefined")
		}
		prev.Entries[i] = entry
	}
	prev.Bitmask = prev.Bitmask || next.Bitmask
	if prev.Description == "" {
		prev.Description = next.Description
	}
}

func convertEnum(xe xmlEnum, definedIn string) (*model.Enum, error) {
	e := &model.Enum{
		Name:        strings.TrimSpace(xe.Name),
		Description: text(xe.Description),
		Bitmask:     strings.TrimSpace(xe.Bitmask) == "true",
		Deprecated:  xe.Deprecated.toModel(),
		DefinedIn:   definedIn,
	}
	// Entries without a value continue from the previous one.
	var next uint64
	for _, xentry := range xe.Entries {
		value := next
		if strings.TrimSpace(xentry.Value) != "" {
			v, err := ParseValue(xentry.Value)
			if err != nil {
				return nil, fmt.Errorf("entry %s: invalid value %q", xentry.Name, xentry.Value)
			}
			value = v
		}
		next = value + 1
		e.Entries = append(e.Entries, &model.Entry{
			Name:        strings.TrimSpace(xentry.Name),
			Value:       value,
			Description: text(xentry.Description),
			Deprecated:  xentry.Deprecated.toModel(),
		})
	}
	return e, nil
}

func convertMessage(xm xmlMessage, definedIn string) (*model.Message, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(xm.ID), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q", xm.ID)
	}
	m := &model.Message{
		ID:          uint32(id),
		Name:        strings.TrimSpace(xm.Name),
		Description: text(xm.Description),
		WIP:         xm.WIP,
		Deprecated:  xm.Deprecated.toModel(),
		DefinedIn:   definedIn,
	}
	for _, xf := range xm.Fields {
		typ, err := model.ParseType(xf.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", xf.Name, err)
		}
		m.Fields = append(m.Fields, &model.Field{
			Name:        strings.TrimSpace(xf.Name),
			Type:        typ,
			Enum:        strings.TrimSpace(xf.Enum),
			Extension:   xf.extension,
			Description: text(xf.Text),
			Units:       strings.TrimSpace(xf.Units),
			Display:     strings.TrimSpace(xf.Display),
		})
	}
	return m, nil
}
