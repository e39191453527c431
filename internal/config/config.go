// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package config loads mavgen.toml.
//
// A configuration file has four optional tables:
//
//	[generate]
//	sources = ["message_definitions/v1.0"]
//	output = "dialects"
//	module = "example.com/drone/dialects"
//	fingerprints = ".mavgen/fingerprints.db"
//	include = ["common"]
//	exclude = []
//	ordering = "element-width"
//
//	[features]
//	alloc = true
//	std = false
//	serde = false
//	tests = true
//
//	[selection]
//	messages = ["HEARTBEAT"]
//	enums = []
//	bitmasks = []
//	microservices = ["mission"]
//	all_enums = false
//
//	[fetch]
//	ref = "master"
//	repo = "../mavlink"
//	cache = ".mavgen/cache"
//
// Relative paths are resolved against the directory of the file. A missing
// [selection] table selects everything. A [fetch] table with a ref or repo
// adds the upstream definitions to the sources.
package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/albertocavalcante/mavgen/generator"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "mavgen.toml"

// Features mirrors the [features] table.
type Features struct {
	Alloc bool
	Std   bool
	Serde bool
	Tests bool
}

// Fetch mirrors the [fetch] table.
type Fetch struct {
	// Ref is the upstream git reference to clone.
	Ref string

	// Repo is a local clone of the upstream repository.
	Repo string

	// Cache keeps clones between runs.
	Cache string
}

// Enabled reports whether upstream definitions were requested.
func (f Fetch) Enabled() bool {
	return f.Ref != "" || f.Repo != ""
}

// Config is a resolved mavgen configuration.
type Config struct {
	Sources      []string
	Output       string
	Module       string
	Fingerprints string
	Include      []string
	Exclude      []string
	Ordering     string
	Features     Features
	Fetch        Fetch

	// Selection is nil when everything is generated.
	Selection *generator.Selection
}

type fileConfig struct {
	Generate struct {
		Sources      []string `toml:"sources"`
		Output       string   `toml:"output"`
		Module       string   `toml:"module"`
		Fingerprints string   `toml:"fingerprints"`
		Include      []string `toml:"include"`
		Exclude      []string `toml:"exclude"`
		Ordering     string   `toml:"ordering"`
	} `toml:"generate"`
	Features struct {
		Alloc bool `toml:"alloc"`
		Std   bool `toml:"std"`
		Serde bool `toml:"serde"`
		Tests bool `toml:"tests"`
	} `toml:"features"`
	Selection struct {
		Messages      []string `toml:"messages"`
		Enums         []string `toml:"enums"`
		Bitmasks      []string `toml:"bitmasks"`
		Microservices []string `toml:"microservices"`
		AllEnums      bool     `toml:"all_enums"`
	} `toml:"selection"`
	Fetch struct {
		Ref   string `toml:"ref"`
		Repo  string `toml:"repo"`
		Cache string `toml:"cache"`
	} `toml:"fetch"`
}

// Default returns the configuration used without a file.
func Default() Config {
	return Config{
		Output:   "dialects",
		Ordering: "element-width",
	}
}

// Load reads the file at path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	base := filepath.Dir(path)

	g := raw.Generate
	if meta.IsDefined("generate", "sources") {
		cfg.Sources = make([]string, 0, len(g.Sources))
		for _, s := range normalize(g.Sources) {
			cfg.Sources = append(cfg.Sources, resolve(base, s))
		}
	}
	if meta.IsDefined("generate", "output") {
		cfg.Output = resolve(base, strings.TrimSpace(g.Output))
	}
	if meta.IsDefined("generate", "module") {
		cfg.Module = strings.TrimSpace(g.Module)
	}
	if meta.IsDefined("generate", "fingerprints") {
		cfg.Fingerprints = resolve(base, strings.TrimSpace(g.Fingerprints))
	}
	if meta.IsDefined("generate", "include") {
		cfg.Include = normalize(g.Include)
	}
	if meta.IsDefined("generate", "exclude") {
		cfg.Exclude = normalize(g.Exclude)
	}
	if meta.IsDefined("generate", "ordering") {
		cfg.Ordering = strings.TrimSpace(g.Ordering)
	}

	cfg.Features = Features(raw.Features)
	cfg.Fetch = Fetch{
		Ref:   strings.TrimSpace(raw.Fetch.Ref),
		Repo:  resolve(base, strings.TrimSpace(raw.Fetch.Repo)),
		Cache: resolve(base, strings.TrimSpace(raw.Fetch.Cache)),
	}

	if meta.IsDefined("selection") {
		s := raw.Selection
		cfg.Selection = &generator.Selection{
			Messages:      normalize(s.Messages),
			Enums:         normalize(s.Enums),
			Bitmasks:      normalize(s.Bitmasks),
			Microservices: normalize(s.Microservices),
			AllEnums:      s.AllEnums,
		}
	}
	return cfg, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// normalize trims entries and drops empty and repeated ones.
func normalize(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
