// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package generator connects MAVLink protocol models to target code
// generators. A target registers itself by name; the orchestrator looks it up,
// checks that it supports the requested features and runs it per protocol.
package generator

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/albertocavalcante/mavgen/model"
)

// Feature names a target capability switched on by Config.
const (
	FeatureAlloc = "alloc"
	FeatureStd   = "std"
	FeatureSerde = "serde"
	FeatureTests = "tests"
	FeatureIndex = "index"
)

// Generator turns a protocol into source files for one target language.
type Generator interface {
	Metadata() Metadata

	// Generate emits one group of files per wanted dialect. It must not
	// modify p.
	Generate(ctx context.Context, p *model.Protocol, cfg Config) (*Output, error)
}

// Metadata describes a target.
type Metadata struct {
	// Name selects the target on the command line (e.g. "go").
	Name string

	// Version is recorded in fingerprints; bumping it regenerates every
	// dialect.
	Version string

	Description string

	// Features lists the Feature* switches the target honours.
	Features []string
}

// Supports reports whether the target honours feature.
func (m Metadata) Supports(feature string) bool {
	return slices.Contains(m.Features, feature)
}

// Check returns an error naming every feature cfg enables that g does not
// support.
func Check(g Generator, cfg Config) error {
	meta := g.Metadata()
	var missing []string
	for _, f := range cfg.Features() {
		if !meta.Supports(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("target %s does not support %s", meta.Name, strings.Join(missing, ", "))
	}
	return nil
}
