// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package generator

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// UnknownTargetError is returned by Lookup for an unregistered name.
type UnknownTargetError struct {
	Name      string
	Available []string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// Registry maps target names to generators. The zero value is ready to use.
type Registry struct {
	mu   sync.RWMutex
	gens map[string]Generator
}

// Register adds g under its metadata name. Registering a name twice is a
// programming error and panics.
func (r *Registry) Register(g Generator) {
	name := g.Metadata().Name
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.gens[name]; dup {
		panic(fmt.Sprintf("generator %q already registered", name))
	}
	if r.gens == nil {
		r.gens = make(map[string]Generator)
	}
	r.gens[name] = g
}

// Get returns the generator registered as name.
func (r *Registry) Get(name string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gens[name]
	return g, ok
}

// Lookup is Get with an *UnknownTargetError for missing names.
func (r *Registry) Lookup(name string) (Generator, error) {
	if g, ok := r.Get(name); ok {
		return g, nil
	}
	return nil, &UnknownTargetError{Name: name, Available: r.List()}
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.gens))
}

// targets holds the generators linked into the binary.
var targets Registry

// Register adds g to the default registry.
func Register(g Generator) { targets.Register(g) }

// Get returns a generator from the default registry.
func Get(name string) (Generator, bool) { return targets.Get(name) }

// Lookup returns a generator from the default registry.
func Lookup(name string) (Generator, error) { return targets.Lookup(name) }

// List returns the names in the default registry.
func List() []string { return targets.List() }
