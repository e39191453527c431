// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package pipeline runs a generation: selection, validation, per-dialect
// fingerprinting, code generation and atomic output.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/albertocavalcante/mavgen/generator"
	"github.com/albertocavalcante/mavgen/internal/fingerprint"
	"github.com/albertocavalcante/mavgen/internal/naming"
	"github.com/albertocavalcante/mavgen/model"
)

// FingerprintStore persists one record per dialect between runs.
type FingerprintStore interface {
	Get(dialect string) (*fingerprint.Record, error)
	Put(dialect string, r *fingerprint.Record) error
	Delete(dialect string) error
	Keys() ([]string, error)
}

// Options configures a run.
type Options struct {
	// Generator produces the code. Required.
	Generator generator.Generator

	// Config is passed to the generator. Its Dialects field is managed by
	// the pipeline.
	Config generator.Config

	// Selection restricts what is generated. Nil selects everything.
	Selection *generator.Selection

	// OutputDir receives the generated files.
	OutputDir string

	// Store enables skipping unchanged dialects. Nil regenerates all.
	Store FingerprintStore

	// DryRun generates in memory without touching the output directory
	// or the store.
	DryRun bool

	// Logger receives progress. The zero value discards it.
	Logger zerolog.Logger

	// RunID identifies the run in logs and records. Empty generates one.
	RunID string

	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time
}

// Result summarises a run.
type Result struct {
	RunID string

	// Generated and Skipped list dialect names.
	Generated []string
	Skipped   []string

	// Written lists files whose content changed; Unchanged those that
	// were regenerated identically. Removed lists files of an earlier run
	// that are no longer produced. Paths are relative to the output
	// directory, slash-separated.
	Written   []string
	Unchanged []string
	Removed   []string

	// Unknown lists selection names that matched nothing.
	Unknown []string

	// Files holds every generated file, including in dry runs.
	Files map[string][]byte
}

// WriteError reports a failure to write or remove an output file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// fingerprintInput is everything that determines the output of a dialect.
type fingerprintInput struct {
	Generator string
	Version   string
	Package   string
	Dialect   model.Dialect
	Config    generator.Config
}

// Run executes the pipeline on p. Definition and collision errors abort
// before anything is written.
func Run(ctx context.Context, p *model.Protocol, opts Options) (*Result, error) {
	if opts.Generator == nil {
		return nil, errors.New("pipeline: no generator")
	}
	if opts.OutputDir == "" && !opts.DryRun {
		return nil, errors.New("pipeline: no output directory")
	}
	if err := generator.Check(opts.Generator, opts.Config); err != nil {
		return nil, err
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger.With().Str("run", runID).Logger()
	res := &Result{RunID: runID}

	p, res.Unknown = generator.Select(p, opts.Selection)
	for _, name := range res.Unknown {
		log.Warn().Str("name", name).Msg("selection matches nothing")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	pkgs, err := naming.PackageNames(p)
	if err != nil {
		return nil, err
	}

	meta := opts.Generator.Metadata()
	cfg := opts.Config
	cfg.Dialects = nil
	prints := make(map[string][]byte, len(p.Dialects))
	stale := []string{}
	for _, d := range p.Dialects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		in := fingerprintInput{
			Generator: meta.Name + " " + meta.Version,
			Version:   cfg.Version,
			Package:   pkgs[d.Name],
			Dialect:   *d,
			Config:    cfg,
		}
		in.Dialect.Source = filepath.Base(d.Source)
		fp, err := fingerprint.Compute(in)
		if err != nil {
			return nil, fmt.Errorf("fingerprint %s: %w", d.Name, err)
		}
		prints[d.Name] = fp

		if opts.Store != nil && !opts.DryRun && upToDate(opts.Store, d.Name, fp, opts.OutputDir, log) {
			res.Skipped = append(res.Skipped, d.Name)
			log.Debug().Str("dialect", d.Name).Msg("dialect up to date")
			continue
		}
		stale = append(stale, d.Name)
	}

	cfg.Dialects = stale
	out, err := opts.Generator.Generate(ctx, p, cfg)
	if err != nil {
		return nil, err
	}
	res.Generated = stale
	res.Files = out.Files
	if opts.DryRun {
		for _, name := range slices.Sorted(maps.Keys(out.Files)) {
			ev := log.Info().Str("file", name).Int("bytes", len(out.Files[name]))
			if group, ok := out.Group(name); ok {
				ev = ev.Str("dialect", group)
			}
			ev.Msg("would write")
		}
		return res, nil
	}

	for _, name := range slices.Sorted(maps.Keys(out.Files)) {
		changed, err := writeFile(filepath.Join(opts.OutputDir, filepath.FromSlash(name)), out.Files[name])
		if err != nil {
			return nil, err
		}
		if changed {
			res.Written = append(res.Written, name)
		} else {
			res.Unchanged = append(res.Unchanged, name)
		}
	}

	if opts.Store != nil {
		if err := prune(opts, p, out, res, log); err != nil {
			return nil, err
		}
		if err := recordUngrouped(opts.Store, out, runID, now()); err != nil {
			return nil, err
		}
		for _, name := range stale {
			r := &fingerprint.Record{
				Fingerprint: prints[name],
				Files:       out.Groups[name],
				RunID:       runID,
				Generated:   now().UTC(),
			}
			if err := opts.Store.Put(name, r); err != nil {
				return nil, fmt.Errorf("store fingerprint %s: %w", name, err)
			}
		}
	}

	for _, name := range stale {
		log.Info().Str("dialect", name).Strs("files", out.Groups[name]).Msg("generated dialect")
	}
	log.Info().
		Int("generated", len(res.Generated)).
		Int("skipped", len(res.Skipped)).
		Int("written", len(res.Written)).
		Int("removed", len(res.Removed)).
		Msg("generation complete")
	return res, nil
}

// upToDate reports whether the stored record of dialect matches fp and
// every file it lists still exists.
func upToDate(store FingerprintStore, dialect string, fp []byte, dir string, log zerolog.Logger) bool {
	rec, err := store.Get(dialect)
	if err != nil {
		log.Warn().Err(err).Str("dialect", dialect).Msg("reading fingerprint")
		return false
	}
	if rec == nil || !bytes.Equal(rec.Fingerprint, fp) || len(rec.Files) == 0 {
		return false
	}
	for _, name := range rec.Files {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
			log.Debug().Str("dialect", dialect).Str("file", name).Msg("generated file missing")
			return false
		}
	}
	return true
}

// ungroupedKey holds the files that belong to no dialect, such as the
// index. Dialect names never contain a slash.
const ungroupedKey = "/"

// prune removes files an earlier run produced that this run did not, and
// forgets dialects that are no longer part of the protocol.
func prune(opts Options, p *model.Protocol, out *generator.Output, res *Result, log zerolog.Logger) error {
	keys, err := opts.Store.Keys()
	if err != nil {
		return fmt.Errorf("list fingerprints: %w", err)
	}
	current := p.DialectNames()
	for _, key := range keys {
		_, regenerated := out.Groups[key]
		dropped := !slices.Contains(current, key)
		if key != ungroupedKey && !regenerated && !dropped {
			continue
		}
		rec, err := opts.Store.Get(key)
		if err != nil {
			return fmt.Errorf("read fingerprint %s: %w", key, err)
		}
		if rec != nil {
			for _, name := range rec.Files {
				if _, ok := out.Files[name]; ok {
					continue
				}
				if err := removeFile(opts.OutputDir, name); err != nil {
					return err
				}
				res.Removed = append(res.Removed, name)
				ev := log.Info().Str("file", name)
				if key != ungroupedKey {
					ev = ev.Str("dialect", key)
				}
				ev.Msg("removed stale file")
			}
		}
		if dropped && key != ungroupedKey {
			if err := opts.Store.Delete(key); err != nil {
				return fmt.Errorf("delete fingerprint %s: %w", key, err)
			}
		}
	}
	slices.Sort(res.Removed)
	return nil
}

// recordUngrouped stores the files of out that belong to no dialect so that
// a later run can remove them once they are no longer produced.
func recordUngrouped(store FingerprintStore, out *generator.Output, runID string, now time.Time) error {
	var files []string
	for _, name := range slices.Sorted(maps.Keys(out.Files)) {
		if _, ok := out.Group(name); !ok {
			files = append(files, name)
		}
	}
	if len(files) == 0 {
		if err := store.Delete(ungroupedKey); err != nil {
			return fmt.Errorf("delete fingerprint %s: %w", ungroupedKey, err)
		}
		return nil
	}
	r := &fingerprint.Record{Files: files, RunID: runID, Generated: now.UTC()}
	if err := store.Put(ungroupedKey, r); err != nil {
		return fmt.Errorf("store fingerprint %s: %w", ungroupedKey, err)
	}
	return nil
}

// writeFile atomically replaces path with data. It reports false when path
// already holds data.
func writeFile(path string, data []byte) (changed bool, err error) {
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, data) {
		return false, nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, &WriteError{Path: path, Err: err}
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return false, &WriteError{Path: path, Err: err}
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return false, &WriteError{Path: path, Err: err}
	}
	if err = f.Chmod(0o644); err != nil {
		return false, &WriteError{Path: path, Err: err}
	}
	if err = f.Close(); err != nil {
		return false, &WriteError{Path: path, Err: err}
	}
	if err = os.Rename(tmp, path); err != nil {
		return false, &WriteError{Path: path, Err: err}
	}
	return true, nil
}

// removeFile deletes a generated file and its directory once empty.
func removeFile(dir, name string) error {
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &WriteError{Path: path, Err: err}
	}
	if parent := filepath.Dir(path); parent != filepath.Clean(dir) {
		// Fails while other files remain.
		_ = os.Remove(parent)
	}
	return nil
}
