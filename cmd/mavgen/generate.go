// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/mod/module"

	"github.com/albertocavalcante/mavgen/generator"
	"github.com/albertocavalcante/mavgen/internal/config"
	"github.com/albertocavalcante/mavgen/internal/definitions"
	"github.com/albertocavalcante/mavgen/internal/fetch"
	"github.com/albertocavalcante/mavgen/internal/fingerprint"
	"github.com/albertocavalcante/mavgen/internal/pipeline"
)

type generateFlags struct {
	config        string
	sources       []string
	output        string
	module        string
	fingerprints  string
	target        string
	ordering      string
	include       []string
	exclude       []string
	alloc         bool
	std           bool
	serde         bool
	tests         bool
	dryRun        bool
	messages      []string
	enums         []string
	bitmasks      []string
	microservices []string
	allEnums      bool
	mavlinkRef    string
	mavlinkRepo   string
	fetchCache    string
}

func newGenerateCmd(a *app) *cobra.Command {
	f := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Go packages from MAVLink definitions",
		Example: `  mavgen generate -s message_definitions/v1.0 -o dialects
  mavgen generate -s defs -o dialects --microservices heartbeat,mission --alloc
  mavgen generate --config mavgen.toml --dry-run
  mavgen generate --mavlink-ref master --include common -o dialects`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.generate(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "configuration file (default: "+config.DefaultFile+" if present)")
	fl.StringSliceVarP(&f.sources, "source", "s", nil, "directory of MAVLink XML definitions (repeatable)")
	fl.StringVarP(&f.output, "output", "o", "", "output directory (default: dialects)")
	fl.StringVar(&f.module, "module", "", "import path of the output directory (default: derived from go.mod)")
	fl.StringVar(&f.fingerprints, "fingerprints", "", "fingerprint database; enables skipping unchanged dialects")
	fl.StringVar(&f.target, "target", "go", "code generator ("+strings.Join(generator.List(), ", ")+")")
	fl.StringVar(&f.ordering, "ordering", "",
		"base field ordering: element-width (default, the wire order of deployed MAVLink) or field-width (sorts by total field width, arrays included)")
	fl.StringSliceVar(&f.include, "include", nil, "generate only these dialects")
	fl.StringSliceVar(&f.exclude, "exclude", nil, "skip these dialects")
	fl.BoolVar(&f.alloc, "alloc", false, "use slices for array fields")
	fl.BoolVar(&f.std, "std", false, "add fmt.Stringer implementations (implies --alloc)")
	fl.BoolVar(&f.serde, "serde", false, "add JSON tags and text marshaling")
	fl.BoolVar(&f.tests, "tests", false, "generate codec tests")
	fl.BoolVar(&f.dryRun, "dry-run", false, "list the files without writing them")
	fl.StringSliceVar(&f.messages, "messages", nil, "generate only these messages")
	fl.StringSliceVar(&f.enums, "enums", nil, "also generate these enums")
	fl.StringSliceVar(&f.bitmasks, "bitmasks", nil, "also generate these bitmasks")
	fl.StringSliceVar(&f.microservices, "microservices", nil,
		"generate the messages of these microservices ("+strings.Join(generator.MicroserviceNames(), ", ")+")")
	fl.BoolVar(&f.allEnums, "all-enums", false, "generate every enum, referenced or not")
	fl.StringVar(&f.mavlinkRef, "mavlink-ref", "", "also load the upstream definitions at this git ref")
	fl.StringVar(&f.mavlinkRepo, "mavlink-repo", "", "also load the definitions of a local mavlink clone")
	fl.StringVar(&f.fetchCache, "fetch-cache", "", "keep upstream clones in this directory")
	return cmd
}

// resolveConfig merges the configuration file with the flags set on cmd.
func resolveConfig(cmd *cobra.Command, f *generateFlags) (config.Config, error) {
	cfg := config.Default()
	path := f.config
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			path = config.DefaultFile
		}
	}
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}

	fl := cmd.Flags()
	set := fl.Changed
	if set("source") {
		cfg.Sources = f.sources
	}
	if set("output") {
		cfg.Output = f.output
	}
	if set("module") {
		cfg.Module = f.module
	}
	if set("fingerprints") {
		cfg.Fingerprints = f.fingerprints
	}
	if set("ordering") {
		cfg.Ordering = f.ordering
	}
	if set("include") {
		cfg.Include = f.include
	}
	if set("exclude") {
		cfg.Exclude = f.exclude
	}
	if set("alloc") {
		cfg.Features.Alloc = f.alloc
	}
	if set("std") {
		cfg.Features.Std = f.std
	}
	if set("serde") {
		cfg.Features.Serde = f.serde
	}
	if set("tests") {
		cfg.Features.Tests = f.tests
	}
	if set("mavlink-ref") {
		cfg.Fetch.Ref = f.mavlinkRef
	}
	if set("mavlink-repo") {
		cfg.Fetch.Repo = f.mavlinkRepo
	}
	if set("fetch-cache") {
		cfg.Fetch.Cache = f.fetchCache
	}

	if set("messages") || set("enums") || set("bitmasks") || set("microservices") || set("all-enums") {
		sel := &generator.Selection{}
		if cfg.Selection != nil {
			*sel = *cfg.Selection
		}
		if set("messages") {
			sel.Messages = f.messages
		}
		if set("enums") {
			sel.Enums = f.enums
		}
		if set("bitmasks") {
			sel.Bitmasks = f.bitmasks
		}
		if set("microservices") {
			sel.Microservices = f.microservices
		}
		if set("all-enums") {
			sel.AllEnums = f.allEnums
		}
		cfg.Selection = sel
	}
	return cfg, nil
}

func (a *app) generate(cmd *cobra.Command, f *generateFlags) error {
	ctx := cmd.Context()
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}
	if len(cfg.Sources) == 0 && !cfg.Fetch.Enabled() {
		return errors.New("no definition sources (use -s, --mavlink-ref or [generate] sources)")
	}
	gen, err := generator.Lookup(f.target)
	if err != nil {
		return err
	}

	prefix := cfg.Module
	if prefix != "" {
		if err := module.CheckImportPath(prefix); err != nil {
			return fmt.Errorf("--module: %w", err)
		}
	} else if prefix, err = modulePrefix(cfg.Output); err != nil {
		if !errors.Is(err, errNoModule) {
			return err
		}
		a.log.Warn().Err(err).Msg("no module path; the index package is not generated")
	}

	dirs := cfg.Sources
	if cfg.Fetch.Enabled() {
		fetched, err := fetch.Fetch(ctx, fetch.Options{
			Ref:      cfg.Fetch.Ref,
			RepoDir:  cfg.Fetch.Repo,
			CacheDir: cfg.Fetch.Cache,
			Logger:   a.log,
		})
		if err != nil {
			return fmt.Errorf("fetch definitions: %w", err)
		}
		defer fetched.Close()
		a.log.Info().
			Str("source", fetched.Source).
			Str("commit", fetched.CommitHash).
			Msg("using upstream definitions")
		dirs = append(slices.Clone(dirs), fetched.Dir)
	}

	loaded, err := definitions.Load(ctx, definitions.Options{
		Dirs:    dirs,
		Include: cfg.Include,
		Exclude: cfg.Exclude,
		Logger:  a.log,
	})
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Generator: gen,
		Config: generator.Config{
			ImportPrefix:  prefix,
			Alloc:         cfg.Features.Alloc,
			Std:           cfg.Features.Std,
			Serde:         cfg.Features.Serde,
			GenerateTests: cfg.Features.Tests,
			Ordering:      cfg.Ordering,
			Source:        loaded.Source,
			Version:       version,
		},
		Selection: cfg.Selection,
		OutputDir: cfg.Output,
		DryRun:    f.dryRun,
		Logger:    a.log,
	}
	if cfg.Fingerprints != "" && !f.dryRun {
		store, err := fingerprint.Open(cfg.Fingerprints, a.log)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Store = store
	}

	res, err := pipeline.Run(ctx, loaded.Protocol, opts)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if f.dryRun {
		for _, name := range sortedKeys(res.Files) {
			fmt.Fprintln(w, name)
		}
		return nil
	}
	fmt.Fprintf(w, "generated %d dialect(s), skipped %d; wrote %d file(s), %d unchanged, removed %d\n",
		len(res.Generated), len(res.Skipped), len(res.Written), len(res.Unchanged), len(res.Removed))
	return nil
}
