// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package fetch retrieves the upstream MAVLink message definitions.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// MAVLinkRepo is the repository holding the reference definitions.
	MAVLinkRepo = "https://github.com/mavlink/mavlink"

	// DefaultRef is the git reference (tag or branch) used when none is given.
	DefaultRef = "master"

	// DefinitionsPath is the definitions directory within the repository.
	DefinitionsPath = "message_definitions/v1.0"
)

// Options configures where the definitions come from.
type Options struct {
	// Ref is the git reference (tag or branch) to use.
	// If empty, DefaultRef is used.
	Ref string

	// RepoDir is a path to an existing clone of the mavlink repository.
	// If set, the repository is used instead of cloning.
	RepoDir string

	// CacheDir keeps clones between runs, one per ref. If empty, the clone
	// goes to a temporary directory removed by Result.Close.
	CacheDir string

	// Timeout for network operations.
	Timeout time.Duration

	Logger zerolog.Logger
}

// Result describes fetched definitions.
type Result struct {
	// Dir is the directory holding the *.xml definition files.
	Dir string

	// Ref is the git reference that was used.
	Ref string

	// CommitHash is the git commit hash, if known.
	CommitHash string

	// Source describes where the definitions were loaded from.
	Source string

	cleanup string
}

// Close removes a temporary clone. It is a no-op otherwise.
func (r *Result) Close() error {
	if r == nil || r.cleanup == "" {
		return nil
	}
	dir := r.cleanup
	r.cleanup = ""
	return os.RemoveAll(dir)
}

// Fetch locates the definitions directory, cloning the repository when no
// local copy is given. Callers must Close the result.
func Fetch(ctx context.Context, opts Options) (*Result, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Ref == "" {
		opts.Ref = DefaultRef
	}

	if opts.RepoDir != "" {
		return fetchFromRepo(opts.RepoDir, opts.Ref)
	}
	return fetchFromGit(ctx, opts)
}

// fetchFromRepo uses an existing checkout. The ref is recorded as given;
// the checkout is not switched.
func fetchFromRepo(repoDir, ref string) (*Result, error) {
	dir := filepath.Join(repoDir, filepath.FromSlash(DefinitionsPath))
	if err := checkDefinitions(dir); err != nil {
		return nil, fmt.Errorf("read from repo: %w", err)
	}

	return &Result{
		Dir:        dir,
		Ref:        ref,
		CommitHash: getGitHash(repoDir),
		Source:     fmt.Sprintf("repo://%s", repoDir),
	}, nil
}

// fetchFromGit clones the definitions directory of ref.
func fetchFromGit(ctx context.Context, opts Options) (*Result, error) {
	log := opts.Logger
	var (
		cloneDir string
		cleanup  string
	)
	if opts.CacheDir != "" {
		cloneDir = filepath.Join(opts.CacheDir, cacheKey(opts.Ref))
		if res, err := fetchFromRepo(cloneDir, opts.Ref); err == nil {
			log.Debug().Str("dir", cloneDir).Str("ref", opts.Ref).Msg("using cached clone")
			res.Source = fmt.Sprintf("%s@%s", MAVLinkRepo, opts.Ref)
			return res, nil
		}
		if err := os.RemoveAll(cloneDir); err != nil {
			return nil, fmt.Errorf("reset cache: %w", err)
		}
		if err := os.MkdirAll(opts.CacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	} else {
		tmp, err := os.MkdirTemp("", "mavgen-*")
		if err != nil {
			return nil, fmt.Errorf("create temp dir: %w", err)
		}
		cloneDir, cleanup = tmp, tmp
	}

	fail := func(err error) (*Result, error) {
		if cleanup != "" {
			os.RemoveAll(cleanup)
		} else {
			os.RemoveAll(cloneDir)
		}
		return nil, err
	}

	cloneCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	log.Info().Str("repo", MAVLinkRepo).Str("ref", opts.Ref).Msg("cloning definitions")
	cmd := exec.CommandContext(cloneCtx, "git", "clone",
		"--quiet",
		"--depth=1",
		"--filter=blob:none",
		"--sparse",
		"--branch="+opts.Ref,
		"--single-branch",
		MAVLinkRepo,
		cloneDir,
	)
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return fail(fmt.Errorf("git clone: %w", err))
	}

	cmd = exec.CommandContext(cloneCtx, "git", "-C", cloneDir, "sparse-checkout", "set", DefinitionsPath)
	if err := cmd.Run(); err != nil {
		return fail(fmt.Errorf("sparse checkout: %w", err))
	}

	res, err := fetchFromRepo(cloneDir, opts.Ref)
	if err != nil {
		return fail(err)
	}
	res.Source = fmt.Sprintf("%s@%s", MAVLinkRepo, opts.Ref)
	res.cleanup = cleanup
	return res, nil
}

// checkDefinitions reports an error unless dir holds at least one *.xml file.
func checkDefinitions(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return err
		}
		return errors.New("no definition files in " + dir)
	}
	return nil
}

// cacheKey turns a ref into a single path element.
func cacheKey(ref string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, ref)
}

func getGitHash(repoDir string) string {
	// Try reading HEAD directly
	headPath := filepath.Join(repoDir, ".git", "HEAD")
	data, err := os.ReadFile(headPath)
	if err != nil {
		return ""
	}

	content := strings.TrimSpace(string(data))

	// Direct hash (detached HEAD)
	if len(content) == 40 && isHex(content) {
		return content
	}

	// Reference (e.g., "ref: refs/heads/master")
	if ref, ok := strings.CutPrefix(content, "ref: "); ok {
		data, err := os.ReadFile(filepath.Join(repoDir, ".git", filepath.FromSlash(ref)))
		if err != nil {
			return ""
		}
		hash := strings.TrimSpace(string(data))
		if len(hash) >= 40 && isHex(hash[:40]) {
			return hash[:40]
		}
	}

	return ""
}

func isHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
