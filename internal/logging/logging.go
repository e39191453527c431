// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package logging configures the zerolog logger used by mavgen.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Environment variables read by FromEnv.
const (
	EnvLevel   = "MAVGEN_LOG_LEVEL"
	EnvFormat  = "MAVGEN_LOG_FORMAT"
	EnvNoColor = "MAVGEN_LOG_NO_COLOR"
)

// Options configures a logger.
type Options struct {
	// Level is a zerolog level name. Empty means "info".
	Level string

	// Format is "console" (default) or "json".
	Format string

	// NoColor disables colors in console output.
	NoColor bool

	// Out receives log lines. Nil means stderr.
	Out io.Writer
}

// FromEnv returns Options populated from the environment.
func FromEnv() Options {
	return Options{
		Level:   os.Getenv(EnvLevel),
		Format:  os.Getenv(EnvFormat),
		NoColor: os.Getenv(EnvNoColor) != "",
	}
}

// New builds a logger tagged with app.
func New(app string, opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("log level: %w", err)
		}
		level = l
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    opts.NoColor,
		}
	case "json":
	default:
		return zerolog.Logger{}, fmt.Errorf("unknown log format %q (want console or json)", opts.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("app", app).Logger(), nil
}

// Init builds a logger with New and installs it as the global logger.
func Init(app string, opts Options) (zerolog.Logger, error) {
	logger, err := New(app, opts)
	if err != nil {
		return logger, err
	}
	log.Logger = logger
	return logger, nil
}
