// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/albertocavalcante/mavgen/internal/logging"
)

// app holds state shared by subcommands.
type app struct {
	logLevel  string
	logFormat string
	log       zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "mavgen",
		Short: "MAVLink code generator for Go",
		Long: `mavgen turns MAVLink XML message definitions into Go packages: one
package per dialect with message types, payload codecs and enums, plus an
index package listing every dialect.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			opts := logging.FromEnv()
			if cmd.Flags().Changed("log-level") {
				opts.Level = a.logLevel
			}
			if cmd.Flags().Changed("log-format") {
				opts.Format = a.logFormat
			}
			opts.Out = cmd.ErrOrStderr()
			logger, err := logging.Init("mavgen", opts)
			if err != nil {
				return err
			}
			a.log = logger
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "console", "log format (console or json)")

	root.AddCommand(newGenerateCmd(a), newInspectCmd(a), newVersionCmd())
	return root
}
