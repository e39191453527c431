// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/mavgen/generator"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "mavgen %s\n", version)
			fmt.Fprintf(w, "  commit:     %s\n", commit)
			fmt.Fprintf(w, "  built:      %s\n", date)
			fmt.Fprintf(w, "  go:         %s\n", runtime.Version())
			for _, name := range generator.List() {
				g, _ := generator.Get(name)
				meta := g.Metadata()
				fmt.Fprintf(w, "  generator:  %s %s (%s)\n", meta.Name, meta.Version, strings.Join(meta.Features, ", "))
			}
			return nil
		},
	}
}
