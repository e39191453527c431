// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/mavgen/internal/definitions"
	"github.com/albertocavalcante/mavgen/internal/layout"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		sources  []string
		include  []string
		exclude  []string
		ordering string
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the wire layout of every message",
		Long: `inspect loads MAVLink definitions and prints, per dialect, each message's
id, name, minimum (V1) and maximum (V2) payload length and CRC-EXTRA.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := layout.ParseOrdering(ordering)
			if err != nil {
				return err
			}
			loaded, err := definitions.Load(cmd.Context(), definitions.Options{
				Dirs:    sources,
				Include: include,
				Exclude: exclude,
				Logger:  a.log,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for i, d := range loaded.Protocol.Dialects {
				plans, err := layout.PlanDialect(d, order)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "dialect %s (%d messages, %d enums)\n", d.Name, len(d.Messages), len(d.Enums))
				fmt.Fprintln(w, "ID\tNAME\tMIN\tMAX\tCRC")
				for _, m := range d.Messages {
					p := plans[m.ID]
					fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n", m.ID, m.Name, p.MinLen, p.MaxLen, p.CRCExtra)
				}
			}
			return w.Flush()
		},
	}
	fl := cmd.Flags()
	fl.StringSliceVarP(&sources, "source", "s", nil, "directory of MAVLink XML definitions (repeatable)")
	fl.StringSliceVar(&include, "include", nil, "inspect only these dialects")
	fl.StringSliceVar(&exclude, "exclude", nil, "skip these dialects")
	fl.StringVar(&ordering, "ordering", "", "base field ordering: element-width or field-width")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func sortedKeys(m map[string][]byte) []string {
	return slices.Sorted(maps.Keys(m))
}
