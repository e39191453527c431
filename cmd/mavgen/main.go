// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Command mavgen generates Go packages from MAVLink XML definitions.
//
// Usage:
//
//	mavgen generate -s <dir>... -o <dest> [flags]
//	mavgen inspect -s <dir>...
//	mavgen version
//
// Settings may also come from a mavgen.toml file; flags override it.
// Logging is configured with --log-level and --log-format or the
// MAVGEN_LOG_LEVEL, MAVGEN_LOG_FORMAT and MAVGEN_LOG_NO_COLOR variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
