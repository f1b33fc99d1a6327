// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/stackhand/stackhand/cmd/stackhand/cli"
	"github.com/stackhand/stackhand/cmd/stackhand/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like doctor) return a
		// cli.ExitError with the desired exit code. Don't print a
		// redundant "error:" line for those.
		var exitError *cli.ExitError
		if errors.As(err, &exitError) {
			os.Exit(exitError.Code)
		}

		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		// Container command failures carry the failed command's exit
		// code; propagate it so CI gates see the real status.
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return commands.Root().Execute(ctx, os.Args[1:])
}
