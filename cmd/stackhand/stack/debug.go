// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/stackhand/stackhand/cmd/stackhand/cli"
)

type debugParams struct {
	sessionParams
	Shell string `flag:"shell" desc:"shell to run inside the container" default:"/bin/bash"`
}

func debugCommand() *cli.Command {
	var params debugParams

	return &cli.Command{
		Name:    "debug",
		Summary: "Open an interactive shell in the authenticated container",
		Description: `Create the authenticated Pulumi container exactly as preview and up
do — backend logged in, dependencies installed, stack selected — and
attach an interactive shell to it. Useful for inspecting state,
running ad-hoc pulumi commands, or debugging provider authentication.

The container is removed when the shell exits (pass --keep to retain
it). Requires a terminal; refuses to run when stdin or stdout is
piped.`,
		Usage: "stackhand stack debug [flags]",
		Examples: []cli.Example{
			{
				Description: "Shell into the dev stack's container",
				Command:     "stackhand stack debug --stack dev",
			},
			{
				Description: "Use a different shell",
				Command:     "stackhand stack debug --stack dev --shell /bin/sh",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("debug requires a terminal (stdin or stdout is not a TTY)")
			}

			s, err := openSession(ctx, &params.sessionParams, sessionOptions{ensureStack: true}, logger)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			logger.Info("attaching shell", "container", s.bound.Name(), "stack", s.stackName)
			return s.engine.Terminal(ctx, s.bound.Name(), params.Shell)
		},
	}
}
