// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/stackhand/stackhand/cmd/stackhand/cli"
)

type upParams struct {
	sessionParams
}

func upCommand() *cli.Command {
	var params upParams

	return &cli.Command{
		Name:    "up",
		Summary: "Deploy the stack non-interactively",
		Description: `Run "pulumi up" against the selected stack with confirmation prompts
disabled. The deployment output streams to stdout. Intended for CI
pipelines where the preview was already reviewed; there is no
interactive confirmation step.`,
		Usage: "stackhand stack up [flags]",
		Examples: []cli.Example{
			{
				Description: "Deploy the prod stack",
				Command:     "stackhand stack up --stack prod",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			s, err := openSession(ctx, &params.sessionParams, sessionOptions{ensureStack: true}, logger)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			return s.workspace.Up(ctx, os.Stdout)
		},
	}
}
