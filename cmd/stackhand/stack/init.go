// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stackhand/stackhand/cmd/stackhand/cli"
)

type initParams struct {
	sessionParams
}

func initCommand() *cli.Command {
	var params initParams

	return &cli.Command{
		Name:    "init",
		Summary: "Create a new stack in the state backend",
		Description: `Create the selected stack in the blob backend. Fails if the stack
already exists; preview and up create the stack automatically, so init
is only needed to provision a stack ahead of its first deployment.`,
		Usage: "stackhand stack init [stack] [flags]",
		Examples: []cli.Example{
			{
				Description: "Create the staging stack",
				Command:     "stackhand stack init staging",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 1 {
				return fmt.Errorf("unexpected argument: %s", args[1])
			}
			if len(args) == 1 {
				params.Stack = args[0]
			}

			s, err := openSession(ctx, &params.sessionParams, sessionOptions{}, logger)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			if err := s.workspace.InitStack(ctx); err != nil {
				return err
			}
			logger.Info("stack created", "stack", s.stackName)
			return nil
		},
	}
}
