// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stackhand/stackhand/cmd/stackhand/cli"
)

type selectParams struct {
	sessionParams
}

func selectCommand() *cli.Command {
	var params selectParams

	return &cli.Command{
		Name:    "select",
		Summary: "Verify a stack exists in the state backend",
		Description: `Select the named stack in the backend. Fails if the stack does not
exist, which makes this a cheap existence check for CI gates before an
up.`,
		Usage: "stackhand stack select [stack] [flags]",
		Examples: []cli.Example{
			{
				Description: "Check that the prod stack exists",
				Command:     "stackhand stack select prod",
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

			if err := s.workspace.SelectStack(ctx); err != nil {
				return err
			}
			logger.Info("stack selected", "stack", s.stackName)
			return nil
		},
	}
}
