// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/stackhand/stackhand/cmd/stackhand/cli"
)

type lsParams struct {
	sessionParams
	cli.JSONOutput
}

func lsCommand() *cli.Command {
	var params lsParams

	return &cli.Command{
		Name:    "ls",
		Summary: "List stacks in the state backend",
		Description: `List the stacks visible in the configured blob backend, with last
update time and resource count. Runs "pulumi stack ls" inside the
authenticated container without creating or selecting a stack.`,
		Usage: "stackhand stack ls [flags]",
		Examples: []cli.Example{
			{
				Description: "List stacks",
				Command:     "stackhand stack ls",
			},
			{
				Description: "Machine-readable output",
				Command:     "stackhand stack ls --json",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			s, err := openSession(ctx, &params.sessionParams, sessionOptions{}, logger)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			stacks, err := s.workspace.ListStacks(ctx)
			if err != nil {
				return err
			}

			if done, err := params.EmitJSON(stacks); done {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(writer, "NAME\tLAST UPDATE\tRESOURCES")
			for _, info := range stacks {
				name := info.Name
				if info.Current {
					name += "*"
				}
				lastUpdate := info.LastUpdate
				if lastUpdate == "" {
					lastUpdate = "-"
				}
				fmt.Fprintf(writer, "%s\t%s\t%d\n", name, lastUpdate, info.ResourceCount)
			}
			return writer.Flush()
		},
	}
}
