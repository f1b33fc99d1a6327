// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"github.com/stackhand/stackhand/cmd/stackhand/cli"
)

// Command returns the "stackhand stack" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "stack",
		Summary: "Run Pulumi operations in an authenticated container",
		Description: `Run Pulumi operations against a stack, inside an ephemeral container
built from the configured Pulumi image. The infrastructure directory is
bind-mounted, Azure credentials are applied, the blob backend is logged
in, and dependencies are installed before the operation runs.`,
		Subcommands: []*cli.Command{
			previewCommand(),
			upCommand(),
			debugCommand(),
			lsCommand(),
			initCommand(),
			selectCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Preview pending changes for the dev stack",
				Command:     "stackhand stack preview --stack dev",
			},
			{
				Description: "Apply changes non-interactively",
				Command:     "stackhand stack up --stack prod",
			},
			{
				Description: "Open a shell in the authenticated container",
				Command:     "stackhand stack debug --stack dev",
			},
		},
	}
}
