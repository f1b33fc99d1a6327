// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete stackhand CLI command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stackhand/stackhand/cmd/stackhand/cli"
	doctorcmd "github.com/stackhand/stackhand/cmd/stackhand/doctor"
	plancmd "github.com/stackhand/stackhand/cmd/stackhand/plans"
	prcmd "github.com/stackhand/stackhand/cmd/stackhand/pr"
	stackcmd "github.com/stackhand/stackhand/cmd/stackhand/stack"
	"github.com/stackhand/stackhand/lib/version"
)

// Root builds and returns the complete stackhand CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "stackhand",
		Description: `Stackhand: Pulumi automation for Azure.

Run Pulumi previews and deployments inside ephemeral, pre-authenticated
containers, and post plan summaries to Azure DevOps pull requests.`,
		Subcommands: []*cli.Command{
			stackcmd.Command(),
			plancmd.Command(),
			prcmd.Command(),
			doctorcmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("stackhand %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Check the environment (start here when lost)",
				Command:     "stackhand doctor",
			},
			{
				Description: "Preview pending changes for a stack",
				Command:     "stackhand stack preview --stack dev",
			},
			{
				Description: "Deploy non-interactively",
				Command:     "stackhand stack up --stack prod",
			},
			{
				Description: "Post the latest plan summary to a pull request",
				Command:     "stackhand pr comment --pr 42 --plan latest --stack dev",
			},
		},
	}
}
