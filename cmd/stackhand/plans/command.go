// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package plans implements the "stackhand plan" command group:
// inspecting the local archive of preview plans.
package plans

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/stackhand/stackhand/cmd/stackhand/cli"
	"github.com/stackhand/stackhand/lib/config"
	"github.com/stackhand/stackhand/lib/plan"
)

// Command returns the "stackhand plan" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "plan",
		Summary: "Inspect archived preview plans",
		Subcommands: []*cli.Command{
			lsCommand(),
			showCommand(),
		},
	}
}

type lsParams struct {
	cli.JSONOutput
	Config string `flag:"config" desc:"config file path (overrides STACKHAND_CONFIG)"`
	Stack  string `flag:"stack,s" desc:"only list plans for this stack"`
}

func lsCommand() *cli.Command {
	var params lsParams

	return &cli.Command{
		Name:    "ls",
		Summary: "List archived plans",
		Description: `List the plans archived by "stack preview --summary", newest first.
Each entry shows the stack, the plan digest, when it was archived, and
the uncompressed size.`,
		Usage: "stackhand plan ls [flags]",
		Examples: []cli.Example{
			{
				Description: "List every archived plan",
				Command:     "stackhand plan ls",
			},
			{
				Description: "List plans for one stack",
				Command:     "stackhand plan ls --stack dev",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runLs(&params)
		},
	}
}

func runLs(params *lsParams) error {
	store, err := openStore(params.Config)
	if err != nil {
		return err
	}

	entries, err := store.Entries()
	if err != nil {
		return err
	}
	if params.Stack != "" {
		filtered := entries[:0]
		for _, entry := range entries {
			if entry.Stack == params.Stack {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	if done, err := params.EmitJSON(entries); done {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintln(writer, "STACK\tDIGEST\tCREATED\tSIZE")
	for _, entry := range entries {
		fmt.Fprintf(writer, "%s\t%.12s\t%s\t%d\n",
			entry.Stack,
			entry.Digest,
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
			entry.Size,
		)
	}
	return writer.Flush()
}

type showParams struct {
	cli.JSONOutput
	Config string `flag:"config" desc:"config file path (overrides STACKHAND_CONFIG)"`
	Stack  string `flag:"stack,s" desc:"stack for the \"latest\" lookup"`
}

func showCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show an archived plan's change summary",
		Description: `Print the change summary of an archived plan. The plan is addressed by
a hex digest prefix, or by "latest" together with --stack for the most
recently archived plan of that stack.`,
		Usage: "stackhand plan show <digest|latest> [flags]",
		Examples: []cli.Example{
			{
				Description: "Show a plan by digest prefix",
				Command:     "stackhand plan show 3f1a9c",
			},
			{
				Description: "Show the newest plan for a stack",
				Command:     "stackhand plan show latest --stack dev",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one argument: a digest prefix or \"latest\"")
			}
			return runShow(&params, args[0])
		},
	}
}

func runShow(params *showParams, reference string) error {
	store, err := openStore(params.Config)
	if err != nil {
		return err
	}

	digest := reference
	if digest == "latest" {
		if params.Stack == "" {
			return fmt.Errorf("\"latest\" requires --stack")
		}
		entry, err := store.Latest(params.Stack)
		if err != nil {
			return err
		}
		digest = entry.Digest
	} else {
		digest, err = store.Resolve(digest)
		if err != nil {
			return err
		}
	}

	data, err := store.Get(digest)
	if err != nil {
		return err
	}
	summary, err := plan.ParseSummary(data)
	if err != nil {
		return err
	}

	if done, err := params.EmitJSON(summary); done {
		return err
	}

	fmt.Printf("plan %.12s: %s\n", digest, summary)
	if !summary.HasChanges() {
		fmt.Println("no pending changes")
	}
	for _, diagnostic := range summary.Errors() {
		fmt.Fprintf(os.Stderr, "error: %s\n", diagnostic.Message)
	}
	return nil
}

// openStore opens the plan store at the configured directory.
func openStore(configPath string) (*plan.Store, error) {
	var configuration *config.Config
	var err error
	if configPath != "" {
		configuration, err = config.LoadFile(configPath)
	} else {
		configuration, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	return plan.NewStore(configuration.Plans.Dir)
}
