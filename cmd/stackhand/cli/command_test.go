// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestExecuteDispatchesSubcommand(t *testing.T) {
	t.Parallel()

	ran := false
	root := &Command{
		Name: "stackhand",
		Subcommands: []*Command{
			{
				Name: "noop",
				Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
					ran = true
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"noop"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ran {
		t.Error("subcommand Run was not invoked")
	}
}

func TestExecuteUnknownSubcommandSuggests(t *testing.T) {
	t.Parallel()

	root := &Command{
		Name: "stackhand",
		Subcommands: []*Command{
			{Name: "preview"},
			{Name: "up"},
		},
	}

	err := root.Execute(context.Background(), []string{"previw"})
	if err == nil {
		t.Fatal("Execute accepted an unknown subcommand")
	}
	if !strings.Contains(err.Error(), `"preview"`) {
		t.Errorf("error = %q, want suggestion of preview", err)
	}
}

func TestExecuteParsesFlags(t *testing.T) {
	t.Parallel()

	type previewParams struct {
		Output string `flag:"output,o" desc:"write plan to file"`
	}

	var got string
	params := &previewParams{}
	command := &Command{
		Name:   "preview",
		Params: func() any { return params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			got = params.Output
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"--output", "plan.json"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != "plan.json" {
		t.Errorf("Output = %q, want %q", got, "plan.json")
	}
}

func TestExecuteUnknownFlagSuggests(t *testing.T) {
	t.Parallel()

	type params struct {
		Output string `flag:"output" desc:"write plan to file"`
	}

	command := &Command{
		Name:   "preview",
		Params: func() any { return &params{} },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return nil
		},
	}

	err := command.Execute(context.Background(), []string{"--outptu", "x"})
	if err == nil {
		t.Fatal("Execute accepted an unknown flag")
	}
	if !strings.Contains(err.Error(), "--output") {
		t.Errorf("error = %q, want suggestion of --output", err)
	}
}

func TestExecutePassesPositionalArgs(t *testing.T) {
	t.Parallel()

	type params struct {
		Verbose bool `flag:"verbose" desc:"verbose output"`
	}

	var got []string
	command := &Command{
		Name:   "select",
		Params: func() any { return &params{} },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			got = args
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"--verbose", "dev", "extra"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(got) != 2 || got[0] != "dev" || got[1] != "extra" {
		t.Errorf("args = %v, want [dev extra]", got)
	}
}

func TestExecuteSubcommandRequired(t *testing.T) {
	t.Parallel()

	root := &Command{
		Name:        "stackhand",
		Subcommands: []*Command{{Name: "stack"}},
	}

	if err := root.Execute(context.Background(), nil); err == nil {
		t.Error("Execute with no args and no Run should fail")
	}
}

func TestFullName(t *testing.T) {
	t.Parallel()

	root := &Command{Name: "stackhand"}
	stack := &Command{Name: "stack", parent: root}
	preview := &Command{Name: "preview", parent: stack}

	if got := preview.fullName(); got != "stackhand stack preview" {
		t.Errorf("fullName = %q, want %q", got, "stackhand stack preview")
	}
}

func TestPrintHelpListsSubcommands(t *testing.T) {
	t.Parallel()

	root := &Command{
		Name:    "stackhand",
		Summary: "pulumi stack automation",
		Subcommands: []*Command{
			{Name: "stack", Summary: "manage stacks"},
			{Name: "pr", Summary: "pull request integration"},
		},
	}

	var out strings.Builder
	root.PrintHelp(&out)

	help := out.String()
	for _, want := range []string{"stack", "manage stacks", "pr", "pull request integration"} {
		if !strings.Contains(help, want) {
			t.Errorf("help output missing %q:\n%s", want, help)
		}
	}
}
