// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"strings"
	"testing"

	"github.com/stackhand/stackhand/cmd/stackhand/cli"
	"github.com/stackhand/stackhand/cmd/stackhand/commands"
)

// TestCommandTreeShape walks the full production command tree and
// validates basic invariants: every command has a name and either a
// Run function or subcommands, sibling names are unique, and every
// subcommand carries a summary for the parent's help listing.
func TestCommandTreeShape(t *testing.T) {
	t.Parallel()

	root := commands.Root()
	walkCommands(root, nil, func(command *cli.Command, path []string) {
		name := strings.Join(path, " ")

		if command.Name == "" {
			t.Errorf("%s: command with empty name", name)
		}
		if command.Run == nil && len(command.Subcommands) == 0 {
			t.Errorf("%s: command with neither Run nor subcommands", name)
		}
		if command != root && command.Summary == "" {
			t.Errorf("%s: command without a summary", name)
		}

		seen := make(map[string]bool)
		for _, sub := range command.Subcommands {
			if seen[sub.Name] {
				t.Errorf("%s: duplicate subcommand %q", name, sub.Name)
			}
			seen[sub.Name] = true
		}
	})
}

// TestCommandTreeParams ensures every Params constructor returns a
// value the flag binder accepts. A bad params struct panics at
// dispatch time; catching it here keeps the failure out of user runs.
func TestCommandTreeParams(t *testing.T) {
	t.Parallel()

	walkCommands(commands.Root(), nil, func(command *cli.Command, path []string) {
		if command.Params == nil {
			return
		}
		defer func() {
			if recovered := recover(); recovered != nil {
				t.Errorf("%s: params binding panicked: %v", strings.Join(path, " "), recovered)
			}
		}()
		cli.FlagsFromParams(command.Name, command.Params())
	})
}

// walkCommands recursively visits every command in the tree, calling
// visit for each node with the accumulated command path.
func walkCommands(command *cli.Command, path []string, visit func(*cli.Command, []string)) {
	current := make([]string, len(path)+1)
	copy(current, path)
	current[len(path)] = command.Name

	visit(command, current)
	for _, sub := range command.Subcommands {
		walkCommands(sub, current, visit)
	}
}
