// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the stackhand CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a params-struct flag factory, and
// a Run function. Commands are assembled into a tree in
// cmd/stackhand/commands and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help output
// with examples.
//
// Flags are declared as struct tags on a command's params struct and
// bound through [BindFlags]; see params.go for the tag grammar.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
package cli
