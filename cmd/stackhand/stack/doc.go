// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package stack implements the "stackhand stack" command group: Pulumi
// operations (preview, up, debug, ls, init, select) executed inside an
// ephemeral, pre-authenticated container.
//
// Every subcommand follows the same lifecycle: load configuration and
// the optional stack manifest, read the config passphrase into locked
// memory, create a container from the Pulumi image with the
// infrastructure directory bind-mounted and Azure credentials applied,
// log in to the blob backend, install dependencies, then run the
// operation. The container is removed when the command finishes.
package stack
