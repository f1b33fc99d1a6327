// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package pulumi provides typed access to the pulumi CLI for stack
// operations. Stackhand runs pulumi inside a container (lib/container),
// so every command goes through an injected Runtime rather than a
// direct exec — analogous to how lib/container itself wraps the docker
// CLI. All operations target the workspace's stack; there is no
// default stack, callers must always say which stack they mean.
package pulumi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

// Runtime executes a command in the Pulumi environment and streams its
// stdout. Implemented by *container.Bound in production and by fakes
// in tests.
type Runtime interface {
	Exec(ctx context.Context, argv []string, stdout io.Writer) error
}

// BackendURL returns the Azure Blob Storage backend address for
// pulumi login.
func BackendURL(storageAccount, containerName string) string {
	return fmt.Sprintf("azblob://%s?storage_account=%s", containerName, storageAccount)
}

// StackInfo is one entry of "pulumi stack ls --json".
type StackInfo struct {
	// Name is the stack name.
	Name string `json:"name"`

	// Current reports whether this is the selected stack.
	Current bool `json:"current"`

	// LastUpdate is the RFC3339 timestamp of the last update, empty
	// for never-deployed stacks.
	LastUpdate string `json:"lastUpdate,omitempty"`

	// ResourceCount is the number of resources under management.
	ResourceCount int `json:"resourceCount,omitempty"`
}

// Workspace targets one stack in one Pulumi project directory (the
// runtime's working directory).
type Workspace struct {
	runtime Runtime
	stack   string
	logger  *slog.Logger
}

// NewWorkspace returns a Workspace operating on the given stack
// through runtime.
func NewWorkspace(runtime Runtime, stack string, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workspace{runtime: runtime, stack: stack, logger: logger}
}

// Stack returns the stack name this workspace targets.
func (w *Workspace) Stack() string {
	return w.stack
}

// Login connects the workspace to a state backend. The passphrase for
// the backend's secrets provider must already be present in the
// runtime environment (PULUMI_CONFIG_PASSPHRASE).
func (w *Workspace) Login(ctx context.Context, backendURL string) error {
	w.logger.Info("logging into state backend", "backend", backendURL)
	return w.run(ctx, io.Discard, "login", backendURL)
}

// Install restores the project's language dependencies and plugins
// ("pulumi install"). Safe to run repeatedly; the package cache volume
// makes repeats cheap.
func (w *Workspace) Install(ctx context.Context) error {
	return w.run(ctx, io.Discard, "install")
}

// ListStacks returns all stacks visible in the current backend.
func (w *Workspace) ListStacks(ctx context.Context) ([]StackInfo, error) {
	var stdout bytes.Buffer
	if err := w.run(ctx, &stdout, "stack", "ls", "--json"); err != nil {
		return nil, err
	}

	var stacks []StackInfo
	if err := json.Unmarshal(stdout.Bytes(), &stacks); err != nil {
		return nil, fmt.Errorf("pulumi: parsing stack ls output: %w", err)
	}
	return stacks, nil
}

// StackExists reports whether the workspace's stack is present in the
// backend state.
func (w *Workspace) StackExists(ctx context.Context) (bool, error) {
	stacks, err := w.ListStacks(ctx)
	if err != nil {
		return false, err
	}
	for _, stack := range stacks {
		if stack.Name == w.stack {
			return true, nil
		}
	}
	return false, nil
}

// EnsureStack makes the workspace's stack the selected one, creating
// it first if it does not exist in the backend.
func (w *Workspace) EnsureStack(ctx context.Context) error {
	exists, err := w.StackExists(ctx)
	if err != nil {
		return err
	}

	if !exists {
		w.logger.Info("initializing stack", "stack", w.stack)
		return w.run(ctx, io.Discard, "stack", "init", w.stack)
	}

	w.logger.Info("selecting stack", "stack", w.stack)
	return w.run(ctx, io.Discard, "stack", "select", w.stack)
}

// InitStack creates the workspace's stack. Fails if it already exists.
func (w *Workspace) InitStack(ctx context.Context) error {
	return w.run(ctx, io.Discard, "stack", "init", w.stack)
}

// SelectStack selects the workspace's stack. Fails if it does not
// exist.
func (w *Workspace) SelectStack(ctx context.Context) error {
	return w.run(ctx, io.Discard, "stack", "select", w.stack)
}

// Preview computes the changes a deployment would make and streams the
// rendered diff to out.
func (w *Workspace) Preview(ctx context.Context, out io.Writer) error {
	return w.run(ctx, out, "preview")
}

// PreviewJSON computes the changes a deployment would make and returns
// pulumi's machine-readable plan ("pulumi preview --json"). The bytes
// parse with lib/plan.
func (w *Workspace) PreviewJSON(ctx context.Context) ([]byte, error) {
	var stdout bytes.Buffer
	if err := w.run(ctx, &stdout, "preview", "--json"); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Up deploys the stack without interactive confirmation and streams
// progress to out. The preview step is skipped — callers are expected
// to have run Preview and reviewed the plan.
func (w *Workspace) Up(ctx context.Context, out io.Writer) error {
	return w.run(ctx, out, "up", "--yes", "--skip-preview")
}

// run executes one pulumi subcommand through the runtime. Errors pass
// through unwrapped so *container.ExitError (and its exit code)
// reaches the CLI layer.
func (w *Workspace) run(ctx context.Context, stdout io.Writer, args ...string) error {
	argv := append([]string{"pulumi", "--non-interactive"}, args...)
	return w.runtime.Exec(ctx, argv, stdout)
}
