// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package container manages the Pulumi execution container through the
// docker CLI. Stackhand runs every pulumi invocation inside a
// pre-built container image so the toolchain, plugins, and Azure
// authentication material are identical across operator machines and
// CI.
//
// The lifecycle is create → exec (one or more) → remove. Create starts
// a long-lived idle container with the infrastructure sources
// bind-mounted at the workdir; Exec runs pulumi subcommands inside it;
// Terminal attaches an interactive shell for debugging.
package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Mount is a bind mount from the host into the container.
type Mount struct {
	// Source is the host path.
	Source string

	// Target is the path inside the container.
	Target string

	// ReadOnly mounts the source read-only.
	ReadOnly bool
}

// Spec describes a container to create. Secret environment values are
// carried separately from plain ones so logging can never leak them.
type Spec struct {
	// Image is the container image reference.
	Image string

	// Name is the container name. Required — removal and exec target
	// the container by name.
	Name string

	// Workdir is the working directory inside the container.
	Workdir string

	// Mounts are host bind mounts.
	Mounts []Mount

	// Env are plain environment variables, safe to log.
	Env map[string]string

	// SecretEnv are sensitive environment variables. Values are passed
	// to the container but never logged or included in errors.
	SecretEnv map[string]string

	// CacheVolume is an optional named volume mounted at CacheDir so
	// package installs persist across containers.
	CacheVolume string

	// CacheDir is the mount point for CacheVolume.
	CacheDir string
}

// ExitError reports a non-zero exit from a command run inside the
// container. The exit code and captured stderr are preserved so
// callers can propagate the code and show diagnostics.
type ExitError struct {
	// Argv is the command that failed (no secret material — secrets
	// travel via environment, not argv).
	Argv []string

	// Code is the process exit code.
	Code int

	// Stderr is the captured standard error output, trimmed.
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("container: %s: exit code %d", strings.Join(e.Argv, " "), e.Code)
	}
	return fmt.Sprintf("container: %s: exit code %d: %s", strings.Join(e.Argv, " "), e.Code, e.Stderr)
}

// ExitCode returns the exit code, satisfying the CLI framework's
// exit-coder interface so container exit codes propagate to the
// stackhand process exit status.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// Engine executes docker CLI commands. The zero value is not usable;
// construct with NewEngine.
type Engine struct {
	logger *slog.Logger

	// binary is the docker CLI name, overridable for tests.
	binary string
}

// NewEngine returns an Engine that logs container lifecycle events to
// logger.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger, binary: "docker"}
}

// Preflight checks that the docker daemon is reachable. Returns an
// actionable error when it is not.
func (e *Engine) Preflight(ctx context.Context) error {
	command := exec.CommandContext(ctx, e.binary, "info")
	command.Stdout = io.Discard
	command.Stderr = io.Discard
	if err := command.Run(); err != nil {
		return fmt.Errorf("container: docker daemon is not reachable (is docker running?): %w", err)
	}
	return nil
}

// Create starts a long-lived idle container from spec and returns its
// name. The container runs until Remove; commands execute inside it
// via Exec. The caller owns cleanup:
//
//	name, err := engine.Create(ctx, spec)
//	if err != nil { ... }
//	defer engine.Remove(context.WithoutCancel(ctx), name)
func (e *Engine) Create(ctx context.Context, spec Spec) (string, error) {
	if spec.Name == "" {
		return "", fmt.Errorf("container: spec.Name is required")
	}
	if spec.Image == "" {
		return "", fmt.Errorf("container: spec.Image is required")
	}

	args := createArgs(spec)
	e.logger.Info("creating container",
		"image", spec.Image,
		"name", spec.Name,
		"mounts", len(spec.Mounts),
	)

	command := exec.CommandContext(ctx, e.binary, args...)
	command.Env = secretEnviron(spec.SecretEnv)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("container: docker run %s: %w (stderr: %s)",
			spec.Image, err, strings.TrimSpace(stderr.String()))
	}
	return spec.Name, nil
}

// Exec runs argv inside the named container, streaming stdout to the
// given writer. Stderr is captured and folded into the returned error.
// A non-zero exit is returned as a *ExitError.
func (e *Engine) Exec(ctx context.Context, name string, argv []string, stdout io.Writer) error {
	if len(argv) == 0 {
		return fmt.Errorf("container: empty command")
	}

	args := append([]string{"exec", name}, argv...)
	command := exec.CommandContext(ctx, e.binary, args...)
	command.Stdout = stdout
	var stderr bytes.Buffer
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &ExitError{
				Argv:   argv,
				Code:   exitErr.ExitCode(),
				Stderr: strings.TrimSpace(stderr.String()),
			}
		}
		return fmt.Errorf("container: exec %s in %s: %w", strings.Join(argv, " "), name, err)
	}
	return nil
}

// ExecShell runs a shell pipeline inside the named container. Use for
// redirections that must happen container-side; prefer Exec for plain
// commands.
func (e *Engine) ExecShell(ctx context.Context, name, script string, stdout io.Writer) error {
	return e.Exec(ctx, name, []string{"/bin/sh", "-c", script}, stdout)
}

// WriteFile writes data to a path inside the named container, mode
// 0600. The data travels over the exec stdin pipe rather than argv, so
// it never appears in process listings — safe for tokens.
func (e *Engine) WriteFile(ctx context.Context, name, path string, data []byte) error {
	script := fmt.Sprintf("umask 077 && cat > %s", shellQuote(path))
	command := exec.CommandContext(ctx, e.binary, "exec", "-i", name, "/bin/sh", "-c", script)
	command.Stdin = bytes.NewReader(data)
	command.Stdout = io.Discard
	var stderr bytes.Buffer
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return fmt.Errorf("container: writing %s in %s: %w (stderr: %s)",
			path, name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Terminal attaches an interactive shell to the named container with
// the caller's terminal wired through. Blocks until the shell exits.
// The shell's exit code is returned as a *ExitError so it propagates
// to the stackhand exit status.
func (e *Engine) Terminal(ctx context.Context, name, shell string) error {
	if shell == "" {
		shell = "/bin/bash"
	}

	e.logger.Info("attaching debug terminal", "container", name, "shell", shell)

	command := exec.CommandContext(ctx, e.binary, "exec", "-it", name, shell)
	command.Stdin = os.Stdin
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr

	if err := command.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &ExitError{Argv: []string{shell}, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("container: terminal in %s: %w", name, err)
	}
	return nil
}

// Remove force-removes the named container. Idempotent: removing a
// container that is already gone is not an error.
func (e *Engine) Remove(ctx context.Context, name string) error {
	command := exec.CommandContext(ctx, e.binary, "rm", "-f", name)
	command.Stdout = io.Discard
	var stderr bytes.Buffer
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		message := stderr.String()
		if strings.Contains(message, "No such container") {
			return nil
		}
		return fmt.Errorf("container: removing %s: %w (stderr: %s)",
			name, err, strings.TrimSpace(message))
	}
	return nil
}

// Bound is an Engine fixed to one container. It satisfies the
// execution interfaces of packages that operate inside a single
// container (lib/pulumi's Runtime) without carrying the name around.
type Bound struct {
	engine *Engine
	name   string
}

// Bind returns the engine scoped to the named container.
func (e *Engine) Bind(name string) *Bound {
	return &Bound{engine: e, name: name}
}

// Name returns the bound container name.
func (b *Bound) Name() string { return b.name }

// Exec runs argv inside the bound container. See Engine.Exec.
func (b *Bound) Exec(ctx context.Context, argv []string, stdout io.Writer) error {
	return b.engine.Exec(ctx, b.name, argv, stdout)
}

// createArgs builds the docker run arguments for a spec. The container
// idles on sleep so Exec can target it repeatedly. Secret environment
// variables are passed by name only (-e KEY); docker resolves the
// value from the CLI process environment, keeping secrets out of argv.
func createArgs(spec Spec) []string {
	args := []string{"run", "--detach", "--name", spec.Name}

	for _, mount := range spec.Mounts {
		volume := mount.Source + ":" + mount.Target
		if mount.ReadOnly {
			volume += ":ro"
		}
		args = append(args, "--volume", volume)
	}

	if spec.CacheVolume != "" && spec.CacheDir != "" {
		args = append(args, "--volume", spec.CacheVolume+":"+spec.CacheDir)
	}

	// Sorted iteration keeps argv deterministic for logging and tests.
	for _, key := range sortedKeys(spec.Env) {
		args = append(args, "--env", key+"="+spec.Env[key])
	}
	for _, key := range sortedKeys(spec.SecretEnv) {
		args = append(args, "--env", key)
	}

	if spec.Workdir != "" {
		args = append(args, "--workdir", spec.Workdir)
	}

	args = append(args, "--entrypoint", "sleep", spec.Image, "infinity")
	return args
}

// secretEnviron builds the process environment for docker run: the
// current environment plus the secret variables, which docker forwards
// into the container for each bare "-e KEY" flag.
func secretEnviron(secrets map[string]string) []string {
	environ := os.Environ()
	for _, key := range sortedKeys(secrets) {
		environ = append(environ, key+"="+secrets[key])
	}
	return environ
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// shellQuote single-quotes s for safe interpolation into a /bin/sh
// command line.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
