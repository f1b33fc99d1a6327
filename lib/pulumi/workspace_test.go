// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package pulumi

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
)

// fakeRuntime records executed commands and serves scripted stdout
// keyed by the joined argv.
type fakeRuntime struct {
	calls   []string
	outputs map[string]string
	fail    map[string]error
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		outputs: make(map[string]string),
		fail:    make(map[string]error),
	}
}

func (f *fakeRuntime) Exec(_ context.Context, argv []string, stdout io.Writer) error {
	key := strings.Join(argv, " ")
	f.calls = append(f.calls, key)
	if err, ok := f.fail[key]; ok {
		return err
	}
	if output, ok := f.outputs[key]; ok {
		fmt.Fprint(stdout, output)
	}
	return nil
}

func (f *fakeRuntime) lastCall(t *testing.T) string {
	t.Helper()
	if len(f.calls) == 0 {
		t.Fatal("no commands executed")
	}
	return f.calls[len(f.calls)-1]
}

const stackLsKey = "pulumi --non-interactive stack ls --json"

func TestBackendURL(t *testing.T) {
	t.Parallel()

	got := BackendURL("contosostate", "pulumi-state")
	want := "azblob://pulumi-state?storage_account=contosostate"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestListStacks(t *testing.T) {
	t.Parallel()

	runtime := newFakeRuntime()
	runtime.outputs[stackLsKey] = `[
		{"name": "dev", "current": true, "resourceCount": 12},
		{"name": "production", "lastUpdate": "2026-08-01T10:00:00Z"}
	]`

	workspace := NewWorkspace(runtime, "dev", nil)
	stacks, err := workspace.ListStacks(context.Background())
	if err != nil {
		t.Fatalf("ListStacks: %v", err)
	}

	if len(stacks) != 2 {
		t.Fatalf("expected 2 stacks, got %d", len(stacks))
	}
	if !stacks[0].Current || stacks[0].ResourceCount != 12 {
		t.Errorf("dev stack parsed wrong: %+v", stacks[0])
	}
	if stacks[1].Name != "production" {
		t.Errorf("production stack parsed wrong: %+v", stacks[1])
	}
}

func TestListStacks_BadJSON(t *testing.T) {
	t.Parallel()

	runtime := newFakeRuntime()
	runtime.outputs[stackLsKey] = "warning: not json"

	workspace := NewWorkspace(runtime, "dev", nil)
	if _, err := workspace.ListStacks(context.Background()); err == nil {
		t.Fatal("expected error for unparseable output")
	}
}

func TestStackExists(t *testing.T) {
	t.Parallel()

	runtime := newFakeRuntime()
	runtime.outputs[stackLsKey] = `[{"name": "dev"}]`

	for _, test := range []struct {
		stack string
		want  bool
	}{
		{"dev", true},
		{"production", false},
	} {
		workspace := NewWorkspace(runtime, test.stack, nil)
		exists, err := workspace.StackExists(context.Background())
		if err != nil {
			t.Fatalf("StackExists(%s): %v", test.stack, err)
		}
		if exists != test.want {
			t.Errorf("StackExists(%s): got %v, want %v", test.stack, exists, test.want)
		}
	}
}

func TestEnsureStack_InitsWhenAbsent(t *testing.T) {
	t.Parallel()

	runtime := newFakeRuntime()
	runtime.outputs[stackLsKey] = `[{"name": "dev"}]`

	workspace := NewWorkspace(runtime, "production", nil)
	if err := workspace.EnsureStack(context.Background()); err != nil {
		t.Fatalf("EnsureStack: %v", err)
	}
	if got := runtime.lastCall(t); got != "pulumi --non-interactive stack init production" {
		t.Errorf("expected stack init, got %q", got)
	}
}

func TestEnsureStack_SelectsWhenPresent(t *testing.T) {
	t.Parallel()

	runtime := newFakeRuntime()
	runtime.outputs[stackLsKey] = `[{"name": "dev"}]`

	workspace := NewWorkspace(runtime, "dev", nil)
	if err := workspace.EnsureStack(context.Background()); err != nil {
		t.Fatalf("EnsureStack: %v", err)
	}
	if got := runtime.lastCall(t); got != "pulumi --non-interactive stack select dev" {
		t.Errorf("expected stack select, got %q", got)
	}
}

func TestEnsureStack_ListFailure(t *testing.T) {
	t.Parallel()

	runtime := newFakeRuntime()
	runtime.fail[stackLsKey] = fmt.Errorf("backend unreachable")

	workspace := NewWorkspace(runtime, "dev", nil)
	if err := workspace.EnsureStack(context.Background()); err == nil {
		t.Fatal("expected error when stack ls fails")
	}
}

func TestPreview_StreamsOutput(t *testing.T) {
	t.Parallel()

	runtime := newFakeRuntime()
	runtime.outputs["pulumi --non-interactive preview"] = "+ 3 to create\n"

	workspace := NewWorkspace(runtime, "dev", nil)
	var out strings.Builder
	if err := workspace.Preview(context.Background(), &out); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if out.String() != "+ 3 to create\n" {
		t.Errorf("preview output: got %q", out.String())
	}
}

func TestUp_SkipsPreviewAndConfirmation(t *testing.T) {
	t.Parallel()

	runtime := newFakeRuntime()
	workspace := NewWorkspace(runtime, "dev", nil)

	if err := workspace.Up(context.Background(), io.Discard); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if got := runtime.lastCall(t); got != "pulumi --non-interactive up --yes --skip-preview" {
		t.Errorf("up argv: got %q", got)
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	runtime := newFakeRuntime()
	workspace := NewWorkspace(runtime, "dev", nil)

	backend := BackendURL("contosostate", "pulumi-state")
	if err := workspace.Login(context.Background(), backend); err != nil {
		t.Fatalf("Login: %v", err)
	}
	want := "pulumi --non-interactive login azblob://pulumi-state?storage_account=contosostate"
	if got := runtime.lastCall(t); got != want {
		t.Errorf("login argv: got %q, want %q", got, want)
	}
}
