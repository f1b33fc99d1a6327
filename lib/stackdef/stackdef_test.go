// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package stackdef

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleManifest = `{
	// Deployment targets for the platform infrastructure.
	"stacks": [
		{
			"name": "dev",
			"storage_account": "contosostatedev",
			"container": "pulumi-state",
			"auth": "az",
		},
		{
			"name": "production",
			"storage_account": "contosostate",
			"container": "pulumi-state",
			"image": "pulumi/pulumi:3.100.0",
			"auth": "oidc",
			"passphrase_env": "PROD_PASSPHRASE",
		},
	],
}`

func TestParse(t *testing.T) {
	t.Parallel()

	manifest, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := manifest.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if len(manifest.Stacks) != 2 {
		t.Fatalf("expected 2 stacks, got %d", len(manifest.Stacks))
	}
	if manifest.Stacks[0].Auth != "az" {
		t.Errorf("dev auth: got %q", manifest.Stacks[0].Auth)
	}
	if manifest.Stacks[1].Image != "pulumi/pulumi:3.100.0" {
		t.Errorf("production image: got %q", manifest.Stacks[1].Image)
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte(`{"stacks": [}`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stackhand.jsonc")
	if err := os.WriteFile(path, []byte(sampleManifest), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	manifest, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(manifest.Stacks) != 2 {
		t.Fatalf("expected 2 stacks, got %d", len(manifest.Stacks))
	}
}

func TestReadFile_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stackhand.jsonc")
	manifest := `{"stacks": [{"name": "dev", "storage_account": "a", "container": "c"}, {"name": "dev"}]}`
	if err := os.WriteFile(path, []byte(manifest), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	_, err := ReadFile(path)
	if err == nil {
		t.Fatal("expected error for duplicate stack name")
	}
	if !strings.Contains(err.Error(), "declared more than once") {
		t.Errorf("error should name the duplicate: %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestReadFile_Missing(t *testing.T) {
	t.Parallel()

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.jsonc")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() *Manifest {
		return &Manifest{Stacks: []Stack{
			{Name: "dev", StorageAccount: "account", Container: "state"},
		}}
	}

	tests := []struct {
		name    string
		mutate  func(*Manifest)
		wantErr string
	}{
		{
			name:    "valid",
			mutate:  func(*Manifest) {},
			wantErr: "",
		},
		{
			name:    "no stacks",
			mutate:  func(m *Manifest) { m.Stacks = nil },
			wantErr: "no stacks",
		},
		{
			name:    "missing name",
			mutate:  func(m *Manifest) { m.Stacks[0].Name = "" },
			wantErr: "name is required",
		},
		{
			name: "duplicate name",
			mutate: func(m *Manifest) {
				m.Stacks = append(m.Stacks, m.Stacks[0])
			},
			wantErr: "more than once",
		},
		{
			name:    "missing storage account",
			mutate:  func(m *Manifest) { m.Stacks[0].StorageAccount = "" },
			wantErr: "storage_account",
		},
		{
			name:    "missing container",
			mutate:  func(m *Manifest) { m.Stacks[0].Container = "" },
			wantErr: "container",
		},
		{
			name:    "bad auth mode",
			mutate:  func(m *Manifest) { m.Stacks[0].Auth = "kerberos" },
			wantErr: "unknown auth mode",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			manifest := base()
			test.mutate(manifest)

			err := manifest.Validate()
			if test.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("error %q does not contain %q", err, test.wantErr)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	manifest, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	stack, err := manifest.Lookup("production")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if stack.PassphraseEnv != "PROD_PASSPHRASE" {
		t.Errorf("passphrase env: got %q", stack.PassphraseEnv)
	}

	if _, err := manifest.Lookup("staging"); err == nil {
		t.Fatal("expected error for unknown stack")
	}
}
