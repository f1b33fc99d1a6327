// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes a config file to a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stackhand.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
backend:
  storage_account: contosostate
  container: pulumi-state
stack:
  name: production
container:
  image: pulumi/pulumi:3.100.0
azdo:
  organization_url: https://dev.azure.com/contoso
  project: platform
  repository: infrastructure
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Backend.StorageAccount != "contosostate" {
		t.Errorf("storage account: got %q", cfg.Backend.StorageAccount)
	}
	if cfg.Stack.Name != "production" {
		t.Errorf("stack name: got %q", cfg.Stack.Name)
	}
	if cfg.Container.Image != "pulumi/pulumi:3.100.0" {
		t.Errorf("image override lost: got %q", cfg.Container.Image)
	}

	// Defaults survive partial files.
	if cfg.Container.CacheDir != "/root/.cache/uv" {
		t.Errorf("cache dir default: got %q", cfg.Container.CacheDir)
	}
	if cfg.Stack.PassphraseEnv != "PULUMI_CONFIG_PASSPHRASE" {
		t.Errorf("passphrase env default: got %q", cfg.Stack.PassphraseEnv)
	}
	if cfg.Azdo.PATEnv != "AZURE_DEVOPS_PAT" {
		t.Errorf("pat env default: got %q", cfg.Azdo.PATEnv)
	}
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	path := writeConfig(t, `
container:
  image: ""
`)

	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected error for config with empty image")
	}
	if !strings.Contains(err.Error(), "container.image is required") {
		t.Errorf("error should name the missing field: %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := writeConfig(t, "backend: [this is not\n  a mapping")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoad_RequiresEnvVar(t *testing.T) {
	t.Setenv("STACKHAND_CONFIG", "")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error when STACKHAND_CONFIG is unset")
	}
	if !strings.Contains(err.Error(), "STACKHAND_CONFIG") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestLoad_FromEnvVar(t *testing.T) {
	path := writeConfig(t, "stack:\n  name: dev\n")
	t.Setenv("STACKHAND_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Stack.Name != "dev" {
		t.Errorf("stack name: got %q", cfg.Stack.Name)
	}
}

func TestExpandVariables(t *testing.T) {
	t.Setenv("HOME", "/home/operator")

	path := writeConfig(t, "plans:\n  dir: ${HOME}/plans\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Plans.Dir != "/home/operator/plans" {
		t.Errorf("plans dir: got %q", cfg.Plans.Dir)
	}
}

func TestExpandVars_Default(t *testing.T) {
	got := expandVars("${STACKHAND_NO_SUCH_VAR:-/fallback}", nil)
	if got != "/fallback" {
		t.Errorf("got %q, want /fallback", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	cfg.Container.Image = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing image")
	}
}

func TestValidateBackend(t *testing.T) {
	cfg := Default()
	err := cfg.ValidateBackend()
	if err == nil {
		t.Fatal("expected error for unconfigured backend")
	}
	if !strings.Contains(err.Error(), "storage_account") {
		t.Errorf("error should name the field: %v", err)
	}

	cfg.Backend.StorageAccount = "contosostate"
	cfg.Backend.Container = "pulumi-state"
	if err := cfg.ValidateBackend(); err != nil {
		t.Errorf("configured backend should validate: %v", err)
	}
}

func TestValidateAzdo(t *testing.T) {
	cfg := Default()
	if err := cfg.ValidateAzdo(); err == nil {
		t.Fatal("expected error for unconfigured azdo")
	}

	cfg.Azdo.OrganizationURL = "https://dev.azure.com/contoso"
	cfg.Azdo.Project = "platform"
	cfg.Azdo.Repository = "infrastructure"
	if err := cfg.ValidateAzdo(); err != nil {
		t.Errorf("configured azdo should validate: %v", err)
	}
}
