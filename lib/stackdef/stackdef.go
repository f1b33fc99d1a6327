// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package stackdef provides parsing and validation for stack definition
// manifests. A manifest declares the stacks a repository deploys
// (backend storage, container image, authentication mode) so operators
// can target them by name instead of repeating backend flags.
//
// Manifests are authored on disk as JSONC (JSON extended with comments
// and trailing commas), conventionally named stackhand.jsonc at the
// infrastructure root.
package stackdef

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Manifest is a parsed stack definition file.
type Manifest struct {
	// Stacks are the declared stacks, in file order.
	Stacks []Stack `json:"stacks"`
}

// Stack declares one deployable stack.
type Stack struct {
	// Name is the Pulumi stack name. Unique within the manifest.
	Name string `json:"name"`

	// StorageAccount is the Azure Storage Account for state storage.
	StorageAccount string `json:"storage_account"`

	// Container is the blob container name for state storage.
	Container string `json:"container"`

	// Image optionally overrides the configured Pulumi image for this
	// stack.
	Image string `json:"image,omitempty"`

	// Auth selects the Azure authentication mode: "az" (mounted az CLI
	// profile), "oidc" (federated token), or "" (whatever the
	// environment provides).
	Auth string `json:"auth,omitempty"`

	// PassphraseEnv optionally overrides the environment variable that
	// holds this stack's config passphrase.
	PassphraseEnv string `json:"passphrase_env,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Manifest.
func Parse(data []byte) (*Manifest, error) {
	stripped := jsonc.ToJSON(data)

	var manifest Manifest
	if err := json.Unmarshal(stripped, &manifest); err != nil {
		return nil, fmt.Errorf("parsing stack manifest: %w", err)
	}

	return &manifest, nil
}

// ReadFile reads a JSONC manifest from disk, parses it, and validates
// it. Returns a descriptive error if the file cannot be read, the JSON
// is malformed, or the manifest is structurally invalid.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	manifest, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return manifest, nil
}

// Validate checks the manifest for structural errors: at least one
// stack, unique names, and a complete backend per stack.
func (m *Manifest) Validate() error {
	if len(m.Stacks) == 0 {
		return fmt.Errorf("manifest declares no stacks")
	}

	seen := make(map[string]bool, len(m.Stacks))
	for index, stack := range m.Stacks {
		if stack.Name == "" {
			return fmt.Errorf("stack %d: name is required", index)
		}
		if seen[stack.Name] {
			return fmt.Errorf("stack %q: declared more than once", stack.Name)
		}
		seen[stack.Name] = true

		if stack.StorageAccount == "" {
			return fmt.Errorf("stack %q: storage_account is required", stack.Name)
		}
		if stack.Container == "" {
			return fmt.Errorf("stack %q: container is required", stack.Name)
		}

		switch stack.Auth {
		case "", "az", "oidc":
		default:
			return fmt.Errorf("stack %q: unknown auth mode %q (want \"az\" or \"oidc\")", stack.Name, stack.Auth)
		}
	}

	return nil
}

// Lookup returns the stack with the given name, or an error naming the
// available stacks when it is absent.
func (m *Manifest) Lookup(name string) (*Stack, error) {
	for index := range m.Stacks {
		if m.Stacks[index].Name == name {
			return &m.Stacks[index], nil
		}
	}

	names := make([]string, 0, len(m.Stacks))
	for _, stack := range m.Stacks {
		names = append(names, stack.Name)
	}
	return nil, fmt.Errorf("stack %q not found in manifest (have %v)", name, names)
}
