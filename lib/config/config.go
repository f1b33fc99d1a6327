// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for stackhand.
//
// Configuration is loaded from a single file specified by:
//   - STACKHAND_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides.
// Per-stack settings (backend, image, auth mode) can additionally come
// from a stack definition manifest; see lib/stackdef.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for stackhand.
type Config struct {
	// Backend configures the Pulumi state backend (Azure Blob Storage).
	Backend BackendConfig `yaml:"backend"`

	// Stack configures stack selection defaults.
	Stack StackConfig `yaml:"stack"`

	// Container configures the Pulumi execution container.
	Container ContainerConfig `yaml:"container"`

	// Azdo configures the Azure DevOps connection for PR comments.
	Azdo AzdoConfig `yaml:"azdo"`

	// Plans configures the local plan artifact store.
	Plans PlansConfig `yaml:"plans"`
}

// BackendConfig configures the Azure Blob Storage state backend.
type BackendConfig struct {
	// StorageAccount is the Azure Storage Account holding the Pulumi
	// state container.
	StorageAccount string `yaml:"storage_account"`

	// Container is the blob container name for state storage.
	Container string `yaml:"container"`
}

// StackConfig configures stack selection defaults.
type StackConfig struct {
	// Name is the default stack when --stack is not given.
	Name string `yaml:"name"`

	// PassphraseEnv is the environment variable holding the Pulumi
	// config passphrase. Default: PULUMI_CONFIG_PASSPHRASE.
	PassphraseEnv string `yaml:"passphrase_env"`

	// PassphraseFile is an optional file path to read the passphrase
	// from instead of the environment. "-" reads from stdin.
	PassphraseFile string `yaml:"passphrase_file"`
}

// ContainerConfig configures the Pulumi execution container.
type ContainerConfig struct {
	// Image is the Pulumi container image.
	// Default: pulumi/pulumi:latest
	Image string `yaml:"image"`

	// CacheDir is the package cache directory inside the container.
	// Default: /root/.cache/uv
	CacheDir string `yaml:"cache_dir"`

	// CacheVolume is the named docker volume mounted at CacheDir so
	// dependency installs persist across runs.
	// Default: stackhand-pkg-cache
	CacheVolume string `yaml:"cache_volume"`

	// Workdir is the mount point for the infrastructure sources.
	// Default: /infra
	Workdir string `yaml:"workdir"`
}

// AzdoConfig configures the Azure DevOps connection.
type AzdoConfig struct {
	// OrganizationURL is the Azure DevOps organization URL
	// (e.g. https://dev.azure.com/contoso). Must be HTTPS.
	OrganizationURL string `yaml:"organization_url"`

	// Project is the Azure DevOps project name.
	Project string `yaml:"project"`

	// Repository is the repository name or ID for PR operations.
	Repository string `yaml:"repository"`

	// PATEnv is the environment variable holding the personal access
	// token. Default: AZURE_DEVOPS_PAT.
	PATEnv string `yaml:"pat_env"`
}

// PlansConfig configures the local plan artifact store.
type PlansConfig struct {
	// Dir is the directory where preview plans are archived.
	// Default: ${HOME}/.cache/stackhand/plans
	Dir string `yaml:"dir"`
}

// Default returns the default configuration. These defaults ensure all
// fields have sensible zero-values before the config file is merged in;
// backend and azdo settings have no defaults and must come from the
// file or flags.
func Default() *Config {
	return &Config{
		Stack: StackConfig{
			PassphraseEnv: "PULUMI_CONFIG_PASSPHRASE",
		},
		Container: ContainerConfig{
			Image:       "pulumi/pulumi:latest",
			CacheDir:    "/root/.cache/uv",
			CacheVolume: "stackhand-pkg-cache",
			Workdir:     "/infra",
		},
		Azdo: AzdoConfig{
			PATEnv: "AZURE_DEVOPS_PAT",
		},
		Plans: PlansConfig{
			Dir: "${HOME}/.cache/stackhand/plans",
		},
	}
}

// Load loads configuration from the STACKHAND_CONFIG environment
// variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks — if STACKHAND_CONFIG is not set, this fails.
func Load() (*Config, error) {
	configPath := os.Getenv("STACKHAND_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("STACKHAND_CONFIG environment variable not set; " +
			"set it to the path of your stackhand.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables
// do not override config values. The only expansion performed is
// ${HOME} and similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// expandVariables expands ${VAR} patterns in path-valued fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Plans.Dir = expandVars(c.Plans.Dir, vars)
	c.Stack.PassphraseFile = expandVars(c.Stack.PassphraseFile, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. Only fields needed by
// every command are checked here; command-specific requirements (azdo
// settings for pr comment, backend settings for stack operations) are
// validated by ValidateBackend and ValidateAzdo.
func (c *Config) Validate() error {
	var errs []error

	if c.Container.Image == "" {
		errs = append(errs, fmt.Errorf("container.image is required"))
	}
	if c.Container.Workdir == "" {
		errs = append(errs, fmt.Errorf("container.workdir is required"))
	}
	if c.Stack.PassphraseEnv == "" && c.Stack.PassphraseFile == "" {
		errs = append(errs, fmt.Errorf("one of stack.passphrase_env or stack.passphrase_file is required"))
	}

	return errors.Join(errs...)
}

// ValidateBackend checks that the state backend is fully configured.
// Required by every command that runs pulumi.
func (c *Config) ValidateBackend() error {
	var errs []error

	if c.Backend.StorageAccount == "" {
		errs = append(errs, fmt.Errorf("backend.storage_account is required"))
	}
	if c.Backend.Container == "" {
		errs = append(errs, fmt.Errorf("backend.container is required"))
	}

	return errors.Join(errs...)
}

// ValidateAzdo checks that the Azure DevOps connection is fully
// configured. Required by pr subcommands.
func (c *Config) ValidateAzdo() error {
	var errs []error

	if c.Azdo.OrganizationURL == "" {
		errs = append(errs, fmt.Errorf("azdo.organization_url is required"))
	}
	if c.Azdo.Project == "" {
		errs = append(errs, fmt.Errorf("azdo.project is required"))
	}
	if c.Azdo.Repository == "" {
		errs = append(errs, fmt.Errorf("azdo.repository is required"))
	}

	return errors.Join(errs...)
}
