// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stackhand/stackhand/lib/azure"
	"github.com/stackhand/stackhand/lib/config"
	"github.com/stackhand/stackhand/lib/container"
	"github.com/stackhand/stackhand/lib/pulumi"
	"github.com/stackhand/stackhand/lib/secret"
	"github.com/stackhand/stackhand/lib/stackdef"
)

// manifestFilename is the stack manifest looked up in the
// infrastructure directory when --manifest is not given.
const manifestFilename = "stackhand.jsonc"

// sessionParams holds the flags shared by every stack subcommand.
// Embedded into each subcommand's params struct.
type sessionParams struct {
	Config        string `flag:"config" desc:"config file path (overrides STACKHAND_CONFIG)"`
	Stack         string `flag:"stack,s" desc:"stack name (default from config or manifest)"`
	Dir           string `flag:"dir,C" desc:"infrastructure source directory" default:"."`
	Manifest      string `flag:"manifest" desc:"stack manifest file (default: stackhand.jsonc in --dir)"`
	Image         string `flag:"image" desc:"override the Pulumi container image"`
	AzureDir      string `flag:"azure-dir" desc:"az CLI profile directory to mount (default: ~/.azure when present)"`
	OIDCTokenFile string `flag:"oidc-token-file" desc:"file containing a federated OIDC token"`
	ClientID      string `flag:"client-id" desc:"Azure client ID for OIDC authentication"`
	TenantID      string `flag:"tenant-id" desc:"Azure tenant ID for OIDC authentication"`
	Keep          bool   `flag:"keep" desc:"keep the container after the command finishes"`
}

// session is an authenticated Pulumi container with a selected
// workspace. Close removes the container (unless --keep) and zeroes
// the passphrase.
type session struct {
	config     *config.Config
	stackName  string
	engine     *container.Engine
	bound      *container.Bound
	workspace  *pulumi.Workspace
	passphrase *secret.Buffer
	keep       bool
	logger     *slog.Logger
}

// sessionOptions controls optional parts of session setup.
type sessionOptions struct {
	// ensureStack runs EnsureStack (init-or-select) after backend
	// login. Subcommands that manage stacks explicitly (ls, init,
	// select) leave it false.
	ensureStack bool
}

// openSession builds the authenticated container and Pulumi workspace
// from params. On success the caller owns the session and must call
// Close. The container is already logged in to the blob backend with
// dependencies installed.
func openSession(ctx context.Context, params *sessionParams, options sessionOptions, logger *slog.Logger) (*session, error) {
	configuration, err := loadConfig(params.Config)
	if err != nil {
		return nil, err
	}

	infraDir, err := filepath.Abs(params.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve --dir: %w", err)
	}
	if info, statError := os.Stat(infraDir); statError != nil || !info.IsDir() {
		return nil, fmt.Errorf("infrastructure directory %s does not exist", infraDir)
	}

	manifest, err := loadManifest(params.Manifest, infraDir)
	if err != nil {
		return nil, err
	}

	stackName := params.Stack
	if stackName == "" {
		stackName = configuration.Stack.Name
	}
	if stackName == "" && manifest != nil && len(manifest.Stacks) == 1 {
		stackName = manifest.Stacks[0].Name
	}
	if stackName == "" {
		return nil, fmt.Errorf("no stack selected: pass --stack or set stack.name in the config")
	}

	// Manifest entries override config-level backend and container
	// settings for their stack.
	var definition *stackdef.Stack
	if manifest != nil {
		if found, lookupError := manifest.Lookup(stackName); lookupError == nil {
			definition = found
		}
	}

	storageAccount := configuration.Backend.StorageAccount
	stateContainer := configuration.Backend.Container
	image := configuration.Container.Image
	passphraseEnv := configuration.Stack.PassphraseEnv
	if definition != nil {
		storageAccount = definition.StorageAccount
		stateContainer = definition.Container
		if definition.Image != "" {
			image = definition.Image
		}
		if definition.PassphraseEnv != "" {
			passphraseEnv = definition.PassphraseEnv
		}
	}
	if params.Image != "" {
		image = params.Image
	}
	// Manifest-declared stacks always carry a complete backend; only
	// config-level backends can be incomplete.
	if definition == nil {
		if err := configuration.ValidateBackend(); err != nil {
			return nil, fmt.Errorf("no state backend for stack %q: %w (or declare the stack in %s)", stackName, err, manifestFilename)
		}
	}

	passphrase, err := readPassphrase(configuration, passphraseEnv)
	if err != nil {
		return nil, err
	}

	credentials, err := buildCredentials(params, definition)
	if err != nil {
		passphrase.Close()
		return nil, err
	}

	spec := container.Spec{
		Image:   image,
		Name:    fmt.Sprintf("stackhand-%s-%d", stackName, os.Getpid()),
		Workdir: configuration.Container.Workdir,
		Mounts: []container.Mount{
			{Source: infraDir, Target: configuration.Container.Workdir},
		},
		Env: map[string]string{
			"PULUMI_SKIP_UPDATE_CHECK": "true",
		},
		SecretEnv: map[string]string{
			"PULUMI_CONFIG_PASSPHRASE": passphrase.String(),
		},
		CacheVolume: configuration.Container.CacheVolume,
		CacheDir:    configuration.Container.CacheDir,
	}
	if err := credentials.Apply(&spec); err != nil {
		passphrase.Close()
		return nil, err
	}

	engine := container.NewEngine(logger)
	if err := engine.Preflight(ctx); err != nil {
		passphrase.Close()
		return nil, err
	}

	name, err := engine.Create(ctx, spec)
	if err != nil {
		passphrase.Close()
		return nil, err
	}

	s := &session{
		config:     configuration,
		stackName:  stackName,
		engine:     engine,
		bound:      engine.Bind(name),
		passphrase: passphrase,
		keep:       params.Keep,
		logger:     logger,
	}

	// The federated token file must exist inside the container before
	// any provider call. Written over a pipe so the token never
	// appears in argv.
	if credentials.NeedsTokenFile() {
		if err := engine.WriteFile(ctx, name, azure.TokenPath, credentials.Token()); err != nil {
			s.Close(ctx)
			return nil, err
		}
	}

	s.workspace = pulumi.NewWorkspace(s.bound, stackName, logger)

	backendURL := pulumi.BackendURL(storageAccount, stateContainer)
	if err := s.workspace.Login(ctx, backendURL); err != nil {
		s.Close(ctx)
		return nil, err
	}
	if err := s.workspace.Install(ctx); err != nil {
		s.Close(ctx)
		return nil, err
	}
	if options.ensureStack {
		if err := s.workspace.EnsureStack(ctx); err != nil {
			s.Close(ctx)
			return nil, err
		}
	}

	return s, nil
}

// Close removes the container and releases the passphrase buffer.
// Safe to call once. Removal errors are logged, not returned — the
// operation's own result matters more.
func (s *session) Close(ctx context.Context) {
	if s.keep {
		s.logger.Info("keeping container", "container", s.bound.Name())
	} else if err := s.engine.Remove(ctx, s.bound.Name()); err != nil {
		s.logger.Warn("container removal failed", "container", s.bound.Name(), "error", err)
	}
	if s.passphrase != nil {
		s.passphrase.Close()
		s.passphrase = nil
	}
}

// loadConfig loads the named config file, or the STACKHAND_CONFIG one
// when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// loadManifest reads the stack manifest. An explicit --manifest path
// must exist; the default location is optional.
func loadManifest(path, infraDir string) (*stackdef.Manifest, error) {
	if path != "" {
		return stackdef.ReadFile(path)
	}
	defaultPath := filepath.Join(infraDir, manifestFilename)
	if _, err := os.Stat(defaultPath); err != nil {
		return nil, nil
	}
	return stackdef.ReadFile(defaultPath)
}

// readPassphrase loads the Pulumi config passphrase into locked
// memory, from the configured file or the named environment variable.
func readPassphrase(configuration *config.Config, passphraseEnv string) (*secret.Buffer, error) {
	if configuration.Stack.PassphraseFile != "" {
		buffer, err := secret.ReadFromPath(configuration.Stack.PassphraseFile)
		if err != nil {
			return nil, fmt.Errorf("read passphrase: %w", err)
		}
		return buffer, nil
	}
	buffer, err := secret.ReadFromEnv(passphraseEnv)
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w (set %s or stack.passphrase_file)", err, passphraseEnv)
	}
	return buffer, nil
}

// buildCredentials assembles Azure credentials from flags and the
// stack definition's auth mode.
func buildCredentials(params *sessionParams, definition *stackdef.Stack) (*azure.Credentials, error) {
	credentials := &azure.Credentials{
		CLIDir:   params.AzureDir,
		ClientID: params.ClientID,
		TenantID: params.TenantID,
	}

	if params.OIDCTokenFile != "" {
		token, err := os.ReadFile(params.OIDCTokenFile)
		if err != nil {
			return nil, fmt.Errorf("read OIDC token: %w", err)
		}
		credentials.OIDCToken = string(token)
	}

	authMode := ""
	if definition != nil {
		authMode = definition.Auth
	}
	switch authMode {
	case "az":
		if credentials.CLIDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("azure: stack requires az CLI auth but --azure-dir is not set: %w", err)
			}
			credentials.CLIDir = filepath.Join(home, ".azure")
		}
		if _, err := os.Stat(credentials.CLIDir); err != nil {
			return nil, fmt.Errorf("azure: az CLI directory %s not found (run az login, or pass --azure-dir)", credentials.CLIDir)
		}
	case "oidc":
		if credentials.OIDCToken == "" {
			return nil, fmt.Errorf("azure: stack requires OIDC auth but --oidc-token-file is not set")
		}
	}

	if err := credentials.Validate(); err != nil {
		return nil, err
	}
	return credentials, nil
}
