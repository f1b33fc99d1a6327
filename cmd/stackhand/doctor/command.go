// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor implements "stackhand doctor": environment checks
// that tell an operator why a stack operation is about to fail before
// it fails halfway through.
package doctor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/stackhand/stackhand/cmd/stackhand/cli"
	"github.com/stackhand/stackhand/lib/config"
	"github.com/stackhand/stackhand/lib/container"
)

type commandParams struct {
	cli.JSONOutput
	Config string `flag:"config" desc:"config file path (overrides STACKHAND_CONFIG)"`
}

// Command returns the "stackhand doctor" command.
func Command() *cli.Command {
	var params commandParams

	return &cli.Command{
		Name:    "doctor",
		Summary: "Diagnose the stackhand environment",
		Description: `Check everything a stack operation needs: the config file parses, the
container engine is reachable, the Pulumi image is configured, the
passphrase source is set, and Azure DevOps credentials are present for
PR commands. Exits 1 if any check fails.`,
		Usage: "stackhand doctor [flags]",
		Examples: []cli.Example{
			{
				Description: "Check the environment",
				Command:     "stackhand doctor",
			},
			{
				Description: "Machine-readable output",
				Command:     "stackhand doctor --json",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			return runDoctor(ctx, &params, logger)
		},
	}
}

func runDoctor(ctx context.Context, params *commandParams, logger *slog.Logger) error {
	var results []Result

	configuration, configResult := checkConfig(params.Config)
	results = append(results, configResult)

	results = append(results, checkEngine(ctx, logger))

	if configuration != nil {
		results = append(results, checkImage(configuration))
		results = append(results, checkPassphrase(configuration))
		results = append(results, checkAzdo(configuration))
		results = append(results, checkPlanStore(configuration))
	}

	if done, err := params.EmitJSON(results); done {
		if err != nil {
			return err
		}
		for _, result := range results {
			if result.Status == StatusFail {
				return &cli.ExitError{Code: 1}
			}
		}
		return nil
	}

	return PrintChecklist(results)
}

// checkConfig loads and validates the config file. The parsed config
// is returned so later checks can use it; nil when loading failed.
func checkConfig(path string) (*config.Config, Result) {
	source := path
	if source == "" {
		source = os.Getenv("STACKHAND_CONFIG")
	}
	if source == "" {
		return config.Default(), Pass("configuration", "built-in defaults (STACKHAND_CONFIG not set)")
	}

	configuration, err := config.LoadFile(source)
	if err != nil {
		return nil, Fail("configuration", err.Error())
	}
	return configuration, Pass("configuration", fmt.Sprintf("loaded from %s", source))
}

func checkEngine(ctx context.Context, logger *slog.Logger) Result {
	engine := container.NewEngine(logger)
	if err := engine.Preflight(ctx); err != nil {
		return Fail("container engine", fmt.Sprintf("%v — is the docker daemon running?", err))
	}
	return Pass("container engine", "docker daemon reachable")
}

func checkImage(configuration *config.Config) Result {
	if configuration.Container.Image == "" {
		return Fail("pulumi image", "container.image is empty")
	}
	return Pass("pulumi image", configuration.Container.Image)
}

func checkPassphrase(configuration *config.Config) Result {
	if configuration.Stack.PassphraseFile != "" {
		if _, err := os.Stat(configuration.Stack.PassphraseFile); err != nil {
			return Fail("config passphrase", fmt.Sprintf("passphrase file %s not found", configuration.Stack.PassphraseFile))
		}
		return Pass("config passphrase", fmt.Sprintf("file %s", configuration.Stack.PassphraseFile))
	}
	if os.Getenv(configuration.Stack.PassphraseEnv) == "" {
		return Warn("config passphrase", fmt.Sprintf("%s is not set — stack operations will fail", configuration.Stack.PassphraseEnv))
	}
	return Pass("config passphrase", fmt.Sprintf("environment variable %s", configuration.Stack.PassphraseEnv))
}

func checkAzdo(configuration *config.Config) Result {
	if err := configuration.ValidateAzdo(); err != nil {
		return Warn("azure devops", fmt.Sprintf("%v — pr commands unavailable", err))
	}
	if os.Getenv(configuration.Azdo.PATEnv) == "" {
		return Warn("azure devops", fmt.Sprintf("%s is not set — pr commands will fail", configuration.Azdo.PATEnv))
	}
	return Pass("azure devops", configuration.Azdo.OrganizationURL)
}

func checkPlanStore(configuration *config.Config) Result {
	dir := configuration.Plans.Dir
	if dir == "" {
		return Warn("plan store", "plans.dir is empty — preview --summary will fail")
	}
	return Pass("plan store", dir)
}
