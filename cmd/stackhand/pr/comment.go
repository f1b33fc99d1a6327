// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package pr implements the "stackhand pr" command group: Azure DevOps
// pull request integration.
package pr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stackhand/stackhand/cmd/stackhand/cli"
	"github.com/stackhand/stackhand/lib/azdo"
	"github.com/stackhand/stackhand/lib/config"
	"github.com/stackhand/stackhand/lib/plan"
	"github.com/stackhand/stackhand/lib/secret"
)

// Command returns the "stackhand pr" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "pr",
		Summary: "Azure DevOps pull request integration",
		Subcommands: []*cli.Command{
			commentCommand(),
		},
	}
}

type commentParams struct {
	cli.JSONOutput
	Config     string `flag:"config" desc:"config file path (overrides STACKHAND_CONFIG)"`
	PR         int    `flag:"pr" desc:"pull request ID (required)"`
	Project    string `flag:"project" desc:"Azure DevOps project (default from config)"`
	Repository string `flag:"repository" desc:"repository name or ID (default from config)"`
	Plan       string `flag:"plan" desc:"post an archived plan summary: a digest prefix, or \"latest\""`
	Stack      string `flag:"stack,s" desc:"stack for --plan latest lookup"`
}

func commentCommand() *cli.Command {
	var params commentParams

	return &cli.Command{
		Name:    "comment",
		Summary: "Post a comment thread on a pull request",
		Description: `Create a new comment thread on an Azure DevOps pull request. The
comment body is either the literal text given as arguments, or — with
--plan — the change summary of an archived preview plan.

Authentication uses a personal access token read from the environment
variable named by azdo.pat_env in the config (default:
AZURE_DEVOPS_PAT).`,
		Usage: "stackhand pr comment --pr <id> [flags] [text...]",
		Examples: []cli.Example{
			{
				Description: "Post a literal comment",
				Command:     "stackhand pr comment --pr 42 \"deploy window opens at 14:00 UTC\"",
			},
			{
				Description: "Post the latest archived plan summary for a stack",
				Command:     "stackhand pr comment --pr 42 --plan latest --stack dev",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return runComment(ctx, &params, args, logger)
		},
	}
}

func runComment(ctx context.Context, params *commentParams, args []string, logger *slog.Logger) error {
	if params.PR <= 0 {
		return fmt.Errorf("--pr is required")
	}

	configuration, err := loadConfig(params.Config)
	if err != nil {
		return err
	}
	if err := configuration.ValidateAzdo(); err != nil {
		return err
	}

	project := params.Project
	if project == "" {
		project = configuration.Azdo.Project
	}
	repository := params.Repository
	if repository == "" {
		repository = configuration.Azdo.Repository
	}

	content, err := commentContent(configuration, params, args)
	if err != nil {
		return err
	}

	pat, err := secret.ReadFromEnv(configuration.Azdo.PATEnv)
	if err != nil {
		return fmt.Errorf("read personal access token: %w (set %s)", err, configuration.Azdo.PATEnv)
	}
	defer pat.Close()

	client, err := azdo.NewClient(azdo.Config{
		OrganizationURL: configuration.Azdo.OrganizationURL,
		PAT:             pat,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	// Preflight: a clear "PR not found" beats a thread-creation 404.
	pullRequest, err := client.GetPullRequest(ctx, project, repository, params.PR)
	if err != nil {
		if azdo.IsNotFound(err) {
			return fmt.Errorf("pull request %d not found in %s/%s: %w", params.PR, project, repository, err)
		}
		return err
	}

	thread, err := client.CreateThread(ctx, project, repository, params.PR, content)
	if err != nil {
		return err
	}

	logger.Info("comment posted",
		"pr", params.PR,
		"title", pullRequest.Title,
		"thread", thread.ID,
	)

	if done, err := params.EmitJSON(thread); done {
		return err
	}
	fmt.Printf("thread %d created on PR %d\n", thread.ID, params.PR)
	return nil
}

// commentContent resolves the comment body: --plan posts an archived
// plan's change summary, otherwise the positional args are the literal
// text.
func commentContent(configuration *config.Config, params *commentParams, args []string) (string, error) {
	if params.Plan == "" {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return "", fmt.Errorf("no comment text given (pass text arguments or --plan)")
		}
		return text, nil
	}
	if len(args) > 0 {
		return "", fmt.Errorf("--plan and literal comment text are mutually exclusive")
	}

	store, err := plan.NewStore(configuration.Plans.Dir)
	if err != nil {
		return "", err
	}

	digest := params.Plan
	if digest == "latest" {
		if params.Stack == "" {
			return "", fmt.Errorf("--plan latest requires --stack")
		}
		entry, err := store.Latest(params.Stack)
		if err != nil {
			return "", err
		}
		digest = entry.Digest
	} else {
		digest, err = store.Resolve(digest)
		if err != nil {
			return "", err
		}
	}

	data, err := store.Get(digest)
	if err != nil {
		return "", err
	}
	summary, err := plan.ParseSummary(data)
	if err != nil {
		return "", err
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Pulumi preview (`%.12s`): %s", digest, summary)
	for _, diagnostic := range summary.Errors() {
		fmt.Fprintf(&body, "\n- error: %s", diagnostic.Message)
	}
	return body.String(), nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
