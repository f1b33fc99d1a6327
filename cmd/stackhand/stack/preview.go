// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/stackhand/stackhand/cmd/stackhand/cli"
	"github.com/stackhand/stackhand/lib/plan"
)

type previewParams struct {
	sessionParams
	cli.JSONOutput
	Output  string `flag:"output,o" desc:"write the preview output to a file instead of stdout"`
	Summary bool   `flag:"summary" desc:"run the preview in JSON mode and print a change summary; archives the plan"`
}

func previewCommand() *cli.Command {
	var params previewParams

	return &cli.Command{
		Name:    "preview",
		Summary: "Show the changes a deployment would make",
		Description: `Run "pulumi preview" against the selected stack. By default the preview
output streams to stdout. With --output it is written to a file. With
--summary the preview runs in JSON mode, the plan is archived in the
local plan store, and a per-operation change count is printed.`,
		Usage: "stackhand stack preview [flags]",
		Examples: []cli.Example{
			{
				Description: "Stream the preview to stdout",
				Command:     "stackhand stack preview --stack dev",
			},
			{
				Description: "Write the preview to a file",
				Command:     "stackhand stack preview --stack dev --output preview.txt",
			},
			{
				Description: "Archive the plan and print a change summary",
				Command:     "stackhand stack preview --stack dev --summary",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runPreview(ctx, &params, logger)
		},
	}
}

func runPreview(ctx context.Context, params *previewParams, logger *slog.Logger) error {
	if params.Summary && params.Output != "" {
		return fmt.Errorf("--summary and --output are mutually exclusive")
	}

	s, err := openSession(ctx, &params.sessionParams, sessionOptions{ensureStack: true}, logger)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	if params.Summary {
		return runPreviewSummary(ctx, s, params)
	}

	if params.Output != "" {
		file, err := os.Create(params.Output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		if err := s.workspace.Preview(ctx, file); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}
		logger.Info("preview written", "stack", s.stackName, "path", params.Output)
		return nil
	}

	return s.workspace.Preview(ctx, os.Stdout)
}

// runPreviewSummary runs the preview in JSON mode, archives the plan
// in the local store, and prints the parsed change summary.
func runPreviewSummary(ctx context.Context, s *session, params *previewParams) error {
	data, err := s.workspace.PreviewJSON(ctx)
	if err != nil {
		return err
	}

	summary, err := plan.ParseSummary(data)
	if err != nil {
		return err
	}

	store, err := plan.NewStore(s.config.Plans.Dir)
	if err != nil {
		return err
	}
	entry, err := store.Put(s.stackName, data)
	if err != nil {
		return err
	}
	s.logger.Info("plan archived", "stack", s.stackName, "digest", entry.Digest)

	if done, err := params.EmitJSON(summary); done {
		return err
	}

	fmt.Println(renderSummary(s.stackName, summary, entry.Digest))

	for _, diagnostic := range summary.Errors() {
		fmt.Fprintf(os.Stderr, "error: %s\n", diagnostic.Message)
	}
	if len(summary.Errors()) > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
