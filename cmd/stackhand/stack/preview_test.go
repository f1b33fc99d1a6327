// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestRunPreviewRejectsSummaryWithOutput(t *testing.T) {
	t.Parallel()

	params := &previewParams{
		Summary: true,
		Output:  "preview.txt",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := runPreview(context.Background(), params, logger)
	if err == nil {
		t.Fatal("runPreview accepted --summary together with --output")
	}
	if !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("error = %q, want mutually-exclusive diagnostic", err)
	}
}
