// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"strings"
	"testing"

	"github.com/stackhand/stackhand/lib/plan"
)

func TestRenderSummary(t *testing.T) {
	t.Parallel()

	summary := &plan.Summary{
		ChangeSummary: map[string]int{
			"create": 3,
			"update": 1,
			"same":   12,
			"delete": 0,
		},
	}

	out := renderSummary("dev", summary, "abcdef0123456789")

	for _, want := range []string{"Stack dev:", "3 to create", "1 to update", "12 unchanged", "plan abcdef012345"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderSummary output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "to delete") {
		t.Error("renderSummary printed a zero-count operation")
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	t.Parallel()

	summary := &plan.Summary{ChangeSummary: map[string]int{}}
	out := renderSummary("dev", summary, "abcdef0123456789")
	if !strings.Contains(out, "no resources") {
		t.Errorf("renderSummary output missing no-resources line:\n%s", out)
	}
}
