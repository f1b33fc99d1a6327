// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/stackhand/stackhand/lib/plan"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	createStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	updateStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	replaceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	deleteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	sameStyle    = lipgloss.NewStyle().Faint(true)
	digestStyle  = lipgloss.NewStyle().Faint(true)
)

// opStyles maps Pulumi operation names to their display style.
var opStyles = map[string]lipgloss.Style{
	"create":  createStyle,
	"update":  updateStyle,
	"replace": replaceStyle,
	"delete":  deleteStyle,
	"same":    sameStyle,
}

// opLabels maps operation names to the phrasing pulumi itself uses.
var opLabels = map[string]string{
	"create":  "to create",
	"update":  "to update",
	"replace": "to replace",
	"delete":  "to delete",
	"same":    "unchanged",
}

// renderSummary formats a change summary for display. Colored when
// stdout is a terminal, plain otherwise.
func renderSummary(stack string, summary *plan.Summary, digest string) string {
	colored := term.IsTerminal(int(os.Stdout.Fd()))

	var out strings.Builder
	header := fmt.Sprintf("Stack %s:", stack)
	if colored {
		header = headerStyle.Render(header)
	}
	out.WriteString(header)
	out.WriteString("\n")

	lines := 0
	for _, op := range plan.SortedOperations(summary.ChangeSummary) {
		count := summary.ChangeSummary[op]
		if count == 0 {
			continue
		}
		label, ok := opLabels[op]
		if !ok {
			label = op
		}
		line := fmt.Sprintf("  %4d %s", count, label)
		if colored {
			if style, ok := opStyles[op]; ok {
				line = style.Render(line)
			}
		}
		out.WriteString(line)
		out.WriteString("\n")
		lines++
	}
	if lines == 0 {
		out.WriteString("  no resources\n")
	}

	footerLine := fmt.Sprintf("  plan %.12s", digest)
	if colored {
		footerLine = digestStyle.Render(footerLine)
	}
	out.WriteString(footerLine)

	return out.String()
}
