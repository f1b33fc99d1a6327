// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package plan handles Pulumi preview plans: parsing the
// machine-readable preview output into change summaries, hashing plan
// bytes for identification, and archiving plans in a local compressed
// store so a reviewed preview can later be posted to a pull request or
// compared against what "up" is about to apply.
package plan

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Summary is the digest of a "pulumi preview --json" run.
type Summary struct {
	// ChangeSummary maps operation name (create, update, delete,
	// replace, same) to resource count.
	ChangeSummary map[string]int `json:"changeSummary"`

	// Diagnostics are provider warnings and errors emitted during the
	// preview.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	// Duration is the preview wall time in nanoseconds, as reported
	// by pulumi.
	Duration int64 `json:"duration,omitempty"`
}

// Diagnostic is one warning or error from the preview.
type Diagnostic struct {
	// URN identifies the affected resource, empty for stack-level
	// diagnostics.
	URN string `json:"urn,omitempty"`

	// Severity is "warning" or "error".
	Severity string `json:"severity"`

	// Message is the rendered diagnostic text.
	Message string `json:"message"`
}

// ParseSummary extracts the change summary from pulumi's JSON preview
// output.
func ParseSummary(data []byte) (*Summary, error) {
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("plan: parsing preview output: %w", err)
	}
	if summary.ChangeSummary == nil {
		summary.ChangeSummary = make(map[string]int)
	}
	return &summary, nil
}

// HasChanges reports whether the preview contains any operation other
// than "same".
func (s *Summary) HasChanges() bool {
	for op, count := range s.ChangeSummary {
		if op != "same" && count > 0 {
			return true
		}
	}
	return false
}

// Errors returns the error-severity diagnostics.
func (s *Summary) Errors() []Diagnostic {
	var errors []Diagnostic
	for _, diagnostic := range s.Diagnostics {
		if diagnostic.Severity == "error" {
			errors = append(errors, diagnostic)
		}
	}
	return errors
}

// opOrder fixes the display order of operations. Unlisted operations
// sort after these, alphabetically.
var opOrder = map[string]int{
	"create":  0,
	"update":  1,
	"replace": 2,
	"delete":  3,
	"same":    4,
}

// SortedOperations returns the operation names of a change summary in
// display order: the known operations first (create, update, replace,
// delete, same), then any others alphabetically.
func SortedOperations(changes map[string]int) []string {
	ops := make([]string, 0, len(changes))
	for op := range changes {
		ops = append(ops, op)
	}
	sortOperations(ops)
	return ops
}

// sortOperations orders operation names in place per opOrder.
func sortOperations(ops []string) {
	sort.Slice(ops, func(i, j int) bool {
		orderI, okI := opOrder[ops[i]]
		orderJ, okJ := opOrder[ops[j]]
		switch {
		case okI && okJ:
			return orderI < orderJ
		case okI:
			return true
		case okJ:
			return false
		default:
			return ops[i] < ops[j]
		}
	})
}

// String renders the change counts as a single line, e.g.
// "3 to create, 1 to update, 12 unchanged".
func (s *Summary) String() string {
	ops := make([]string, 0, len(s.ChangeSummary))
	for op, count := range s.ChangeSummary {
		if count > 0 {
			ops = append(ops, op)
		}
	}
	if len(ops) == 0 {
		return "no resources"
	}

	sortOperations(ops)

	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		count := s.ChangeSummary[op]
		if op == "same" {
			parts = append(parts, fmt.Sprintf("%d unchanged", count))
			continue
		}
		parts = append(parts, fmt.Sprintf("%d to %s", count, op))
	}
	return strings.Join(parts, ", ")
}
