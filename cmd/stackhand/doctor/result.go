// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"fmt"
	"os"
	"strings"

	"github.com/stackhand/stackhand/cmd/stackhand/cli"
)

// Status is the outcome of a single health check.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusWarn Status = "warn"
)

// Result holds the outcome of a single health check.
type Result struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Pass creates a passing check result.
func Pass(name, message string) Result {
	return Result{Name: name, Status: StatusPass, Message: message}
}

// Fail creates a failing check result.
func Fail(name, message string) Result {
	return Result{Name: name, Status: StatusFail, Message: message}
}

// Warn creates a warning check result. Warnings do not cause doctor to
// exit non-zero.
func Warn(name, message string) Result {
	return Result{Name: name, Status: StatusWarn, Message: message}
}

// PrintChecklist prints check results as a human-readable checklist.
// Returns an ExitError with code 1 when any check failed.
func PrintChecklist(results []Result) error {
	anyFailed := false
	for _, result := range results {
		prefix := strings.ToUpper(string(result.Status))
		fmt.Fprintf(os.Stdout, "[%-4s]  %-20s  %s\n", prefix, result.Name, result.Message)
		if result.Status == StatusFail {
			anyFailed = true
		}
	}

	fmt.Fprintln(os.Stdout)
	if anyFailed {
		fmt.Fprintln(os.Stdout, "Some checks failed.")
		return &cli.ExitError{Code: 1}
	}
	fmt.Fprintln(os.Stdout, "All checks passed.")
	return nil
}
