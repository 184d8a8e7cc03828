// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"fmt"
	"io"
	"strings"

	"github.com/bureau-foundation/papersync/cmd/papersync/cli"
)

// PrintChecklist writes check results to w as a human-readable
// checklist. Returns an [cli.ExitError] with code 1 when any check
// failed.
func PrintChecklist(w io.Writer, results []Result, fixMode, dryRun bool, outcome Outcome) error {
	anyFailed := false
	fixableCount := 0
	fixedCount := 0

	for _, result := range results {
		prefix := strings.ToUpper(string(result.Status))
		fmt.Fprintf(w, "[%-5s]  %-22s  %s\n", prefix, result.Name, result.Message)

		switch result.Status {
		case StatusFail:
			anyFailed = true
			if result.FixHint != "" {
				fixableCount++
				if dryRun {
					fmt.Fprintf(w, "         %-22s  would fix: %s\n", "", result.FixHint)
				}
			}
		case StatusFixed:
			fixedCount++
		}
	}

	fmt.Fprintln(w)

	if anyFailed {
		if dryRun && fixableCount > 0 {
			fmt.Fprintf(w, "%d issue(s) would be repaired. Run without --dry-run to apply.\n", fixableCount)
		} else if !fixMode && fixableCount > 0 {
			fmt.Fprintf(w, "Run with --fix to repair %d issue(s).\n", fixableCount)
		} else {
			fmt.Fprintln(w, "Some checks failed.")
		}
		if outcome.PermissionDenied {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Some fixes failed due to insufficient permissions.")
		}
		return &cli.ExitError{Code: 1}
	}

	if fixedCount > 0 {
		fmt.Fprintf(w, "%d issue(s) repaired.\n", fixedCount)
		return nil
	}

	fmt.Fprintln(w, "All checks passed.")
	return nil
}
