// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// ExecuteFixes runs the fix action for each fixable failure, updating
// results in place. In dry-run mode, no fixes are executed and an empty
// Outcome is returned.
func ExecuteFixes(ctx context.Context, results []Result, dryRun bool) Outcome {
	if dryRun {
		return Outcome{}
	}

	var outcome Outcome
	for i := range results {
		if results[i].Status != StatusFail || results[i].fix == nil {
			continue
		}
		if err := results[i].fix(ctx); err != nil {
			if isPermissionDenied(err) {
				outcome.PermissionDenied = true
				results[i].Message = fmt.Sprintf("%s (insufficient permissions)", results[i].Message)
			} else {
				results[i].Message = fmt.Sprintf("%s (fix failed: %v)", results[i].Message, err)
			}
			continue
		}
		results[i].Status = StatusFixed
		outcome.FixedCount++
	}

	return outcome
}

// isPermissionDenied matches EPERM and EACCES through fs.ErrPermission.
func isPermissionDenied(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}

// BuildJSON builds the JSON output struct from results and outcome
// metadata.
func BuildJSON(results []Result, dryRun bool, outcome Outcome) JSONOutput {
	anyFailed := false
	for _, result := range results {
		if result.Status == StatusFail {
			anyFailed = true
			break
		}
	}
	return JSONOutput{
		Checks:           results,
		OK:               !anyFailed,
		DryRun:           dryRun,
		PermissionDenied: outcome.PermissionDenied,
	}
}

// MarkRepaired updates results that now pass but failed in an earlier
// run: these were repaired by a fix even if they did not carry the fix
// closure themselves. Call it on the re-check results with the names
// that failed before fixing.
func MarkRepaired(results []Result, repairedNames map[string]bool) {
	for i := range results {
		if results[i].Status == StatusPass && repairedNames[results[i].Name] {
			results[i].Status = StatusFixed
		}
	}
}

// FailedNames returns the names of failing results.
func FailedNames(results []Result) map[string]bool {
	names := make(map[string]bool)
	for _, result := range results {
		if result.Status == StatusFail {
			names[result.Name] = true
		}
	}
	return names
}
